package mutator

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/powertrim/powertrim/internal/bootloader"
	"github.com/powertrim/powertrim/internal/execx"
	"github.com/powertrim/powertrim/internal/plan"
	pterrors "github.com/powertrim/powertrim/pkg/errors"
)

const entryContent = `title Arch Linux
linux /vmlinuz-linux
options root=/dev/nvme0n1p2 rw quiet
`

func TestKernelParamApplyInsertsAndRecords(t *testing.T) {
	t.Parallel()

	root := sysfsRoot(t, map[string]string{
		"boot/loader/entries/arch.conf": entryContent,
	})
	m := KernelParam{Boot: bootloader.NewSystemdBoot(root)}

	rec, err := m.Apply(context.Background(), plan.KernelParam{Param: "acpi.ec_no_wakeup=1"})
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, "acpi.ec_no_wakeup=1", rec.Param)
	assert.Equal(t, []string{"arch.conf"}, rec.Entries)

	raw, err := root.ReadRaw("boot/loader/entries/arch.conf")
	require.NoError(t, err)
	assert.Contains(t, raw, "quiet acpi.ec_no_wakeup=1")
}

func TestKernelParamApplyAlreadyPresent(t *testing.T) {
	t.Parallel()

	root := sysfsRoot(t, map[string]string{
		"boot/loader/entries/arch.conf": "options root=/dev/sda1 acpi.ec_no_wakeup=1\n",
	})
	m := KernelParam{Boot: bootloader.NewSystemdBoot(root)}

	rec, err := m.Apply(context.Background(), plan.KernelParam{Param: "acpi.ec_no_wakeup=1"})
	require.NoError(t, err)
	assert.Nil(t, rec)
}

func TestKernelParamRevertRemovesFromRecordedEntries(t *testing.T) {
	t.Parallel()

	root := sysfsRoot(t, map[string]string{
		"boot/loader/entries/arch.conf": entryContent,
	})
	m := KernelParam{Boot: bootloader.NewSystemdBoot(root)}

	rec, err := m.Apply(context.Background(), plan.KernelParam{Param: "rtc_cmos.use_acpi_alarm=1"})
	require.NoError(t, err)
	require.NotNil(t, rec)

	require.NoError(t, m.Revert(context.Background(), *rec))

	raw, err := root.ReadRaw("boot/loader/entries/arch.conf")
	require.NoError(t, err)
	assert.Equal(t, entryContent, raw)
}

func TestKernelParamApplyPartialInsertRollsBack(t *testing.T) {
	t.Parallel()

	// arch.conf edits cleanly; fallback.conf has no options line and fails
	// mid-insert, after arch.conf was already rewritten.
	root := sysfsRoot(t, map[string]string{
		"boot/loader/entries/arch.conf":     entryContent,
		"boot/loader/entries/fallback.conf": "title Arch Linux (fallback)\nlinux /vmlinuz-linux\n",
	})
	m := KernelParam{Boot: bootloader.NewSystemdBoot(root)}

	rec, err := m.Apply(context.Background(), plan.KernelParam{Param: "acpi.ec_no_wakeup=1"})
	require.Error(t, err)
	assert.Nil(t, rec)

	raw, err := root.ReadRaw("boot/loader/entries/arch.conf")
	require.NoError(t, err)
	assert.Equal(t, entryContent, raw, "edited entry must be restored when the insert fails partway")
}

func TestKernelParamGrubRegenAfterInsert(t *testing.T) {
	t.Parallel()

	root := sysfsRoot(t, map[string]string{
		"etc/default/grub": "GRUB_CMDLINE_LINUX_DEFAULT=\"quiet\"\n",
	})
	runner := execx.NewFakeRunner()
	m := KernelParam{Boot: bootloader.NewGrub(root, runner)}

	rec, err := m.Apply(context.Background(), plan.KernelParam{Param: "amdgpu.abmlevel=3"})
	require.NoError(t, err)
	require.NotNil(t, rec)

	mkconfig := "grub-mkconfig -o " + root.Path("boot/grub/grub.cfg")
	assert.Equal(t, 1, runner.CallCount(mkconfig))
}

func TestKernelParamGrubRegenFailureRollsBack(t *testing.T) {
	t.Parallel()

	defaults := "GRUB_CMDLINE_LINUX_DEFAULT=\"quiet\"\n"
	root := sysfsRoot(t, map[string]string{"etc/default/grub": defaults})
	runner := execx.NewFakeRunner()
	mkconfig := "grub-mkconfig -o " + root.Path("boot/grub/grub.cfg")
	runner.Script(mkconfig, execx.Result{ExitCode: 1, Stderr: "no space left on device"})

	m := KernelParam{Boot: bootloader.NewGrub(root, runner)}

	rec, err := m.Apply(context.Background(), plan.KernelParam{Param: "amdgpu.abmlevel=3"})
	require.Error(t, err)
	assert.Nil(t, rec)

	var toolErr *pterrors.ExternalToolError
	require.ErrorAs(t, err, &toolErr)

	// The edit was undone so nothing half-applied survives.
	raw, err := root.ReadRaw("etc/default/grub")
	require.NoError(t, err)
	assert.Equal(t, defaults, raw)
}
