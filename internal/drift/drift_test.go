package drift

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/powertrim/powertrim/internal/bootloader"
	"github.com/powertrim/powertrim/internal/execx"
	"github.com/powertrim/powertrim/internal/fsroot"
	"github.com/powertrim/powertrim/internal/mutator"
	"github.com/powertrim/powertrim/internal/plan"
	"github.com/powertrim/powertrim/internal/state"
	pterrors "github.com/powertrim/powertrim/pkg/errors"
)

func testRoot(t *testing.T, files map[string]string) fsroot.Root {
	t.Helper()
	base := t.TempDir()
	for rel, content := range files {
		path := filepath.Join(base, rel)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	return fsroot.New(base)
}

func newChecker(t *testing.T, root fsroot.Root, runner execx.Runner) (*Checker, *state.Store) {
	t.Helper()
	store := state.NewStore(filepath.Join(t.TempDir(), "state.json"))
	return &Checker{
		Root:    root,
		Boot:    bootloader.NewSystemdBoot(root),
		Service: mutator.Service{Runner: runner},
		Store:   store,
	}, store
}

func findEntry(t *testing.T, report *Report, kind plan.Kind, target string) Entry {
	t.Helper()
	for _, e := range report.Entries {
		if e.Kind == kind && e.Target == target {
			return e
		}
	}
	t.Fatalf("no entry for %s %s", kind, target)
	return Entry{}
}

func TestRunAbsentState(t *testing.T) {
	t.Parallel()

	c, _ := newChecker(t, testRoot(t, nil), execx.NewFakeRunner())

	_, err := c.Run(context.Background())
	assert.ErrorIs(t, err, pterrors.ErrStateAbsent)
}

func TestRunClassifiesEveryRecord(t *testing.T) {
	t.Parallel()

	root := testRoot(t, map[string]string{
		"sys/epp":            "power\n",
		"sys/aspm":           "default\n",
		mutator.WakeupFile:   "XHC1      S4    *disabled  pci:0000:c4:00.4\n",
		"proc/cmdline":       "root=/dev/sda1 quiet acpi.ec_no_wakeup=1\n",
		"etc/systemd/system/powertrim-powersave.service": "[Unit]\n",
	})
	runner := execx.NewFakeRunner()
	runner.Script("systemctl is-active --quiet tlp.service", execx.Result{ExitCode: 3})
	c, store := newChecker(t, root, runner)

	st := state.New()
	st.DirectWrites = []state.DirectWriteUndo{
		{Path: "sys/epp", Original: "performance", Applied: "power"},
		{Path: "sys/aspm", Original: "default", Applied: "powersupersave"},
	}
	st.Toggles = []state.ToggleUndo{{Device: "XHC1", WasEnabled: true}}
	st.KernelParams = []state.KernelParamUndo{{Param: "acpi.ec_no_wakeup=1", Entries: []string{"arch.conf"}}}
	st.Services = []state.ServiceUndo{{Name: "tlp.service", WasActive: true, WasEnabled: true}}
	st.Units = []state.UnitUndo{{Path: "etc/systemd/system/powertrim-powersave.service", Name: "powertrim-powersave.service"}}
	require.NoError(t, store.Save(st))

	report, err := c.Run(context.Background())
	require.NoError(t, err)
	assert.Len(t, report.Entries, st.RecordCount())
	assert.False(t, report.AllActive())

	assert.Equal(t, StatusActive, findEntry(t, report, plan.KindDirectWrite, "sys/epp").Status)

	// Something rewrote the ASPM policy since apply.
	drifted := findEntry(t, report, plan.KindDirectWrite, "sys/aspm")
	assert.Equal(t, StatusDrifted, drifted.Status)
	assert.Equal(t, "powersupersave", drifted.Expected)
	assert.Equal(t, "default", drifted.Actual)

	assert.Equal(t, StatusActive, findEntry(t, report, plan.KindToggle, "XHC1").Status)
	assert.Equal(t, StatusActive, findEntry(t, report, plan.KindKernelParam, "acpi.ec_no_wakeup=1").Status)
	assert.Equal(t, StatusActive, findEntry(t, report, plan.KindService, "tlp.service").Status)
	assert.Equal(t, StatusActive, findEntry(t, report, plan.KindUnit, "powertrim-powersave.service").Status)
}

func TestRunMissingTargetIsUnknown(t *testing.T) {
	t.Parallel()

	c, store := newChecker(t, testRoot(t, nil), execx.NewFakeRunner())

	st := state.New()
	st.DirectWrites = []state.DirectWriteUndo{{Path: "sys/gone", Original: "1", Applied: "0"}}
	st.Toggles = []state.ToggleUndo{{Device: "XHC1", WasEnabled: true}}
	require.NoError(t, store.Save(st))

	report, err := c.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, report.Count(StatusUnknown))
}

func TestRunKernelParamPendingReboot(t *testing.T) {
	t.Parallel()

	root := testRoot(t, map[string]string{
		"proc/cmdline":                  "root=/dev/sda1 quiet\n",
		"boot/loader/entries/arch.conf": "options root=/dev/sda1 quiet acpi.ec_no_wakeup=1\n",
	})
	c, store := newChecker(t, root, execx.NewFakeRunner())

	st := state.New()
	st.KernelParams = []state.KernelParamUndo{{Param: "acpi.ec_no_wakeup=1", Entries: []string{"arch.conf"}}}
	require.NoError(t, store.Save(st))

	report, err := c.Run(context.Background())
	require.NoError(t, err)
	entry := findEntry(t, report, plan.KindKernelParam, "acpi.ec_no_wakeup=1")
	assert.Equal(t, StatusPendingReboot, entry.Status)
}

func TestRunKernelParamRemovedFromEntries(t *testing.T) {
	t.Parallel()

	root := testRoot(t, map[string]string{
		"proc/cmdline":                  "root=/dev/sda1 quiet\n",
		"boot/loader/entries/arch.conf": "options root=/dev/sda1 quiet\n",
	})
	c, store := newChecker(t, root, execx.NewFakeRunner())

	st := state.New()
	st.KernelParams = []state.KernelParamUndo{{Param: "acpi.ec_no_wakeup=1", Entries: []string{"arch.conf"}}}
	require.NoError(t, store.Save(st))

	report, err := c.Run(context.Background())
	require.NoError(t, err)
	entry := findEntry(t, report, plan.KindKernelParam, "acpi.ec_no_wakeup=1")
	assert.Equal(t, StatusDrifted, entry.Status)
}

func TestRunRestartedServiceIsDrifted(t *testing.T) {
	t.Parallel()

	// Unscripted is-active succeeds, meaning the service is running again.
	c, store := newChecker(t, testRoot(t, nil), execx.NewFakeRunner())

	st := state.New()
	st.Services = []state.ServiceUndo{{Name: "tlp.service", WasActive: true, WasEnabled: true}}
	require.NoError(t, store.Save(st))

	report, err := c.Run(context.Background())
	require.NoError(t, err)
	entry := findEntry(t, report, plan.KindService, "tlp.service")
	assert.Equal(t, StatusDrifted, entry.Status)
	assert.Equal(t, "active", entry.Actual)
}
