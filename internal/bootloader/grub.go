package bootloader

import (
	"context"
	"fmt"
	"strings"

	"github.com/powertrim/powertrim/internal/execx"
	"github.com/powertrim/powertrim/internal/fsroot"
	pterrors "github.com/powertrim/powertrim/pkg/errors"
)

const (
	grubDefaultsFile = "etc/default/grub"
	grubCmdlineVar   = "GRUB_CMDLINE_LINUX_DEFAULT"
	grubConfigFile   = "boot/grub/grub.cfg"
)

// Grub edits the kernel command line in /etc/default/grub. Edits only take
// effect after grub-mkconfig regenerates the derived config.
type Grub struct {
	root   fsroot.Root
	runner execx.Runner
}

// NewGrub returns a Grub bound to the given root and subprocess runner.
func NewGrub(root fsroot.Root, runner execx.Runner) *Grub {
	return &Grub{root: root, runner: runner}
}

func (b *Grub) Kind() string { return "grub" }

func (b *Grub) RequiresRegen() bool { return true }

// ListEntries returns the single defaults entry when the file exists. GRUB
// has no per-entry files to manage; the defaults variable covers them all.
func (b *Grub) ListEntries() ([]string, error) {
	if !b.root.Exists(grubDefaultsFile) {
		return nil, fmt.Errorf("%s not found", b.root.Path(grubDefaultsFile))
	}
	return []string{grubCmdlineVar}, nil
}

func (b *Grub) InsertParam(param string) ([]string, error) {
	changed, err := b.editDefaults(func(args string) (string, bool) {
		return addParam(args, param)
	})
	if err != nil {
		return nil, err
	}
	if !changed {
		return nil, nil
	}
	return []string{grubCmdlineVar}, nil
}

func (b *Grub) RemoveParam(param string, entries []string) error {
	if len(entries) == 0 {
		return nil
	}
	_, err := b.editDefaults(func(args string) (string, bool) {
		return removeParam(args, param)
	})
	return err
}

// HasParam reports whether the exact token is present in the defaults line.
func (b *Grub) HasParam(param string, entries []string) (bool, error) {
	if len(entries) == 0 {
		return false, nil
	}
	original, err := b.root.ReadRaw(grubDefaultsFile)
	if err != nil {
		return false, fmt.Errorf("reading grub defaults: %w", err)
	}
	for _, line := range strings.Split(original, "\n") {
		if !strings.HasPrefix(line, grubCmdlineVar+"=") {
			continue
		}
		value := strings.Trim(strings.TrimPrefix(line, grubCmdlineVar+"="), `"`)
		if hasParam(value, param) {
			return true, nil
		}
	}
	return false, nil
}

// Regenerate rebuilds grub.cfg from the edited defaults.
func (b *Grub) Regenerate(ctx context.Context) error {
	target := b.root.Path(grubConfigFile)
	result, err := b.runner.Run(ctx, "grub-mkconfig", "-o", target)
	if err != nil {
		return pterrors.NewExternalToolError("grub-mkconfig", result.ExitCode, result.Stderr, err)
	}
	if !result.Succeeded() {
		return pterrors.NewExternalToolError("grub-mkconfig", result.ExitCode, result.Stderr, nil)
	}
	return nil
}

// editDefaults rewrites the GRUB_CMDLINE_LINUX_DEFAULT assignment through
// edit, leaving every other line untouched.
func (b *Grub) editDefaults(edit func(args string) (string, bool)) (bool, error) {
	original, err := b.root.ReadRaw(grubDefaultsFile)
	if err != nil {
		return false, fmt.Errorf("reading grub defaults: %w", err)
	}

	lines := strings.Split(strings.TrimSuffix(original, "\n"), "\n")
	varFound := false
	changed := false

	for i, line := range lines {
		if !strings.HasPrefix(line, grubCmdlineVar+"=") {
			continue
		}
		varFound = true
		value := strings.TrimPrefix(line, grubCmdlineVar+"=")
		value = strings.Trim(value, `"`)
		edited, didChange := edit(value)
		if didChange {
			lines[i] = fmt.Sprintf(`%s="%s"`, grubCmdlineVar, edited)
			changed = true
		}
	}

	if !varFound {
		return false, fmt.Errorf("no %s line in %s", grubCmdlineVar, grubDefaultsFile)
	}
	if !changed {
		return false, nil
	}

	newContent := preserveNewline(strings.Join(lines, "\n"), original)
	if err := b.root.WriteFileAtomic(grubDefaultsFile, []byte(newContent), 0o644); err != nil {
		return false, fmt.Errorf("writing grub defaults: %w", err)
	}
	return true, nil
}
