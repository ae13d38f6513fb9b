package bootloader

import (
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/powertrim/powertrim/internal/fsroot"
)

const systemdBootEntriesDir = "boot/loader/entries"

// SystemdBoot edits the `options` line of every .conf entry under
// loader/entries. Edits are live at next boot; no regeneration step exists.
type SystemdBoot struct {
	root fsroot.Root
}

// NewSystemdBoot returns a SystemdBoot anchored at the given filesystem root.
func NewSystemdBoot(root fsroot.Root) *SystemdBoot {
	return &SystemdBoot{root: root}
}

func (b *SystemdBoot) Kind() string { return "systemd-boot" }

func (b *SystemdBoot) RequiresRegen() bool { return false }

func (b *SystemdBoot) Regenerate(context.Context) error { return nil }

// ListEntries returns the .conf file names under the entries directory.
func (b *SystemdBoot) ListEntries() ([]string, error) {
	names, err := b.root.ListDir(systemdBootEntriesDir)
	if err != nil {
		return nil, fmt.Errorf("reading boot entries: %w", err)
	}

	var entries []string
	for _, name := range names {
		if strings.HasSuffix(name, ".conf") {
			entries = append(entries, name)
		}
	}
	return entries, nil
}

func (b *SystemdBoot) InsertParam(param string) ([]string, error) {
	entries, err := b.ListEntries()
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("no boot entries found under %s", b.root.Path(systemdBootEntriesDir))
	}

	var modified []string
	for _, entry := range entries {
		changed, err := b.editEntry(entry, func(options string) (string, bool) {
			return addParam(options, param)
		})
		if err != nil {
			return modified, err
		}
		if changed {
			modified = append(modified, entry)
		}
	}
	return modified, nil
}

func (b *SystemdBoot) RemoveParam(param string, entries []string) error {
	for _, entry := range entries {
		if !b.root.Exists(path.Join(systemdBootEntriesDir, entry)) {
			continue
		}
		if _, err := b.editEntry(entry, func(options string) (string, bool) {
			return removeParam(options, param)
		}); err != nil {
			return err
		}
	}
	return nil
}

// HasParam reports whether the exact token survives in any of the named
// entries. Vanished entries do not count.
func (b *SystemdBoot) HasParam(param string, entries []string) (bool, error) {
	for _, entry := range entries {
		rel := path.Join(systemdBootEntriesDir, entry)
		if !b.root.Exists(rel) {
			continue
		}
		content, err := b.root.ReadRaw(rel)
		if err != nil {
			return false, fmt.Errorf("reading %s: %w", entry, err)
		}
		for _, line := range strings.Split(content, "\n") {
			if !strings.HasPrefix(line, "options") {
				continue
			}
			args := strings.TrimSpace(strings.TrimPrefix(line, "options"))
			if hasParam(args, param) {
				return true, nil
			}
		}
	}
	return false, nil
}

// editEntry rewrites an entry's options line through edit, preserving every
// other line and the trailing-newline choice byte for byte.
func (b *SystemdBoot) editEntry(entry string, edit func(options string) (string, bool)) (bool, error) {
	rel := path.Join(systemdBootEntriesDir, entry)
	original, err := b.root.ReadRaw(rel)
	if err != nil {
		return false, fmt.Errorf("reading %s: %w", entry, err)
	}

	lines := strings.Split(strings.TrimSuffix(original, "\n"), "\n")
	optionsFound := false
	changed := false

	for i, line := range lines {
		if !strings.HasPrefix(line, "options") {
			continue
		}
		optionsFound = true
		args := strings.TrimSpace(strings.TrimPrefix(line, "options"))
		edited, didChange := edit(args)
		if didChange {
			lines[i] = "options " + edited
			changed = true
		}
	}

	if !optionsFound {
		return false, fmt.Errorf("no options line in %s", entry)
	}
	if !changed {
		return false, nil
	}

	newContent := preserveNewline(strings.Join(lines, "\n"), original)
	if err := b.root.WriteFileAtomic(rel, []byte(newContent), 0o644); err != nil {
		return false, fmt.Errorf("writing %s: %w", entry, err)
	}
	return true, nil
}
