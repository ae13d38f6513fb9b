package mutator

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/powertrim/powertrim/internal/execx"
	"github.com/powertrim/powertrim/internal/fsroot"
	"github.com/powertrim/powertrim/internal/plan"
	"github.com/powertrim/powertrim/internal/state"
	pterrors "github.com/powertrim/powertrim/pkg/errors"
)

// Unit generates the boot-persistence oneshot unit that replays applied
// sysfs values at startup, and enables it.
type Unit struct {
	Root   fsroot.Root
	Runner execx.Runner
}

// UnitContent renders the unit file for the given writes. Deterministic by
// construction: writes are sorted by path so identical plans produce
// byte-identical units regardless of finding order.
func UnitContent(writes []plan.DirectWrite) string {
	sorted := append([]plan.DirectWrite(nil), writes...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Path < sorted[j].Path })

	var b strings.Builder
	b.WriteString("[Unit]\n")
	b.WriteString("Description=Reapply powertrim power settings at boot\n")
	b.WriteString("After=multi-user.target\n")
	b.WriteString("\n[Service]\n")
	b.WriteString("Type=oneshot\n")
	for _, w := range sorted {
		path := w.Path
		if !strings.HasPrefix(path, "/") {
			path = "/" + path
		}
		fmt.Fprintf(&b, "ExecStart=/bin/sh -c 'echo %s > %s'\n", w.Value, path)
	}
	b.WriteString("\n[Install]\n")
	b.WriteString("WantedBy=multi-user.target\n")
	return b.String()
}

// Apply writes the unit file and enables it.
func (m Unit) Apply(ctx context.Context, spec plan.UnitSpec, writes []plan.DirectWrite) (*state.UnitUndo, error) {
	content := UnitContent(writes)
	if err := m.Root.WriteFileAtomic(spec.Path, []byte(content), 0o644); err != nil {
		return nil, pterrors.NewWriteError(m.Root.Path(spec.Path), "unit content", err)
	}

	name := filepath.Base(spec.Path)
	for _, args := range [][]string{
		{"daemon-reload"},
		{"enable", name},
	} {
		result, err := m.Runner.Run(ctx, "systemctl", args...)
		if err != nil {
			m.discard(spec.Path)
			return nil, pterrors.NewExternalToolError("systemctl", result.ExitCode, result.Stderr, err)
		}
		if !result.Succeeded() {
			m.discard(spec.Path)
			return nil, pterrors.NewExternalToolError("systemctl", result.ExitCode, result.Stderr, nil)
		}
	}

	return &state.UnitUndo{Path: spec.Path, Name: name}, nil
}

// discard deletes the just-written unit file after a failed enablement. A
// failed change leaves no undo record, so it must leave no file either.
func (m Unit) discard(path string) {
	_ = m.Root.Remove(path)
}

// Revert disables the unit and deletes its file. Disable failures do not
// block the delete; a unit file that no longer exists cannot run.
func (m Unit) Revert(ctx context.Context, rec state.UnitUndo) error {
	_, _ = m.Runner.Run(ctx, "systemctl", "disable", rec.Name)

	if m.Root.Exists(rec.Path) {
		if err := m.Root.Remove(rec.Path); err != nil {
			return pterrors.NewWriteError(m.Root.Path(rec.Path), "", err)
		}
	}

	result, err := m.Runner.Run(ctx, "systemctl", "daemon-reload")
	if err != nil {
		return pterrors.NewExternalToolError("systemctl", result.ExitCode, result.Stderr, err)
	}
	return nil
}
