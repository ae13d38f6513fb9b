package mutator

import (
	"context"

	"github.com/powertrim/powertrim/internal/bootloader"
	"github.com/powertrim/powertrim/internal/plan"
	"github.com/powertrim/powertrim/internal/state"
)

// KernelParam inserts boot parameters through the detected bootloader.
type KernelParam struct {
	Boot bootloader.Bootloader
}

// Apply inserts the parameter into every active boot entry. Already present
// everywhere is a no-op success with no undo record; the parameter was not
// ours to remove. When entries changed and the bootloader derives its
// config, the config is regenerated before the undo record is returned.
func (m KernelParam) Apply(ctx context.Context, change plan.KernelParam) (*state.KernelParamUndo, error) {
	entries, err := m.Boot.InsertParam(change.Param)
	if err != nil {
		// A partial insert reports the entries it already edited. Undo them;
		// an edit with no undo record could never be reverted.
		if len(entries) > 0 {
			_ = m.Boot.RemoveParam(change.Param, entries)
		}
		return nil, err
	}
	if len(entries) == 0 {
		return nil, nil
	}

	if m.Boot.RequiresRegen() {
		if err := m.Boot.Regenerate(ctx); err != nil {
			// Entries were edited; undo them rather than record a change
			// whose derived config was never rebuilt.
			_ = m.Boot.RemoveParam(change.Param, entries)
			return nil, err
		}
	}

	return &state.KernelParamUndo{Param: change.Param, Entries: entries}, nil
}

// Revert removes the exact token from every entry it was added to.
func (m KernelParam) Revert(ctx context.Context, rec state.KernelParamUndo) error {
	if err := m.Boot.RemoveParam(rec.Param, rec.Entries); err != nil {
		return err
	}
	if m.Boot.RequiresRegen() {
		return m.Boot.Regenerate(ctx)
	}
	return nil
}
