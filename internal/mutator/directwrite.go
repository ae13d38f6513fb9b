package mutator

import (
	"context"
	"strings"

	"github.com/powertrim/powertrim/internal/fsroot"
	"github.com/powertrim/powertrim/internal/plan"
	"github.com/powertrim/powertrim/internal/state"
	pterrors "github.com/powertrim/powertrim/pkg/errors"
)

// DirectWrite sets absolute values on plain sysfs attributes. The original
// value is captured before writing so revert can restore it exactly.
type DirectWrite struct {
	Root fsroot.Root
}

// Apply reads the current value, writes the new one, and returns the undo
// record. A missing target is a soft skip: hardware variance makes absent
// attributes routine, not exceptional.
func (m DirectWrite) Apply(_ context.Context, change plan.DirectWrite) (*state.DirectWriteUndo, error) {
	original, ok, err := m.Root.ReadOptional(change.Path)
	if err != nil {
		return nil, pterrors.NewWriteError(change.Path, change.Value, err)
	}
	if !ok {
		return nil, pterrors.NewTargetMissingError(m.Root.Path(change.Path))
	}
	original = SelectedValue(original)
	if original == change.Value {
		return nil, nil
	}

	if err := m.Root.Write(change.Path, change.Value); err != nil {
		return nil, pterrors.NewWriteError(m.Root.Path(change.Path), change.Value, err)
	}

	return &state.DirectWriteUndo{
		Path:     change.Path,
		Original: original,
		Applied:  change.Value,
	}, nil
}

// SelectedValue extracts the active choice from choice-list attributes that
// read back as "default performance [powersave] powersupersave". Plain
// single-value attributes pass through unchanged.
func SelectedValue(raw string) string {
	for _, word := range strings.Fields(raw) {
		if strings.HasPrefix(word, "[") && strings.HasSuffix(word, "]") {
			return strings.Trim(word, "[]")
		}
	}
	return raw
}

// Revert writes the saved original value back.
func (m DirectWrite) Revert(_ context.Context, rec state.DirectWriteUndo) error {
	if !m.Root.Exists(rec.Path) {
		return pterrors.NewTargetMissingError(m.Root.Path(rec.Path))
	}
	if err := m.Root.Write(rec.Path, rec.Original); err != nil {
		return pterrors.NewWriteError(m.Root.Path(rec.Path), rec.Original, err)
	}
	return nil
}
