// Package mutator implements the capability-specific apply/revert pairs.
// Each mutator reads current state, performs one kind of change, and
// produces an undo record sufficient to reverse it. Apply returning
// (nil, nil) means the target was already in the desired state and nothing
// was written or recorded.
package mutator

import (
	"errors"

	pterrors "github.com/powertrim/powertrim/pkg/errors"
)

// IsSkip classifies soft conditions under which a change is skipped rather
// than failed: a missing target, or a toggle whose state cannot be read.
func IsSkip(err error) bool {
	var missing *pterrors.TargetMissingError
	var toggleRead *pterrors.ToggleReadError
	return errors.As(err, &missing) || errors.As(err, &toggleRead)
}
