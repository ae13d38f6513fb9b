package mutator

import (
	"context"
	"strings"

	"github.com/powertrim/powertrim/internal/fsroot"
	"github.com/powertrim/powertrim/internal/plan"
	"github.com/powertrim/powertrim/internal/state"
	pterrors "github.com/powertrim/powertrim/pkg/errors"
)

// WakeupFile is the toggle-only ACPI wakeup interface. Writing a device
// name flips that device's state; there is no way to write an absolute
// value, which is why every operation here reads before writing.
const WakeupFile = "proc/acpi/wakeup"

// Toggle flips ACPI wakeup sources through the flip-on-write interface.
type Toggle struct {
	Root fsroot.Root
}

// ParseWakeupState extracts a device's state from /proc/acpi/wakeup
// content. Lines look like:
//
//	XHC1      S0    *enabled   pci:0000:c4:00.3
func ParseWakeupState(content, device string) (enabled bool, found bool) {
	for _, line := range strings.Split(content, "\n") {
		fields := strings.Fields(line)
		if len(fields) == 0 || fields[0] != device {
			continue
		}
		for _, f := range fields[1:] {
			if strings.Contains(f, "*enabled") {
				return true, true
			}
			if strings.Contains(f, "*disabled") {
				return false, true
			}
		}
	}
	return false, false
}

// ReadState returns the live state of one wakeup device.
func (m Toggle) ReadState(device string) (bool, error) {
	content, err := m.Root.Read(WakeupFile)
	if err != nil {
		return false, pterrors.NewToggleReadError(device, err)
	}
	enabled, found := ParseWakeupState(content, device)
	if !found {
		return false, pterrors.NewTargetMissingError(device)
	}
	return enabled, nil
}

// Apply flips the device to the wanted state. Already in the wanted state
// means zero writes and no undo record. A blind write would corrupt device
// state, so an unreadable current state skips the change entirely.
func (m Toggle) Apply(_ context.Context, change plan.Toggle) (*state.ToggleUndo, error) {
	current, err := m.ReadState(change.Device)
	if err != nil {
		return nil, err
	}
	if current == change.WantEnabled {
		return nil, nil
	}

	if err := m.flip(change.Device); err != nil {
		return nil, err
	}
	return &state.ToggleUndo{Device: change.Device, WasEnabled: current}, nil
}

// Revert re-reads live state and flips again only when it still differs
// from the pre-toggle state. The device may have been flipped back by
// firmware or an operator since apply.
func (m Toggle) Revert(_ context.Context, rec state.ToggleUndo) error {
	current, err := m.ReadState(rec.Device)
	if err != nil {
		return err
	}
	if current == rec.WasEnabled {
		return nil
	}
	return m.flip(rec.Device)
}

func (m Toggle) flip(device string) error {
	if err := m.Root.Write(WakeupFile, device); err != nil {
		return pterrors.NewWriteError(m.Root.Path(WakeupFile), device, err)
	}
	return nil
}
