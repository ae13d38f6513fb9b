// Package drift compares the saved apply state against the live system,
// classifying every undo record without modifying anything.
package drift

import (
	"context"
	"strings"

	"github.com/powertrim/powertrim/internal/bootloader"
	"github.com/powertrim/powertrim/internal/fsroot"
	"github.com/powertrim/powertrim/internal/mutator"
	"github.com/powertrim/powertrim/internal/plan"
	"github.com/powertrim/powertrim/internal/state"
	pterrors "github.com/powertrim/powertrim/pkg/errors"
)

// Status classifies one applied change against what the system shows now.
type Status string

const (
	// StatusActive means the applied value is still in effect.
	StatusActive Status = "active"
	// StatusDrifted means something changed the value since apply.
	StatusDrifted Status = "drifted"
	// StatusUnknown means the live value could not be determined.
	StatusUnknown Status = "unknown"
	// StatusPendingReboot means the change is configured but takes effect
	// only at next boot.
	StatusPendingReboot Status = "pending_reboot"
)

// Entry is the classification of a single undo record.
type Entry struct {
	Kind     plan.Kind `json:"kind"`
	Target   string    `json:"target"`
	Status   Status    `json:"status"`
	Expected string    `json:"expected,omitempty"`
	Actual   string    `json:"actual,omitempty"`
}

// Report covers every record in the state file, one entry each.
type Report struct {
	Timestamp string  `json:"timestamp"`
	Entries   []Entry `json:"entries"`
}

// Count returns the number of entries with the given status.
func (r *Report) Count(status Status) int {
	n := 0
	for _, e := range r.Entries {
		if e.Status == status {
			n++
		}
	}
	return n
}

// AllActive reports whether every applied change is still in effect.
func (r *Report) AllActive() bool {
	return r.Count(StatusActive) == len(r.Entries)
}

// Checker performs read-only drift detection.
type Checker struct {
	Root    fsroot.Root
	Boot    bootloader.Bootloader
	Service mutator.Service
	Store   *state.Store
}

// Run loads the saved state and classifies every record. An absent state
// file is reported through pkg/errors.ErrStateAbsent.
func (c *Checker) Run(ctx context.Context) (*Report, error) {
	st, err := c.Store.Load()
	if err != nil {
		return nil, err
	}
	if st == nil {
		return nil, pterrors.ErrStateAbsent
	}

	report := &Report{Timestamp: st.Timestamp}

	for _, rec := range st.DirectWrites {
		report.Entries = append(report.Entries, c.checkDirectWrite(rec))
	}
	for _, rec := range st.Toggles {
		report.Entries = append(report.Entries, c.checkToggle(rec))
	}
	for _, rec := range st.KernelParams {
		report.Entries = append(report.Entries, c.checkKernelParam(rec))
	}
	for _, rec := range st.Services {
		report.Entries = append(report.Entries, c.checkService(ctx, rec))
	}
	for _, rec := range st.Units {
		report.Entries = append(report.Entries, c.checkUnit(rec))
	}

	return report, nil
}

func (c *Checker) checkDirectWrite(rec state.DirectWriteUndo) Entry {
	entry := Entry{Kind: plan.KindDirectWrite, Target: rec.Path, Expected: rec.Applied}

	actual, ok, err := c.Root.ReadOptional(rec.Path)
	if err != nil || !ok {
		entry.Status = StatusUnknown
		return entry
	}
	actual = mutator.SelectedValue(actual)
	entry.Actual = actual
	if actual == rec.Applied {
		entry.Status = StatusActive
	} else {
		entry.Status = StatusDrifted
	}
	return entry
}

func (c *Checker) checkToggle(rec state.ToggleUndo) Entry {
	entry := Entry{Kind: plan.KindToggle, Target: rec.Device, Expected: toggleWord(rec.Desired())}

	content, err := c.Root.Read(mutator.WakeupFile)
	if err != nil {
		entry.Status = StatusUnknown
		return entry
	}
	enabled, found := mutator.ParseWakeupState(content, rec.Device)
	if !found {
		entry.Status = StatusUnknown
		return entry
	}
	entry.Actual = toggleWord(enabled)
	if enabled == rec.Desired() {
		entry.Status = StatusActive
	} else {
		entry.Status = StatusDrifted
	}
	return entry
}

// checkKernelParam compares against the booted command line first; a
// parameter only present in the boot entries has not taken effect yet.
func (c *Checker) checkKernelParam(rec state.KernelParamUndo) Entry {
	entry := Entry{Kind: plan.KindKernelParam, Target: rec.Param, Expected: rec.Param}

	cmdline, err := c.Root.Read("proc/cmdline")
	if err != nil {
		entry.Status = StatusUnknown
		return entry
	}
	if hasCmdlineParam(cmdline, rec.Param) {
		entry.Status = StatusActive
		return entry
	}

	configured, err := c.Boot.HasParam(rec.Param, rec.Entries)
	if err != nil {
		entry.Status = StatusUnknown
		return entry
	}
	if configured {
		entry.Status = StatusPendingReboot
	} else {
		entry.Status = StatusDrifted
	}
	return entry
}

func (c *Checker) checkService(ctx context.Context, rec state.ServiceUndo) Entry {
	entry := Entry{Kind: plan.KindService, Target: rec.Name, Expected: "inactive"}

	active, err := c.Service.IsActive(ctx, rec.Name)
	if err != nil {
		entry.Status = StatusUnknown
		return entry
	}
	if active {
		entry.Actual = "active"
		entry.Status = StatusDrifted
	} else {
		entry.Actual = "inactive"
		entry.Status = StatusActive
	}
	return entry
}

func (c *Checker) checkUnit(rec state.UnitUndo) Entry {
	entry := Entry{Kind: plan.KindUnit, Target: rec.Name, Expected: "present"}

	if c.Root.Exists(rec.Path) {
		entry.Actual = "present"
		entry.Status = StatusActive
	} else {
		entry.Actual = "missing"
		entry.Status = StatusDrifted
	}
	return entry
}

func hasCmdlineParam(cmdline, param string) bool {
	for _, word := range strings.Fields(cmdline) {
		if word == param {
			return true
		}
	}
	return false
}

func toggleWord(enabled bool) string {
	if enabled {
		return "enabled"
	}
	return "disabled"
}
