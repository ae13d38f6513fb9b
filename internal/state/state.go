package state

import "time"

// DirectWriteUndo records the original value of a plain sysfs write.
type DirectWriteUndo struct {
	Path     string `json:"path"`
	Original string `json:"original_value"`
	Applied  string `json:"applied_value"`
}

// ToggleUndo records the pre-toggle direction of a toggle-only device.
// The post-apply state is the opposite of WasEnabled.
type ToggleUndo struct {
	Device     string `json:"device"`
	WasEnabled bool   `json:"was_enabled"`
}

// Desired returns the state the toggle was flipped to.
func (t ToggleUndo) Desired() bool {
	return !t.WasEnabled
}

// KernelParamUndo records a kernel parameter and the boot entries it was
// inserted into, so revert removes exactly that token from exactly those.
type KernelParamUndo struct {
	Param   string   `json:"param"`
	Entries []string `json:"entries"`
}

// ServiceUndo records a disabled service and whether it was running and
// enabled before apply. Revert never starts a service that was stopped.
type ServiceUndo struct {
	Name       string `json:"name"`
	WasActive  bool   `json:"was_active"`
	WasEnabled bool   `json:"was_enabled"`
}

// UnitUndo records a generated unit file for deletion on revert.
type UnitUndo struct {
	Path string `json:"path"`
	Name string `json:"name"`
}

// ApplyState is the durable record of everything the last apply actually
// changed, grouped by kind in apply order. It is the sole input to revert
// and status. Invariant: it only ever contains successfully executed
// changes, never planned or failed ones.
type ApplyState struct {
	Timestamp    string            `json:"timestamp"`
	DirectWrites []DirectWriteUndo `json:"direct_writes,omitempty"`
	Toggles      []ToggleUndo      `json:"toggles,omitempty"`
	KernelParams []KernelParamUndo `json:"kernel_params,omitempty"`
	Services     []ServiceUndo     `json:"services,omitempty"`
	Units        []UnitUndo        `json:"units,omitempty"`
}

// New returns an empty ApplyState stamped with the current time.
func New() *ApplyState {
	return &ApplyState{Timestamp: time.Now().UTC().Format(time.RFC3339)}
}

// RecordCount returns the total number of undo records.
func (s *ApplyState) RecordCount() int {
	return len(s.DirectWrites) + len(s.Toggles) + len(s.KernelParams) +
		len(s.Services) + len(s.Units)
}

// Empty reports whether no undo records remain.
func (s *ApplyState) Empty() bool {
	return s.RecordCount() == 0
}
