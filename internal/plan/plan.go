package plan

import "github.com/powertrim/powertrim/internal/audit"

// Kind identifies a mutation kind. The executor applies kinds in the order
// they are declared here; revert walks them backwards.
type Kind string

const (
	KindDirectWrite Kind = "direct_write"
	KindToggle      Kind = "toggle"
	KindKernelParam Kind = "kernel_param"
	KindService     Kind = "service"
	KindUnit        Kind = "unit"
)

// DirectWrite is a planned absolute-value write to a sysfs attribute.
type DirectWrite struct {
	Path        string `json:"path"`
	Value       string `json:"value"`
	Description string `json:"description"`
	Privileged  bool   `json:"privileged"`
}

// Toggle is a planned state change on a toggle-only device.
type Toggle struct {
	Device      string `json:"device"`
	WantEnabled bool   `json:"want_enabled"`
	Description string `json:"description"`
	Privileged  bool   `json:"privileged"`
}

// KernelParam is a planned boot-parameter insertion.
type KernelParam struct {
	Param      string `json:"param"`
	Privileged bool   `json:"privileged"`
}

// ServiceDisable is a planned service stop-and-disable.
type ServiceDisable struct {
	Name       string `json:"name"`
	Privileged bool   `json:"privileged"`
}

// UnitSpec describes the boot-persistence unit to generate. Its content is
// derived from the plan's direct writes, so identical plans always produce
// byte-identical units.
type UnitSpec struct {
	Path       string `json:"path"`
	Privileged bool   `json:"privileged"`
}

// SkippedFinding is a finding the policy declined to act on, kept for
// reporting.
type SkippedFinding struct {
	Finding audit.Finding `json:"finding"`
	Reason  string        `json:"reason"`
}

// Plan is a side-effect-free description of the changes to make, partitioned
// by mutation kind. Safe to build, print, and discard for dry runs.
type Plan struct {
	DirectWrites []DirectWrite    `json:"direct_writes,omitempty"`
	Toggles      []Toggle         `json:"toggles,omitempty"`
	KernelParams []KernelParam    `json:"kernel_params,omitempty"`
	Services     []ServiceDisable `json:"services,omitempty"`
	Unit         *UnitSpec        `json:"unit,omitempty"`
	Skipped      []SkippedFinding `json:"skipped,omitempty"`
}

// ChangeCount returns the number of planned changes, excluding skips.
func (p *Plan) ChangeCount() int {
	n := len(p.DirectWrites) + len(p.Toggles) + len(p.KernelParams) + len(p.Services)
	if p.Unit != nil {
		n++
	}
	return n
}

// Empty reports whether the plan contains no changes.
func (p *Plan) Empty() bool {
	return p.ChangeCount() == 0
}

// HasPrivileged reports whether any planned change carries the privilege
// tag. The executor gates on this before touching anything.
func (p *Plan) HasPrivileged() bool {
	for _, w := range p.DirectWrites {
		if w.Privileged {
			return true
		}
	}
	for _, tg := range p.Toggles {
		if tg.Privileged {
			return true
		}
	}
	for _, kp := range p.KernelParams {
		if kp.Privileged {
			return true
		}
	}
	for _, svc := range p.Services {
		if svc.Privileged {
			return true
		}
	}
	return p.Unit != nil && p.Unit.Privileged
}
