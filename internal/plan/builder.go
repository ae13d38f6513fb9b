package plan

import (
	"fmt"
	"strings"

	"github.com/powertrim/powertrim/internal/audit"
	"github.com/powertrim/powertrim/internal/config"
)

// reducedKinds is the allow-list of kinds that survive reduced mode. Which
// kinds are "safe" under a degraded policy is a product decision: only plain
// value writes qualify, because they are volatile (reset on reboot) and
// restorable by writing the saved original back. Toggles touch stateful
// device interfaces and everything else persists across boots.
var reducedKinds = map[Kind]bool{
	KindDirectWrite: true,
}

const (
	reasonCategorySkipped = "category excluded by policy"
	reasonReducedMode     = "dropped by reduced mode"
	reasonNoTarget        = "finding carries no actionable target"
)

// Build maps findings to planned changes under the given policy. Pure: it
// never touches the filesystem or any process, and identical inputs always
// yield deep-equal plans. Each finding maps to zero or one change; whatever
// the policy declines goes into Skipped with a reason.
func Build(findings []audit.Finding, policy *config.Policy) *Plan {
	p := &Plan{}
	seenParams := map[string]bool{}

	for _, f := range findings {
		if policy.SkipsCategory(f.Category) {
			p.skip(f, reasonCategorySkipped)
			continue
		}

		kind, ok := kindFor(f)
		if !ok {
			p.skip(f, reasonNoTarget)
			continue
		}

		if policy.Mode == config.ModeReduced && !reducedKinds[kind] {
			p.skip(f, reasonReducedMode)
			continue
		}

		switch kind {
		case KindDirectWrite:
			p.DirectWrites = append(p.DirectWrites, DirectWrite{
				Path:        f.Path,
				Value:       f.Recommended,
				Description: f.Description,
				Privileged:  true,
			})
		case KindToggle:
			p.Toggles = append(p.Toggles, Toggle{
				Device:      f.Path,
				WantEnabled: false,
				Description: f.Description,
				Privileged:  true,
			})
		case KindKernelParam:
			if name := paramName(f.Recommended); !seenParams[name] {
				seenParams[name] = true
				p.KernelParams = append(p.KernelParams, KernelParam{
					Param:      f.Recommended,
					Privileged: true,
				})
			}
		case KindService:
			p.Services = append(p.Services, ServiceDisable{
				Name:       f.Path,
				Privileged: true,
			})
		}
	}

	if policy.Mode == config.ModeFull {
		for _, param := range policy.ExtraKernelParams {
			if name := paramName(param); !seenParams[name] {
				seenParams[name] = true
				p.KernelParams = append(p.KernelParams, KernelParam{Param: param, Privileged: true})
			}
		}

		if len(p.DirectWrites) > 0 {
			p.Unit = &UnitSpec{Path: policy.UnitPath, Privileged: true}
		}
	}

	return p
}

// kindFor decides which mutation kind acts on a finding, keyed by category.
func kindFor(f audit.Finding) (Kind, bool) {
	if f.Path == "" {
		return "", false
	}
	switch f.Category {
	case "wakeup":
		return KindToggle, true
	case "kernel":
		return KindKernelParam, true
	case "services":
		return KindService, true
	default:
		return KindDirectWrite, true
	}
}

func (p *Plan) skip(f audit.Finding, reason string) {
	p.Skipped = append(p.Skipped, SkippedFinding{Finding: f, Reason: reason})
}

func paramName(param string) string {
	if i := strings.IndexByte(param, '='); i >= 0 {
		return param[:i]
	}
	return param
}

// Describe returns a one-line human summary of the plan's shape.
func (p *Plan) Describe() string {
	return fmt.Sprintf("%d writes, %d toggles, %d kernel params, %d services, unit=%v, %d skipped",
		len(p.DirectWrites), len(p.Toggles), len(p.KernelParams), len(p.Services),
		p.Unit != nil, len(p.Skipped))
}
