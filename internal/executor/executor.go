// Package executor applies a plan through the mutators, persisting undo
// records as it goes. The state file only ever contains changes that
// actually succeeded, so a crash mid-apply leaves a revertible record of
// exactly the prefix that happened.
package executor

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/powertrim/powertrim/internal/logger"
	"github.com/powertrim/powertrim/internal/mutator"
	"github.com/powertrim/powertrim/internal/plan"
	"github.com/powertrim/powertrim/internal/state"
	pterrors "github.com/powertrim/powertrim/pkg/errors"
)

var errNoBootloader = errors.New("no usable bootloader detected, boot entries were not edited")

// Failure records one change that could not be applied.
type Failure struct {
	Kind   plan.Kind `json:"kind"`
	Target string    `json:"target"`
	Reason string    `json:"reason"`
}

// Summary is the outcome of one apply run.
type Summary struct {
	Applied  int       `json:"applied"`
	Skipped  int       `json:"skipped"`
	Failed   int       `json:"failed"`
	Failures []Failure `json:"failures,omitempty"`
}

// Succeeded reports whether every attempted change either applied or was
// legitimately skipped.
func (s Summary) Succeeded() bool {
	return s.Failed == 0
}

// Executor runs plans. All collaborators are injected so tests drive it
// against fake roots and runners.
type Executor struct {
	Direct  mutator.DirectWrite
	Toggle  mutator.Toggle
	Kernel  mutator.KernelParam
	Service mutator.Service
	Unit    mutator.Unit
	Store   *state.Store
	Log     *logger.Logger

	// Euid is swappable for tests; defaults to os.Geteuid.
	Euid func() int
}

func (e *Executor) euid() int {
	if e.Euid != nil {
		return e.Euid()
	}
	return os.Geteuid()
}

// Run applies the plan. When any change carries the privilege tag and the
// process is not root, it aborts before touching anything. Soft failures
// (missing targets, unreadable toggles) are counted as skips; real failures
// are recorded and the remaining changes still run. Undo records are saved
// after every successful change.
func (e *Executor) Run(ctx context.Context, p *plan.Plan) (Summary, error) {
	if p.HasPrivileged() && e.euid() != 0 {
		return Summary{}, pterrors.NewPrivilegeError("apply")
	}

	var summary Summary
	st := state.New()

	record := func(kind plan.Kind, target string, recorded bool, err error) error {
		if err == nil {
			if !recorded {
				// Already in the desired state; nothing written, nothing
				// to undo.
				summary.Skipped++
				return nil
			}
			summary.Applied++
			if saveErr := e.Store.Save(st); saveErr != nil {
				return fmt.Errorf("saving state after %s %s: %w", kind, target, saveErr)
			}
			return nil
		}
		if mutator.IsSkip(err) {
			summary.Skipped++
			e.Log.WithFields(map[string]any{"kind": string(kind), "target": target}).
				Warn("target unavailable, skipping")
			return nil
		}
		summary.Failed++
		summary.Failures = append(summary.Failures, Failure{
			Kind:   kind,
			Target: target,
			Reason: err.Error(),
		})
		e.Log.Error(err, "change failed")
		return nil
	}

	for _, change := range p.DirectWrites {
		rec, err := e.Direct.Apply(ctx, change)
		if rec != nil {
			st.DirectWrites = append(st.DirectWrites, *rec)
		}
		if err := record(plan.KindDirectWrite, change.Path, rec != nil, err); err != nil {
			return summary, err
		}
	}

	for _, change := range p.Toggles {
		rec, err := e.Toggle.Apply(ctx, change)
		if rec != nil {
			st.Toggles = append(st.Toggles, *rec)
		}
		if err := record(plan.KindToggle, change.Device, rec != nil, err); err != nil {
			return summary, err
		}
	}

	for _, change := range p.KernelParams {
		if e.Kernel.Boot == nil {
			// Detection failed upstream. Fail the boot-entry edits alone and
			// keep going; the other kinds need no bootloader.
			err := record(plan.KindKernelParam, change.Param, false, errNoBootloader)
			if err != nil {
				return summary, err
			}
			continue
		}
		rec, err := e.Kernel.Apply(ctx, change)
		if rec != nil {
			st.KernelParams = append(st.KernelParams, *rec)
		}
		if err := record(plan.KindKernelParam, change.Param, rec != nil, err); err != nil {
			return summary, err
		}
	}

	for _, change := range p.Services {
		rec, err := e.Service.Apply(ctx, change)
		if rec != nil {
			st.Services = append(st.Services, *rec)
		}
		if err := record(plan.KindService, change.Name, rec != nil, err); err != nil {
			return summary, err
		}
	}

	if p.Unit != nil {
		rec, err := e.Unit.Apply(ctx, *p.Unit, p.DirectWrites)
		if rec != nil {
			st.Units = append(st.Units, *rec)
		}
		if err := record(plan.KindUnit, p.Unit.Path, rec != nil, err); err != nil {
			return summary, err
		}
	}

	return summary, nil
}
