// Package revert undoes a previous apply from its saved state, walking the
// mutation kinds in reverse apply order. Revert is convergent: records that
// fail stay in the state file, so running revert again retries exactly the
// outstanding remainder.
package revert

import (
	"context"
	"fmt"

	"github.com/powertrim/powertrim/internal/logger"
	"github.com/powertrim/powertrim/internal/mutator"
	"github.com/powertrim/powertrim/internal/plan"
	"github.com/powertrim/powertrim/internal/state"
	pterrors "github.com/powertrim/powertrim/pkg/errors"
)

// Failure records one undo that could not be performed.
type Failure struct {
	Kind   plan.Kind `json:"kind"`
	Target string    `json:"target"`
	Reason string    `json:"reason"`
}

// Summary is the outcome of one revert run.
type Summary struct {
	Reverted int       `json:"reverted"`
	Skipped  int       `json:"skipped"`
	Failed   int       `json:"failed"`
	Failures []Failure `json:"failures,omitempty"`
}

// Succeeded reports whether every record was either reverted or skipped
// because its target no longer exists.
func (s Summary) Succeeded() bool {
	return s.Failed == 0
}

// Reverter undoes applied changes.
type Reverter struct {
	Direct  mutator.DirectWrite
	Toggle  mutator.Toggle
	Kernel  mutator.KernelParam
	Service mutator.Service
	Unit    mutator.Unit
	Store   *state.Store
	Log     *logger.Logger
}

// Run loads the saved state and reverses it. An absent state file is
// reported through pkg/errors.ErrStateAbsent; there is nothing to undo.
// On full success the state file is deleted; on partial success it is
// rewritten with only the records that remain outstanding.
func (r *Reverter) Run(ctx context.Context) (Summary, error) {
	st, err := r.Store.Load()
	if err != nil {
		return Summary{}, err
	}
	if st == nil {
		return Summary{}, pterrors.ErrStateAbsent
	}

	var summary Summary
	remaining := &state.ApplyState{Timestamp: st.Timestamp}

	handle := func(kind plan.Kind, target string, err error, keep func()) {
		if err == nil {
			summary.Reverted++
			return
		}
		if mutator.IsSkip(err) {
			// Target vanished since apply; there is nothing left to
			// restore and nothing to retry.
			summary.Skipped++
			r.Log.WithFields(map[string]any{"kind": string(kind), "target": target}).
				Warn("target gone, dropping record")
			return
		}
		summary.Failed++
		summary.Failures = append(summary.Failures, Failure{
			Kind:   kind,
			Target: target,
			Reason: err.Error(),
		})
		r.Log.Error(err, "revert failed")
		keep()
	}

	// Reverse of apply order: the unit goes first so a reboot mid-revert
	// cannot replay writes that were just undone.
	for _, rec := range st.Units {
		rec := rec
		handle(plan.KindUnit, rec.Name, r.Unit.Revert(ctx, rec), func() {
			remaining.Units = append(remaining.Units, rec)
		})
	}
	for _, rec := range st.Services {
		rec := rec
		handle(plan.KindService, rec.Name, r.Service.Revert(ctx, rec), func() {
			remaining.Services = append(remaining.Services, rec)
		})
	}
	for _, rec := range st.KernelParams {
		rec := rec
		handle(plan.KindKernelParam, rec.Param, r.Kernel.Revert(ctx, rec), func() {
			remaining.KernelParams = append(remaining.KernelParams, rec)
		})
	}
	for _, rec := range st.Toggles {
		rec := rec
		handle(plan.KindToggle, rec.Device, r.Toggle.Revert(ctx, rec), func() {
			remaining.Toggles = append(remaining.Toggles, rec)
		})
	}
	for _, rec := range st.DirectWrites {
		rec := rec
		handle(plan.KindDirectWrite, rec.Path, r.Direct.Revert(ctx, rec), func() {
			remaining.DirectWrites = append(remaining.DirectWrites, rec)
		})
	}

	if remaining.Empty() {
		if err := r.Store.Delete(); err != nil {
			return summary, fmt.Errorf("removing state file: %w", err)
		}
		return summary, nil
	}
	if err := r.Store.Save(remaining); err != nil {
		return summary, fmt.Errorf("saving outstanding records: %w", err)
	}
	return summary, nil
}
