package mutator

import (
	"context"

	"github.com/powertrim/powertrim/internal/execx"
	"github.com/powertrim/powertrim/internal/plan"
	"github.com/powertrim/powertrim/internal/state"
	pterrors "github.com/powertrim/powertrim/pkg/errors"
)

// Service stops and disables systemd services, recording their prior state
// so revert never starts something that was already stopped.
type Service struct {
	Runner execx.Runner
}

// Apply records whether the service was active and enabled, then stops and
// disables it. Some services re-enable themselves, so a failed disable
// falls back to masking.
func (m Service) Apply(ctx context.Context, change plan.ServiceDisable) (*state.ServiceUndo, error) {
	wasActive, err := m.query(ctx, "is-active", change.Name)
	if err != nil {
		return nil, err
	}
	wasEnabled, err := m.query(ctx, "is-enabled", change.Name)
	if err != nil {
		return nil, err
	}

	if !wasActive && !wasEnabled {
		return nil, nil
	}

	if wasActive {
		// Best effort; disable below is what must stick.
		_, _ = m.Runner.Run(ctx, "systemctl", "stop", change.Name)
	}

	result, err := m.Runner.Run(ctx, "systemctl", "disable", change.Name)
	if err != nil {
		return nil, pterrors.NewExternalToolError("systemctl", result.ExitCode, result.Stderr, err)
	}
	if !result.Succeeded() {
		masked, maskErr := m.Runner.Run(ctx, "systemctl", "mask", change.Name)
		if maskErr != nil || !masked.Succeeded() {
			return nil, pterrors.NewExternalToolError("systemctl", result.ExitCode, result.Stderr, nil)
		}
	}

	return &state.ServiceUndo{Name: change.Name, WasActive: wasActive, WasEnabled: wasEnabled}, nil
}

// Revert restores the recorded pre-apply state: unmask, re-enable only if
// it was enabled, start only if it was running.
func (m Service) Revert(ctx context.Context, rec state.ServiceUndo) error {
	// Undo a possible mask fallback first; masked units cannot be enabled.
	_, _ = m.Runner.Run(ctx, "systemctl", "unmask", rec.Name)

	if rec.WasEnabled {
		result, err := m.Runner.Run(ctx, "systemctl", "enable", rec.Name)
		if err != nil {
			return pterrors.NewExternalToolError("systemctl", result.ExitCode, result.Stderr, err)
		}
		if !result.Succeeded() {
			return pterrors.NewExternalToolError("systemctl", result.ExitCode, result.Stderr, nil)
		}
	}

	if rec.WasActive {
		result, err := m.Runner.Run(ctx, "systemctl", "start", rec.Name)
		if err != nil {
			return pterrors.NewExternalToolError("systemctl", result.ExitCode, result.Stderr, err)
		}
		if !result.Succeeded() {
			return pterrors.NewExternalToolError("systemctl", result.ExitCode, result.Stderr, nil)
		}
	}

	return nil
}

// IsActive reports whether the service is currently running.
func (m Service) IsActive(ctx context.Context, name string) (bool, error) {
	return m.query(ctx, "is-active", name)
}

// IsEnabled reports whether the service is enabled.
func (m Service) IsEnabled(ctx context.Context, name string) (bool, error) {
	return m.query(ctx, "is-enabled", name)
}

func (m Service) query(ctx context.Context, verb, name string) (bool, error) {
	result, err := m.Runner.Run(ctx, "systemctl", verb, "--quiet", name)
	if err != nil {
		return false, pterrors.NewExternalToolError("systemctl", result.ExitCode, result.Stderr, err)
	}
	return result.Succeeded(), nil
}
