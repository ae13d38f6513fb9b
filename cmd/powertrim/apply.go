package main

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/powertrim/powertrim/internal/bootloader"
	"github.com/powertrim/powertrim/internal/executor"
	"github.com/powertrim/powertrim/internal/mutator"
	"github.com/powertrim/powertrim/internal/plan"
	"github.com/powertrim/powertrim/internal/state"
)

var errChangesFailed = errors.New("some changes failed to apply")

type applyOptions struct {
	DryRun       bool
	SnapshotPath string
}

func newApplyCmd(root *rootFlags) *cobra.Command {
	opts := applyOptions{}

	cmd := &cobra.Command{
		Use:   "apply",
		Short: "Apply the recommended power configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := newAppEnv(root, cmd.OutOrStdout())
			if err != nil {
				return err
			}
			return runApply(cmd, env, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.DryRun, "dry-run", false, "Show the plan without changing anything")
	cmd.Flags().StringVar(&opts.SnapshotPath, "snapshot", "", "Plan from a saved snapshot instead of the live system")

	return cmd
}

func runApply(cmd *cobra.Command, env *appEnv, opts applyOptions) error {
	ctx := cmd.Context()

	snap, err := env.loadSnapshot(ctx, opts.SnapshotPath)
	if err != nil {
		return err
	}
	_, findings, err := env.auditSnapshot(snap)
	if err != nil {
		return err
	}

	p := plan.Build(findings, env.policy)

	if opts.DryRun {
		return env.renderer.Plan(p)
	}
	if p.Empty() {
		return env.renderer.Plan(p)
	}

	var boot bootloader.Bootloader
	if len(p.KernelParams) > 0 {
		boot, err = bootloader.Detect(ctx, env.root, env.runner, env.policy.Bootloader)
		if err != nil {
			// Only the kernel-param changes depend on a bootloader. The
			// executor fails those individually and applies everything else.
			env.log.Error(err, "bootloader detection failed, kernel parameters cannot be applied")
			boot = nil
		} else {
			env.log.WithFields(map[string]any{"bootloader": boot.Kind()}).Debug("bootloader detected")
		}
	}

	exec := &executor.Executor{
		Direct:  mutator.DirectWrite{Root: env.root},
		Toggle:  mutator.Toggle{Root: env.root},
		Kernel:  mutator.KernelParam{Boot: boot},
		Service: mutator.Service{Runner: env.runner},
		Unit:    mutator.Unit{Root: env.root, Runner: env.runner},
		Store:   state.NewStore(env.policy.StateFile),
		Log:     env.log,
	}

	summary, err := exec.Run(ctx, p)
	if err != nil {
		return err
	}
	if err := env.renderer.Apply(summary); err != nil {
		return err
	}
	if !summary.Succeeded() {
		return errChangesFailed
	}
	return nil
}
