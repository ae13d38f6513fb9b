package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/powertrim/powertrim/internal/bootloader"
	"github.com/powertrim/powertrim/internal/drift"
	"github.com/powertrim/powertrim/internal/mutator"
	"github.com/powertrim/powertrim/internal/state"
	pterrors "github.com/powertrim/powertrim/pkg/errors"
)

func newStatusCmd(root *rootFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Check whether applied changes are still in effect",
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := newAppEnv(root, cmd.OutOrStdout())
			if err != nil {
				return err
			}
			return runStatus(cmd, env)
		},
	}

	return cmd
}

func runStatus(cmd *cobra.Command, env *appEnv) error {
	ctx := cmd.Context()

	store := state.NewStore(env.policy.StateFile)

	st, err := store.Load()
	if err != nil {
		return err
	}
	if st == nil {
		fmt.Fprintln(cmd.OutOrStdout(), "No applied state found. Run apply first.")
		return nil
	}

	var boot bootloader.Bootloader
	if len(st.KernelParams) > 0 {
		boot, err = bootloader.Detect(ctx, env.root, env.runner, env.policy.Bootloader)
		if err != nil {
			return err
		}
	}

	checker := &drift.Checker{
		Root:    env.root,
		Boot:    boot,
		Service: mutator.Service{Runner: env.runner},
		Store:   store,
	}

	report, err := checker.Run(ctx)
	if err != nil {
		if errors.Is(err, pterrors.ErrStateAbsent) {
			fmt.Fprintln(cmd.OutOrStdout(), "No applied state found. Run apply first.")
			return nil
		}
		return err
	}
	return env.renderer.Drift(report)
}
