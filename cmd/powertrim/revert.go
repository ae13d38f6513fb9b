package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/powertrim/powertrim/internal/bootloader"
	"github.com/powertrim/powertrim/internal/mutator"
	"github.com/powertrim/powertrim/internal/revert"
	"github.com/powertrim/powertrim/internal/state"
	pterrors "github.com/powertrim/powertrim/pkg/errors"
)

var errRevertIncomplete = errors.New("some changes could not be reverted; run revert again after fixing the cause")

func newRevertCmd(root *rootFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "revert",
		Short: "Undo every change recorded by the last apply",
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := newAppEnv(root, cmd.OutOrStdout())
			if err != nil {
				return err
			}
			return runRevert(cmd, env)
		},
	}

	return cmd
}

func runRevert(cmd *cobra.Command, env *appEnv) error {
	ctx := cmd.Context()

	store := state.NewStore(env.policy.StateFile)

	st, err := store.Load()
	if err != nil {
		return err
	}
	if st == nil {
		fmt.Fprintln(cmd.OutOrStdout(), "Nothing to revert: no applied state found.")
		return nil
	}

	var boot bootloader.Bootloader
	if len(st.KernelParams) > 0 {
		boot, err = bootloader.Detect(ctx, env.root, env.runner, env.policy.Bootloader)
		if err != nil {
			return err
		}
	}

	r := &revert.Reverter{
		Direct:  mutator.DirectWrite{Root: env.root},
		Toggle:  mutator.Toggle{Root: env.root},
		Kernel:  mutator.KernelParam{Boot: boot},
		Service: mutator.Service{Runner: env.runner},
		Unit:    mutator.Unit{Root: env.root, Runner: env.runner},
		Store:   store,
		Log:     env.log,
	}

	summary, err := r.Run(ctx)
	if err != nil {
		if errors.Is(err, pterrors.ErrStateAbsent) {
			fmt.Fprintln(cmd.OutOrStdout(), "Nothing to revert: no applied state found.")
			return nil
		}
		return err
	}
	if err := env.renderer.Revert(summary); err != nil {
		return err
	}
	if !summary.Succeeded() {
		return errRevertIncomplete
	}
	return nil
}
