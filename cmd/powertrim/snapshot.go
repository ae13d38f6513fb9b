package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

type snapshotOptions struct {
	OutputPath string
}

func newSnapshotCmd(root *rootFlags) *cobra.Command {
	opts := snapshotOptions{}

	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Capture the machine's power-relevant state as JSON",
		Long: "Capture hardware identity, cpufreq, PCI, wakeup, and service state " +
			"into a JSON snapshot that audit and apply can consume offline.",
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := newAppEnv(root, cmd.OutOrStdout())
			if err != nil {
				return err
			}
			return runSnapshot(cmd, env, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.OutputPath, "output", "o", "", "Write the snapshot to a file instead of stdout")

	return cmd
}

func runSnapshot(cmd *cobra.Command, env *appEnv, opts snapshotOptions) error {
	snap, err := env.loadSnapshot(cmd.Context(), "")
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return err
	}

	if opts.OutputPath != "" {
		return os.WriteFile(opts.OutputPath, append(data, '\n'), 0o644)
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return nil
}
