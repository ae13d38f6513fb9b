package main

import (
	"github.com/spf13/cobra"
)

type rootFlags struct {
	verbose    bool
	jsonOutput bool
	configPath string
	rootDir    string
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}

	cmd := &cobra.Command{
		Use:           "powertrim",
		Short:         "powertrim audits and applies laptop power configuration",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cmd.PersistentFlags().BoolVarP(&flags.verbose, "verbose", "v", false, "Enable verbose logging")
	cmd.PersistentFlags().BoolVar(&flags.jsonOutput, "json", false, "Emit machine-readable JSON output")
	cmd.PersistentFlags().StringVarP(&flags.configPath, "config", "c", "", "Path to policy file")
	cmd.PersistentFlags().StringVar(&flags.rootDir, "root", "/", "Filesystem root to operate on")
	cmd.PersistentFlags().MarkHidden("root") //nolint:errcheck

	cmd.AddCommand(newAuditCmd(flags))
	cmd.AddCommand(newApplyCmd(flags))
	cmd.AddCommand(newRevertCmd(flags))
	cmd.AddCommand(newStatusCmd(flags))
	cmd.AddCommand(newSnapshotCmd(flags))
	cmd.AddCommand(newVersionCmd())

	return cmd
}
