package main

import (
	"github.com/spf13/cobra"

	"github.com/powertrim/powertrim/internal/audit"
	"github.com/powertrim/powertrim/internal/report"
)

type auditOptions struct {
	SnapshotPath string
}

func newAuditCmd(root *rootFlags) *cobra.Command {
	opts := auditOptions{}

	cmd := &cobra.Command{
		Use:   "audit",
		Short: "Score the current power configuration against the matching profile",
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := newAppEnv(root, cmd.OutOrStdout())
			if err != nil {
				return err
			}
			return runAudit(cmd, env, opts)
		},
	}

	cmd.Flags().StringVar(&opts.SnapshotPath, "snapshot", "", "Audit a saved snapshot instead of the live system")

	return cmd
}

func runAudit(cmd *cobra.Command, env *appEnv, opts auditOptions) error {
	snap, err := env.loadSnapshot(cmd.Context(), opts.SnapshotPath)
	if err != nil {
		return err
	}

	profile, findings, err := env.auditSnapshot(snap)
	if err != nil {
		return err
	}

	return env.renderer.Audit(report.AuditReport{
		Profile:  profile.Name(),
		Score:    audit.Score(findings),
		Findings: findings,
	})
}
