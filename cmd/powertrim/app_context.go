package main

import (
	"context"
	"errors"
	"io"
	"os"
	"time"

	"golang.org/x/term"

	"github.com/powertrim/powertrim/internal/audit"
	"github.com/powertrim/powertrim/internal/config"
	"github.com/powertrim/powertrim/internal/execx"
	"github.com/powertrim/powertrim/internal/fsroot"
	"github.com/powertrim/powertrim/internal/hardware"
	"github.com/powertrim/powertrim/internal/logger"
	"github.com/powertrim/powertrim/internal/report"
)

// appEnv holds the collaborators every command shares, built once per
// invocation from the root flags.
type appEnv struct {
	policy   *config.Policy
	root     fsroot.Root
	runner   execx.Runner
	log      *logger.Logger
	renderer *report.Renderer
}

func newAppEnv(flags *rootFlags, out io.Writer) (*appEnv, error) {
	policy := config.Default()
	if flags.configPath != "" {
		loaded, err := config.Load(flags.configPath)
		if err != nil {
			return nil, err
		}
		policy = loaded
	}

	level := "info"
	if flags.verbose {
		level = "debug"
	}
	log, err := logger.New(logger.Options{
		Level:         level,
		HumanReadable: term.IsTerminal(int(os.Stderr.Fd())),
	})
	if err != nil {
		return nil, err
	}

	return &appEnv{
		policy:   policy,
		root:     fsroot.New(flags.rootDir),
		runner:   execx.NewRunner(time.Duration(policy.ToolTimeout) * time.Second),
		log:      log,
		renderer: &report.Renderer{Out: out, JSON: flags.jsonOutput},
	}, nil
}

// loadSnapshot reads a saved snapshot or collects a fresh one.
func (env *appEnv) loadSnapshot(ctx context.Context, path string) (*hardware.Snapshot, error) {
	if path != "" {
		return hardware.LoadSnapshot(path)
	}
	collector := &hardware.Collector{Root: env.root, Runner: env.runner}
	return collector.Collect(ctx)
}

// auditSnapshot selects the matching profile and runs its checks.
func (env *appEnv) auditSnapshot(snap *hardware.Snapshot) (hardware.Profile, []audit.Finding, error) {
	profile := hardware.SelectProfile(snap)
	if profile == nil {
		return nil, nil, errors.New("no profile matches this machine (is it a laptop?)")
	}
	findings := profile.Audit(snap)
	env.log.WithFields(map[string]any{
		"profile":  profile.Name(),
		"findings": len(findings),
	}).Debug("audit complete")
	return profile, findings, nil
}
