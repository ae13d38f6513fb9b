// Package report renders audit results, plans, and run summaries for the
// terminal, with a JSON mode for scripting.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/powertrim/powertrim/internal/audit"
	"github.com/powertrim/powertrim/internal/drift"
	"github.com/powertrim/powertrim/internal/executor"
	"github.com/powertrim/powertrim/internal/plan"
	"github.com/powertrim/powertrim/internal/revert"
)

// Renderer writes reports to a single output stream.
type Renderer struct {
	Out io.Writer
	// JSON switches every report to machine-readable output.
	JSON bool
}

func (r *Renderer) printf(format string, args ...any) {
	fmt.Fprintf(r.Out, format, args...)
}

func (r *Renderer) encode(v any) error {
	enc := json.NewEncoder(r.Out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// AuditReport bundles everything the audit command produces.
type AuditReport struct {
	Profile  string          `json:"profile"`
	Score    int             `json:"score"`
	Findings []audit.Finding `json:"findings"`
}

// Audit renders the findings and score for one profile run.
func (r *Renderer) Audit(rep AuditReport) error {
	if r.JSON {
		return r.encode(rep)
	}

	r.printf("%s\n", titleStyle.Render(fmt.Sprintf("Power audit (%s)", rep.Profile)))
	r.printf("Score: %s\n\n", scoreStyle(rep.Score).Render(fmt.Sprintf("%d/100", rep.Score)))

	if len(rep.Findings) == 0 {
		r.printf("%s\n", goodStyle.Render("No findings. Configuration looks good."))
		return nil
	}

	for _, f := range rep.Findings {
		r.printf("%s %s %s\n",
			severityStyle(f.Severity).Render(fmt.Sprintf("[%s]", f.Severity)),
			sectionStyle.Render(f.Category),
			f.Description)
		if f.Current != "" || f.Recommended != "" {
			r.printf("      %s\n", detailStyle.Render(
				fmt.Sprintf("current: %s  recommended: %s", orDash(f.Current), orDash(f.Recommended))))
		}
	}
	return nil
}

// Plan renders a dry-run view of the changes that would be made.
func (r *Renderer) Plan(p *plan.Plan) error {
	if r.JSON {
		return r.encode(p)
	}

	r.printf("%s\n", titleStyle.Render("Planned changes"))
	if p.Empty() {
		r.printf("%s\n", mutedStyle.Render("Nothing to do."))
		return nil
	}

	for _, w := range p.DirectWrites {
		r.printf("  %s %s = %s\n", sectionStyle.Render("write "), w.Path, w.Value)
	}
	for _, tg := range p.Toggles {
		verb := "disable wakeup"
		if tg.WantEnabled {
			verb = "enable wakeup"
		}
		r.printf("  %s %s\n", sectionStyle.Render("toggle"), verb+" for "+tg.Device)
	}
	for _, kp := range p.KernelParams {
		r.printf("  %s %s\n", sectionStyle.Render("kparam"), kp.Param)
	}
	for _, svc := range p.Services {
		r.printf("  %s stop and disable %s\n", sectionStyle.Render("service"), svc.Name)
	}
	if p.Unit != nil {
		r.printf("  %s %s\n", sectionStyle.Render("unit  "), p.Unit.Path)
	}

	for _, sk := range p.Skipped {
		r.printf("  %s %s (%s)\n", mutedStyle.Render("skip  "), sk.Finding.Category, sk.Reason)
	}
	r.printf("\n%s\n", mutedStyle.Render(p.Describe()))
	return nil
}

// Apply renders the outcome of an apply run.
func (r *Renderer) Apply(s executor.Summary) error {
	if r.JSON {
		return r.encode(s)
	}

	r.printf("%s applied, %s skipped, %s failed\n",
		goodStyle.Render(fmt.Sprintf("%d", s.Applied)),
		mutedStyle.Render(fmt.Sprintf("%d", s.Skipped)),
		failCountStyle(s.Failed).Render(fmt.Sprintf("%d", s.Failed)))
	for _, f := range s.Failures {
		r.printf("  %s %s %s: %s\n", badStyle.Render("FAIL"), f.Kind, f.Target, f.Reason)
	}
	return nil
}

// Revert renders the outcome of a revert run.
func (r *Renderer) Revert(s revert.Summary) error {
	if r.JSON {
		return r.encode(s)
	}

	r.printf("%s reverted, %s skipped, %s failed\n",
		goodStyle.Render(fmt.Sprintf("%d", s.Reverted)),
		mutedStyle.Render(fmt.Sprintf("%d", s.Skipped)),
		failCountStyle(s.Failed).Render(fmt.Sprintf("%d", s.Failed)))
	for _, f := range s.Failures {
		r.printf("  %s %s %s: %s\n", badStyle.Render("FAIL"), f.Kind, f.Target, f.Reason)
	}
	return nil
}

// Drift renders the drift report.
func (r *Renderer) Drift(rep *drift.Report) error {
	if r.JSON {
		return r.encode(rep)
	}

	r.printf("%s\n", titleStyle.Render("Applied configuration status"))
	r.printf("%s\n\n", mutedStyle.Render("applied at "+rep.Timestamp))

	for _, e := range rep.Entries {
		label := driftStyle(e.Status).Render(strings.ToUpper(string(e.Status)))
		r.printf("  %-32s %s\n", fmt.Sprintf("%s %s", e.Kind, e.Target), label)
		if e.Status == drift.StatusDrifted && (e.Expected != "" || e.Actual != "") {
			r.printf("      %s\n", detailStyle.Render(
				fmt.Sprintf("expected: %s  actual: %s", orDash(e.Expected), orDash(e.Actual))))
		}
	}

	r.printf("\n%d active, %d drifted, %d pending reboot, %d unknown\n",
		rep.Count(drift.StatusActive),
		rep.Count(drift.StatusDrifted),
		rep.Count(drift.StatusPendingReboot),
		rep.Count(drift.StatusUnknown))
	return nil
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
