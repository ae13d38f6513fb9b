package report

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/powertrim/powertrim/internal/audit"
	"github.com/powertrim/powertrim/internal/drift"
	"github.com/powertrim/powertrim/internal/executor"
	"github.com/powertrim/powertrim/internal/plan"
)

func TestAuditJSONRoundTrips(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	r := &Renderer{Out: &buf, JSON: true}

	in := AuditReport{
		Profile: "generic-laptop",
		Score:   75,
		Findings: []audit.Finding{
			{Category: "cpu", Severity: audit.SeverityHigh, Description: "EPP set to performance", Weight: 25},
		},
	}
	require.NoError(t, r.Audit(in))

	var out AuditReport
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out))
	assert.Equal(t, in, out)
}

func TestAuditTextShowsScoreAndFindings(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	r := &Renderer{Out: &buf}

	require.NoError(t, r.Audit(AuditReport{
		Profile: "generic-laptop",
		Score:   80,
		Findings: []audit.Finding{
			{Category: "cpu", Severity: audit.SeverityHigh, Description: "EPP set to performance",
				Current: "performance", Recommended: "power", Weight: 20},
		},
	}))

	out := buf.String()
	assert.Contains(t, out, "80/100")
	assert.Contains(t, out, "EPP set to performance")
	assert.Contains(t, out, "recommended: power")
}

func TestAuditTextCleanSystem(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	r := &Renderer{Out: &buf}

	require.NoError(t, r.Audit(AuditReport{Profile: "generic-laptop", Score: 100}))
	assert.Contains(t, buf.String(), "No findings")
}

func TestPlanTextListsEveryKind(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	r := &Renderer{Out: &buf}

	p := &plan.Plan{
		DirectWrites: []plan.DirectWrite{{Path: "sys/epp", Value: "power"}},
		Toggles:      []plan.Toggle{{Device: "XHC1", WantEnabled: false}},
		KernelParams: []plan.KernelParam{{Param: "acpi.ec_no_wakeup=1"}},
		Services:     []plan.ServiceDisable{{Name: "tlp.service"}},
		Unit:         &plan.UnitSpec{Path: "etc/systemd/system/powertrim-powersave.service"},
	}
	require.NoError(t, r.Plan(p))

	out := buf.String()
	assert.Contains(t, out, "sys/epp = power")
	assert.Contains(t, out, "disable wakeup for XHC1")
	assert.Contains(t, out, "acpi.ec_no_wakeup=1")
	assert.Contains(t, out, "tlp.service")
	assert.Contains(t, out, "powertrim-powersave.service")
}

func TestPlanTextEmpty(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	r := &Renderer{Out: &buf}

	require.NoError(t, r.Plan(&plan.Plan{}))
	assert.Contains(t, buf.String(), "Nothing to do")
}

func TestApplyTextReportsFailures(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	r := &Renderer{Out: &buf}

	require.NoError(t, r.Apply(executor.Summary{
		Applied: 2,
		Failed:  1,
		Failures: []executor.Failure{
			{Kind: plan.KindService, Target: "tlp.service", Reason: "systemctl failed"},
		},
	}))

	out := buf.String()
	assert.Contains(t, out, "FAIL")
	assert.Contains(t, out, "tlp.service")
}

func TestDriftTextShowsStatusAndCounts(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	r := &Renderer{Out: &buf}

	require.NoError(t, r.Drift(&drift.Report{
		Timestamp: "2026-01-02T03:04:05Z",
		Entries: []drift.Entry{
			{Kind: plan.KindDirectWrite, Target: "sys/epp", Status: drift.StatusActive},
			{Kind: plan.KindDirectWrite, Target: "sys/aspm", Status: drift.StatusDrifted,
				Expected: "powersupersave", Actual: "default"},
			{Kind: plan.KindKernelParam, Target: "acpi.ec_no_wakeup=1", Status: drift.StatusPendingReboot},
		},
	}))

	out := buf.String()
	assert.Contains(t, out, "DRIFTED")
	assert.Contains(t, out, "expected: powersupersave")
	assert.Contains(t, out, "1 active, 1 drifted, 1 pending reboot, 0 unknown")
}
