package hardware

import (
	"strings"

	"github.com/powertrim/powertrim/internal/audit"
)

// Framework16AMD covers the Framework Laptop 16 with Ryzen 7040 silicon.
// Adds EC and panel findings on top of the generic checks.
type Framework16AMD struct{}

func (Framework16AMD) Name() string { return "Framework Laptop 16 (AMD Ryzen 7040)" }

func (Framework16AMD) Matches(snap *Snapshot) bool {
	return strings.Contains(snap.Platform.Vendor, "Framework") &&
		strings.Contains(snap.Platform.Product, "16") &&
		snap.CPU.IsAMD()
}

func (f Framework16AMD) Audit(snap *Snapshot) []audit.Finding {
	findings := GenericLaptop{}.Audit(snap)
	findings = append(findings, f.checkKernelParams(snap)...)
	return findings
}

func (Framework16AMD) checkKernelParams(snap *Snapshot) []audit.Finding {
	var findings []audit.Finding

	if !snap.HasKernelParam("acpi.ec_no_wakeup") {
		findings = append(findings, audit.Finding{
			Category:    "kernel",
			Severity:    audit.SeverityMed,
			Description: "EC wakes the SoC on every lid/keyboard event during suspend",
			Current:     "absent",
			Recommended: "acpi.ec_no_wakeup=1",
			Path:        "acpi.ec_no_wakeup=1",
			Weight:      10,
		})
	}

	if !snap.HasKernelParam("rtc_cmos.use_acpi_alarm") {
		findings = append(findings, audit.Finding{
			Category:    "kernel",
			Severity:    audit.SeverityLow,
			Description: "RTC alarm via legacy CMOS path keeps the EC awake",
			Current:     "absent",
			Recommended: "rtc_cmos.use_acpi_alarm=1",
			Path:        "rtc_cmos.use_acpi_alarm=1",
			Weight:      5,
		})
	}

	if snap.GPU.IsAMD() && !snap.HasKernelParam("amdgpu.abmlevel") {
		findings = append(findings, audit.Finding{
			Category:    "kernel",
			Severity:    audit.SeverityLow,
			Description: "adaptive backlight management disabled on amdgpu panel",
			Current:     "absent",
			Recommended: "amdgpu.abmlevel=3",
			Path:        "amdgpu.abmlevel=3",
			Weight:      5,
		})
	}

	return findings
}
