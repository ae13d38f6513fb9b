package hardware

import (
	"fmt"

	"github.com/powertrim/powertrim/internal/audit"
)

// Services known to fight over the same knobs this tool manages.
var conflictingServices = []struct {
	name   string
	reason string
}{
	{"tlp.service", "TLP conflicts with direct platform_profile and cpufreq management"},
	{"power-profiles-daemon.service", "power-profiles-daemon conflicts with direct platform_profile management"},
}

// GenericLaptop is the fallback profile for any battery-powered machine
// without a dedicated profile. Its checks are safe on all hardware.
type GenericLaptop struct{}

func (GenericLaptop) Name() string { return "Generic Linux Laptop" }

func (GenericLaptop) Matches(snap *Snapshot) bool {
	return snap.Battery.Present
}

func (GenericLaptop) Audit(snap *Snapshot) []audit.Finding {
	var findings []audit.Finding
	findings = append(findings, checkCPU(snap)...)
	findings = append(findings, checkPCI(snap)...)
	findings = append(findings, checkServices(snap)...)
	findings = append(findings, checkWakeup(snap)...)
	return findings
}

func checkCPU(snap *Snapshot) []audit.Finding {
	var findings []audit.Finding

	switch snap.CPU.EPP {
	case "", "balance_power", "power":
	case "performance":
		findings = append(findings, audit.Finding{
			Category:    "cpu",
			Severity:    audit.SeverityHigh,
			Description: "EPP set to performance - maximum power consumption",
			Current:     "performance",
			Recommended: "balance_power",
			Path:        "sys/devices/system/cpu/cpu0/cpufreq/energy_performance_preference",
			Weight:      25,
		})
	default:
		findings = append(findings, audit.Finding{
			Category:    "cpu",
			Severity:    audit.SeverityMed,
			Description: fmt.Sprintf("EPP at %s - not optimal for battery", snap.CPU.EPP),
			Current:     snap.CPU.EPP,
			Recommended: "balance_power",
			Path:        "sys/devices/system/cpu/cpu0/cpufreq/energy_performance_preference",
			Weight:      20,
		})
	}

	switch snap.Platform.PlatformProfile {
	case "", "low-power", "quiet":
	default:
		findings = append(findings, audit.Finding{
			Category:    "platform",
			Severity:    audit.SeverityMed,
			Description: fmt.Sprintf("platform profile at %s - could save more on battery", snap.Platform.PlatformProfile),
			Current:     snap.Platform.PlatformProfile,
			Recommended: "low-power",
			Path:        "sys/firmware/acpi/platform_profile",
			Weight:      15,
		})
	}

	return findings
}

func checkPCI(snap *Snapshot) []audit.Finding {
	var findings []audit.Finding

	if snap.PCI.ASPMPolicy != "" && snap.PCI.ASPMPolicy != "powersupersave" {
		findings = append(findings, audit.Finding{
			Category:    "pci",
			Severity:    audit.SeverityMed,
			Description: "PCIe ASPM policy not at powersupersave",
			Current:     snap.PCI.ASPMPolicy,
			Recommended: "powersupersave",
			Path:        "sys/module/pcie_aspm/parameters/policy",
			Weight:      10,
		})
	}

	for _, dev := range snap.PCI.Devices {
		if dev.RuntimePM != "auto" {
			findings = append(findings, audit.Finding{
				Category:    "pci",
				Severity:    audit.SeverityLow,
				Description: fmt.Sprintf("runtime PM not enabled for PCI %s", dev.Address),
				Current:     dev.RuntimePM,
				Recommended: "auto",
				Path:        fmt.Sprintf("sys/bus/pci/devices/%s/power/control", dev.Address),
				Weight:      5,
			})
		}
	}

	return findings
}

func checkServices(snap *Snapshot) []audit.Finding {
	var findings []audit.Finding

	for _, svc := range conflictingServices {
		state, ok := snap.Service(svc.name)
		if !ok {
			continue
		}
		switch {
		case state.Active:
			findings = append(findings, audit.Finding{
				Category:    "services",
				Severity:    audit.SeverityHigh,
				Description: fmt.Sprintf("%s is active - %s", svc.name, svc.reason),
				Current:     "active",
				Recommended: "disabled",
				Path:        svc.name,
				Weight:      20,
			})
		case state.Enabled:
			findings = append(findings, audit.Finding{
				Category:    "services",
				Severity:    audit.SeverityMed,
				Description: fmt.Sprintf("%s is enabled - %s", svc.name, svc.reason),
				Current:     "enabled",
				Recommended: "disabled",
				Path:        svc.name,
				Weight:      10,
			})
		}
	}

	return findings
}

func checkWakeup(snap *Snapshot) []audit.Finding {
	var findings []audit.Finding

	for _, src := range snap.Platform.WakeupSources {
		// XHC0 carries the built-in keyboard; waking from it is wanted.
		if !src.Enabled || src.Device == "XHC0" {
			continue
		}
		findings = append(findings, audit.Finding{
			Category:    "wakeup",
			Severity:    audit.SeverityLow,
			Description: fmt.Sprintf("ACPI wakeup source %s enabled - spurious wakes drain battery in suspend", src.Device),
			Current:     "enabled",
			Recommended: "disabled",
			Path:        src.Device,
			Weight:      5,
		})
	}

	return findings
}
