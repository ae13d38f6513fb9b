package hardware

import (
	"encoding/json"
	"os"
	"strings"
)

// Snapshot holds immutable facts about the machine, produced by the detection
// collaborator. The core reads it and never mutates it.
type Snapshot struct {
	Platform PlatformInfo   `json:"platform"`
	CPU      CPUInfo        `json:"cpu"`
	GPU      GPUInfo        `json:"gpu"`
	Battery  BatteryInfo    `json:"battery"`
	PCI      PCIInfo        `json:"pci"`
	Network  NetworkInfo    `json:"network"`
	Services []ServiceState `json:"services"`
	// KernelCmdline is the boot command line the kernel is actually running
	// with, from /proc/cmdline.
	KernelCmdline string `json:"kernel_cmdline"`
}

// PlatformInfo describes DMI identity and ACPI platform state.
type PlatformInfo struct {
	Vendor            string         `json:"vendor"`
	Product           string         `json:"product"`
	PlatformProfile   string         `json:"platform_profile"`
	ProfilesAvailable []string       `json:"platform_profiles_available,omitempty"`
	WakeupSources     []WakeupSource `json:"acpi_wakeup_sources,omitempty"`
}

// WakeupSource is one entry from /proc/acpi/wakeup.
type WakeupSource struct {
	Device  string `json:"device"`
	Enabled bool   `json:"enabled"`
}

// CPUInfo describes the processor and its cpufreq state.
type CPUInfo struct {
	Vendor   string `json:"vendor"`
	Model    string `json:"model"`
	Driver   string `json:"driver"`
	Governor string `json:"governor"`
	// EPP is the energy_performance_preference shared by all cores.
	EPP   string `json:"epp"`
	Cores int    `json:"cores"`
}

// IsAMD reports whether the CPU vendor is AMD.
func (c CPUInfo) IsAMD() bool {
	return strings.Contains(strings.ToLower(c.Vendor), "amd") ||
		strings.Contains(strings.ToLower(c.Vendor), "authenticamd")
}

// GPUInfo describes the primary GPU.
type GPUInfo struct {
	Vendor string `json:"vendor"`
	Driver string `json:"driver"`
}

// IsAMD reports whether the GPU is driven by amdgpu.
func (g GPUInfo) IsAMD() bool {
	return g.Driver == "amdgpu"
}

// BatteryInfo describes the battery, if one is present.
type BatteryInfo struct {
	Present    bool    `json:"present"`
	Name       string  `json:"name,omitempty"`
	CapacityWh float64 `json:"capacity_wh,omitempty"`
	CycleCount int     `json:"cycle_count,omitempty"`
}

// PCIInfo describes PCIe power management state.
type PCIInfo struct {
	ASPMPolicy string      `json:"aspm_policy"`
	Devices    []PCIDevice `json:"devices,omitempty"`
}

// PCIDevice is one PCI function with its runtime power-management setting.
type PCIDevice struct {
	Address   string `json:"address"`
	Class     string `json:"class,omitempty"`
	RuntimePM string `json:"runtime_pm"`
}

// NetworkInfo describes wireless power state.
type NetworkInfo struct {
	WifiInterface string `json:"wifi_interface,omitempty"`
	WifiPowersave bool   `json:"wifi_powersave"`
}

// ServiceState is the observed systemd state of one service.
type ServiceState struct {
	Name    string `json:"name"`
	Active  bool   `json:"active"`
	Enabled bool   `json:"enabled"`
}

// Service looks up the recorded state of a service by name.
func (s *Snapshot) Service(name string) (ServiceState, bool) {
	for _, svc := range s.Services {
		if svc.Name == name {
			return svc, true
		}
	}
	return ServiceState{}, false
}

// HasKernelParam reports whether the running kernel was booted with the
// given parameter, matching either "name" or "name=value".
func (s *Snapshot) HasKernelParam(param string) bool {
	for _, p := range strings.Fields(s.KernelCmdline) {
		if p == param || strings.HasPrefix(p, param+"=") {
			return true
		}
	}
	return false
}

// LoadSnapshot parses a snapshot previously captured as JSON.
func LoadSnapshot(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, err
	}
	return &snap, nil
}
