package hardware

import (
	"context"
	"fmt"
	"path"
	"strconv"
	"strings"

	"github.com/powertrim/powertrim/internal/execx"
	"github.com/powertrim/powertrim/internal/fsroot"
)

// Collector gathers a Snapshot from the live system. Every probe is
// best-effort: hardware that does not expose an interface simply leaves the
// corresponding field zero.
type Collector struct {
	Root   fsroot.Root
	Runner execx.Runner
}

// Collect reads sysfs, procfs, and systemd state into a Snapshot.
func (c *Collector) Collect(ctx context.Context) (*Snapshot, error) {
	snap := &Snapshot{}

	c.collectPlatform(snap)
	c.collectCPU(snap)
	c.collectGPU(snap)
	c.collectBattery(snap)
	c.collectPCI(snap)
	c.collectNetwork(ctx, snap)
	c.collectServices(ctx, snap)

	if cmdline, ok, _ := c.Root.ReadOptional("proc/cmdline"); ok {
		snap.KernelCmdline = cmdline
	}

	return snap, nil
}

func (c *Collector) collectPlatform(snap *Snapshot) {
	snap.Platform.Vendor, _, _ = c.Root.ReadOptional("sys/class/dmi/id/sys_vendor")
	snap.Platform.Product, _, _ = c.Root.ReadOptional("sys/class/dmi/id/product_name")
	snap.Platform.PlatformProfile, _, _ = c.Root.ReadOptional("sys/firmware/acpi/platform_profile")

	if choices, ok, _ := c.Root.ReadOptional("sys/firmware/acpi/platform_profile_choices"); ok {
		snap.Platform.ProfilesAvailable = strings.Fields(choices)
	}

	if content, ok, _ := c.Root.ReadOptional("proc/acpi/wakeup"); ok {
		snap.Platform.WakeupSources = parseWakeupSources(content)
	}
}

// parseWakeupSources reads every device line from /proc/acpi/wakeup.
func parseWakeupSources(content string) []WakeupSource {
	var sources []WakeupSource
	for _, line := range strings.Split(content, "\n") {
		fields := strings.Fields(line)
		if len(fields) < 3 || fields[0] == "Device" {
			continue
		}
		for _, f := range fields[1:] {
			if strings.Contains(f, "*enabled") {
				sources = append(sources, WakeupSource{Device: fields[0], Enabled: true})
				break
			}
			if strings.Contains(f, "*disabled") {
				sources = append(sources, WakeupSource{Device: fields[0], Enabled: false})
				break
			}
		}
	}
	return sources
}

func (c *Collector) collectCPU(snap *Snapshot) {
	if cpuinfo, ok, _ := c.Root.ReadOptional("proc/cpuinfo"); ok {
		for _, line := range strings.Split(cpuinfo, "\n") {
			key, value, found := strings.Cut(line, ":")
			if !found {
				continue
			}
			key = strings.TrimSpace(key)
			value = strings.TrimSpace(value)
			switch key {
			case "vendor_id":
				if snap.CPU.Vendor == "" {
					snap.CPU.Vendor = value
				}
			case "model name":
				if snap.CPU.Model == "" {
					snap.CPU.Model = value
				}
			case "processor":
				snap.CPU.Cores++
			}
		}
	}

	policy := "sys/devices/system/cpu/cpufreq/policy0"
	snap.CPU.Driver, _, _ = c.Root.ReadOptional(path.Join(policy, "scaling_driver"))
	snap.CPU.Governor, _, _ = c.Root.ReadOptional(path.Join(policy, "scaling_governor"))
	snap.CPU.EPP, _, _ = c.Root.ReadOptional(path.Join(policy, "energy_performance_preference"))
}

func (c *Collector) collectGPU(snap *Snapshot) {
	uevent, ok, _ := c.Root.ReadOptional("sys/class/drm/card0/device/uevent")
	if !ok {
		return
	}
	for _, line := range strings.Split(uevent, "\n") {
		if driver, found := strings.CutPrefix(line, "DRIVER="); found {
			snap.GPU.Driver = driver
		}
		if vendor, found := strings.CutPrefix(line, "PCI_ID="); found {
			snap.GPU.Vendor = vendor
		}
	}
}

func (c *Collector) collectBattery(snap *Snapshot) {
	names, err := c.Root.ListDir("sys/class/power_supply")
	if err != nil {
		return
	}
	for _, name := range names {
		dir := path.Join("sys/class/power_supply", name)
		kind, _, _ := c.Root.ReadOptional(path.Join(dir, "type"))
		if kind != "Battery" {
			continue
		}
		snap.Battery.Present = true
		snap.Battery.Name = name
		if raw, ok, _ := c.Root.ReadOptional(path.Join(dir, "energy_full")); ok {
			if uwh, err := strconv.ParseFloat(raw, 64); err == nil {
				snap.Battery.CapacityWh = uwh / 1e6
			}
		}
		if raw, ok, _ := c.Root.ReadOptional(path.Join(dir, "cycle_count")); ok {
			snap.Battery.CycleCount, _ = strconv.Atoi(raw)
		}
		return
	}
}

func (c *Collector) collectPCI(snap *Snapshot) {
	// Format: "default performance [powersave] powersupersave".
	if raw, ok, _ := c.Root.ReadOptional("sys/module/pcie_aspm/parameters/policy"); ok {
		for _, word := range strings.Fields(raw) {
			if strings.HasPrefix(word, "[") && strings.HasSuffix(word, "]") {
				snap.PCI.ASPMPolicy = strings.Trim(word, "[]")
				break
			}
		}
	}

	addresses, err := c.Root.ListDir("sys/bus/pci/devices")
	if err != nil {
		return
	}
	for _, addr := range addresses {
		dir := path.Join("sys/bus/pci/devices", addr)
		control, ok, _ := c.Root.ReadOptional(path.Join(dir, "power/control"))
		if !ok {
			continue
		}
		class, _, _ := c.Root.ReadOptional(path.Join(dir, "class"))
		snap.PCI.Devices = append(snap.PCI.Devices, PCIDevice{
			Address:   addr,
			Class:     class,
			RuntimePM: control,
		})
	}
}

func (c *Collector) collectNetwork(ctx context.Context, snap *Snapshot) {
	names, err := c.Root.ListDir("sys/class/net")
	if err != nil {
		return
	}
	for _, name := range names {
		if !c.Root.Exists(path.Join("sys/class/net", name, "wireless")) {
			continue
		}
		snap.Network.WifiInterface = name
		result, err := c.Runner.Run(ctx, "iw", "dev", name, "get", "power_save")
		if err == nil && result.Succeeded() {
			snap.Network.WifiPowersave = strings.Contains(result.Stdout, "on")
		}
		return
	}
}

func (c *Collector) collectServices(ctx context.Context, snap *Snapshot) {
	for _, svc := range conflictingServices {
		active, _ := c.queryService(ctx, "is-active", svc.name)
		enabled, _ := c.queryService(ctx, "is-enabled", svc.name)
		snap.Services = append(snap.Services, ServiceState{
			Name:    svc.name,
			Active:  active,
			Enabled: enabled,
		})
	}
}

func (c *Collector) queryService(ctx context.Context, verb, name string) (bool, error) {
	result, err := c.Runner.Run(ctx, "systemctl", verb, "--quiet", name)
	if err != nil {
		return false, fmt.Errorf("querying %s: %w", name, err)
	}
	return result.Succeeded(), nil
}
