package hardware

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/powertrim/powertrim/internal/execx"
	"github.com/powertrim/powertrim/internal/fsroot"
)

func collectorRoot(t *testing.T, files map[string]string) fsroot.Root {
	t.Helper()
	base := t.TempDir()
	for rel, content := range files {
		path := filepath.Join(base, rel)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	return fsroot.New(base)
}

func TestCollectFullSystem(t *testing.T) {
	t.Parallel()

	root := collectorRoot(t, map[string]string{
		"sys/class/dmi/id/sys_vendor":                 "Framework\n",
		"sys/class/dmi/id/product_name":               "Laptop 16 (AMD Ryzen 7040 Series)\n",
		"sys/firmware/acpi/platform_profile":          "balanced\n",
		"sys/firmware/acpi/platform_profile_choices":  "low-power balanced performance\n",
		"proc/acpi/wakeup": "Device  S-state   Status   Sysfs node\nXHC0      S4    *enabled   pci:0000:c4:00.3\nGPP0      S4    *disabled\n",
		"proc/cpuinfo": "processor\t: 0\nvendor_id\t: AuthenticAMD\nmodel name\t: AMD Ryzen 9 7940HS\nprocessor\t: 1\nvendor_id\t: AuthenticAMD\nmodel name\t: AMD Ryzen 9 7940HS\n",
		"sys/devices/system/cpu/cpufreq/policy0/scaling_driver":                "amd-pstate-epp\n",
		"sys/devices/system/cpu/cpufreq/policy0/scaling_governor":              "powersave\n",
		"sys/devices/system/cpu/cpufreq/policy0/energy_performance_preference": "performance\n",
		"sys/class/drm/card0/device/uevent":                                    "DRIVER=amdgpu\nPCI_ID=1002:15BF\n",
		"sys/class/power_supply/AC/type":                                       "Mains\n",
		"sys/class/power_supply/BAT1/type":                                     "Battery\n",
		"sys/class/power_supply/BAT1/energy_full":                              "85000000\n",
		"sys/class/power_supply/BAT1/cycle_count":                              "42\n",
		"sys/module/pcie_aspm/parameters/policy":                               "[default] performance powersave powersupersave\n",
		"sys/bus/pci/devices/0000:01:00.0/power/control":                       "on\n",
		"sys/bus/pci/devices/0000:01:00.0/class":                               "0x010802\n",
		"sys/class/net/wlan0/wireless/.keep":                                   "",
		"proc/cmdline": "root=/dev/nvme0n1p2 rw quiet acpi.ec_no_wakeup=1\n",
	})
	runner := execx.NewFakeRunner()
	runner.Script("iw dev wlan0 get power_save", execx.Result{Stdout: "Power save: on"})
	runner.Script("systemctl is-active --quiet tlp.service", execx.Result{ExitCode: 3})
	runner.Script("systemctl is-enabled --quiet tlp.service", execx.Result{ExitCode: 1})

	c := &Collector{Root: root, Runner: runner}
	snap, err := c.Collect(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "Framework", snap.Platform.Vendor)
	assert.Equal(t, "balanced", snap.Platform.PlatformProfile)
	assert.Equal(t, []string{"low-power", "balanced", "performance"}, snap.Platform.ProfilesAvailable)
	require.Len(t, snap.Platform.WakeupSources, 2)
	assert.Equal(t, WakeupSource{Device: "XHC0", Enabled: true}, snap.Platform.WakeupSources[0])

	assert.True(t, snap.CPU.IsAMD())
	assert.Equal(t, 2, snap.CPU.Cores)
	assert.Equal(t, "amd-pstate-epp", snap.CPU.Driver)
	assert.Equal(t, "performance", snap.CPU.EPP)

	assert.True(t, snap.GPU.IsAMD())

	assert.True(t, snap.Battery.Present)
	assert.Equal(t, "BAT1", snap.Battery.Name)
	assert.InDelta(t, 85.0, snap.Battery.CapacityWh, 0.001)
	assert.Equal(t, 42, snap.Battery.CycleCount)

	assert.Equal(t, "default", snap.PCI.ASPMPolicy)
	require.Len(t, snap.PCI.Devices, 1)
	assert.Equal(t, "on", snap.PCI.Devices[0].RuntimePM)

	assert.Equal(t, "wlan0", snap.Network.WifiInterface)
	assert.True(t, snap.Network.WifiPowersave)

	tlp, ok := snap.Service("tlp.service")
	require.True(t, ok)
	assert.False(t, tlp.Active)
	assert.False(t, tlp.Enabled)

	// Unscripted queries succeed, so power-profiles-daemon reads as running.
	ppd, ok := snap.Service("power-profiles-daemon.service")
	require.True(t, ok)
	assert.True(t, ppd.Active)

	assert.True(t, snap.HasKernelParam("acpi.ec_no_wakeup=1"))
}

func TestCollectBareSystem(t *testing.T) {
	t.Parallel()

	c := &Collector{Root: collectorRoot(t, nil), Runner: execx.NewFakeRunner()}
	snap, err := c.Collect(context.Background())
	require.NoError(t, err)

	assert.False(t, snap.Battery.Present)
	assert.Empty(t, snap.Platform.Vendor)
	assert.Empty(t, snap.PCI.Devices)
	assert.Len(t, snap.Services, len(conflictingServices))
}
