package mutator

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/powertrim/powertrim/internal/plan"
	"github.com/powertrim/powertrim/internal/state"
)

const wakeupContents = `Device  S-state   Status   Sysfs node
GPP0      S4    *disabled
XHC0      S4    *enabled   pci:0000:c4:00.3
XHC1      S4    *enabled   pci:0000:c4:00.4
NVME      S4    *disabled  pci:0000:01:00.0
`

func TestParseWakeupState(t *testing.T) {
	t.Parallel()

	enabled, found := ParseWakeupState(wakeupContents, "XHC1")
	assert.True(t, found)
	assert.True(t, enabled)

	enabled, found = ParseWakeupState(wakeupContents, "NVME")
	assert.True(t, found)
	assert.False(t, enabled)

	_, found = ParseWakeupState(wakeupContents, "LID0")
	assert.False(t, found)
}

func TestToggleApplyFlipsOnce(t *testing.T) {
	t.Parallel()

	root := sysfsRoot(t, map[string]string{WakeupFile: wakeupContents})
	m := Toggle{Root: root}

	rec, err := m.Apply(context.Background(), plan.Toggle{Device: "XHC1", WantEnabled: false})
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, "XHC1", rec.Device)
	assert.True(t, rec.WasEnabled)
	assert.False(t, rec.Desired())

	// The flip-on-write interface receives exactly the device name.
	raw, err := root.ReadRaw(WakeupFile)
	require.NoError(t, err)
	assert.Equal(t, "XHC1", raw)
}

func TestToggleApplyAlreadyDesiredWritesNothing(t *testing.T) {
	t.Parallel()

	root := sysfsRoot(t, map[string]string{WakeupFile: wakeupContents})
	m := Toggle{Root: root}

	rec, err := m.Apply(context.Background(), plan.Toggle{Device: "NVME", WantEnabled: false})
	require.NoError(t, err)
	assert.Nil(t, rec)

	raw, err := root.ReadRaw(WakeupFile)
	require.NoError(t, err)
	assert.Equal(t, wakeupContents, raw)
}

func TestToggleApplyUnknownDeviceSkips(t *testing.T) {
	t.Parallel()

	root := sysfsRoot(t, map[string]string{WakeupFile: wakeupContents})
	m := Toggle{Root: root}

	rec, err := m.Apply(context.Background(), plan.Toggle{Device: "LID0", WantEnabled: false})
	require.Error(t, err)
	assert.Nil(t, rec)
	assert.True(t, IsSkip(err))
}

func TestToggleApplyUnreadableFileSkips(t *testing.T) {
	t.Parallel()

	m := Toggle{Root: sysfsRoot(t, nil)}

	rec, err := m.Apply(context.Background(), plan.Toggle{Device: "XHC1", WantEnabled: false})
	require.Error(t, err)
	assert.Nil(t, rec)
	assert.True(t, IsSkip(err))
}

func TestToggleRevertFlipsOnlyWhenStillChanged(t *testing.T) {
	t.Parallel()

	disabled := `XHC1      S4    *disabled  pci:0000:c4:00.4
`
	root := sysfsRoot(t, map[string]string{WakeupFile: disabled})
	m := Toggle{Root: root}

	rec := state.ToggleUndo{Device: "XHC1", WasEnabled: true}
	require.NoError(t, m.Revert(context.Background(), rec))

	raw, err := root.ReadRaw(WakeupFile)
	require.NoError(t, err)
	assert.Equal(t, "XHC1", raw)
}

func TestToggleRevertNoopWhenAlreadyRestored(t *testing.T) {
	t.Parallel()

	root := sysfsRoot(t, map[string]string{WakeupFile: wakeupContents})
	m := Toggle{Root: root}

	rec := state.ToggleUndo{Device: "XHC1", WasEnabled: true}
	require.NoError(t, m.Revert(context.Background(), rec))

	raw, err := root.ReadRaw(WakeupFile)
	require.NoError(t, err)
	assert.Equal(t, wakeupContents, raw)
}
