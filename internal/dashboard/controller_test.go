package dashboard

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"energydash/internal/models"
	"energydash/internal/simulation"
)

var start = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return start }

func testDevices() []models.Device {
	return []models.Device{
		{ID: "a", Name: "Fridge", Type: models.DeviceTypeAppliance, IsActive: true, CurrentPower: 100, TotalEnergy: 5},
		{ID: "b", Name: "Lamp", Type: models.DeviceTypeLight, IsActive: false, CurrentPower: 0, TotalEnergy: 2},
		{ID: "c", Name: "AC", Type: models.DeviceTypeHVAC, IsActive: true, CurrentPower: 0, TotalEnergy: 1},
	}
}

func newTestController(t *testing.T, rng simulation.RandomSource) *Controller {
	t.Helper()
	c, err := NewController(testDevices(), WithRandomSource(rng), WithClock(fixedClock))
	require.NoError(t, err)
	return c
}

func TestNewControllerRejectsDuplicateIDs(t *testing.T) {
	devices := testDevices()
	devices[2].ID = "a"

	_, err := NewController(devices)

	assert.ErrorContains(t, err, "duplicate device id")
}

func TestNewControllerRejectsEmptyID(t *testing.T) {
	devices := testDevices()
	devices[1].ID = ""

	_, err := NewController(devices)

	assert.Error(t, err)
}

func TestNewControllerSelectsFirstDevice(t *testing.T) {
	c := newTestController(t, simulation.ConstantSource(0.5))

	snap := c.Snapshot()

	require.NotNil(t, snap.SelectedDeviceID)
	assert.Equal(t, "a", *snap.SelectedDeviceID)
}

func TestTickAdvancesOnlyActiveDevices(t *testing.T) {
	c := newTestController(t, simulation.ConstantSource(0.5))
	before := c.Devices()
	now := start.Add(time.Second)

	snap := c.Tick(now)

	require.Len(t, snap.Devices, 3)
	assert.Equal(t, before[1], snap.Devices[1], "inactive device must be untouched")
	assert.Equal(t, now.UnixMilli(), snap.Devices[0].LastUpdated)
	assert.Len(t, snap.Devices[0].Readings, 1)
	assert.Equal(t, models.EnergyReading{Timestamp: now.UnixMilli()}, snap.Devices[2].Readings[0])
	assert.Equal(t, now.UnixMilli(), snap.GeneratedAt)
}

func TestTickDoesNotMutateEarlierSnapshots(t *testing.T) {
	c := newTestController(t, simulation.ConstantSource(1))
	first := c.Tick(start.Add(time.Second))
	power := first.Devices[0].CurrentPower

	c.Tick(start.Add(2 * time.Second))

	assert.Equal(t, power, first.Devices[0].CurrentPower)
	assert.Len(t, first.Devices[0].Readings, 1)
}

func TestToggleDeviceMissingIDIsNoop(t *testing.T) {
	c := newTestController(t, simulation.ConstantSource(0.5))
	before := c.Devices()

	snap, found := c.ToggleDevice("missing-id")

	assert.False(t, found)
	assert.Equal(t, before, snap.Devices)
	assert.Equal(t, before, c.Devices())
}

func TestToggleDeviceFlipsMatch(t *testing.T) {
	c := newTestController(t, simulation.ConstantSource(0.5))

	snap, found := c.ToggleDevice("a")

	require.True(t, found)
	assert.False(t, snap.Devices[0].IsActive)
	assert.Equal(t, 0.0, snap.Devices[0].CurrentPower)
	assert.Equal(t, 1, snap.Stats.ActiveDevices)

	snap, found = c.ToggleDevice("a")
	require.True(t, found)
	assert.True(t, snap.Devices[0].IsActive)
	assert.Equal(t, 0.0, snap.Devices[0].CurrentPower, "power resumes from the zeroed value")
}

func TestSetDeviceActive(t *testing.T) {
	c := newTestController(t, simulation.ConstantSource(0.5))

	_, changed := c.SetDeviceActive("a", true)
	assert.False(t, changed, "already active")

	snap, changed := c.SetDeviceActive("b", true)
	assert.True(t, changed)
	assert.True(t, snap.Devices[1].IsActive)

	_, changed = c.SetDeviceActive("missing", false)
	assert.False(t, changed)
}

func TestSelectDevice(t *testing.T) {
	c := newTestController(t, simulation.ConstantSource(0.5))

	snap := c.SelectDevice("c")
	require.NotNil(t, snap.SelectedDeviceID)
	assert.Equal(t, "c", *snap.SelectedDeviceID)
	d, ok := snap.SelectedDevice()
	require.True(t, ok)
	assert.Equal(t, "AC", d.Name)

	snap = c.SelectDevice("nope")
	assert.Nil(t, snap.SelectedDeviceID)
	_, ok = snap.SelectedDevice()
	assert.False(t, ok)

	snap = c.SelectDevice("")
	assert.Nil(t, snap.SelectedDeviceID)
}

func TestStatsAreFresh(t *testing.T) {
	c := newTestController(t, simulation.ConstantSource(1))

	assert.Equal(t, models.DashboardStats{TotalPower: 100, TotalEnergy: 8, ActiveDevices: 2, AverageConsumption: 50}, c.Stats())

	c.Tick(start.Add(time.Second))
	stats := c.Stats()
	assert.InDelta(t, 200.0, stats.TotalPower, 1e-9)
	assert.InDelta(t, 100.0, stats.AverageConsumption, 1e-9)
	assert.Greater(t, stats.TotalEnergy, 8.0)
}

func TestDeviceLookup(t *testing.T) {
	c := newTestController(t, simulation.ConstantSource(0.5))

	d, ok := c.Device("b")
	require.True(t, ok)
	assert.Equal(t, "Lamp", d.Name)

	_, ok = c.Device("zzz")
	assert.False(t, ok)
}

func TestSubscribeReceivesLatestSnapshot(t *testing.T) {
	c := newTestController(t, simulation.ConstantSource(0.5))
	ch, cancel := c.Subscribe()
	defer cancel()

	c.Tick(start.Add(1 * time.Second))
	c.Tick(start.Add(2 * time.Second))
	c.Tick(start.Add(3 * time.Second))

	snap := <-ch
	assert.Equal(t, start.Add(3*time.Second).UnixMilli(), snap.GeneratedAt)
	select {
	case <-ch:
		t.Fatal("expected only the latest snapshot")
	default:
	}
}

func TestSubscribeSkipsNoopToggle(t *testing.T) {
	c := newTestController(t, simulation.ConstantSource(0.5))
	ch, cancel := c.Subscribe()
	defer cancel()

	c.ToggleDevice("missing-id")

	select {
	case <-ch:
		t.Fatal("no-op toggle must not publish")
	default:
	}
}

func TestUnsubscribeClosesChannel(t *testing.T) {
	c := newTestController(t, simulation.ConstantSource(0.5))
	ch, cancel := c.Subscribe()

	cancel()
	cancel()
	c.Tick(start.Add(time.Second))

	_, open := <-ch
	assert.False(t, open)
}

func TestConcurrentTicksAndTogglesKeepInvariants(t *testing.T) {
	c := newTestController(t, simulation.NewSeededSource(5))
	var wg sync.WaitGroup

	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 1; i <= 500; i++ {
			c.Tick(start.Add(time.Duration(i) * time.Second))
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 500; i++ {
			c.ToggleDevice("a")
		}
	}()
	wg.Wait()

	for _, d := range c.Devices() {
		if !d.IsActive {
			assert.Equal(t, 0.0, d.CurrentPower, d.ID)
		}
		assert.GreaterOrEqual(t, d.CurrentPower, 0.0)
		assert.LessOrEqual(t, len(d.Readings), simulation.HistoryCapacity)
	}
	// 500 toggles of "a" land it back where it started
	d, _ := c.Device("a")
	assert.True(t, d.IsActive)
}
