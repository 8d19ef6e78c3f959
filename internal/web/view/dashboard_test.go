package view

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"energydash/internal/models"
)

func TestChartBarsScaleToPeak(t *testing.T) {
	bars := ChartBars([]models.EnergyReading{{Power: 250}, {Power: 1000}, {Power: 0}})
	require.Len(t, bars, 3)
	assert.Equal(t, 50.0, bars[0].Height)
	assert.Equal(t, ChartHeight, bars[1].Height)
	assert.Equal(t, 0.0, bars[2].Height)
}

func TestChartBarsFloorPeakAtOneWatt(t *testing.T) {
	bars := ChartBars([]models.EnergyReading{{Power: 0}, {Power: 0.5}})
	assert.Equal(t, 0.0, bars[0].Height)
	assert.Equal(t, 100.0, bars[1].Height)
}

func TestChartBarsEmpty(t *testing.T) {
	assert.Empty(t, ChartBars(nil))
}

func TestTemplateRendersWithoutSelection(t *testing.T) {
	tmpl, err := Templates()
	require.NoError(t, err)

	var buf bytes.Buffer
	err = tmpl.ExecuteTemplate(&buf, "dashboard.html", page{Snapshot: models.Snapshot{
		Devices: []models.Device{{ID: "x", Name: "Lamp", Type: models.DeviceTypeLight}},
	}})
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "Lamp")
	assert.Contains(t, buf.String(), "Turn On")
	assert.Contains(t, buf.String(), "💡")
}

func TestTemplateRendersSelectedDeviceDetails(t *testing.T) {
	tmpl, err := Templates()
	require.NoError(t, err)

	dryer := models.Device{ID: "3", Name: "Washing Machine", Location: "Laundry Room", Type: models.DeviceTypeAppliance, TotalEnergy: 8.2}
	var buf bytes.Buffer
	err = tmpl.ExecuteTemplate(&buf, "dashboard.html", page{
		Snapshot: models.Snapshot{Devices: []models.Device{dryer}},
		Selected: &dryer,
	})
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "Device Details")
	assert.Contains(t, out, "<span>Location</span><strong>Laundry Room</strong>")
	assert.Contains(t, out, "<span>Type</span><strong>appliance</strong>")
	assert.Contains(t, out, "<span>Status</span><strong>Inactive</strong>")
	assert.Contains(t, out, "<span>Total Energy</span><strong>8.20 kWh</strong>")
}
