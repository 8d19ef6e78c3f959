package simulation

import (
	"math"
	"time"

	"energydash/internal/models"
)

const (
	// TickInterval is both the scheduler cadence and the sampling period
	// used to integrate power into energy.
	TickInterval = time.Second

	// MaxVariation bounds the per-tick power perturbation in watts.
	MaxVariation = 50.0
)

// Variation draws a perturbation in [-MaxVariation, +MaxVariation) watts.
func Variation(rng RandomSource) float64 {
	return (rng.Float64() - 0.5) * 2 * MaxVariation
}

// EnergyOverTick converts a power draw held for one tick into kWh.
func EnergyOverTick(watts float64) float64 {
	return (watts / 1000) * TickInterval.Hours()
}

// Advance computes the next state of d for one tick ending at now.
// Inactive devices are returned unchanged. Power is floored at zero and
// has no ceiling.
func Advance(d models.Device, now time.Time, rng RandomSource) models.Device {
	if !d.IsActive {
		return d
	}

	newPower := math.Max(0, d.CurrentPower+Variation(rng))
	energyIncrease := EnergyOverTick(newPower)
	ts := now.UnixMilli()

	d.CurrentPower = newPower
	d.TotalEnergy += energyIncrease
	d.LastUpdated = ts
	d.Readings = AppendReading(d.Readings, models.EnergyReading{
		Timestamp: ts,
		Power:     newPower,
		Energy:    energyIncrease,
	}, HistoryCapacity)
	return d
}

// AdvanceAll advances every device independently and returns a new
// collection; the input slice is not modified.
func AdvanceAll(devices []models.Device, now time.Time, rng RandomSource) []models.Device {
	next := make([]models.Device, len(devices))
	for i, d := range devices {
		next[i] = Advance(d, now, rng)
	}
	return next
}
