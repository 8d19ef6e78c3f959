package simulation

import "energydash/internal/models"

// HistoryCapacity is the number of readings kept per device: 24 hours of
// 5-minute samples.
const HistoryCapacity = 288

// AppendReading returns readings with r appended, keeping at most
// capacity entries by dropping the oldest. The result never shares a
// backing array with readings, so snapshots holding the old slice are
// unaffected.
func AppendReading(readings []models.EnergyReading, r models.EnergyReading, capacity int) []models.EnergyReading {
	if capacity <= 0 {
		return []models.EnergyReading{}
	}
	keep := readings
	if len(keep) >= capacity {
		keep = keep[len(keep)-capacity+1:]
	}
	out := make([]models.EnergyReading, 0, len(keep)+1)
	out = append(out, keep...)
	return append(out, r)
}
