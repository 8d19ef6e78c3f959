package simulation

import "energydash/internal/models"

// Aggregate computes dashboard statistics for devices. Only active
// devices contribute power; the average is zero when nothing is active.
func Aggregate(devices []models.Device) models.DashboardStats {
	var stats models.DashboardStats
	for _, d := range devices {
		stats.TotalEnergy += d.TotalEnergy
		if d.IsActive {
			stats.TotalPower += d.CurrentPower
			stats.ActiveDevices++
		}
	}
	if stats.ActiveDevices > 0 {
		stats.AverageConsumption = stats.TotalPower / float64(stats.ActiveDevices)
	}
	return stats
}
