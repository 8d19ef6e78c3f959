package dashboard

import (
	"fmt"
	"math"
	"os"
	"time"

	"github.com/goccy/go-yaml"

	"energydash/internal/models"
	"energydash/internal/simulation"
)

// SeedInterval is the spacing of generated history readings
const SeedInterval = 5 * time.Minute

// seedNoise bounds the jitter applied to generated history, in watts
const seedNoise = 10.0

// SeedDevice describes a device to create at startup
type SeedDevice struct {
	ID          string  `yaml:"id"`
	Name        string  `yaml:"name"`
	Location    string  `yaml:"location"`
	Type        string  `yaml:"type"`
	Active      bool    `yaml:"active"`
	Power       float64 `yaml:"power"`       // W
	TotalEnergy float64 `yaml:"totalEnergy"` // kWh
	// IdleFor backdates lastUpdated, e.g. "1h"
	IdleFor string `yaml:"idleFor"`
}

// SeedFile is the on-disk layout of a seed file
type SeedFile struct {
	Devices []SeedDevice `yaml:"devices"`
}

// DefaultSeed is the built-in household
var DefaultSeed = []SeedDevice{
	{ID: "1", Name: "Air Conditioner", Location: "Living Room", Type: "hvac", Active: true, Power: 2500, TotalEnergy: 45.8},
	{ID: "2", Name: "Refrigerator", Location: "Kitchen", Type: "appliance", Active: true, Power: 600, TotalEnergy: 12.5},
	{ID: "3", Name: "Washing Machine", Location: "Laundry Room", Type: "appliance", Active: false, Power: 0, TotalEnergy: 8.2, IdleFor: "1h"},
	{ID: "4", Name: "LED Ceiling Light", Location: "Bedroom", Type: "light", Active: true, Power: 15, TotalEnergy: 0.8},
	{ID: "5", Name: "Water Heater", Location: "Utility Room", Type: "appliance", Active: true, Power: 4000, TotalEnergy: 32.1},
	{ID: "6", Name: "Office Lights", Location: "Office", Type: "light", Active: true, Power: 40, TotalEnergy: 2.4},
}

// LoadSeedFile reads a YAML seed file
func LoadSeedFile(path string) ([]SeedDevice, error) {
	buf, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading seed file: %w", err)
	}

	var f SeedFile
	if err := yaml.Unmarshal(buf, &f); err != nil {
		return nil, fmt.Errorf("parsing seed file %s: %w", path, err)
	}
	if len(f.Devices) == 0 {
		return nil, fmt.Errorf("seed file %s lists no devices", path)
	}
	return f.Devices, nil
}

// BuildDevices turns seeds into devices with a full day of generated
// history ending at now. Inactive seeds start at zero power.
func BuildDevices(seeds []SeedDevice, now time.Time, rng simulation.RandomSource) ([]models.Device, error) {
	devices := make([]models.Device, 0, len(seeds))
	for _, s := range seeds {
		typ := models.DeviceType(s.Type)
		if s.Type == "" {
			typ = models.DeviceTypeOther
		}
		if !typ.Valid() {
			return nil, fmt.Errorf("device %q: unknown type %q", s.ID, s.Type)
		}

		lastUpdated := now
		if s.IdleFor != "" {
			idle, err := time.ParseDuration(s.IdleFor)
			if err != nil {
				return nil, fmt.Errorf("device %q: idleFor: %w", s.ID, err)
			}
			lastUpdated = now.Add(-idle)
		}

		power := s.Power
		if !s.Active {
			power = 0
		}

		devices = append(devices, models.Device{
			ID:           s.ID,
			Name:         s.Name,
			Location:     s.Location,
			Type:         typ,
			IsActive:     s.Active,
			CurrentPower: power,
			TotalEnergy:  s.TotalEnergy,
			LastUpdated:  lastUpdated.UnixMilli(),
			Readings:     MockReadings(power, now, rng),
		})
	}
	if err := ValidateDevices(devices); err != nil {
		return nil, err
	}
	return devices, nil
}

// MockReadings generates a full history of readings around base watts,
// oldest first, the newest stamped at now.
func MockReadings(base float64, now time.Time, rng simulation.RandomSource) []models.EnergyReading {
	readings := make([]models.EnergyReading, simulation.HistoryCapacity)
	for i := range readings {
		age := time.Duration(simulation.HistoryCapacity-1-i) * SeedInterval
		power := math.Max(0, base+(rng.Float64()-0.5)*2*seedNoise)
		readings[i] = models.EnergyReading{
			Timestamp: now.Add(-age).UnixMilli(),
			Power:     power,
			Energy:    (power / 1000) * SeedInterval.Hours(),
		}
	}
	return readings
}
