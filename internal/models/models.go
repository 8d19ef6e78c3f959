package models

// DeviceType is the category of a simulated device
type DeviceType string

const (
	DeviceTypeAppliance DeviceType = "appliance"
	DeviceTypeLight     DeviceType = "light"
	DeviceTypeHVAC      DeviceType = "hvac"
	DeviceTypeOther     DeviceType = "other"
)

// Valid reports whether t is one of the known device types
func (t DeviceType) Valid() bool {
	switch t {
	case DeviceTypeAppliance, DeviceTypeLight, DeviceTypeHVAC, DeviceTypeOther:
		return true
	}
	return false
}

// EnergyReading is one sample in a device's rolling history
type EnergyReading struct {
	Timestamp int64   `json:"timestamp"` // ms since epoch
	Power     float64 `json:"power"`     // W
	Energy    float64 `json:"energy"`    // kWh contributed by this sample
}

// Device represents a simulated household device
type Device struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	Location     string          `json:"location"`
	Type         DeviceType      `json:"type"`
	IsActive     bool            `json:"isActive"`
	CurrentPower float64         `json:"currentPower"` // W
	TotalEnergy  float64         `json:"totalEnergy"`  // kWh
	LastUpdated  int64           `json:"lastUpdated"`  // ms since epoch
	Readings     []EnergyReading `json:"readings"`
}

// DeviceState is the history-free view of a device published to
// telemetry sinks
type DeviceState struct {
	ID           string     `json:"id"`
	Name         string     `json:"name"`
	Location     string     `json:"location"`
	Type         DeviceType `json:"type"`
	IsActive     bool       `json:"isActive"`
	CurrentPower float64    `json:"currentPower"`
	TotalEnergy  float64    `json:"totalEnergy"`
	LastUpdated  int64      `json:"lastUpdated"`
}

// State strips the reading history from d
func (d Device) State() DeviceState {
	return DeviceState{
		ID:           d.ID,
		Name:         d.Name,
		Location:     d.Location,
		Type:         d.Type,
		IsActive:     d.IsActive,
		CurrentPower: d.CurrentPower,
		TotalEnergy:  d.TotalEnergy,
		LastUpdated:  d.LastUpdated,
	}
}

// DashboardStats holds the dashboard-wide aggregates
type DashboardStats struct {
	TotalPower         float64 `json:"totalPower"`
	TotalEnergy        float64 `json:"totalEnergy"`
	ActiveDevices      int     `json:"activeDevices"`
	AverageConsumption float64 `json:"averageConsumption"`
}

// Snapshot is the read-only view handed to presentation and sinks
type Snapshot struct {
	Devices          []Device       `json:"devices"`
	Stats            DashboardStats `json:"stats"`
	SelectedDeviceID *string        `json:"selectedDeviceId"`
	GeneratedAt      int64          `json:"generatedAt"`
}

// SelectedDevice returns the selected device, if the selection refers to
// a device in the snapshot
func (s Snapshot) SelectedDevice() (Device, bool) {
	if s.SelectedDeviceID == nil {
		return Device{}, false
	}
	for _, d := range s.Devices {
		if d.ID == *s.SelectedDeviceID {
			return d, true
		}
	}
	return Device{}, false
}
