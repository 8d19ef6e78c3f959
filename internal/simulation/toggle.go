package simulation

import "energydash/internal/models"

// Toggle flips d on or off. Switching off forces zero power; switching on
// resumes from the last power value.
func Toggle(d models.Device) models.Device {
	d.IsActive = !d.IsActive
	if !d.IsActive {
		d.CurrentPower = 0
	}
	return d
}

// ToggleByID returns a new collection with the device matching id
// toggled. found is false, and the collection is returned as is, when no
// device has that id.
func ToggleByID(devices []models.Device, id string) (next []models.Device, found bool) {
	for i := range devices {
		if devices[i].ID != id {
			continue
		}
		next = make([]models.Device, len(devices))
		copy(next, devices)
		next[i] = Toggle(devices[i])
		return next, true
	}
	return devices, false
}
