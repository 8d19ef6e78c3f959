package dashboard

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"energydash/internal/models"
	"energydash/internal/simulation"
)

// Controller owns the device collection. Ticks and commands are
// serialized under one lock and every change replaces the collection
// rather than editing it, so snapshots handed out earlier stay valid.
type Controller struct {
	mu         sync.Mutex
	devices    []models.Device
	selectedID *string
	rng        simulation.RandomSource
	clock      func() time.Time
	log        *slog.Logger

	subMu   sync.Mutex
	subs    map[int]chan models.Snapshot
	nextSub int
}

// Option configures a Controller
type Option func(*Controller)

// WithRandomSource sets the source of power perturbations
func WithRandomSource(rng simulation.RandomSource) Option {
	return func(c *Controller) { c.rng = rng }
}

// WithClock sets the clock used to stamp command snapshots
func WithClock(clock func() time.Time) Option {
	return func(c *Controller) { c.clock = clock }
}

// WithLogger sets the logger
func WithLogger(log *slog.Logger) Option {
	return func(c *Controller) { c.log = log }
}

// NewController creates a controller over devices. The first device
// starts selected.
func NewController(devices []models.Device, opts ...Option) (*Controller, error) {
	if err := ValidateDevices(devices); err != nil {
		return nil, err
	}
	c := &Controller{
		devices: append([]models.Device(nil), devices...),
		clock:   time.Now,
		log:     slog.Default(),
		subs:    make(map[int]chan models.Snapshot),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.rng == nil {
		c.rng = simulation.NewSeededSource(0)
	}
	c.log = c.log.With("component", "dashboard")
	if len(c.devices) > 0 {
		id := c.devices[0].ID
		c.selectedID = &id
	}
	return c, nil
}

// ValidateDevices checks that every device has a non-empty, unique id
func ValidateDevices(devices []models.Device) error {
	seen := make(map[string]struct{}, len(devices))
	for i, d := range devices {
		if d.ID == "" {
			return fmt.Errorf("device %d (%q) has no id", i, d.Name)
		}
		if _, dup := seen[d.ID]; dup {
			return fmt.Errorf("duplicate device id %q", d.ID)
		}
		seen[d.ID] = struct{}{}
	}
	return nil
}

// Tick advances every device by one simulation step ending at now
func (c *Controller) Tick(now time.Time) models.Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.devices = simulation.AdvanceAll(c.devices, now, c.rng)
	snap := c.snapshotLocked(now)
	c.publish(snap)
	return snap
}

// ToggleDevice switches the device with the given id on or off. An
// unknown id leaves the collection untouched and reports found=false.
func (c *Controller) ToggleDevice(id string) (snap models.Snapshot, found bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.devices, found = simulation.ToggleByID(c.devices, id)
	snap = c.snapshotLocked(c.clock())
	if !found {
		c.log.Debug("toggle ignored, unknown device", "device_id", id)
		return snap, false
	}
	c.log.Info("device toggled", "device_id", id)
	c.publish(snap)
	return snap, true
}

// SetDeviceActive toggles the device only when its state differs from
// active. changed is false when the device is unknown or already there.
func (c *Controller) SetDeviceActive(id string, active bool) (snap models.Snapshot, changed bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, d := range c.devices {
		if d.ID == id && d.IsActive != active {
			c.devices, changed = simulation.ToggleByID(c.devices, id)
			break
		}
	}
	snap = c.snapshotLocked(c.clock())
	if changed {
		c.log.Info("device switched", "device_id", id, "active", active)
		c.publish(snap)
	}
	return snap, changed
}

// SelectDevice sets the UI selection; an empty id clears it. Selecting an
// id that does not exist renders as no selection.
func (c *Controller) SelectDevice(id string) models.Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	if id == "" {
		c.selectedID = nil
	} else {
		c.selectedID = &id
	}
	snap := c.snapshotLocked(c.clock())
	c.publish(snap)
	return snap
}

// Stats aggregates the current collection. It is recomputed on every
// call.
func (c *Controller) Stats() models.DashboardStats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return simulation.Aggregate(c.devices)
}

// Devices returns the current collection. Readings are shared with the
// controller and must be treated as read-only.
func (c *Controller) Devices() []models.Device {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]models.Device(nil), c.devices...)
}

// Device looks up one device by id
func (c *Controller) Device(id string) (models.Device, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, d := range c.devices {
		if d.ID == id {
			return d, true
		}
	}
	return models.Device{}, false
}

// Snapshot returns the current devices, stats and selection
func (c *Controller) Snapshot() models.Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked(c.clock())
}

func (c *Controller) snapshotLocked(at time.Time) models.Snapshot {
	snap := models.Snapshot{
		Devices:     append([]models.Device(nil), c.devices...),
		Stats:       simulation.Aggregate(c.devices),
		GeneratedAt: at.UnixMilli(),
	}
	if c.selectedID != nil {
		for _, d := range c.devices {
			if d.ID == *c.selectedID {
				id := d.ID
				snap.SelectedDeviceID = &id
				break
			}
		}
	}
	return snap
}

// Subscribe returns a channel that receives a snapshot after every tick
// and every command that changed state. A slow reader only sees the most
// recent snapshot. The returned func unsubscribes and closes the channel.
func (c *Controller) Subscribe() (<-chan models.Snapshot, func()) {
	ch := make(chan models.Snapshot, 1)

	c.subMu.Lock()
	id := c.nextSub
	c.nextSub++
	c.subs[id] = ch
	c.subMu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			c.subMu.Lock()
			delete(c.subs, id)
			close(ch)
			c.subMu.Unlock()
		})
	}
}

// publish must be called with c.mu held so subscribers see snapshots in
// order.
func (c *Controller) publish(snap models.Snapshot) {
	c.subMu.Lock()
	defer c.subMu.Unlock()

	for _, ch := range c.subs {
		select {
		case ch <- snap:
			continue
		default:
		}
		// drop the stale snapshot and replace it
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- snap:
		default:
		}
	}
}
