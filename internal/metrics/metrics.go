package metrics

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"

	"energydash/internal/models"
)

// Metrics exposes dashboard snapshots as Prometheus gauges
type Metrics struct {
	totalPower   prometheus.Gauge
	totalEnergy  prometheus.Gauge
	active       prometheus.Gauge
	average      prometheus.Gauge
	devicePower  *prometheus.GaugeVec
	deviceEnergy *prometheus.GaugeVec
	deviceActive *prometheus.GaugeVec
	snapshots    prometheus.Counter
}

// New creates the collectors and registers them with reg
func New(reg prometheus.Registerer) *Metrics {
	labels := []string{"device_id", "name", "type"}
	m := &Metrics{
		totalPower: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "energydash", Name: "total_power_watts",
			Help: "Sum of current power over active devices.",
		}),
		totalEnergy: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "energydash", Name: "total_energy_kwh",
			Help: "Sum of cumulative energy over all devices.",
		}),
		active: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "energydash", Name: "active_devices",
			Help: "Number of active devices.",
		}),
		average: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "energydash", Name: "average_consumption_watts",
			Help: "Total power divided by active devices.",
		}),
		devicePower: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "energydash", Name: "device_power_watts",
			Help: "Current power of a device.",
		}, labels),
		deviceEnergy: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "energydash", Name: "device_energy_kwh",
			Help: "Cumulative energy of a device.",
		}, labels),
		deviceActive: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "energydash", Name: "device_active",
			Help: "1 when the device is on.",
		}, labels),
		snapshots: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "energydash", Name: "snapshots_total",
			Help: "Snapshots observed (ticks and commands).",
		}),
	}
	reg.MustRegister(m.totalPower, m.totalEnergy, m.active, m.average,
		m.devicePower, m.deviceEnergy, m.deviceActive, m.snapshots)
	return m
}

// Observe updates every gauge from snap
func (m *Metrics) Observe(snap models.Snapshot) {
	m.totalPower.Set(snap.Stats.TotalPower)
	m.totalEnergy.Set(snap.Stats.TotalEnergy)
	m.active.Set(float64(snap.Stats.ActiveDevices))
	m.average.Set(snap.Stats.AverageConsumption)
	for _, d := range snap.Devices {
		lv := []string{d.ID, d.Name, string(d.Type)}
		m.devicePower.WithLabelValues(lv...).Set(d.CurrentPower)
		m.deviceEnergy.WithLabelValues(lv...).Set(d.TotalEnergy)
		on := 0.0
		if d.IsActive {
			on = 1
		}
		m.deviceActive.WithLabelValues(lv...).Set(on)
	}
	m.snapshots.Inc()
}

// Run observes snapshots until ctx is done or snaps is closed
func (m *Metrics) Run(ctx context.Context, snaps <-chan models.Snapshot) {
	for {
		select {
		case <-ctx.Done():
			return
		case snap, ok := <-snaps:
			if !ok {
				return
			}
			m.Observe(snap)
		}
	}
}
