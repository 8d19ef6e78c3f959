package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"energydash/internal/models"
	"energydash/internal/simulation"
)

const StatsKey = "dashboard:stats"

// DeviceKey holds the latest state of a device as JSON
func DeviceKey(id string) string { return fmt.Sprintf("device:%s", id) }

// StreamKey holds the rolling reading history of a device
func StreamKey(id string) string { return fmt.Sprintf("stream:device:%s", id) }

// Publisher mirrors dashboard snapshots into Redis: stats as a hash,
// device state as JSON with a TTL and readings as a capped stream.
type Publisher struct {
	client *redis.Client
	ttl    time.Duration
	log    *slog.Logger

	// newest reading timestamp already streamed, per device
	streamed map[string]int64
}

// NewPublisher creates a snapshot publisher
func NewPublisher(client *redis.Client, ttl time.Duration, log *slog.Logger) *Publisher {
	if log == nil {
		log = slog.Default()
	}
	return &Publisher{
		client:   client,
		ttl:      ttl,
		log:      log.With("component", "redis"),
		streamed: make(map[string]int64),
	}
}

// Publish writes one snapshot in a single pipeline
func (p *Publisher) Publish(ctx context.Context, snap models.Snapshot) error {
	pipe := p.client.Pipeline()

	pipe.HSet(ctx, StatsKey, map[string]interface{}{
		"totalPower":         snap.Stats.TotalPower,
		"totalEnergy":        snap.Stats.TotalEnergy,
		"activeDevices":      snap.Stats.ActiveDevices,
		"averageConsumption": snap.Stats.AverageConsumption,
		"generatedAt":        snap.GeneratedAt,
	})
	pipe.Expire(ctx, StatsKey, p.ttl)

	pending := make(map[string]int64)
	for _, d := range snap.Devices {
		state, err := json.Marshal(d.State())
		if err != nil {
			return fmt.Errorf("encoding device %s: %w", d.ID, err)
		}
		pipe.Set(ctx, DeviceKey(d.ID), state, p.ttl)

		fresh := ReadingsAfter(d.Readings, p.streamed[d.ID])
		for _, r := range fresh {
			pipe.XAdd(ctx, &redis.XAddArgs{
				Stream: StreamKey(d.ID),
				MaxLen: simulation.HistoryCapacity,
				Approx: true,
				Values: map[string]interface{}{
					"timestamp": r.Timestamp,
					"power":     r.Power,
					"energy":    r.Energy,
				},
			})
		}
		if len(fresh) > 0 {
			pending[d.ID] = fresh[len(fresh)-1].Timestamp
		}
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis pipeline: %w", err)
	}
	for id, ts := range pending {
		p.streamed[id] = ts
	}
	return nil
}

// Run publishes every snapshot received until ctx is done or snaps is
// closed. Failures are logged and the next snapshot is tried.
func (p *Publisher) Run(ctx context.Context, snaps <-chan models.Snapshot) {
	p.log.Info("publishing snapshots to redis")
	for {
		select {
		case <-ctx.Done():
			return
		case snap, ok := <-snaps:
			if !ok {
				return
			}
			wctx, cancel := context.WithTimeout(ctx, simulation.TickInterval)
			if err := p.Publish(wctx, snap); err != nil {
				p.log.Warn("snapshot not published", "error", err)
			}
			cancel()
		}
	}
}

// ReadingsAfter returns the tail of readings stamped strictly after ts.
// readings are oldest first.
func ReadingsAfter(readings []models.EnergyReading, ts int64) []models.EnergyReading {
	i := len(readings)
	for i > 0 && readings[i-1].Timestamp > ts {
		i--
	}
	return readings[i:]
}
