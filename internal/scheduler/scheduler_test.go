package scheduler

import (
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestEveryRejectsSubSecondInterval(t *testing.T) {
	s := NewScheduler(quietLogger())

	err := s.Every(500*time.Millisecond, TickerFunc(func(time.Time) {}))

	assert.Error(t, err)
}

func TestEveryOnlyOnce(t *testing.T) {
	s := NewScheduler(quietLogger())
	noop := TickerFunc(func(time.Time) {})

	require.NoError(t, s.Simulation(noop))
	assert.Error(t, s.Simulation(noop))
}

func TestNoTicksAfterStop(t *testing.T) {
	s := NewScheduler(quietLogger())
	var count atomic.Int64
	require.NoError(t, s.Simulation(TickerFunc(func(time.Time) { count.Add(1) })))

	s.Start()
	require.Eventually(t, func() bool { return count.Load() >= 2 }, 5*time.Second, 20*time.Millisecond)
	s.Stop()

	stoppedAt := count.Load()
	time.Sleep(1500 * time.Millisecond)
	assert.Equal(t, stoppedAt, count.Load())
	assert.Equal(t, uint64(stoppedAt), s.Ticks())

	s.Stop()
	s.Start()
	time.Sleep(1200 * time.Millisecond)
	assert.Equal(t, stoppedAt, count.Load(), "a stopped scheduler does not restart")
}

func TestSlowTicksNeverOverlap(t *testing.T) {
	s := NewScheduler(quietLogger())
	var inFlight, maxInFlight, calls atomic.Int64
	require.NoError(t, s.Simulation(TickerFunc(func(time.Time) {
		calls.Add(1)
		n := inFlight.Add(1)
		for {
			m := maxInFlight.Load()
			if n <= m || maxInFlight.CompareAndSwap(m, n) {
				break
			}
		}
		time.Sleep(1500 * time.Millisecond)
		inFlight.Add(-1)
	})))

	s.Start()
	require.Eventually(t, func() bool { return calls.Load() >= 2 }, 6*time.Second, 20*time.Millisecond)
	s.Stop()

	assert.Equal(t, int64(1), maxInFlight.Load())
	assert.Equal(t, int64(0), inFlight.Load(), "Stop waits for the running tick")
}

func TestTickReceivesClockTime(t *testing.T) {
	s := NewScheduler(quietLogger())
	fixed := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	s.clock = func() time.Time { return fixed }
	got := make(chan time.Time, 4)
	require.NoError(t, s.Simulation(TickerFunc(func(now time.Time) {
		select {
		case got <- now:
		default:
		}
	})))

	s.Start()
	defer s.Stop()

	select {
	case now := <-got:
		assert.Equal(t, fixed, now)
	case <-time.After(3 * time.Second):
		t.Fatal("no tick")
	}
}
