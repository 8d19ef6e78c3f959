package scheduler

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"energydash/internal/simulation"
)

// Ticker is what the scheduler drives once per tick
type Ticker interface {
	Tick(now time.Time)
}

// TickerFunc adapts a plain function to Ticker
type TickerFunc func(now time.Time)

func (f TickerFunc) Tick(now time.Time) { f(now) }

// Scheduler fires the simulation tick at a fixed cadence. A tick that is
// still running when the next one is due causes that one to be skipped,
// so ticks never overlap.
type Scheduler struct {
	cron    *cron.Cron
	log     *slog.Logger
	clock   func() time.Time
	entryID cron.EntryID

	mu      sync.Mutex
	running bool
	stopped bool
	ticks   uint64
}

// cronLogger forwards cron's internal messages to slog
type cronLogger struct {
	log *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Debug(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.Error(msg, append(keysAndValues, "error", err)...)
}

// NewScheduler creates a scheduler
func NewScheduler(log *slog.Logger) *Scheduler {
	if log == nil {
		log = slog.Default()
	}
	log = log.With("component", "scheduler")
	cl := cronLogger{log: log}
	return &Scheduler{
		cron: cron.New(
			cron.WithLogger(cl),
			cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
		),
		log:   log,
		clock: time.Now,
	}
}

// Every registers t to run at each interval. It must be called before
// Start and only once.
func (s *Scheduler) Every(interval time.Duration, t Ticker) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.entryID != 0 {
		return fmt.Errorf("scheduler already has a tick job")
	}
	if interval < time.Second {
		return fmt.Errorf("tick interval %s is below cron resolution", interval)
	}

	s.entryID = s.cron.Schedule(cron.Every(interval), cron.FuncJob(func() {
		if s.isStopped() {
			return
		}
		t.Tick(s.clock())
		s.mu.Lock()
		s.ticks++
		s.mu.Unlock()
	}))
	s.log.Info("tick job scheduled", "interval", interval)
	return nil
}

// Simulation registers t at the simulation tick interval
func (s *Scheduler) Simulation(t Ticker) error {
	return s.Every(simulation.TickInterval, t)
}

// Start starts the scheduler
func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running || s.stopped {
		return
	}
	s.running = true
	s.cron.Start()
	s.log.Info("scheduler started")
}

// Stop deregisters the tick and waits for an in-flight tick to finish.
// No tick runs after Stop returns.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return
	}
	s.stopped = true
	wasRunning := s.running
	s.running = false
	if s.entryID != 0 {
		s.cron.Remove(s.entryID)
	}
	s.mu.Unlock()

	if wasRunning {
		ctx := s.cron.Stop()
		<-ctx.Done()
	}
	s.log.Info("scheduler stopped", "ticks", s.Ticks())
}

// Ticks returns how many ticks have completed
func (s *Scheduler) Ticks() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ticks
}

func (s *Scheduler) isStopped() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stopped
}
