// Package scheduler fires the daily publishing run.
//
// The scheduler computes the next fire time at a fixed UTC hour and
// minute, publishes it to the orchestrator for the status display, and
// asks the orchestrator to start a run when the timer fires. A fire that
// lands while a run is in flight is skipped, never queued; the next fire
// time still advances so the dashboard always shows the next intended
// fire, not the next successful one.
package scheduler

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"autopost/internal/config"
	"autopost/internal/logging"
	"autopost/internal/orchestrator"
)

// Scheduler drives scheduled runs through the orchestrator's single gate.
type Scheduler struct {
	orch   *orchestrator.Manager
	hour   int
	minute int
	logger *slog.Logger
	now    func() time.Time

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// Option configures optional Scheduler behavior.
type Option func(*Scheduler)

// WithClock overrides the time source (used in tests).
func WithClock(now func() time.Time) Option {
	return func(s *Scheduler) {
		if now != nil {
			s.now = now
		}
	}
}

// New constructs a scheduler from configuration.
func New(cfg *config.Config, orch *orchestrator.Manager, logger *slog.Logger, opts ...Option) *Scheduler {
	s := &Scheduler{
		orch:   orch,
		hour:   cfg.Schedule.Hour,
		minute: cfg.Schedule.Minute,
		logger: logging.NewComponentLogger(logger, "scheduler"),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start begins the timer loop.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return errors.New("scheduler already running")
	}
	loopCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.running = true
	s.wg.Add(1)
	s.mu.Unlock()

	// Publish the first fire time before the loop starts so status
	// readers never observe a running scheduler with no next_run.
	s.orch.SetNextRun(s.NextFire(s.now()))

	go s.loop(loopCtx)
	return nil
}

// Stop terminates the timer loop and waits for it to exit.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	cancel := s.cancel
	s.running = false
	s.cancel = nil
	s.mu.Unlock()

	cancel()
	s.wg.Wait()
}

func (s *Scheduler) loop(ctx context.Context) {
	defer s.wg.Done()

	timer := time.NewTimer(0)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		next := s.NextFire(s.now())
		s.orch.SetNextRun(next)
		s.logger.Info("next run scheduled", logging.Time("next_run", next))

		timer.Reset(next.Sub(s.now()))
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
		}

		s.fire(ctx)
	}
}

func (s *Scheduler) fire(ctx context.Context) {
	_, err := s.orch.StartRun(ctx, orchestrator.TriggerScheduled)
	switch {
	case err == nil:
	case errors.Is(err, orchestrator.ErrBusy):
		// No queueing: a fire during an in-flight run is a no-op.
		s.logger.Info("scheduled fire skipped, run already in progress")
	default:
		s.logger.Error("scheduled run failed to start", logging.Error(err))
	}
}

// NextFire computes the next daily fire time strictly after now.
func (s *Scheduler) NextFire(now time.Time) time.Time {
	now = now.UTC()
	next := time.Date(now.Year(), now.Month(), now.Day(), s.hour, s.minute, 0, 0, time.UTC)
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}
