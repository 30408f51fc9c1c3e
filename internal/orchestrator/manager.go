package orchestrator

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"autopost/internal/logging"
)

// Manager coordinates run execution and owns the process-wide run status.
type Manager struct {
	runner   Runner
	recorder RunRecorder
	logger   *slog.Logger
	now      func() time.Time

	mu      sync.Mutex
	running bool
	lastRun *time.Time
	nextRun *time.Time
	result  *Result
	wg      sync.WaitGroup
}

// Option configures optional Manager behavior.
type Option func(*Manager)

// WithRecorder attaches a run history recorder.
func WithRecorder(recorder RunRecorder) Option {
	return func(m *Manager) {
		m.recorder = recorder
	}
}

// WithClock overrides the time source (used in tests).
func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		if now != nil {
			m.now = now
		}
	}
}

// NewManager constructs a run orchestrator around the given runner.
func NewManager(runner Runner, logger *slog.Logger, opts ...Option) *Manager {
	m := &Manager{
		runner: runner,
		logger: logging.NewComponentLogger(logger, "orchestrator"),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// TryStartRun atomically claims the single run slot. It returns ErrBusy,
// with no side effects, when a run is already in flight. This check-and-set
// is the sole concurrency guarantee of the system.
func (m *Manager) TryStartRun(trigger Trigger) (*Handle, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.running {
		return nil, ErrBusy
	}
	m.running = true
	return &Handle{
		RunID:     uuid.NewString(),
		Trigger:   trigger,
		StartedAt: m.now().UTC(),
		manager:   m,
	}, nil
}

// StartRun claims the run slot and executes the pipeline in a background
// goroutine. It returns as soon as the slot is claimed; the outcome becomes
// visible through Status once the run finishes.
func (m *Manager) StartRun(ctx context.Context, trigger Trigger) (*Handle, error) {
	handle, err := m.TryStartRun(trigger)
	if err != nil {
		return nil, err
	}

	m.logger.Info("run started",
		logging.String(logging.FieldRunID, handle.RunID),
		logging.String(logging.FieldTrigger, string(trigger)),
	)
	if m.recorder != nil {
		if recErr := m.recorder.RecordRunStart(ctx, handle.RunID, string(trigger), handle.StartedAt); recErr != nil {
			m.logger.Warn("failed to record run start", logging.Error(recErr))
		}
	}

	// Runs are never cancelled mid-flight; detach from the caller's
	// cancellation while keeping its values.
	runCtx := context.WithoutCancel(ctx)
	m.wg.Add(1)
	go m.execute(runCtx, handle)
	return handle, nil
}

// ManualTrigger starts a run on behalf of a user request. Busy is surfaced
// as ErrBusy for the caller to translate; it never mutates run status.
func (m *Manager) ManualTrigger(ctx context.Context) error {
	_, err := m.StartRun(ctx, TriggerManual)
	return err
}

func (m *Manager) execute(ctx context.Context, handle *Handle) {
	defer m.wg.Done()
	defer func() {
		if r := recover(); r != nil {
			m.logger.Error("pipeline panicked",
				logging.String(logging.FieldRunID, handle.RunID),
				logging.Any("panic", r),
			)
			handle.Complete(Result{Code: CodeFatal, Body: fmt.Sprintf("pipeline panic: %v", r)})
		}
	}()

	outcome := m.runner.Run(ctx, handle.RunID)
	handle.Complete(outcome)
}

// completeRun releases the run slot and records the outcome. Reached only
// through Handle.Complete, which enforces exactly-once semantics.
func (m *Manager) completeRun(handle *Handle, outcome Result) {
	finished := m.now().UTC()

	m.mu.Lock()
	m.running = false
	m.lastRun = &finished
	result := outcome
	m.result = &result
	m.mu.Unlock()

	m.logger.Info("run completed",
		logging.String(logging.FieldRunID, handle.RunID),
		logging.Int("status_code", outcome.Code),
		logging.Duration("elapsed", finished.Sub(handle.StartedAt)),
	)
	if m.recorder != nil {
		if err := m.recorder.RecordRunFinish(context.Background(), handle.RunID, outcome.Code, outcome.Body, finished); err != nil {
			m.logger.Warn("failed to record run finish", logging.Error(err))
		}
	}
}

// SetNextRun publishes the next scheduled fire time. Called by the
// scheduler after every fire, whether or not the run actually started.
func (m *Manager) SetNextRun(t time.Time) {
	utc := t.UTC()
	m.mu.Lock()
	m.nextRun = &utc
	m.mu.Unlock()
}

// Status returns a consistent snapshot of the run status.
func (m *Manager) Status() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	snapshot := Snapshot{Running: m.running}
	if m.lastRun != nil {
		t := *m.lastRun
		snapshot.LastRun = &t
	}
	if m.nextRun != nil {
		t := *m.nextRun
		snapshot.NextRun = &t
	}
	if m.result != nil {
		r := *m.result
		snapshot.LastResult = &r
	}
	return snapshot
}

// Wait blocks until all in-flight runs have completed. Used during
// shutdown and in tests.
func (m *Manager) Wait() {
	m.wg.Wait()
}
