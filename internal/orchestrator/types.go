package orchestrator

import (
	"context"
	"errors"
	"sync"
	"time"
)

// Trigger identifies what requested a run.
type Trigger string

const (
	TriggerScheduled Trigger = "scheduled"
	TriggerManual    Trigger = "manual"
)

// Result status codes. Partial failures use 207 so the dashboard can
// distinguish "some assets failed" from a run that never got going.
const (
	CodeSuccess = 200
	CodePartial = 207
	CodeFatal   = 500
)

// ErrBusy is returned when a run is requested while another is in flight.
var ErrBusy = errors.New("a publishing run is already in progress")

// Result is the recorded outcome of a completed run.
type Result struct {
	Code int    `json:"status_code"`
	Body string `json:"body"`
}

// Runner executes one full pipeline run. Implementations must not panic;
// the orchestrator still recovers and records a fatal outcome if one does.
type Runner interface {
	Run(ctx context.Context, runID string) Result
}

// RunnerFunc adapts a function to the Runner interface.
type RunnerFunc func(ctx context.Context, runID string) Result

func (f RunnerFunc) Run(ctx context.Context, runID string) Result {
	return f(ctx, runID)
}

// RunRecorder persists run history. The orchestrator treats recording
// failures as log-worthy, never as run failures.
type RunRecorder interface {
	RecordRunStart(ctx context.Context, runID, trigger string, startedAt time.Time) error
	RecordRunFinish(ctx context.Context, runID string, statusCode int, summary string, finishedAt time.Time) error
}

// Snapshot is a consistent view of the run status, taken under the same
// lock that guards writes so readers never observe torn field pairs.
type Snapshot struct {
	Running    bool       `json:"running"`
	LastRun    *time.Time `json:"last_run,omitempty"`
	NextRun    *time.Time `json:"next_scheduled_run,omitempty"`
	LastResult *Result    `json:"result,omitempty"`
}

// Handle represents ownership of one granted run. Complete must be called
// exactly once; the sync.Once makes duplicate completions harmless.
type Handle struct {
	RunID     string
	Trigger   Trigger
	StartedAt time.Time

	once    sync.Once
	manager *Manager
}

// Complete finishes the run, recording its outcome and releasing the
// single concurrency slot. Safe to call from a deferred path after a
// panic; only the first call takes effect.
func (h *Handle) Complete(outcome Result) {
	if h == nil || h.manager == nil {
		return
	}
	h.once.Do(func() {
		h.manager.completeRun(h, outcome)
	})
}
