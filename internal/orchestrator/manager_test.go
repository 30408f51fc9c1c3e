package orchestrator_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"autopost/internal/logging"
	"autopost/internal/orchestrator"
)

func TestTryStartRunGrantsSingleSlot(t *testing.T) {
	manager := orchestrator.NewManager(nil, logging.NewNop())

	handle, err := manager.TryStartRun(orchestrator.TriggerManual)
	if err != nil {
		t.Fatalf("TryStartRun: %v", err)
	}
	if handle.RunID == "" {
		t.Fatal("handle should carry a run id")
	}
	if !manager.Status().Running {
		t.Fatal("status should report running after slot claim")
	}

	if _, err := manager.TryStartRun(orchestrator.TriggerScheduled); !errors.Is(err, orchestrator.ErrBusy) {
		t.Fatalf("expected ErrBusy, got %v", err)
	}

	handle.Complete(orchestrator.Result{Code: orchestrator.CodeSuccess, Body: "done"})
	if manager.Status().Running {
		t.Fatal("status should report idle after completion")
	}
}

func TestConcurrentClaimsAdmitExactlyOne(t *testing.T) {
	manager := orchestrator.NewManager(nil, logging.NewNop())

	const attempts = 64
	var granted atomic.Int32
	var wg sync.WaitGroup
	handles := make([]*orchestrator.Handle, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			handle, err := manager.TryStartRun(orchestrator.TriggerManual)
			if err == nil {
				granted.Add(1)
				handles[i] = handle
			}
		}(i)
	}
	wg.Wait()

	if granted.Load() != 1 {
		t.Fatalf("granted %d slots, want exactly 1", granted.Load())
	}
	for _, handle := range handles {
		handle.Complete(orchestrator.Result{Code: orchestrator.CodeSuccess})
	}
}

func TestBusyRejectionMutatesNothing(t *testing.T) {
	manager := orchestrator.NewManager(nil, logging.NewNop())

	handle, err := manager.TryStartRun(orchestrator.TriggerManual)
	if err != nil {
		t.Fatalf("TryStartRun: %v", err)
	}
	before := manager.Status()

	if _, err := manager.TryStartRun(orchestrator.TriggerScheduled); !errors.Is(err, orchestrator.ErrBusy) {
		t.Fatalf("expected ErrBusy, got %v", err)
	}

	after := manager.Status()
	if before.Running != after.Running || before.LastRun != nil || after.LastRun != nil || after.LastResult != nil {
		t.Fatalf("busy rejection changed status: before=%+v after=%+v", before, after)
	}
	handle.Complete(orchestrator.Result{Code: orchestrator.CodeSuccess})
}

func TestStartRunRecordsOutcome(t *testing.T) {
	fixed := time.Date(2026, time.August, 20, 12, 0, 0, 0, time.UTC)
	runner := orchestrator.RunnerFunc(func(ctx context.Context, runID string) orchestrator.Result {
		return orchestrator.Result{Code: orchestrator.CodePartial, Body: "published 1 of 2 assets"}
	})
	manager := orchestrator.NewManager(runner, logging.NewNop(),
		orchestrator.WithClock(func() time.Time { return fixed }),
	)

	if _, err := manager.StartRun(context.Background(), orchestrator.TriggerScheduled); err != nil {
		t.Fatalf("StartRun: %v", err)
	}
	manager.Wait()

	status := manager.Status()
	if status.Running {
		t.Fatal("run should have completed")
	}
	if status.LastRun == nil || !status.LastRun.Equal(fixed) {
		t.Fatalf("last run = %v, want %v", status.LastRun, fixed)
	}
	if status.LastResult == nil || status.LastResult.Code != orchestrator.CodePartial {
		t.Fatalf("last result = %+v", status.LastResult)
	}
	if status.LastResult.Body != "published 1 of 2 assets" {
		t.Fatalf("result body = %q", status.LastResult.Body)
	}
}

func TestPanickingRunnerRecordsFatal(t *testing.T) {
	runner := orchestrator.RunnerFunc(func(ctx context.Context, runID string) orchestrator.Result {
		panic("pipeline exploded")
	})
	manager := orchestrator.NewManager(runner, logging.NewNop())

	if _, err := manager.StartRun(context.Background(), orchestrator.TriggerManual); err != nil {
		t.Fatalf("StartRun: %v", err)
	}
	manager.Wait()

	status := manager.Status()
	if status.Running {
		t.Fatal("slot should be released after panic")
	}
	if status.LastResult == nil || status.LastResult.Code != orchestrator.CodeFatal {
		t.Fatalf("expected fatal result, got %+v", status.LastResult)
	}

	// The slot must be reusable after the crash.
	handle, err := manager.TryStartRun(orchestrator.TriggerManual)
	if err != nil {
		t.Fatalf("slot not reusable after panic: %v", err)
	}
	handle.Complete(orchestrator.Result{Code: orchestrator.CodeSuccess})
}

func TestCompleteIsExactlyOnce(t *testing.T) {
	manager := orchestrator.NewManager(nil, logging.NewNop())

	handle, err := manager.TryStartRun(orchestrator.TriggerManual)
	if err != nil {
		t.Fatalf("TryStartRun: %v", err)
	}
	handle.Complete(orchestrator.Result{Code: orchestrator.CodeSuccess, Body: "first"})
	handle.Complete(orchestrator.Result{Code: orchestrator.CodeFatal, Body: "second"})

	status := manager.Status()
	if status.LastResult == nil || status.LastResult.Body != "first" {
		t.Fatalf("duplicate completion overwrote result: %+v", status.LastResult)
	}
}

func TestSetNextRunVisibleInStatus(t *testing.T) {
	manager := orchestrator.NewManager(nil, logging.NewNop())
	next := time.Date(2026, time.August, 21, 12, 0, 0, 0, time.UTC)

	manager.SetNextRun(next)
	status := manager.Status()
	if status.NextRun == nil || !status.NextRun.Equal(next) {
		t.Fatalf("next run = %v, want %v", status.NextRun, next)
	}
}

type recorderSpy struct {
	mu       sync.Mutex
	started  []string
	finished []int
}

func (r *recorderSpy) RecordRunStart(ctx context.Context, runID, trigger string, startedAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.started = append(r.started, trigger)
	return nil
}

func (r *recorderSpy) RecordRunFinish(ctx context.Context, runID string, statusCode int, summary string, finishedAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.finished = append(r.finished, statusCode)
	return nil
}

func TestRecorderObservesRunLifecycle(t *testing.T) {
	spy := &recorderSpy{}
	runner := orchestrator.RunnerFunc(func(ctx context.Context, runID string) orchestrator.Result {
		return orchestrator.Result{Code: orchestrator.CodeSuccess, Body: "ok"}
	})
	manager := orchestrator.NewManager(runner, logging.NewNop(), orchestrator.WithRecorder(spy))

	if err := manager.ManualTrigger(context.Background()); err != nil {
		t.Fatalf("ManualTrigger: %v", err)
	}
	manager.Wait()

	spy.mu.Lock()
	defer spy.mu.Unlock()
	if len(spy.started) != 1 || spy.started[0] != "manual" {
		t.Fatalf("recorded starts = %v", spy.started)
	}
	if len(spy.finished) != 1 || spy.finished[0] != orchestrator.CodeSuccess {
		t.Fatalf("recorded finishes = %v", spy.finished)
	}
}
