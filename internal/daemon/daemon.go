// Package daemon wires the orchestrator, scheduler, tracker, and HTTP
// API into a single long-running process guarded by a file lock.
package daemon

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"

	"log/slog"

	"github.com/gofrs/flock"

	"autopost/internal/config"
	"autopost/internal/logging"
	"autopost/internal/orchestrator"
	"autopost/internal/scheduler"
	"autopost/internal/tracker"
)

// Daemon owns the background services and enforces single-instance
// execution via a lock file.
type Daemon struct {
	cfg     *config.Config
	logger  *slog.Logger
	store   *tracker.Store
	orch    *orchestrator.Manager
	sched   *scheduler.Scheduler
	api     *apiServer
	logPath string

	lockPath string
	lock     *flock.Flock

	running atomic.Bool
	cancel  context.CancelFunc
}

// Status represents daemon runtime information.
type Status struct {
	Running      bool
	PID          int
	Task         orchestrator.Snapshot
	TrackerPath  string
	LockFilePath string
	LogFilePath  string
}

// New constructs a daemon with initialized dependencies.
func New(cfg *config.Config, store *tracker.Store, orch *orchestrator.Manager, sched *scheduler.Scheduler, logger *slog.Logger) (*Daemon, error) {
	if cfg == nil || store == nil || orch == nil || sched == nil || logger == nil {
		return nil, errors.New("daemon requires config, tracker store, orchestrator, scheduler, and logger")
	}

	lockPath := filepath.Join(cfg.Paths.LogDir, "autopostd.lock")
	d := &Daemon{
		cfg:      cfg,
		logger:   logger,
		store:    store,
		orch:     orch,
		sched:    sched,
		logPath:  filepath.Join(cfg.Paths.LogDir, "autopost.log"),
		lockPath: lockPath,
		lock:     flock.New(lockPath),
	}

	api, err := newAPIServer(cfg, d, logger)
	if err != nil {
		return nil, err
	}
	d.api = api
	return d, nil
}

// Start acquires the daemon lock and launches the scheduler and API server.
func (d *Daemon) Start(ctx context.Context) error {
	if d.running.Load() {
		return errors.New("daemon already running")
	}

	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return errors.New("another autopost daemon instance is already running")
	}

	runCtx, cancel := context.WithCancel(ctx)
	d.cancel = cancel

	if err := d.sched.Start(runCtx); err != nil {
		_ = d.lock.Unlock()
		cancel()
		d.cancel = nil
		return fmt.Errorf("start scheduler: %w", err)
	}
	if err := d.api.start(runCtx); err != nil {
		d.sched.Stop()
		_ = d.lock.Unlock()
		cancel()
		d.cancel = nil
		return err
	}

	d.running.Store(true)
	d.logger.Info("autopost daemon started", logging.String("lock", d.lockPath))
	return nil
}

// Stop halts the scheduler and API server, waits for an in-flight run to
// finish, and releases the daemon lock.
func (d *Daemon) Stop() {
	if !d.running.Load() {
		return
	}

	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	d.sched.Stop()
	d.api.stop()
	d.orch.Wait()
	if err := d.lock.Unlock(); err != nil {
		d.logger.Warn("failed to release daemon lock", logging.Error(err))
	}
	d.running.Store(false)
	d.logger.Info("autopost daemon stopped")
}

// Close releases resources held by the daemon.
func (d *Daemon) Close() error {
	d.Stop()
	if d.store != nil {
		return d.store.Close()
	}
	return nil
}

// TriggerRun starts a run on behalf of an API request.
func (d *Daemon) TriggerRun(ctx context.Context) error {
	return d.orch.ManualTrigger(ctx)
}

// TaskStatus returns the current run status snapshot.
func (d *Daemon) TaskStatus() orchestrator.Snapshot {
	return d.orch.Status()
}

// Status returns daemon runtime information.
func (d *Daemon) Status() Status {
	return Status{
		Running:      d.running.Load(),
		PID:          os.Getpid(),
		Task:         d.orch.Status(),
		TrackerPath:  d.store.Path(),
		LockFilePath: d.lockPath,
		LogFilePath:  d.LogPath(),
	}
}

// RecentRuns lists the most recent run records, newest first.
func (d *Daemon) RecentRuns(ctx context.Context, limit int) ([]tracker.Run, error) {
	if d.store == nil {
		return nil, errors.New("tracker store unavailable")
	}
	return d.store.RecentRuns(ctx, limit)
}

// LogPath returns the path to the daemon log file.
func (d *Daemon) LogPath() string {
	return d.logPath
}
