package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"autopost/internal/config"
	"autopost/internal/daemon"
	"autopost/internal/logging"
	"autopost/internal/orchestrator"
	"autopost/internal/pipeline"
	"autopost/internal/scheduler"
	"autopost/internal/services/ffmpeg"
	"autopost/internal/storage"
	"autopost/internal/tracker"
	"autopost/internal/workspace"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, _, _, err := config.Load("")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if err := cfg.EnsureDirectories(); err != nil {
		log.Fatalf("prepare directories: %v", err)
	}

	logger, err := logging.NewFromConfig(cfg)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}

	store, err := tracker.Open(cfg)
	if err != nil {
		logger.Error("open tracker store", logging.Error(err))
		return
	}

	objectStore, err := storage.NewS3Store(ctx, cfg, logger)
	if err != nil {
		logger.Error("init object storage", logging.Error(err))
		_ = store.Close()
		return
	}

	transformer := ffmpeg.NewCLIFromConfig(cfg)
	workspaceManager := workspace.NewManager(cfg.Paths.WorkRoot, logger)
	runPipeline := pipeline.New(cfg, objectStore, transformer, workspaceManager, store, store, logger)

	orch := orchestrator.NewManager(runPipeline, logger, orchestrator.WithRecorder(store))
	sched := scheduler.New(cfg, orch, logger)

	d, err := daemon.New(cfg, store, orch, sched, logger)
	if err != nil {
		logger.Error("create daemon", logging.Error(err))
		_ = store.Close()
		return
	}
	defer d.Close()

	if err := d.Start(ctx); err != nil {
		logger.Error("daemon start", logging.Error(err))
		return
	}

	<-ctx.Done()
	logger.Info("autopostd shutting down")
}
