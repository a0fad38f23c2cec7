package main

import (
	"context"
	"errors"
	"log"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/gofrs/flock"

	"mapwatch/internal/config"
	"mapwatch/internal/logging"
	"mapwatch/internal/monitor"
	"mapwatch/internal/notifications"
	"mapwatch/internal/roster"
	"mapwatch/internal/store"
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

	logger, err := logging.NewForDaemon(cfg.Logging.Level, cfg.Logging.Format, cfg.Paths.LogDir)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}

	lock := flock.New(filepath.Join(cfg.Paths.LogDir, "mapwatchd.lock"))
	locked, err := lock.TryLock()
	if err != nil {
		logging.ErrorWithContext(logger, "acquire instance lock failed", "startup_failed",
			logging.Error(err))
		log.Fatalf("acquire instance lock: %v", err)
	}
	if !locked {
		log.Fatal("another mapwatchd instance is already running")
	}
	defer lock.Unlock() //nolint:errcheck

	unitRoster, err := roster.Load(cfg.Paths.RosterPath)
	if err != nil {
		logging.ErrorWithContext(logger, "load roster failed", "startup_failed",
			logging.Error(err))
		log.Fatalf("load roster %s: %v", cfg.Paths.RosterPath, err)
	}

	ledger, err := store.Open(cfg.Paths.DatabaseDir)
	if err != nil {
		logging.ErrorWithContext(logger, "open ledger failed", "startup_failed",
			logging.Error(err))
		log.Fatalf("open ledger: %v", err)
	}
	defer ledger.Close() //nolint:errcheck

	notifier := notifications.NewService(cfg.Notifications.NtfyTopic, cfg.NotificationTimeout())

	coordinator, err := monitor.New(cfg, logger, unitRoster, ledger, notifier)
	if err != nil {
		log.Fatalf("create monitor: %v", err)
	}

	if err := coordinator.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logging.ErrorWithContext(logger, "monitor stopped", "monitor_failed",
			logging.Error(err))
		log.Fatalf("monitor: %v", err)
	}
	logger.Info("mapwatchd shutting down")
}
