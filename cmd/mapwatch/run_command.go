package main

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"mapwatch/internal/logging"
	"mapwatch/internal/monitor"
	"mapwatch/internal/notifications"
	"mapwatch/internal/roster"
	"mapwatch/internal/store"
)

func newRunCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Monitor the inbox for today's collection period in the foreground",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if err := cfg.EnsureDirectories(); err != nil {
				return err
			}

			logger, err := logging.New(logging.Options{
				Level:       cfg.Logging.Level,
				Format:      cfg.Logging.Format,
				OutputPaths: []string{"stderr"},
			})
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}

			unitRoster, err := roster.Load(cfg.Paths.RosterPath)
			if err != nil {
				return fmt.Errorf("load roster %s: %w", cfg.Paths.RosterPath, err)
			}

			ledger, err := store.Open(cfg.Paths.DatabaseDir)
			if err != nil {
				return fmt.Errorf("open ledger: %w", err)
			}
			defer ledger.Close() //nolint:errcheck

			notifier := notifications.NewService(cfg.Notifications.NtfyTopic, cfg.NotificationTimeout())

			coordinator, err := monitor.New(cfg, logger, unitRoster, ledger, notifier)
			if err != nil {
				return err
			}

			runCtx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			if err := coordinator.Run(runCtx); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		},
	}
}
