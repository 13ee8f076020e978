package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jobalert/jobalert/internal/runlock"
	"github.com/jobalert/jobalert/internal/scheduler"
	"github.com/jobalert/jobalert/internal/store"
)

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the scheduler daemon",
	Long:  "Runs the pipeline immediately, then on the configured cron schedule; blocks until SIGINT/SIGTERM.",
	RunE:  runStart,
}

func init() {
	rootCmd.AddCommand(startCmd)
}

func runStart(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)
	cfg := mustLoadConfig(logger)

	logger.Info("config loaded",
		"schedule", cfg.Schedule,
		"sources", len(cfg.Sources),
		"storage", store.Backend(cfg.Storage),
		"channels", cfg.Notification.Channels(),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	seen, err := store.Open(ctx, cfg.Storage)
	if err != nil {
		logger.Error("failed to open store", "error", err)
		os.Exit(1)
	}
	defer seen.Close()

	p := setupPipeline(cfg, seen, setupNotifier(cfg, logger), logger)
	job := runlock.Guard(cfg.LockFile, func(ctx context.Context) error {
		_, err := p.Run(ctx)
		return err
	})

	sched := scheduler.New(cfg.Schedule, job, logger)
	if err := sched.Run(ctx); err != nil {
		logger.Error("scheduler error", "error", err)
		seen.Close()
		os.Exit(1)
	}

	logger.Info("goodbye")
	return nil
}
