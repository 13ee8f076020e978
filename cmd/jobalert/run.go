package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jobalert/jobalert/internal/runlock"
	"github.com/jobalert/jobalert/internal/store"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the pipeline once and send the digest",
	Long:  "Scrapes every source, scores the new postings, marks them seen and sends the summary and digest. Intended for cron.",
	RunE:  runRun,
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)
	cfg := mustLoadConfig(logger)

	logger.Info("config loaded",
		"sources", len(cfg.Sources),
		"include_keywords", len(cfg.Keywords.Include),
		"exclude_keywords", len(cfg.Keywords.Exclude),
		"storage", store.Backend(cfg.Storage),
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
	run := runlock.Guard(cfg.LockFile, func(ctx context.Context) error {
		_, err := p.Run(ctx)
		return err
	})
	if err := run(ctx); err != nil {
		logger.Error("run failed", "error", err)
		seen.Close()
		os.Exit(1)
	}
	return nil
}
