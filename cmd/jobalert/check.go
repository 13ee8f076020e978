package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jobalert/jobalert/internal/notifier"
	"github.com/jobalert/jobalert/internal/store"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Run once, log the digest, exit",
	Long:  "Dry run: scrapes and scores every source and logs the summary and digest. Nothing is marked seen and nothing is sent.",
	RunE:  runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)
	cfg := mustLoadConfig(logger)

	logger.Info("check mode: no jobs will be marked as seen")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	p := setupPipeline(cfg, store.NewNopStore(), notifier.NewLogNotifier(logger), logger)
	report, err := p.Run(ctx)
	if err != nil {
		logger.Error("check failed", "error", err)
		os.Exit(1)
	}

	logger.Info("check complete", "run_id", report.RunID, "digest", len(report.Digest))
	return nil
}
