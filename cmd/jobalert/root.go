package main

import (
	"io"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/jobalert/jobalert/internal/config"
	"github.com/jobalert/jobalert/internal/extract"
	"github.com/jobalert/jobalert/internal/fetch"
	"github.com/jobalert/jobalert/internal/model"
	"github.com/jobalert/jobalert/internal/notifier"
	"github.com/jobalert/jobalert/internal/pipeline"
	"github.com/jobalert/jobalert/internal/ratelimit"
	"github.com/jobalert/jobalert/internal/retry"
)

var (
	cfgPath string
	debug   bool
)

var rootCmd = &cobra.Command{
	Use:   "jobalert",
	Short: "Daily digest of new job postings",
	Long:  "jobalert scrapes career pages, scores new postings against your keywords, and sends the best ones to Discord, Slack or Telegram.",
	// Default to `run` so that a plain `jobalert` from cron does one pass.
	RunE: runRun,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "path to config file (default: JOBALERT_CONFIG env var or ./sources.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
}

// loadConfig reads .env, resolves the config path and parses it.
// Priority: explicit path arg > JOBALERT_CONFIG env var > "./sources.yaml"
func loadConfig(path string) (*config.Config, error) {
	if err := config.LoadDotEnv(); err != nil {
		return nil, err
	}
	return config.Load(config.ResolvePath(path))
}

// mustLoadConfig exits the process on a bad config.
func mustLoadConfig(logger *slog.Logger) *config.Config {
	cfg, err := loadConfig(cfgPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	return cfg
}

func setupLogger(dbg bool) *slog.Logger {
	logLevel := slog.LevelInfo
	if dbg {
		logLevel = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel}))
}

// discardLogger is for TUI commands, where log output would corrupt the screen.
func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// setupFetcher builds HTTP -> per-host rate limit -> retry. Retries go back
// through the limiter so a 429 does not hammer the host.
func setupFetcher(cfg *config.Config, logger *slog.Logger) model.Fetcher {
	var f model.Fetcher = fetch.NewHTTPFetcher(nil, fetch.Options{
		Timeout:      cfg.Fetch.Timeout,
		MaxBodyBytes: cfg.Fetch.MaxBodyBytes,
		UserAgents:   cfg.Fetch.UserAgents,
	})
	f = ratelimit.NewRateLimitedFetcher(f, ratelimit.NewHostRateLimiter(cfg.Fetch.HostDelay))
	return retry.NewRetryFetcher(f, cfg.Fetch.MaxRetries, cfg.Fetch.BaseDelay, cfg.Fetch.MaxDelay, logger)
}

// setupNotifier fans out to every configured channel. A channel that fails to
// initialise is logged and left out; with none left, the digest is logged.
func setupNotifier(cfg *config.Config, logger *slog.Logger) model.Notifier {
	httpClient := &http.Client{Timeout: 30 * time.Second}
	nc := cfg.Notification

	var multi notifier.Multi
	if nc.DiscordWebhookURL != "" {
		multi = append(multi, notifier.NewDiscordNotifier(nc.DiscordWebhookURL, httpClient, logger))
	}
	if nc.SlackWebhookURL != "" {
		multi = append(multi, notifier.NewSlackNotifier(nc.SlackWebhookURL, httpClient, logger))
	}
	if nc.TelegramBotToken != "" {
		tg, err := notifier.NewTelegramNotifier(nc.TelegramBotToken, nc.TelegramChatID, httpClient, logger)
		if err != nil {
			logger.Error("telegram disabled", "error", err)
		} else {
			multi = append(multi, tg)
		}
	}

	if len(multi) == 0 {
		logger.Info("no notification channel configured, digest will be logged")
		return notifier.NewLogNotifier(logger)
	}
	logger.Info("notifiers configured", "channels", nc.Channels())
	return multi
}

func pipelineSettings(cfg *config.Config) pipeline.Settings {
	return pipeline.Settings{
		Sources:     cfg.Sources,
		Rules:       cfg.Keywords,
		Scoring:     cfg.Scoring,
		Digest:      cfg.Digest,
		Concurrency: cfg.Fetch.Concurrency,
	}
}

func setupPipeline(cfg *config.Config, seen model.SeenStore, n model.Notifier, logger *slog.Logger) *pipeline.Pipeline {
	return pipeline.New(
		pipelineSettings(cfg),
		setupFetcher(cfg, logger),
		extract.NewDefaultExtractor(cfg.Generic),
		seen,
		n,
		logger,
	)
}
