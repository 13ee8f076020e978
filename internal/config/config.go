package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/jobalert/jobalert/internal/extract"
	"github.com/jobalert/jobalert/internal/fetch"
	"github.com/jobalert/jobalert/internal/model"
	"github.com/jobalert/jobalert/internal/retry"
	"github.com/jobalert/jobalert/internal/scheduler"
)

const (
	DefaultPath     = "sources.yaml"
	DefaultStorage  = "jobs.db"
	DefaultLockFile = "jobalert.lock"
	EnvConfigPath   = "JOBALERT_CONFIG"
)

// Config is the root configuration for jobalert.
type Config struct {
	Sources      []model.Source
	Keywords     model.KeywordRules
	Scoring      model.ScoringPolicy
	Digest       model.DigestPolicy
	Storage      string // SQLite path or postgres:// / redis:// URL
	Notification NotificationConfig
	Fetch        FetchConfig
	Generic      extract.GenericOptions
	Schedule     string
	LockFile     string
}

// NotificationConfig holds the credentials of every enabled channel. A
// channel is enabled when its credentials are set; with none, the digest is
// only logged.
type NotificationConfig struct {
	DiscordWebhookURL string
	SlackWebhookURL   string
	TelegramBotToken  string
	TelegramChatID    int64
}

// Channels lists the enabled channel names.
func (n NotificationConfig) Channels() []string {
	var out []string
	if n.DiscordWebhookURL != "" {
		out = append(out, "discord")
	}
	if n.SlackWebhookURL != "" {
		out = append(out, "slack")
	}
	if n.TelegramBotToken != "" {
		out = append(out, "telegram")
	}
	return out
}

// FetchConfig controls the HTTP fetcher and its decorators.
type FetchConfig struct {
	Timeout      time.Duration
	MaxRetries   int
	BaseDelay    time.Duration
	MaxDelay     time.Duration
	HostDelay    time.Duration // minimum gap between requests to the same host
	Concurrency  int           // listing pages fetched in parallel
	MaxBodyBytes int64
	UserAgents   []string
}

// rawConfig is used for YAML unmarshaling (snake_case fields, durations as strings).
type rawConfig struct {
	Sources      []model.Source  `yaml:"sources"`
	Keywords     rawKeywords     `yaml:"keywords"`
	Scoring      rawScoring      `yaml:"scoring"`
	Digest       rawDigest       `yaml:"digest"`
	Storage      string          `yaml:"storage"`
	Notification rawNotification `yaml:"notification"`
	Fetch        rawFetch        `yaml:"fetch"`
	Extract      rawExtract      `yaml:"extract"`
	Schedule     string          `yaml:"schedule"`
	LockFile     *string         `yaml:"lock_file"`
}

type rawKeywords struct {
	Include []string `yaml:"include"`
	Exclude []string `yaml:"exclude"`
}

type rawScoring struct {
	TitleHit       *int `yaml:"title_hit"`
	BodyHit        *int `yaml:"body_hit"`
	ExcludePenalty *int `yaml:"exclude_penalty"`
}

type rawDigest struct {
	MinScore *int `yaml:"min_score"`
	MaxItems *int `yaml:"max_items"`
}

type rawNotification struct {
	DiscordWebhookURL string      `yaml:"discord_webhook_url"`
	SlackWebhookURL   string      `yaml:"slack_webhook_url"`
	Telegram          rawTelegram `yaml:"telegram"`
}

type rawTelegram struct {
	BotToken string `yaml:"bot_token"`
	ChatID   string `yaml:"chat_id"`
}

type rawFetch struct {
	Timeout      string   `yaml:"timeout"`
	MaxRetries   *int     `yaml:"max_retries"`
	BaseDelay    string   `yaml:"base_delay"`
	MaxDelay     string   `yaml:"max_delay"`
	HostDelay    string   `yaml:"host_delay"`
	Concurrency  int      `yaml:"concurrency"`
	MaxBodyBytes int64    `yaml:"max_body_bytes"`
	UserAgents   []string `yaml:"user_agents"`
}

type rawExtract struct {
	Generic rawGeneric `yaml:"generic"`
}

type rawGeneric struct {
	PathHints      []string `yaml:"path_hints"`
	MinTitleLength int      `yaml:"min_title_length"`
}

// ResolvePath picks the config file: the flag value if set, then
// $JOBALERT_CONFIG, then ./sources.yaml.
func ResolvePath(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if env := os.Getenv(EnvConfigPath); env != "" {
		return env
	}
	return DefaultPath
}

// LoadDotEnv loads variables from the given .env files (default ./.env)
// without overriding ones already set. Missing files are ignored.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("load %s: %w", p, err)
		}
	}
	return nil
}

// Load reads and parses the YAML config file at path, validates it, and returns Config.
// Every failure is a *model.ConfigError.
func Load(path string) (*Config, error) {
	cfg, err := load(path)
	if err != nil {
		return nil, &model.ConfigError{Path: path, Err: err}
	}
	return cfg, nil
}

func load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	// Expand environment variables
	expanded := os.ExpandEnv(string(data))

	var raw rawConfig
	if err := yaml.Unmarshal([]byte(expanded), &raw); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	fetchCfg, err := parseFetch(raw.Fetch)
	if err != nil {
		return nil, err
	}

	notif, err := parseNotification(raw.Notification)
	if err != nil {
		return nil, err
	}

	storage := raw.Storage
	if storage == "" {
		storage = envOr("DB_PATH", DefaultStorage)
	}

	schedule := raw.Schedule
	if schedule == "" {
		schedule = scheduler.DefaultSpec
	}

	lockFile := DefaultLockFile
	if raw.LockFile != nil {
		lockFile = *raw.LockFile
	}

	cfg := &Config{
		Sources: raw.Sources,
		Keywords: model.KeywordRules{
			Include: raw.Keywords.Include,
			Exclude: raw.Keywords.Exclude,
		},
		Scoring: model.ScoringPolicy{
			TitleHit:       intOr(raw.Scoring.TitleHit, 10),
			BodyHit:        intOr(raw.Scoring.BodyHit, 3),
			ExcludePenalty: intOr(raw.Scoring.ExcludePenalty, -1000),
		},
		Digest: model.DigestPolicy{
			MinScore: intOr(raw.Digest.MinScore, 1),
			MaxItems: intOr(raw.Digest.MaxItems, 10),
		},
		Storage:      storage,
		Notification: notif,
		Fetch:        fetchCfg,
		Generic: extract.GenericOptions{
			PathHints:      raw.Extract.Generic.PathHints,
			MinTitleLength: raw.Extract.Generic.MinTitleLength,
		},
		Schedule: schedule,
		LockFile: lockFile,
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func parseFetch(raw rawFetch) (FetchConfig, error) {
	cfg := FetchConfig{
		MaxRetries:   intOr(raw.MaxRetries, retry.DefaultMaxRetries),
		Concurrency:  raw.Concurrency,
		MaxBodyBytes: raw.MaxBodyBytes,
		UserAgents:   raw.UserAgents,
	}
	if cfg.Concurrency == 0 {
		cfg.Concurrency = 1
	}
	if cfg.MaxBodyBytes == 0 {
		cfg.MaxBodyBytes = fetch.DefaultMaxBodyBytes
	}

	durations := []struct {
		name string
		raw  string
		def  time.Duration
		dst  *time.Duration
	}{
		{"fetch.timeout", raw.Timeout, fetch.DefaultTimeout, &cfg.Timeout},
		{"fetch.base_delay", raw.BaseDelay, retry.DefaultBaseDelay, &cfg.BaseDelay},
		{"fetch.max_delay", raw.MaxDelay, retry.DefaultMaxDelay, &cfg.MaxDelay},
		{"fetch.host_delay", raw.HostDelay, 2 * time.Second, &cfg.HostDelay},
	}
	for _, d := range durations {
		*d.dst = d.def
		if d.raw == "" {
			continue
		}
		v, err := time.ParseDuration(d.raw)
		if err != nil {
			return cfg, fmt.Errorf("parse %s %q: %w", d.name, d.raw, err)
		}
		*d.dst = v
	}
	return cfg, nil
}

func parseNotification(raw rawNotification) (NotificationConfig, error) {
	cfg := NotificationConfig{
		DiscordWebhookURL: raw.DiscordWebhookURL,
		SlackWebhookURL:   raw.SlackWebhookURL,
		TelegramBotToken:  raw.Telegram.BotToken,
	}
	if cfg.DiscordWebhookURL == "" {
		cfg.DiscordWebhookURL = os.Getenv("DISCORD_WEBHOOK_URL")
	}
	if cfg.SlackWebhookURL == "" {
		cfg.SlackWebhookURL = os.Getenv("SLACK_WEBHOOK_URL")
	}
	if cfg.TelegramBotToken == "" {
		cfg.TelegramBotToken = os.Getenv("TELEGRAM_BOT_TOKEN")
	}

	chatID := raw.Telegram.ChatID
	if chatID == "" {
		chatID = os.Getenv("TELEGRAM_CHAT_ID")
	}
	if chatID != "" {
		id, err := strconv.ParseInt(chatID, 10, 64)
		if err != nil {
			return cfg, fmt.Errorf("parse notification.telegram.chat_id %q: %w", chatID, err)
		}
		cfg.TelegramChatID = id
	}
	return cfg, nil
}

func validate(cfg *Config) error {
	if len(cfg.Sources) == 0 {
		return fmt.Errorf("at least one source is required")
	}
	names := make(map[string]bool, len(cfg.Sources))
	for i, s := range cfg.Sources {
		if s.Name == "" {
			return fmt.Errorf("sources[%d]: name is required", i)
		}
		if names[s.Name] {
			return fmt.Errorf("sources[%d]: duplicate name %q", i, s.Name)
		}
		names[s.Name] = true
		u, err := url.Parse(s.URL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("sources[%d] (%s): url must be an absolute http(s) URL, got %q", i, s.Name, s.URL)
		}
	}

	if cfg.Digest.MaxItems <= 0 {
		return fmt.Errorf("digest.max_items must be positive, got %d", cfg.Digest.MaxItems)
	}

	f := cfg.Fetch
	if f.Timeout <= 0 {
		return fmt.Errorf("fetch.timeout must be positive, got %v", f.Timeout)
	}
	if f.MaxRetries < 0 {
		return fmt.Errorf("fetch.max_retries must not be negative, got %d", f.MaxRetries)
	}
	if f.BaseDelay < 0 || f.MaxDelay < 0 || f.HostDelay < 0 {
		return fmt.Errorf("fetch delays must not be negative")
	}
	if f.Concurrency < 1 {
		return fmt.Errorf("fetch.concurrency must be at least 1, got %d", f.Concurrency)
	}
	if f.MaxBodyBytes < 0 {
		return fmt.Errorf("fetch.max_body_bytes must not be negative, got %d", f.MaxBodyBytes)
	}

	if cfg.Generic.MinTitleLength < 0 {
		return fmt.Errorf("extract.generic.min_title_length must not be negative, got %d", cfg.Generic.MinTitleLength)
	}

	n := cfg.Notification
	if n.SlackWebhookURL != "" && !strings.HasPrefix(n.SlackWebhookURL, "https://hooks.slack.com/") {
		return fmt.Errorf("notification.slack_webhook_url must start with https://hooks.slack.com/")
	}
	if n.DiscordWebhookURL != "" &&
		!strings.HasPrefix(n.DiscordWebhookURL, "https://discord.com/api/webhooks/") &&
		!strings.HasPrefix(n.DiscordWebhookURL, "https://discordapp.com/api/webhooks/") {
		return fmt.Errorf("notification.discord_webhook_url must be a discord.com webhook URL")
	}
	if n.TelegramBotToken != "" && n.TelegramChatID == 0 {
		return fmt.Errorf("notification.telegram.chat_id is required when a bot token is set")
	}

	if err := scheduler.Validate(cfg.Schedule); err != nil {
		return fmt.Errorf("schedule: %w", err)
	}

	return nil
}

func intOr(v *int, def int) int {
	if v == nil {
		return def
	}
	return *v
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
