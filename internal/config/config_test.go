package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/jobalert/jobalert/internal/model"
)

// clearEnv blanks the fallback variables so the host environment cannot leak
// into a test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{"DB_PATH", "DISCORD_WEBHOOK_URL", "SLACK_WEBHOOK_URL", "TELEGRAM_BOT_TOKEN", "TELEGRAM_CHAT_ID", EnvConfigPath} {
		t.Setenv(k, "")
	}
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sources.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

const minimalSources = `
sources:
  - name: Wanted
    url: https://www.wanted.co.kr/wdlist/518
`

func TestLoad_ValidConfig(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `
sources:
  - name: Wanted
    url: https://www.wanted.co.kr/wdlist/518
  - name: Saramin
    url: https://www.saramin.co.kr/zf_user/search?searchword=backend
keywords:
  include: [golang, kubernetes]
  exclude: [intern]
scoring:
  title_hit: 8
  body_hit: 2
  exclude_penalty: -500
digest:
  min_score: 4
  max_items: 5
storage: /var/lib/jobalert/seen.db
fetch:
  timeout: 20s
  max_retries: 3
  base_delay: 1s
  max_delay: 30s
  host_delay: 500ms
  concurrency: 4
extract:
  generic:
    path_hints: [/careers/]
    min_title_length: 4
schedule: "0 8 * * MON-FRI"
lock_file: /tmp/jobalert.lock
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if len(cfg.Sources) != 2 || cfg.Sources[1].Name != "Saramin" {
		t.Errorf("Sources = %+v", cfg.Sources)
	}
	if strings.Join(cfg.Keywords.Include, ",") != "golang,kubernetes" || strings.Join(cfg.Keywords.Exclude, ",") != "intern" {
		t.Errorf("Keywords = %+v", cfg.Keywords)
	}
	if cfg.Scoring != (model.ScoringPolicy{TitleHit: 8, BodyHit: 2, ExcludePenalty: -500}) {
		t.Errorf("Scoring = %+v", cfg.Scoring)
	}
	if cfg.Digest != (model.DigestPolicy{MinScore: 4, MaxItems: 5}) {
		t.Errorf("Digest = %+v", cfg.Digest)
	}
	if cfg.Storage != "/var/lib/jobalert/seen.db" {
		t.Errorf("Storage = %q", cfg.Storage)
	}
	f := cfg.Fetch
	if f.Timeout != 20*time.Second || f.MaxRetries != 3 || f.BaseDelay != time.Second ||
		f.MaxDelay != 30*time.Second || f.HostDelay != 500*time.Millisecond || f.Concurrency != 4 {
		t.Errorf("Fetch = %+v", f)
	}
	if len(cfg.Generic.PathHints) != 1 || cfg.Generic.MinTitleLength != 4 {
		t.Errorf("Generic = %+v", cfg.Generic)
	}
	if cfg.Schedule != "0 8 * * MON-FRI" || cfg.LockFile != "/tmp/jobalert.lock" {
		t.Errorf("Schedule = %q, LockFile = %q", cfg.Schedule, cfg.LockFile)
	}
	if len(cfg.Notification.Channels()) != 0 {
		t.Errorf("Channels = %v, want none", cfg.Notification.Channels())
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)
	cfg, err := Load(writeConfig(t, minimalSources))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Scoring != (model.ScoringPolicy{TitleHit: 10, BodyHit: 3, ExcludePenalty: -1000}) {
		t.Errorf("Scoring = %+v", cfg.Scoring)
	}
	if cfg.Digest != (model.DigestPolicy{MinScore: 1, MaxItems: 10}) {
		t.Errorf("Digest = %+v", cfg.Digest)
	}
	if cfg.Storage != DefaultStorage {
		t.Errorf("Storage = %q, want %q", cfg.Storage, DefaultStorage)
	}
	if cfg.Fetch.Timeout != 15*time.Second || cfg.Fetch.MaxRetries != 2 || cfg.Fetch.BaseDelay != 2*time.Second ||
		cfg.Fetch.MaxDelay != 10*time.Second || cfg.Fetch.Concurrency != 1 {
		t.Errorf("Fetch = %+v", cfg.Fetch)
	}
	if cfg.Schedule != "0 9 * * *" {
		t.Errorf("Schedule = %q", cfg.Schedule)
	}
	if cfg.LockFile != DefaultLockFile {
		t.Errorf("LockFile = %q", cfg.LockFile)
	}
}

func TestLoad_ZeroValuesAreKept(t *testing.T) {
	clearEnv(t)
	cfg, err := Load(writeConfig(t, minimalSources+`
scoring:
  body_hit: 0
digest:
  min_score: 0
fetch:
  max_retries: 0
lock_file: ""
`))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Scoring.BodyHit != 0 || cfg.Scoring.TitleHit != 10 {
		t.Errorf("Scoring = %+v, want explicit 0 body_hit and default title_hit", cfg.Scoring)
	}
	if cfg.Digest.MinScore != 0 {
		t.Errorf("MinScore = %d, want 0", cfg.Digest.MinScore)
	}
	if cfg.Fetch.MaxRetries != 0 {
		t.Errorf("MaxRetries = %d, want 0", cfg.Fetch.MaxRetries)
	}
	if cfg.LockFile != "" {
		t.Errorf("LockFile = %q, want empty (disabled)", cfg.LockFile)
	}
}

func TestLoad_EnvironmentFallbacks(t *testing.T) {
	clearEnv(t)
	t.Setenv("DB_PATH", "postgres://jobalert@localhost/jobalert")
	t.Setenv("DISCORD_WEBHOOK_URL", "https://discord.com/api/webhooks/1/abc")
	t.Setenv("TELEGRAM_BOT_TOKEN", "123:token")
	t.Setenv("TELEGRAM_CHAT_ID", "-100200300")

	cfg, err := Load(writeConfig(t, minimalSources))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Storage != "postgres://jobalert@localhost/jobalert" {
		t.Errorf("Storage = %q", cfg.Storage)
	}
	if cfg.Notification.DiscordWebhookURL != "https://discord.com/api/webhooks/1/abc" {
		t.Errorf("DiscordWebhookURL = %q", cfg.Notification.DiscordWebhookURL)
	}
	if cfg.Notification.TelegramChatID != -100200300 {
		t.Errorf("TelegramChatID = %d", cfg.Notification.TelegramChatID)
	}
	if got := strings.Join(cfg.Notification.Channels(), ","); got != "discord,telegram" {
		t.Errorf("Channels = %q", got)
	}
}

func TestLoad_ExpandsVariables(t *testing.T) {
	clearEnv(t)
	t.Setenv("JOBALERT_TEST_HOOK", "https://hooks.slack.com/services/T/B/X")
	cfg, err := Load(writeConfig(t, minimalSources+`
notification:
  slack_webhook_url: ${JOBALERT_TEST_HOOK}
`))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Notification.SlackWebhookURL != "https://hooks.slack.com/services/T/B/X" {
		t.Errorf("SlackWebhookURL = %q", cfg.Notification.SlackWebhookURL)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nonexistent.yaml")
	_, err := Load(path)
	var cfgErr *model.ConfigError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("Load error = %v, want *model.ConfigError", err)
	}
	if cfgErr.Path != path {
		t.Errorf("ConfigError.Path = %q, want %q", cfgErr.Path, path)
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected wrapped os.ErrNotExist, got %v", err)
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"broken yaml", "sources: [broken"},
		{"no sources", "keywords:\n  include: [go]\n"},
		{"missing name", "sources:\n  - url: https://example.com/jobs\n"},
		{"relative url", "sources:\n  - name: A\n    url: /jobs\n"},
		{"non-http url", "sources:\n  - name: A\n    url: ftp://example.com/jobs\n"},
		{"duplicate names", "sources:\n  - name: A\n    url: https://a.example.com\n  - name: A\n    url: https://b.example.com\n"},
		{"zero max items", minimalSources + "digest:\n  max_items: 0\n"},
		{"bad duration", minimalSources + "fetch:\n  timeout: soon\n"},
		{"zero concurrency", minimalSources + "fetch:\n  concurrency: -1\n"},
		{"bad schedule", minimalSources + "schedule: every morning\n"},
		{"slack host", minimalSources + "notification:\n  slack_webhook_url: https://example.com/hook\n"},
		{"discord host", minimalSources + "notification:\n  discord_webhook_url: https://example.com/hook\n"},
		{"telegram without chat", minimalSources + "notification:\n  telegram:\n    bot_token: \"123:abc\"\n"},
		{"telegram bad chat", minimalSources + "notification:\n  telegram:\n    bot_token: \"123:abc\"\n    chat_id: general\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			_, err := Load(writeConfig(t, tt.content))
			var cfgErr *model.ConfigError
			if !errors.As(err, &cfgErr) {
				t.Fatalf("Load error = %v, want *model.ConfigError", err)
			}
		})
	}
}

func TestResolvePath(t *testing.T) {
	t.Setenv(EnvConfigPath, "")
	if got := ResolvePath(""); got != DefaultPath {
		t.Errorf("ResolvePath(\"\") = %q, want %q", got, DefaultPath)
	}

	t.Setenv(EnvConfigPath, "/etc/jobalert/sources.yaml")
	if got := ResolvePath(""); got != "/etc/jobalert/sources.yaml" {
		t.Errorf("ResolvePath with env = %q", got)
	}
	if got := ResolvePath("custom.yaml"); got != "custom.yaml" {
		t.Errorf("flag should win, got %q", got)
	}
}

func TestLoadDotEnv(t *testing.T) {
	const key = "JOBALERT_DOTENV_TEST_VALUE"
	os.Unsetenv(key)
	t.Cleanup(func() { os.Unsetenv(key) })

	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte(key+"=from-dotenv\n"), 0644); err != nil {
		t.Fatal(err)
	}

	missing := filepath.Join(t.TempDir(), "absent.env")
	if err := LoadDotEnv(missing, path); err != nil {
		t.Fatalf("LoadDotEnv: %v", err)
	}
	if got := os.Getenv(key); got != "from-dotenv" {
		t.Errorf("%s = %q, want from-dotenv", key, got)
	}
}
