package notifier

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/jobalert/jobalert/internal/model"
)

var _ model.Notifier = (*DiscordNotifier)(nil)

// DiscordNotifier posts the summary and one message per digest entry to a
// Discord channel webhook.
type DiscordNotifier struct {
	webhookURL string
	httpClient *http.Client
	logger     *slog.Logger
	pause      time.Duration
}

func NewDiscordNotifier(webhookURL string, httpClient *http.Client, logger *slog.Logger) *DiscordNotifier {
	return &DiscordNotifier{
		webhookURL: webhookURL,
		httpClient: httpClient,
		logger:     logger,
		pause:      500 * time.Millisecond,
	}
}

type discordPayload struct {
	Content string `json:"content"`
}

// SendSummary posts the summary, cut to Discord's message limit.
func (d *DiscordNotifier) SendSummary(text string) error {
	if err := postJSON(d.httpClient, d.webhookURL, discordPayload{Content: truncate(text, discordMessageLimit)}, d.logger); err != nil {
		return fmt.Errorf("discord summary: %w", err)
	}
	return nil
}

// SendDigest posts one message per entry, in order.
func (d *DiscordNotifier) SendDigest(entries []model.ScoredCandidate) error {
	return sendEach("discord", len(entries), d.pause, d.logger, func(i int) error {
		msg := truncate(formatEntry(entries[i]), discordMessageLimit)
		return postJSON(d.httpClient, d.webhookURL, discordPayload{Content: msg}, d.logger)
	})
}
