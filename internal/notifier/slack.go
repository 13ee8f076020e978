package notifier

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/jobalert/jobalert/internal/model"
)

// Ensure SlackNotifier implements model.Notifier.
var _ model.Notifier = (*SlackNotifier)(nil)

// SlackNotifier sends the digest to a Slack channel via Incoming Webhooks.
type SlackNotifier struct {
	webhookURL string
	httpClient *http.Client
	logger     *slog.Logger
	pause      time.Duration
}

// NewSlackNotifier returns a notifier that posts to Slack via webhook.
func NewSlackNotifier(webhookURL string, httpClient *http.Client, logger *slog.Logger) *SlackNotifier {
	return &SlackNotifier{
		webhookURL: webhookURL,
		httpClient: httpClient,
		logger:     logger,
		pause:      500 * time.Millisecond,
	}
}

// SendSummary posts the summary as one message, split across sections when it
// exceeds Slack's section text limit.
func (s *SlackNotifier) SendSummary(text string) error {
	var blocks []slackBlock
	for _, part := range chunk(text, slackSectionLimit) {
		blocks = append(blocks, slackBlock{
			Type: "section",
			Text: &slackText{Type: "mrkdwn", Text: part},
		})
	}
	if len(blocks) == 0 {
		return nil
	}
	if err := postJSON(s.httpClient, s.webhookURL, slackPayload{Blocks: blocks}, s.logger); err != nil {
		return fmt.Errorf("slack summary: %w", err)
	}
	return nil
}

// SendDigest sends each entry as a separate Slack message using Block Kit.
// Returns an error only if ALL messages fail. Individual failures are logged.
func (s *SlackNotifier) SendDigest(entries []model.ScoredCandidate) error {
	return sendEach("slack", len(entries), s.pause, s.logger, func(i int) error {
		return postJSON(s.httpClient, s.webhookURL, buildPayload(entries[i]), s.logger)
	})
}

// Block Kit payload types.

type slackPayload struct {
	Blocks []slackBlock `json:"blocks"`
}

type slackBlock struct {
	Type     string         `json:"type"`
	Text     *slackText     `json:"text,omitempty"`
	Fields   []slackText    `json:"fields,omitempty"`
	Elements []slackElement `json:"elements,omitempty"`
}

type slackText struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type slackElement struct {
	Type  string    `json:"type"`
	Text  slackText `json:"text"`
	URL   string    `json:"url"`
	Style string    `json:"style"`
}

func buildPayload(c model.ScoredCandidate) slackPayload {
	return slackPayload{Blocks: []slackBlock{
		{
			Type: "header",
			Text: &slackText{Type: "plain_text", Text: truncate("["+c.Source+"] "+c.Title, slackHeaderLimit)},
		},
		{
			Type: "section",
			Fields: []slackText{
				{Type: "mrkdwn", Text: "*Score:*\n" + strconv.Itoa(c.Score)},
				{Type: "mrkdwn", Text: "*Source:*\n" + c.Source},
			},
		},
		{
			Type: "section",
			Text: &slackText{Type: "mrkdwn", Text: truncate("*Reason:* "+c.Reason, slackSectionLimit)},
		},
		{
			Type: "actions",
			Elements: []slackElement{
				{
					Type:  "button",
					Text:  slackText{Type: "plain_text", Text: "View Posting"},
					URL:   c.URL,
					Style: "primary",
				},
			},
		},
		{Type: "divider"},
	}}
}
