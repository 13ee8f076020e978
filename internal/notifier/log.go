package notifier

import (
	"log/slog"

	"github.com/jobalert/jobalert/internal/model"
)

// Ensure LogNotifier implements model.Notifier.
var _ model.Notifier = (*LogNotifier)(nil)

// LogNotifier writes the summary and digest to the given logger.
type LogNotifier struct {
	logger *slog.Logger
}

// NewLogNotifier returns a notifier that logs via slog.
func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

// SendSummary logs the summary text. stdout logging does not fail.
func (n *LogNotifier) SendSummary(text string) error {
	n.logger.Info("run summary\n" + text)
	return nil
}

// SendDigest logs each entry with its score and reason.
func (n *LogNotifier) SendDigest(entries []model.ScoredCandidate) error {
	for i, c := range entries {
		n.logger.Info("digest entry",
			"rank", i+1,
			"source", c.Source,
			"title", c.Title,
			"score", c.Score,
			"reason", c.Reason,
			"url", c.URL,
		)
	}
	return nil
}
