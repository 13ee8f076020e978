package notifier

import (
	"fmt"
	"time"

	"github.com/jobalert/jobalert/internal/model"
)

// Per-message limits of the chat platforms.
const (
	discordMessageLimit  = 2000
	slackSectionLimit    = 3000
	slackHeaderLimit     = 150
	telegramMessageLimit = 4096
)

// formatEntry renders one digest entry in the Discord markdown layout.
func formatEntry(c model.ScoredCandidate) string {
	return fmt.Sprintf("[%s] **%s**\nScore: %d\nReason: %s\nURL: %s", c.Source, c.Title, c.Score, c.Reason, c.URL)
}

// truncate shortens s to at most limit runes, ending with "..." when cut.
func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	if limit <= 3 {
		return string(runes[:limit])
	}
	return string(runes[:limit-3]) + "..."
}

// chunk splits s into pieces of at most limit runes, preferring to break
// after a newline.
func chunk(s string, limit int) []string {
	runes := []rune(s)
	var out []string
	for len(runes) > limit {
		cut := limit
		for i := limit - 1; i > limit/2; i-- {
			if runes[i] == '\n' {
				cut = i + 1
				break
			}
		}
		out = append(out, string(runes[:cut]))
		runes = runes[cut:]
	}
	if len(runes) > 0 {
		out = append(out, string(runes))
	}
	return out
}

// SendTestMessage sends a dummy summary and digest entry to verify the
// integration works.
func SendTestMessage(n model.Notifier) error {
	summary := fmt.Sprintf("jobalert test notification (%s)", time.Now().Format("2006-01-02 15:04"))
	if err := n.SendSummary(summary); err != nil {
		return fmt.Errorf("sending test summary: %w", err)
	}
	entry := model.ScoredCandidate{
		Source: "jobalert",
		Title:  "Test Notification: Integration Verified",
		URL:    "https://example.com/jobs/test",
		Score:  10,
		Reason: "Matched keywords: test(title)",
	}
	if err := n.SendDigest([]model.ScoredCandidate{entry}); err != nil {
		return fmt.Errorf("sending test digest: %w", err)
	}
	return nil
}
