package notifier

import (
	"fmt"
	"html"
	"log/slog"
	"net/http"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/jobalert/jobalert/internal/model"
)

var _ model.Notifier = (*TelegramNotifier)(nil)

// telegramSender is the part of *tgbotapi.BotAPI the notifier uses.
type telegramSender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// TelegramNotifier sends the summary and digest to a Telegram chat via a bot.
type TelegramNotifier struct {
	bot    telegramSender
	chatID int64
	logger *slog.Logger
	pause  time.Duration
}

// NewTelegramNotifier authenticates the bot token (a getMe call) and returns a
// notifier bound to chatID.
func NewTelegramNotifier(token string, chatID int64, httpClient *http.Client, logger *slog.Logger) (*TelegramNotifier, error) {
	bot, err := tgbotapi.NewBotAPIWithClient(token, tgbotapi.APIEndpoint, httpClient)
	if err != nil {
		return nil, fmt.Errorf("failed to init telegram bot: %w", err)
	}
	return newTelegramNotifier(bot, chatID, logger), nil
}

func newTelegramNotifier(bot telegramSender, chatID int64, logger *slog.Logger) *TelegramNotifier {
	return &TelegramNotifier{
		bot:    bot,
		chatID: chatID,
		logger: logger,
		pause:  time.Second,
	}
}

// SendSummary sends the summary as plain text, split into as many messages as
// Telegram's limit requires.
func (t *TelegramNotifier) SendSummary(text string) error {
	for _, part := range chunk(text, telegramMessageLimit) {
		if _, err := t.bot.Send(tgbotapi.NewMessage(t.chatID, part)); err != nil {
			return fmt.Errorf("telegram summary: %w", err)
		}
	}
	return nil
}

// SendDigest sends one HTML-formatted message per entry.
func (t *TelegramNotifier) SendDigest(entries []model.ScoredCandidate) error {
	return sendEach("telegram", len(entries), t.pause, t.logger, func(i int) error {
		msg := tgbotapi.NewMessage(t.chatID, formatTelegramEntry(entries[i]))
		msg.ParseMode = tgbotapi.ModeHTML
		msg.DisableWebPagePreview = true
		_, err := t.bot.Send(msg)
		return err
	})
}

// formatTelegramEntry renders an entry in Telegram HTML. The reason is cut
// first when the message would exceed the limit; if the rest still does not
// fit, the reason is dropped and the title, then the source, then the URL are
// shortened. Cutting plain text before escaping keeps the markup balanced.
// Telegram counts the limit after entity parsing, so the room is measured on
// unescaped text.
func formatTelegramEntry(c model.ScoredCandidate) string {
	source, title, reason, url := c.Source, c.Title, c.Reason, c.URL
	fixed := len([]rune(fmt.Sprintf("[%s] %s\nScore: %d\nReason: \nURL: %s", source, title, c.Score, url)))
	if room := telegramMessageLimit - fixed; room >= 0 {
		reason = truncate(reason, room)
	} else {
		reason = ""
		over := -room
		for _, field := range []*string{&title, &source, &url} {
			if over <= 0 {
				break
			}
			n := len([]rune(*field))
			*field = truncate(*field, max(n-over, 0))
			over -= n - len([]rune(*field))
		}
	}
	return fmt.Sprintf("[%s] <b>%s</b>\nScore: %d\nReason: %s\nURL: %s",
		html.EscapeString(source),
		html.EscapeString(title),
		c.Score,
		html.EscapeString(reason),
		html.EscapeString(url),
	)
}
