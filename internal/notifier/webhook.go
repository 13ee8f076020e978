package notifier

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"
)

// postJSON posts payload to url. A 429 response is retried once after the
// Retry-After delay (minimum one second).
func postJSON(client *http.Client, url string, payload any, logger *slog.Logger) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	resp, err := client.Post(url, "application/json", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("post webhook: %w", err)
	}
	resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		secs, _ := strconv.Atoi(resp.Header.Get("Retry-After"))
		if secs <= 0 {
			secs = 1
		}
		logger.Warn("webhook rate limited, retrying", "retry_after_secs", secs)
		time.Sleep(time.Duration(secs) * time.Second)

		resp, err = client.Post(url, "application/json", bytes.NewReader(body))
		if err != nil {
			return fmt.Errorf("post webhook (retry): %w", err)
		}
		resp.Body.Close()
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("webhook returned %d", resp.StatusCode)
	}
	return nil
}

// sendEach calls send for every message, pausing between messages. It returns
// an error only if all of them fail; individual failures are logged.
func sendEach(channel string, n int, pause time.Duration, logger *slog.Logger, send func(i int) error) error {
	if n == 0 {
		return nil
	}
	failures := 0
	for i := 0; i < n; i++ {
		if i > 0 && pause > 0 {
			time.Sleep(pause)
		}
		if err := send(i); err != nil {
			logger.Error(channel+" notification failed", "index", i, "error", err)
			failures++
		}
	}
	if failures == n {
		return fmt.Errorf("all %d %s notifications failed", failures, channel)
	}
	logger.Info(channel+" notifications complete", "sent", n-failures, "failed", failures)
	return nil
}
