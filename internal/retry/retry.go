package retry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/jobalert/jobalert/internal/model"
)

const (
	DefaultMaxRetries = 2
	DefaultBaseDelay  = 2 * time.Second
	DefaultMaxDelay   = 10 * time.Second
)

// RetryFetcher is a decorator that retries transient failures with exponential
// backoff and jitter before giving up on a URL.
type RetryFetcher struct {
	inner      model.Fetcher
	maxRetries int
	baseDelay  time.Duration
	maxDelay   time.Duration
	logger     *slog.Logger
}

// NewRetryFetcher wraps a Fetcher with retry logic.
// maxRetries is the number of additional attempts after the first failure.
// baseDelay is the delay before the first retry, doubled on each subsequent
// retry and capped at maxDelay (zero means no cap).
func NewRetryFetcher(inner model.Fetcher, maxRetries int, baseDelay, maxDelay time.Duration, logger *slog.Logger) *RetryFetcher {
	return &RetryFetcher{
		inner:      inner,
		maxRetries: maxRetries,
		baseDelay:  baseDelay,
		maxDelay:   maxDelay,
		logger:     logger,
	}
}

// Fetch attempts to fetch url, retrying on transient errors. Any failure is
// returned as a *model.FetchError.
func (f *RetryFetcher) Fetch(ctx context.Context, url string) (string, error) {
	attempts := 1
	body, err := f.inner.Fetch(ctx, url)
	if err == nil {
		return body, nil
	}

	for attempts <= f.maxRetries && isRetryable(err) {
		delay := f.backoffDelay(attempts, err)

		f.logger.Warn("retrying after transient error",
			"url", url,
			"attempt", attempts,
			"max_retries", f.maxRetries,
			"delay", delay,
			"error", err,
		)

		select {
		case <-ctx.Done():
			return "", &model.FetchError{URL: url, Attempts: attempts, Err: fmt.Errorf("retry cancelled: %w", ctx.Err())}
		case <-time.After(delay):
		}

		attempts++
		body, err = f.inner.Fetch(ctx, url)
		if err == nil {
			return body, nil
		}
	}

	return "", &model.FetchError{URL: url, Attempts: attempts, Err: err}
}

// backoffDelay computes the delay for a given attempt with ±30% jitter.
// If the error includes a Retry-After duration (HTTP 429), that takes precedence.
func (f *RetryFetcher) backoffDelay(attempt int, err error) time.Duration {
	var httpErr *model.HTTPError
	if errors.As(err, &httpErr) && httpErr.RetryAfter > 0 {
		return httpErr.RetryAfter
	}

	// Exponential: baseDelay * 2^(attempt-1)
	delay := f.baseDelay
	for i := 1; i < attempt; i++ {
		delay *= 2
	}
	if f.maxDelay > 0 && delay > f.maxDelay {
		delay = f.maxDelay
	}

	jitter := float64(delay) * 0.3
	delay = time.Duration(float64(delay) + (rand.Float64()*2-1)*jitter)

	return delay
}

// isRetryable returns true if the error represents a transient failure worth retrying.
func isRetryable(err error) bool {
	if err == nil {
		return false
	}

	// Context cancellation: never retry.
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var httpErr *model.HTTPError
	if errors.As(err, &httpErr) {
		if httpErr.StatusCode == 429 {
			return true
		}
		if httpErr.StatusCode >= 500 {
			return true
		}
		return false
	}

	// Network, DNS, reset connections.
	return true
}
