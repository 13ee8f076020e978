package ratelimit

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/jobalert/jobalert/internal/model"
)

// HostRateLimiter enforces a minimum delay between requests to the same host.
// Listing and detail pages on one site share a budget; different sites never
// block each other.
type HostRateLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter // key: lower-cased host
	minDelay time.Duration
}

// NewHostRateLimiter creates a rate limiter that allows one request per host
// every minDelay. A zero minDelay disables limiting.
func NewHostRateLimiter(minDelay time.Duration) *HostRateLimiter {
	return &HostRateLimiter{
		limiters: make(map[string]*rate.Limiter),
		minDelay: minDelay,
	}
}

func (r *HostRateLimiter) limiterFor(host string) *rate.Limiter {
	r.mu.Lock()
	defer r.mu.Unlock()

	l, ok := r.limiters[host]
	if !ok {
		l = rate.NewLimiter(rate.Every(r.minDelay), 1)
		r.limiters[host] = l
	}
	return l
}

// Wait blocks until a request to host is allowed.
// Returns an error if the context is cancelled while waiting.
func (r *HostRateLimiter) Wait(ctx context.Context, host string) error {
	if r.minDelay <= 0 {
		return nil
	}
	if err := r.limiterFor(strings.ToLower(host)).Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter wait for %s: %w", host, err)
	}
	return nil
}

// RateLimitedFetcher is a decorator that enforces host-level rate limiting
// before delegating to the wrapped Fetcher.
type RateLimitedFetcher struct {
	inner   model.Fetcher
	limiter *HostRateLimiter
}

// NewRateLimitedFetcher wraps a Fetcher with host-level rate limiting.
func NewRateLimitedFetcher(inner model.Fetcher, limiter *HostRateLimiter) *RateLimitedFetcher {
	return &RateLimitedFetcher{
		inner:   inner,
		limiter: limiter,
	}
}

// Fetch waits for the limiter to allow a request to the URL's host, then
// delegates. URLs without a parseable host are passed straight through and
// left for the inner fetcher to reject.
func (f *RateLimitedFetcher) Fetch(ctx context.Context, rawURL string) (string, error) {
	if u, err := url.Parse(rawURL); err == nil && u.Host != "" {
		if err := f.limiter.Wait(ctx, u.Host); err != nil {
			return "", err
		}
	}
	return f.inner.Fetch(ctx, rawURL)
}
