// Package fetch downloads listing and detail pages over HTTP.
package fetch

import (
	"context"
	"fmt"
	"io"
	"math/rand/v2"
	"net/http"
	"strconv"
	"time"

	"golang.org/x/net/html/charset"

	"github.com/jobalert/jobalert/internal/model"
)

const (
	DefaultTimeout      = 15 * time.Second
	DefaultMaxBodyBytes = 5 << 20
)

// DefaultUserAgents are rotated per request.
var DefaultUserAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/119.0.0.0 Safari/537.36",
	"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
}

// Options configures an HTTPFetcher. Zero values fall back to the defaults.
type Options struct {
	Timeout      time.Duration
	MaxBodyBytes int64
	UserAgents   []string
}

// HTTPFetcher performs a single GET per call with browser-like headers and
// returns the body decoded to UTF-8. It does not retry; wrap it with
// retry.RetryFetcher for that.
type HTTPFetcher struct {
	client       *http.Client
	userAgents   []string
	maxBodyBytes int64
}

// NewHTTPFetcher creates a fetcher. If client is nil a new one is built with
// opts.Timeout.
func NewHTTPFetcher(client *http.Client, opts Options) *HTTPFetcher {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = DefaultMaxBodyBytes
	}
	if len(opts.UserAgents) == 0 {
		opts.UserAgents = DefaultUserAgents
	}
	if client == nil {
		client = &http.Client{Timeout: opts.Timeout}
	}
	return &HTTPFetcher{
		client:       client,
		userAgents:   opts.UserAgents,
		maxBodyBytes: opts.MaxBodyBytes,
	}
}

// Fetch returns the page at url as a string. Non-2xx responses yield a
// *model.HTTPError carrying the status and any Retry-After hint.
func (f *HTTPFetcher) Fetch(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("building request for %s: %w", url, err)
	}
	req.Header.Set("User-Agent", f.userAgents[rand.IntN(len(f.userAgents))])
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.5")

	resp, err := f.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("GET %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// Drain a little so the connection can be reused.
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return "", &model.HTTPError{
			StatusCode: resp.StatusCode,
			RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After")),
			Err:        fmt.Errorf("GET %s", url),
		}
	}

	body := io.LimitReader(resp.Body, f.maxBodyBytes)
	reader, err := charset.NewReader(body, resp.Header.Get("Content-Type"))
	if err != nil {
		return "", fmt.Errorf("decoding %s: %w", url, err)
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", url, err)
	}
	return string(data), nil
}

// parseRetryAfter parses the Retry-After header value into a duration.
// Both the seconds form ("120") and the HTTP-date form are accepted.
// Returns zero if absent, unparseable or already in the past.
func parseRetryAfter(value string) time.Duration {
	if value == "" {
		return 0
	}
	if seconds, err := strconv.Atoi(value); err == nil {
		if seconds < 0 {
			return 0
		}
		return time.Duration(seconds) * time.Second
	}
	if at, err := http.ParseTime(value); err == nil {
		if d := time.Until(at); d > 0 {
			return d
		}
	}
	return 0
}
