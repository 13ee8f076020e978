package fetch

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/jobalert/jobalert/internal/model"
)

func TestHTTPFetcher_ReturnsBodyAndSendsHeaders(t *testing.T) {
	var gotUA, gotAccept, gotLang string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		gotAccept = r.Header.Get("Accept")
		gotLang = r.Header.Get("Accept-Language")
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte("<html><body>채용 공고</body></html>"))
	}))
	defer srv.Close()

	f := NewHTTPFetcher(srv.Client(), Options{})
	body, err := f.Fetch(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if body != "<html><body>채용 공고</body></html>" {
		t.Errorf("body = %q", body)
	}

	found := false
	for _, ua := range DefaultUserAgents {
		if gotUA == ua {
			found = true
		}
	}
	if !found {
		t.Errorf("User-Agent %q is not one of the defaults", gotUA)
	}
	if !strings.HasPrefix(gotAccept, "text/html") {
		t.Errorf("Accept = %q, want text/html first", gotAccept)
	}
	if gotLang != "en-US,en;q=0.5" {
		t.Errorf("Accept-Language = %q", gotLang)
	}
}

func TestHTTPFetcher_DecodesLegacyCharset(t *testing.T) {
	// "café" in ISO-8859-1.
	latin1 := []byte{'c', 'a', 'f', 0xe9}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=iso-8859-1")
		w.Write(latin1)
	}))
	defer srv.Close()

	f := NewHTTPFetcher(srv.Client(), Options{})
	body, err := f.Fetch(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if body != "café" {
		t.Errorf("body = %q, want %q", body, "café")
	}
}

func TestHTTPFetcher_CapsBodySize(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Write([]byte(strings.Repeat("a", 1000)))
	}))
	defer srv.Close()

	f := NewHTTPFetcher(srv.Client(), Options{MaxBodyBytes: 100})
	body, err := f.Fetch(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(body) != 100 {
		t.Errorf("len(body) = %d, want 100", len(body))
	}
}

func TestHTTPFetcher_Non2xxReturnsHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "7")
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	f := NewHTTPFetcher(srv.Client(), Options{})
	_, err := f.Fetch(context.Background(), srv.URL)

	var httpErr *model.HTTPError
	if !errors.As(err, &httpErr) {
		t.Fatalf("expected *model.HTTPError, got %v", err)
	}
	if httpErr.StatusCode != http.StatusTooManyRequests {
		t.Errorf("StatusCode = %d, want 429", httpErr.StatusCode)
	}
	if httpErr.RetryAfter != 7*time.Second {
		t.Errorf("RetryAfter = %v, want 7s", httpErr.RetryAfter)
	}
}

func TestHTTPFetcher_ContextCancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	f := NewHTTPFetcher(srv.Client(), Options{})
	if _, err := f.Fetch(ctx, srv.URL); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestParseRetryAfter(t *testing.T) {
	tests := []struct {
		name  string
		value string
		want  time.Duration
	}{
		{"empty", "", 0},
		{"seconds", "120", 120 * time.Second},
		{"negative", "-5", 0},
		{"garbage", "soon", 0},
		{"past date", "Wed, 21 Oct 2015 07:28:00 GMT", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := parseRetryAfter(tt.value); got != tt.want {
				t.Errorf("parseRetryAfter(%q) = %v, want %v", tt.value, got, tt.want)
			}
		})
	}
}

func TestParseRetryAfter_FutureDate(t *testing.T) {
	at := time.Now().Add(time.Hour).UTC().Format(http.TimeFormat)
	got := parseRetryAfter(at)
	if got <= 58*time.Minute || got > time.Hour {
		t.Errorf("parseRetryAfter(%q) = %v, want about 1h", at, got)
	}
}
