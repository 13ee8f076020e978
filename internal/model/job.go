package model

import (
	"context"
	"time"
)

// Source identifies a job board listing page to scrape.
type Source struct {
	Name string `yaml:"name"`
	URL  string `yaml:"url"`
}

// JobListing is one candidate posting found on a listing page.
// URL is absolute and acts as the natural key.
type JobListing struct {
	Title      string
	URL        string
	SourceName string
}

// SeenRecord is the persisted fact that a URL has been processed.
type SeenRecord struct {
	URL         string    `json:"url"`
	Title       string    `json:"title"`
	Source      string    `json:"source"`
	FirstSeenAt time.Time `json:"first_seen_at"`
}

// KeywordRules are case-insensitive substring rules, applied in list order.
// Exclude is always evaluated before Include.
type KeywordRules struct {
	Include []string
	Exclude []string
}

// ScoringPolicy holds the point values used by the scorer.
type ScoringPolicy struct {
	TitleHit       int
	BodyHit        int
	ExcludePenalty int
}

// DigestPolicy decides which scored candidates make it into the digest.
type DigestPolicy struct {
	MinScore int
	MaxItems int
}

// ScoredCandidate is a new listing after scoring. It lives for one run only.
type ScoredCandidate struct {
	Source string
	Title  string
	URL    string
	Score  int
	Reason string
}

// Fetcher returns the raw markup served at url.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

// SeenStore tracks which posting URLs have already been processed.
// MarkSeen is insert-if-absent: repeated calls for the same URL are no-ops.
type SeenStore interface {
	IsSeen(ctx context.Context, url string) (bool, error)
	MarkSeen(ctx context.Context, url, title, source string) error
}

// Notifier delivers the run summary and the ranked digest.
type Notifier interface {
	SendSummary(text string) error
	SendDigest(entries []ScoredCandidate) error
}
