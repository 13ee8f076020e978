// Package extract turns scraped HTML into job listings and readable text.
package extract

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/jobalert/jobalert/internal/model"
)

// Candidate is a job link found by a strategy, before URL resolution and dedup.
type Candidate struct {
	Title string
	Href  string
}

// Strategy finds job links in a parsed listing page.
type Strategy interface {
	Name() string
	Candidates(doc *goquery.Document) []Candidate
}

// Matcher reports whether a strategy applies to the listing page at baseURL.
type Matcher func(baseURL string) bool

// HostContains matches base URLs containing any of the given substrings.
func HostContains(substrs ...string) Matcher {
	return func(baseURL string) bool {
		lower := strings.ToLower(baseURL)
		for _, s := range substrs {
			if strings.Contains(lower, s) {
				return true
			}
		}
		return false
	}
}

type registration struct {
	match    Matcher
	strategy Strategy
}

// Extractor dispatches listing pages to site-specific strategies, falling back
// to a generic strategy for unknown sites.
type Extractor struct {
	sites    []registration
	fallback Strategy
}

// NewExtractor returns an Extractor with no site strategies and the given fallback.
func NewExtractor(fallback Strategy) *Extractor {
	return &Extractor{fallback: fallback}
}

// NewDefaultExtractor returns an Extractor with every built-in site strategy
// registered and a generic fallback built from opts.
func NewDefaultExtractor(opts GenericOptions) *Extractor {
	e := NewExtractor(NewGenericStrategy(opts))
	for _, s := range BuiltinSites() {
		e.Register(HostContains(s.Hosts...), s)
	}
	return e
}

// Register adds a strategy. Registrations are consulted in order; the first
// match wins.
func (e *Extractor) Register(match Matcher, s Strategy) {
	e.sites = append(e.sites, registration{match: match, strategy: s})
}

// StrategyFor returns the strategy that handles baseURL.
func (e *Extractor) StrategyFor(baseURL string) Strategy {
	for _, r := range e.sites {
		if r.match(baseURL) {
			return r.strategy
		}
	}
	return e.fallback
}

// ExtractListings parses markup served at baseURL and returns the job listings
// found on it. Hrefs are resolved against baseURL and the result holds one
// listing per URL, in order of first appearance. Malformed markup yields a
// partial or empty result, never an error.
func (e *Extractor) ExtractListings(markup, baseURL, sourceName string) []model.JobListing {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return nil
	}

	candidates := e.StrategyFor(baseURL).Candidates(doc)

	seen := make(map[string]bool, len(candidates))
	listings := make([]model.JobListing, 0, len(candidates))
	for _, c := range candidates {
		abs, ok := resolve(base, c.Href)
		if !ok || seen[abs] {
			continue
		}
		seen[abs] = true
		listings = append(listings, model.JobListing{
			Title:      c.Title,
			URL:        abs,
			SourceName: sourceName,
		})
	}
	return listings
}

// resolve turns href into an absolute http(s) URL relative to base.
func resolve(base *url.URL, href string) (string, bool) {
	href = strings.TrimSpace(href)
	if href == "" || strings.HasPrefix(href, "#") {
		return "", false
	}
	ref, err := url.Parse(href)
	if err != nil {
		return "", false
	}
	abs := base.ResolveReference(ref)
	if abs.Scheme != "http" && abs.Scheme != "https" {
		return "", false
	}
	return abs.String(), true
}

// cleanText collapses whitespace runs, including non-breaking spaces, to a single space.
func cleanText(s string) string {
	s = strings.ReplaceAll(s, "\u00a0", " ")
	return strings.Join(strings.Fields(s), " ")
}
