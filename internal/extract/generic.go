package extract

import (
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
)

// DefaultPathHints are href substrings that usually indicate a job detail page.
var DefaultPathHints = []string{"/job/", "/recruitment/", "/wd/", "/view/"}

// DefaultMinTitleLength filters out navigation and icon links.
const DefaultMinTitleLength = 6

// GenericOptions tunes the fallback heuristics. Site markup drifts, so both
// values come from configuration.
type GenericOptions struct {
	PathHints      []string
	MinTitleLength int // in runes
}

// GenericStrategy treats any link whose href looks like a job page as a
// candidate, provided its visible text is long enough to be a title.
type GenericStrategy struct {
	hints    []string
	minTitle int
}

// NewGenericStrategy builds the fallback strategy. Zero values in opts take
// the package defaults.
func NewGenericStrategy(opts GenericOptions) *GenericStrategy {
	hints := opts.PathHints
	if len(hints) == 0 {
		hints = DefaultPathHints
	}
	lowered := make([]string, 0, len(hints))
	for _, h := range hints {
		if h = strings.ToLower(strings.TrimSpace(h)); h != "" {
			lowered = append(lowered, h)
		}
	}
	minTitle := opts.MinTitleLength
	if minTitle <= 0 {
		minTitle = DefaultMinTitleLength
	}
	return &GenericStrategy{hints: lowered, minTitle: minTitle}
}

// Name implements Strategy.
func (g *GenericStrategy) Name() string { return "generic" }

// Candidates implements Strategy.
func (g *GenericStrategy) Candidates(doc *goquery.Document) []Candidate {
	var out []Candidate
	doc.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		href, _ := a.Attr("href")
		if !containsAny(strings.ToLower(href), g.hints) {
			return
		}
		title := cleanText(a.Text())
		if utf8.RuneCountInString(title) < g.minTitle {
			return
		}
		out = append(out, Candidate{Title: title, Href: href})
	})
	return out
}
