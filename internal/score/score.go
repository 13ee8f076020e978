// Package score rates a job posting against keyword rules.
package score

import (
	"strings"

	"golang.org/x/text/cases"

	"github.com/jobalert/jobalert/internal/model"
)

const (
	excludedPrefix = "Excluded by keyword: "
	matchedPrefix  = "Matched keywords: "
	noMatches      = "No specific matches"
)

// Result is the outcome of scoring one posting.
type Result struct {
	Score  int
	Reason string
	// Excluded is true when an exclude keyword short-circuited scoring.
	Excluded bool
}

// Score rates a posting by case-insensitive substring matching of the keyword
// rules against its title and body.
//
// Exclude keywords are checked first; the first one found in either the title
// or the body ends scoring with policy.ExcludePenalty. Otherwise each include
// keyword contributes at most once: TitleHit when it appears in the title,
// else BodyHit when it appears in the body.
func Score(title, body string, rules model.KeywordRules, policy model.ScoringPolicy) Result {
	fold := cases.Fold()
	titleFolded := fold.String(title)
	bodyFolded := fold.String(body)

	for _, word := range rules.Exclude {
		kw := fold.String(word)
		if kw == "" {
			continue
		}
		if strings.Contains(titleFolded, kw) || strings.Contains(bodyFolded, kw) {
			return Result{
				Score:    policy.ExcludePenalty,
				Reason:   excludedPrefix + word,
				Excluded: true,
			}
		}
	}

	score := 0
	var matched []string
	for _, word := range rules.Include {
		kw := fold.String(word)
		if kw == "" {
			continue
		}
		switch {
		case strings.Contains(titleFolded, kw):
			score += policy.TitleHit
			matched = append(matched, word+"(title)")
		case strings.Contains(bodyFolded, kw):
			score += policy.BodyHit
			matched = append(matched, word+"(body)")
		}
	}

	reason := noMatches
	if len(matched) > 0 {
		reason = matchedPrefix + strings.Join(matched, ", ")
	}
	return Result{Score: score, Reason: reason}
}

// IsExclusion reports whether reason was produced by an exclude keyword hit.
func IsExclusion(reason string) bool {
	return strings.HasPrefix(reason, excludedPrefix)
}
