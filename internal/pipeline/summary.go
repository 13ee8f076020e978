package pipeline

import (
	"fmt"
	"strings"
	"time"

	"github.com/jobalert/jobalert/internal/model"
)

// BuildSummary renders the human-readable run summary sent before the digest.
func BuildSummary(date time.Time, stats model.RunStatistics, digestSize int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Job Alert Summary (%s)\n", date.Format("2006-01-02"))

	b.WriteString("Listings per source:\n")
	for _, s := range stats.Sources {
		switch {
		case s.Failed && s.Listings == 0:
			fmt.Fprintf(&b, "- %s: fetch failed\n", s.Source)
			continue
		case s.Failed:
			fmt.Fprintf(&b, "- %s: %d (processing failed)\n", s.Source, s.Listings)
			continue
		}
		fmt.Fprintf(&b, "- %s: %d\n", s.Source, s.Listings)
	}

	fmt.Fprintf(&b, "New jobs: %d\n", stats.NewJobs)
	fmt.Fprintf(&b, "Excluded: %d\n", stats.Excluded)
	fmt.Fprintf(&b, "Qualified: %d\n", stats.Qualified)

	if digestSize == 0 {
		b.WriteString("0 qualified jobs found today")
	} else {
		fmt.Fprintf(&b, "Sending top %d", digestSize)
	}
	return b.String()
}
