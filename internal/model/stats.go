package model

// SourceCount is the number of listings extracted for one source.
type SourceCount struct {
	Source   string
	Listings int
	Failed   bool // listing page fetch failed, or processing stopped partway when Listings > 0
}

// RunStatistics accumulates the counters of a single run. It is passed by
// value through the pipeline; nothing holds it globally.
type RunStatistics struct {
	Sources   []SourceCount
	NewJobs   int
	Excluded  int
	Qualified int
}

// SourceOutcome is what processing one source contributes to a run.
type SourceOutcome struct {
	Source   string
	Listings int
	Failed   bool
	NewJobs  int
	Excluded int
	// Qualified holds candidates at or above the digest threshold, in discovery order.
	Qualified []ScoredCandidate
}

// Add folds a source outcome into the statistics and returns the result.
func (s RunStatistics) Add(o SourceOutcome) RunStatistics {
	sources := make([]SourceCount, len(s.Sources), len(s.Sources)+1)
	copy(sources, s.Sources)
	s.Sources = append(sources, SourceCount{Source: o.Source, Listings: o.Listings, Failed: o.Failed})
	s.NewJobs += o.NewJobs
	s.Excluded += o.Excluded
	s.Qualified += len(o.Qualified)
	return s
}

// TotalListings sums listings across all sources.
func (s RunStatistics) TotalListings() int {
	total := 0
	for _, c := range s.Sources {
		total += c.Listings
	}
	return total
}
