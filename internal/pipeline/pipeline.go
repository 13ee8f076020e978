// Package pipeline runs one scrape-score-notify cycle over all configured sources.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/jobalert/jobalert/internal/extract"
	"github.com/jobalert/jobalert/internal/model"
	"github.com/jobalert/jobalert/internal/score"
)

// Settings is the part of the configuration the pipeline acts on.
type Settings struct {
	Sources []model.Source
	Rules   model.KeywordRules
	Scoring model.ScoringPolicy
	Digest  model.DigestPolicy
	// Concurrency > 1 prefetches listing pages in parallel before processing.
	Concurrency int
}

// Report is the result of one run.
type Report struct {
	RunID     string
	StartedAt time.Time
	Stats     model.RunStatistics
	Digest    []model.ScoredCandidate
	Summary   string
}

// Pipeline owns the full run: fetch → extract → dedup → score → mark seen →
// rank → summarize → notify.
type Pipeline struct {
	settings  Settings
	fetcher   model.Fetcher
	extractor *extract.Extractor
	store     model.SeenStore
	notifier  model.Notifier
	logger    *slog.Logger
	now       func() time.Time
}

// New creates a pipeline wired with all its dependencies.
func New(
	settings Settings,
	fetcher model.Fetcher,
	extractor *extract.Extractor,
	store model.SeenStore,
	notifier model.Notifier,
	logger *slog.Logger,
) *Pipeline {
	return &Pipeline{
		settings:  settings,
		fetcher:   fetcher,
		extractor: extractor,
		store:     store,
		notifier:  notifier,
		logger:    logger,
		now:       time.Now,
	}
}

type page struct {
	markup string
	err    error
}

// Run processes every source in configuration order and delivers the digest.
// A failing source is logged and skipped. A store error fails only the source
// it happened in: candidates already marked seen still reach the digest, and
// the error is returned after notifying. Context cancellation aborts the run
// before anything is sent.
func (p *Pipeline) Run(ctx context.Context) (*Report, error) {
	report := &Report{RunID: uuid.NewString(), StartedAt: p.now()}
	logger := p.logger.With("run_id", report.RunID)
	logger.Info("run started", "sources", len(p.settings.Sources))

	pages := p.prefetch(ctx, logger)

	var (
		stats     model.RunStatistics
		qualified []model.ScoredCandidate
		failures  []error
	)
	for i, src := range p.settings.Sources {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("run %s cancelled: %w", report.RunID, err)
		}

		var pre *page
		if pages != nil {
			pre = &pages[i]
		}
		outcome, err := p.processSource(ctx, src, pre, logger)
		if err != nil {
			if ctx.Err() != nil {
				return nil, fmt.Errorf("run %s cancelled: %w", report.RunID, ctx.Err())
			}
			logger.Error("source failed, continuing", "source", src.Name, "error", err)
			outcome.Failed = true
			failures = append(failures, err)
		}
		stats = stats.Add(outcome)
		qualified = append(qualified, outcome.Qualified...)
	}

	report.Stats = stats
	report.Digest = Rank(qualified, p.settings.Digest.MaxItems)
	report.Summary = BuildSummary(report.StartedAt, stats, len(report.Digest))

	logger.Info("run finished",
		"listings", stats.TotalListings(),
		"new", stats.NewJobs,
		"excluded", stats.Excluded,
		"qualified", stats.Qualified,
		"digest", len(report.Digest),
	)

	p.notify(report, logger)
	if len(failures) > 0 {
		return report, fmt.Errorf("run %s: %w", report.RunID, errors.Join(failures...))
	}
	return report, nil
}

// prefetch downloads all listing pages concurrently when configured to.
// It returns nil when pages should be fetched inline. Every fetch finishes
// before it returns, so processing never overlaps with fetching.
func (p *Pipeline) prefetch(ctx context.Context, logger *slog.Logger) []page {
	if p.settings.Concurrency <= 1 || len(p.settings.Sources) <= 1 {
		return nil
	}

	pages := make([]page, len(p.settings.Sources))
	var g errgroup.Group
	g.SetLimit(p.settings.Concurrency)
	for i, src := range p.settings.Sources {
		g.Go(func() error {
			markup, err := p.fetcher.Fetch(ctx, src.URL)
			pages[i] = page{markup: markup, err: err}
			return nil
		})
	}
	g.Wait()
	logger.Debug("listing pages prefetched", "count", len(pages), "concurrency", p.settings.Concurrency)
	return pages
}

// processSource handles one source. On error the returned outcome still
// carries the candidates scored and marked seen before it.
func (p *Pipeline) processSource(ctx context.Context, src model.Source, pre *page, logger *slog.Logger) (model.SourceOutcome, error) {
	outcome := model.SourceOutcome{Source: src.Name}
	logger = logger.With("source", src.Name)

	var markup string
	var err error
	if pre != nil {
		markup, err = pre.markup, pre.err
	} else {
		markup, err = p.fetcher.Fetch(ctx, src.URL)
	}
	if err != nil {
		if ctx.Err() != nil {
			return outcome, fmt.Errorf("fetching %s: %w", src.Name, ctx.Err())
		}
		logger.Error("listing page fetch failed, skipping source", "url", src.URL, "error", err)
		outcome.Failed = true
		return outcome, nil
	}

	listings := p.extractor.ExtractListings(markup, src.URL, src.Name)
	outcome.Listings = len(listings)
	logger.Info("listings extracted", "count", len(listings))

	for _, l := range listings {
		seen, err := p.store.IsSeen(ctx, l.URL)
		if err != nil {
			return outcome, fmt.Errorf("processing %s: %w", src.Name, err)
		}
		if seen {
			continue
		}

		outcome.NewJobs++
		logger.Info("new job", "title", l.Title, "url", l.URL)

		body, err := p.detailText(ctx, l.URL, logger)
		if err != nil {
			return outcome, err
		}
		res := score.Score(l.Title, body, p.settings.Rules, p.settings.Scoring)

		// Marked regardless of score so a URL is scored at most once.
		if err := p.store.MarkSeen(ctx, l.URL, l.Title, src.Name); err != nil {
			return outcome, fmt.Errorf("processing %s: %w", src.Name, err)
		}

		switch {
		case res.Score >= p.settings.Digest.MinScore:
			outcome.Qualified = append(outcome.Qualified, model.ScoredCandidate{
				Source: src.Name,
				Title:  l.Title,
				URL:    l.URL,
				Score:  res.Score,
				Reason: res.Reason,
			})
		case res.Excluded:
			outcome.Excluded++
		}
		logger.Debug("job scored", "url", l.URL, "score", res.Score, "reason", res.Reason)
	}

	return outcome, nil
}

// detailText fetches and flattens a detail page. A failed fetch yields an
// empty body; only cancellation is reported as an error.
func (p *Pipeline) detailText(ctx context.Context, url string, logger *slog.Logger) (string, error) {
	markup, err := p.fetcher.Fetch(ctx, url)
	if err != nil {
		if ctx.Err() != nil {
			return "", fmt.Errorf("fetching detail %s: %w", url, ctx.Err())
		}
		logger.Warn("detail fetch failed, scoring title only", "url", url, "error", err)
		return "", nil
	}
	return extract.ExtractText(markup), nil
}

// notify sends the summary, then the digest. Failures are logged only.
func (p *Pipeline) notify(report *Report, logger *slog.Logger) {
	if err := p.notifier.SendSummary(report.Summary); err != nil {
		logger.Error("sending summary failed", "error", err)
	}
	if len(report.Digest) == 0 {
		logger.Info("no new qualified jobs found")
		return
	}
	if err := p.notifier.SendDigest(report.Digest); err != nil {
		logger.Error("sending digest failed", "entries", len(report.Digest), "error", err)
	}
}
