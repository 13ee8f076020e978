package pipeline

import (
	"context"
	"fmt"

	"github.com/jobalert/jobalert/internal/model"
	"github.com/jobalert/jobalert/internal/score"
)

// Evaluation is one listing as the pipeline would score it.
type Evaluation struct {
	Listing   model.JobListing
	Body      string
	Result    score.Result
	Qualified bool
}

// Preview fetches, extracts and scores one source without reading or writing
// seen state and without notifying. Listings come back in extraction order.
func (p *Pipeline) Preview(ctx context.Context, src model.Source) ([]Evaluation, error) {
	logger := p.logger.With("source", src.Name, "preview", true)

	markup, err := p.fetcher.Fetch(ctx, src.URL)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", src.Name, err)
	}

	listings := p.extractor.ExtractListings(markup, src.URL, src.Name)
	evals := make([]Evaluation, 0, len(listings))
	for _, l := range listings {
		body, err := p.detailText(ctx, l.URL, logger)
		if err != nil {
			return evals, err
		}
		res := score.Score(l.Title, body, p.settings.Rules, p.settings.Scoring)
		evals = append(evals, Evaluation{
			Listing:   l,
			Body:      body,
			Result:    res,
			Qualified: res.Score >= p.settings.Digest.MinScore,
		})
	}
	return evals, nil
}
