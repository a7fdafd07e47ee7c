package analyze

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/fwojciec/serp"
)

// Ensure Analyzer implements serp.Analyzer at compile time.
var _ serp.Analyzer = (*Analyzer)(nil)

// Analyzer runs the full pipeline: search, then aggregate the result pages.
type Analyzer struct {
	Source    serp.URLSource
	Fetcher   serp.Fetcher
	Extractor serp.Extractor

	// Sleep and Now are passed to each Aggregator. Nil uses the defaults.
	Sleep SleepFunc
	Now   func() time.Time

	Logger *slog.Logger
}

// Analyze searches for params.Query and analyzes up to params.Count result
// pages, pausing params.Delay before each request.
//
// A search provider error is treated as zero results. If no URLs are found,
// or none of them can be analyzed, Analyze returns an EEMPTY error; in the
// latter case the run is returned as well so callers can report failures.
func (a *Analyzer) Analyze(ctx context.Context, params serp.Params, found func([]string), progress serp.ProgressFunc) (*serp.Run, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	logger := a.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	urls, err := a.Source.Search(ctx, params.Query, params.Count)
	if err != nil {
		logger.Error("search failed", "query", params.Query, "kind", string(serp.FailureSource), "err", err)
		urls = nil
	}
	if len(urls) > params.Count {
		urls = urls[:params.Count]
	}

	if found != nil {
		found(urls)
	}

	if len(urls) == 0 {
		return nil, serp.Errorf(serp.EEMPTY, "No URLs found. Please try a different query.")
	}

	agg := &Aggregator{
		Fetcher:   a.Fetcher,
		Extractor: a.Extractor,
		Delay:     params.Delay,
		Sleep:     a.Sleep,
		Now:       a.Now,
		Logger:    logger,
	}

	run, err := agg.Aggregate(ctx, params.Query, urls, progress)
	if err != nil {
		return nil, err
	}

	if run.Empty() {
		return run, serp.Errorf(serp.EEMPTY, "No results could be analyzed. Please try again.")
	}

	logger.Info("analysis complete",
		"query", params.Query,
		"urls", len(urls),
		"analyzed", len(run.Records),
		"failed", len(run.Failed()),
	)

	return run, nil
}
