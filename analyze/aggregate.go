// Package analyze provides the page analysis pipeline. It drives the
// sequential fetch and extract loop over search result URLs and reduces the
// per-URL outcomes into a ranked serp.Run.
package analyze

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/fwojciec/serp"
)

// SleepFunc blocks for d or until ctx is done.
type SleepFunc func(ctx context.Context, d time.Duration) error

// Sleep pauses for d. It returns the context error if ctx is canceled first.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Aggregator fetches and extracts a list of URLs one at a time, pausing
// before every request.
type Aggregator struct {
	Fetcher   serp.Fetcher
	Extractor serp.Extractor
	Delay     time.Duration

	// Sleep performs the pause before each request. Defaults to Sleep.
	Sleep SleepFunc

	// Now returns the run start time. Defaults to time.Now.
	Now func() time.Time

	Logger *slog.Logger
}

// Aggregate processes urls in order and returns the run for query.
// Failed URLs are logged and recorded in Run.Outcomes but never abort the
// run and never consume a rank. The returned run may be empty; callers must
// check. An error is returned only if ctx is canceled.
func (a *Aggregator) Aggregate(ctx context.Context, query string, urls []string, progress serp.ProgressFunc) (*serp.Run, error) {
	now := a.Now
	if now == nil {
		now = time.Now
	}
	run := serp.NewRun(query, now())

	outcomes, err := a.process(ctx, urls, progress)
	reduce(run, outcomes)
	return run, err
}

// process fetches and extracts every URL, producing one outcome per URL.
func (a *Aggregator) process(ctx context.Context, urls []string, progress serp.ProgressFunc) ([]serp.Outcome, error) {
	sleep := a.Sleep
	if sleep == nil {
		sleep = Sleep
	}
	logger := a.logger()

	outcomes := make([]serp.Outcome, 0, len(urls))
	total := len(urls)

	for i, url := range urls {
		if err := sleep(ctx, a.Delay); err != nil {
			return outcomes, err
		}

		outcome := a.processURL(ctx, i+1, url)
		outcomes = append(outcomes, outcome)

		if outcome.OK() {
			logger.Debug("analyzed page", "url", url, "headings", outcome.Record.Headings.Total())
		} else {
			logger.Warn("skipping page", "url", url, "kind", string(outcome.Kind), "err", outcome.Err)
		}

		if progress != nil {
			progress(serp.Progress{
				Index: i + 1,
				Total: total,
				URL:   url,
				Err:   outcome.Err,
			})
		}
	}

	return outcomes, nil
}

// processURL fetches and extracts a single URL.
func (a *Aggregator) processURL(ctx context.Context, index int, url string) serp.Outcome {
	outcome := serp.Outcome{Index: index, URL: url}

	html, err := a.Fetcher.Fetch(ctx, url)
	if err != nil {
		outcome.Kind = serp.FailureFetch
		outcome.Err = fmt.Errorf("fetch %s: %w", url, err)
		return outcome
	}

	elements, err := a.Extractor.Extract(html)
	if err != nil {
		outcome.Kind = serp.FailureParse
		outcome.Err = fmt.Errorf("extract %s: %w", url, err)
		return outcome
	}

	outcome.Record = serp.NewPageRecord(url, elements)
	return outcome
}

// reduce appends the successful outcomes to run in order, assigning dense
// ranks, and keeps every outcome on the run.
func reduce(run *serp.Run, outcomes []serp.Outcome) {
	for _, o := range outcomes {
		if o.OK() {
			run.Append(o.Record)
		}
	}
	run.Outcomes = outcomes
}

func (a *Aggregator) logger() *slog.Logger {
	if a.Logger != nil {
		return a.Logger
	}
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
