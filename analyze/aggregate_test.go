package analyze_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/fwojciec/serp"
	"github.com/fwojciec/serp/analyze"
	"github.com/fwojciec/serp/goquery"
	"github.com/fwojciec/serp/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// noSleep records requested pauses without blocking.
type noSleep struct {
	calls []time.Duration
}

func (s *noSleep) Sleep(ctx context.Context, d time.Duration) error {
	s.calls = append(s.calls, d)
	return ctx.Err()
}

// pageFetcher serves fixed HTML per URL and fails for URLs not in pages.
func pageFetcher(pages map[string]string) *mock.Fetcher {
	return &mock.Fetcher{
		FetchFn: func(_ context.Context, url string) (string, error) {
			html, ok := pages[url]
			if !ok {
				return "", errors.New("connection refused")
			}
			return html, nil
		},
		CloseFn: func() error { return nil },
	}
}

func TestAggregator_Aggregate(t *testing.T) {
	t.Parallel()

	t.Run("ranks successes densely and skips failures", func(t *testing.T) {
		t.Parallel()

		// Given three URLs where the first fails to fetch
		fetcher := pageFetcher(map[string]string{
			"https://b.example": "<html><h1>B heading</h1></html>",
			"https://c.example": "<html><h1>C heading</h1></html>",
		})
		sleeper := &noSleep{}
		agg := &analyze.Aggregator{
			Fetcher:   fetcher,
			Extractor: goquery.NewExtractor(),
			Delay:     2 * time.Second,
			Sleep:     sleeper.Sleep,
		}

		// When I aggregate them
		run, err := agg.Aggregate(context.Background(), "test", []string{
			"https://a.example",
			"https://b.example",
			"https://c.example",
		}, nil)

		// Then the two successes are ranked 1 and 2 in processing order
		require.NoError(t, err)
		require.Len(t, run.Records, 2)
		assert.Equal(t, "https://b.example", run.Records[0].URL)
		assert.Equal(t, 1, run.Records[0].Rank)
		assert.Equal(t, []string{"B heading"}, run.Records[0].H1)
		assert.Equal(t, "https://c.example", run.Records[1].URL)
		assert.Equal(t, 2, run.Records[1].Rank)
		require.NoError(t, run.Validate())

		// And the failure is kept as an outcome
		failed := run.Failed()
		require.Len(t, failed, 1)
		assert.Equal(t, "https://a.example", failed[0].URL)
		assert.Equal(t, 1, failed[0].Index)
		assert.Equal(t, serp.FailureFetch, failed[0].Kind)

		// And the delay was applied before every request
		assert.Equal(t, []time.Duration{2 * time.Second, 2 * time.Second, 2 * time.Second}, sleeper.calls)
	})

	t.Run("classifies extractor errors as parse failures", func(t *testing.T) {
		t.Parallel()

		agg := &analyze.Aggregator{
			Fetcher: pageFetcher(map[string]string{
				"https://a.example": "   ",
				"https://b.example": "<title>B</title>",
			}),
			Extractor: goquery.NewExtractor(),
			Sleep:     (&noSleep{}).Sleep,
		}

		run, err := agg.Aggregate(context.Background(), "test", []string{"https://a.example", "https://b.example"}, nil)

		require.NoError(t, err)
		require.Len(t, run.Records, 1)
		assert.Equal(t, "B", run.Records[0].Title)
		assert.Equal(t, 1, run.Records[0].Rank)
		require.Len(t, run.Outcomes, 2)
		assert.Equal(t, serp.FailureParse, run.Outcomes[0].Kind)
		assert.Equal(t, serp.EPARSE, serp.ErrorCode(run.Outcomes[0].Err))
	})

	t.Run("reports progress once per URL regardless of outcome", func(t *testing.T) {
		t.Parallel()

		agg := &analyze.Aggregator{
			Fetcher: pageFetcher(map[string]string{
				"https://a.example": "<h1>A</h1>",
			}),
			Extractor: goquery.NewExtractor(),
			Sleep:     (&noSleep{}).Sleep,
		}

		var events []serp.Progress
		_, err := agg.Aggregate(context.Background(), "test", []string{"https://a.example", "https://b.example"}, func(p serp.Progress) {
			events = append(events, p)
		})

		require.NoError(t, err)
		require.Len(t, events, 2)
		assert.Equal(t, serp.Progress{Index: 1, Total: 2, URL: "https://a.example"}, events[0])
		assert.Equal(t, 2, events[1].Index)
		assert.Equal(t, 2, events[1].Total)
		assert.Equal(t, "https://b.example", events[1].URL)
		assert.Error(t, events[1].Err)
	})

	t.Run("returns empty run when every URL fails", func(t *testing.T) {
		t.Parallel()

		agg := &analyze.Aggregator{
			Fetcher:   pageFetcher(nil),
			Extractor: goquery.NewExtractor(),
			Sleep:     (&noSleep{}).Sleep,
		}

		run, err := agg.Aggregate(context.Background(), "test", []string{"https://a.example", "https://b.example"}, nil)

		require.NoError(t, err)
		assert.True(t, run.Empty())
		assert.Len(t, run.Failed(), 2)
	})

	t.Run("stamps run with query and start time", func(t *testing.T) {
		t.Parallel()

		startedAt := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
		agg := &analyze.Aggregator{
			Fetcher:   pageFetcher(nil),
			Extractor: goquery.NewExtractor(),
			Sleep:     (&noSleep{}).Sleep,
			Now:       func() time.Time { return startedAt },
		}

		run, err := agg.Aggregate(context.Background(), "seo tips", nil, nil)

		require.NoError(t, err)
		assert.Equal(t, "seo tips", run.Query)
		assert.Equal(t, startedAt, run.StartedAt)
	})

	t.Run("stops when context is canceled during the pause", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		fetched := 0
		agg := &analyze.Aggregator{
			Fetcher: &mock.Fetcher{
				FetchFn: func(_ context.Context, url string) (string, error) {
					fetched++
					cancel()
					return "<h1>x</h1>", nil
				},
			},
			Extractor: goquery.NewExtractor(),
			Delay:     time.Millisecond,
		}

		run, err := agg.Aggregate(ctx, "test", []string{"https://a.example", "https://b.example"}, nil)

		require.ErrorIs(t, err, context.Canceled)
		assert.Equal(t, 1, fetched)
		assert.Len(t, run.Records, 1)
	})

	t.Run("logs skipped URLs with failure kind", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		agg := &analyze.Aggregator{
			Fetcher:   pageFetcher(nil),
			Extractor: goquery.NewExtractor(),
			Sleep:     (&noSleep{}).Sleep,
			Logger:    slog.New(slog.NewTextHandler(&buf, nil)),
		}

		_, err := agg.Aggregate(context.Background(), "test", []string{"https://a.example"}, nil)

		require.NoError(t, err)
		output := buf.String()
		assert.Contains(t, output, "skipping page")
		assert.Contains(t, output, "url=https://a.example")
		assert.Contains(t, output, "kind=fetch")
		assert.True(t, strings.Contains(output, "connection refused"))
	})
}

func TestSleep(t *testing.T) {
	t.Parallel()

	t.Run("waits for the duration", func(t *testing.T) {
		t.Parallel()

		start := time.Now()
		err := analyze.Sleep(context.Background(), 50*time.Millisecond)

		require.NoError(t, err)
		assert.GreaterOrEqual(t, time.Since(start), 40*time.Millisecond)
	})

	t.Run("returns context error when canceled", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		err := analyze.Sleep(ctx, time.Hour)

		require.ErrorIs(t, err, context.Canceled)
	})
}
