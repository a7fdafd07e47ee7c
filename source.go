package serp

import (
	"context"
	"strings"
	"time"
)

// Bounds for analysis parameters.
const (
	MinCount = 1
	MaxCount = 20
	MinDelay = 1 * time.Second
	MaxDelay = 5 * time.Second
)

// URLSource returns candidate URLs for a search query.
type URLSource interface {
	// Search returns at most count result URLs in ranking order.
	// Providers may return fewer URLs than requested.
	Search(ctx context.Context, query string, count int) ([]string, error)
}

// Params configures a single analysis run.
type Params struct {
	Query string
	Count int
	Delay time.Duration
}

// Validate returns an error if the parameters are out of bounds.
func (p Params) Validate() error {
	if strings.TrimSpace(p.Query) == "" {
		return Errorf(EINVALID, "search query required")
	}
	if p.Count < MinCount || p.Count > MaxCount {
		return Errorf(EINVALID, "result count must be between %d and %d, got %d", MinCount, MaxCount, p.Count)
	}
	if p.Delay < MinDelay || p.Delay > MaxDelay {
		return Errorf(EINVALID, "delay must be between %s and %s, got %s", MinDelay, MaxDelay, p.Delay)
	}
	return nil
}

// Progress reports the processing of one URL during a run.
type Progress struct {
	Index int // 1-based
	Total int
	URL   string
	Err   error
}

// ProgressFunc is called once per processed URL regardless of outcome.
type ProgressFunc func(Progress)

// Analyzer runs the full search, fetch and extract pipeline.
type Analyzer interface {
	// Analyze searches for params.Query and analyzes the result pages.
	// The found callback, if non-nil, receives the URLs before fetching starts.
	// Returns EEMPTY if no URLs were found or none could be analyzed.
	Analyze(ctx context.Context, params Params, found func([]string), progress ProgressFunc) (*Run, error)
}
