package mock

import (
	"context"

	"github.com/fwojciec/serp"
)

// Compile-time interface verification.
var (
	_ serp.URLSource = (*URLSource)(nil)
	_ serp.Analyzer  = (*Analyzer)(nil)
)

// URLSource is a mock implementation of serp.URLSource.
type URLSource struct {
	SearchFn func(ctx context.Context, query string, count int) ([]string, error)
}

func (s *URLSource) Search(ctx context.Context, query string, count int) ([]string, error) {
	return s.SearchFn(ctx, query, count)
}

// Analyzer is a mock implementation of serp.Analyzer.
type Analyzer struct {
	AnalyzeFn func(ctx context.Context, params serp.Params, found func([]string), progress serp.ProgressFunc) (*serp.Run, error)
}

func (a *Analyzer) Analyze(ctx context.Context, params serp.Params, found func([]string), progress serp.ProgressFunc) (*serp.Run, error) {
	return a.AnalyzeFn(ctx, params, found, progress)
}
