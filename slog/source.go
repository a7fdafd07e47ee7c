package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/serp"
)

// Ensure LoggingURLSource implements serp.URLSource.
var _ serp.URLSource = (*LoggingURLSource)(nil)

// LoggingURLSource wraps a URLSource with logging.
type LoggingURLSource struct {
	next     serp.URLSource
	provider string
	logger   *slog.Logger
}

// NewLoggingURLSource creates a new LoggingURLSource. The provider name is
// attached to every log entry.
func NewLoggingURLSource(next serp.URLSource, provider string, logger *slog.Logger) *LoggingURLSource {
	return &LoggingURLSource{next: next, provider: provider, logger: logger}
}

// Search delegates to the wrapped source and logs how many URLs it found.
func (s *LoggingURLSource) Search(ctx context.Context, query string, count int) (urls []string, err error) {
	defer func(begin time.Time) {
		s.logger.Info("search",
			"provider", s.provider,
			"query", query,
			"requested", count,
			"count", len(urls),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.Search(ctx, query, count)
}
