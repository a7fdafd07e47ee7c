package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/serp"
)

// Ensure LoggingExporter implements serp.Exporter.
var _ serp.Exporter = (*LoggingExporter)(nil)

// LoggingExporter wraps an Exporter with logging.
type LoggingExporter struct {
	next   serp.Exporter
	logger *slog.Logger
}

// NewLoggingExporter creates a new LoggingExporter.
func NewLoggingExporter(next serp.Exporter, logger *slog.Logger) *LoggingExporter {
	return &LoggingExporter{next: next, logger: logger}
}

// Export delegates to the wrapped exporter and logs each written file.
func (e *LoggingExporter) Export(ctx context.Context, run *serp.Run) (artifacts []serp.Artifact, err error) {
	defer func(begin time.Time) {
		for _, a := range artifacts {
			e.logger.Info("exported", "path", a.Path)
		}
		e.logger.Info("export",
			"query", run.Query,
			"records", len(run.Records),
			"files", len(artifacts),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return e.next.Export(ctx, run)
}
