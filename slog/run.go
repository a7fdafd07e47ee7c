package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/serp"
)

// Ensure LoggingRunService implements serp.RunService.
var _ serp.RunService = (*LoggingRunService)(nil)

// LoggingRunService wraps a RunService with debug logging.
type LoggingRunService struct {
	next   serp.RunService
	logger *slog.Logger
}

// NewLoggingRunService creates a new LoggingRunService.
func NewLoggingRunService(next serp.RunService, logger *slog.Logger) *LoggingRunService {
	return &LoggingRunService{next: next, logger: logger}
}

// CreateRun delegates to the wrapped service.
func (s *LoggingRunService) CreateRun(ctx context.Context, run *serp.Run) (err error) {
	defer func(begin time.Time) {
		s.logger.Debug("create run",
			"id", run.ID,
			"query", run.Query,
			"records", len(run.Records),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.CreateRun(ctx, run)
}

// FindRunByID delegates to the wrapped service.
func (s *LoggingRunService) FindRunByID(ctx context.Context, id string) (run *serp.Run, err error) {
	defer func(begin time.Time) {
		s.logger.Debug("find run", "id", id, "duration", time.Since(begin), "err", err)
	}(time.Now())
	return s.next.FindRunByID(ctx, id)
}

// FindRuns delegates to the wrapped service.
func (s *LoggingRunService) FindRuns(ctx context.Context, filter serp.RunFilter) (runs []*serp.RunInfo, err error) {
	defer func(begin time.Time) {
		s.logger.Debug("find runs", "count", len(runs), "duration", time.Since(begin), "err", err)
	}(time.Now())
	return s.next.FindRuns(ctx, filter)
}

// DeleteRun delegates to the wrapped service.
func (s *LoggingRunService) DeleteRun(ctx context.Context, id string) (err error) {
	defer func(begin time.Time) {
		s.logger.Debug("delete run", "id", id, "duration", time.Since(begin), "err", err)
	}(time.Now())
	return s.next.DeleteRun(ctx, id)
}
