package mock

import (
	"context"

	"github.com/fwojciec/serp"
)

var _ serp.RunService = (*RunService)(nil)

// RunService is a mock implementation of serp.RunService.
type RunService struct {
	CreateRunFn   func(ctx context.Context, run *serp.Run) error
	FindRunByIDFn func(ctx context.Context, id string) (*serp.Run, error)
	FindRunsFn    func(ctx context.Context, filter serp.RunFilter) ([]*serp.RunInfo, error)
	DeleteRunFn   func(ctx context.Context, id string) error
}

func (s *RunService) CreateRun(ctx context.Context, run *serp.Run) error {
	return s.CreateRunFn(ctx, run)
}

func (s *RunService) FindRunByID(ctx context.Context, id string) (*serp.Run, error) {
	return s.FindRunByIDFn(ctx, id)
}

func (s *RunService) FindRuns(ctx context.Context, filter serp.RunFilter) ([]*serp.RunInfo, error) {
	return s.FindRunsFn(ctx, filter)
}

func (s *RunService) DeleteRun(ctx context.Context, id string) error {
	return s.DeleteRunFn(ctx, id)
}
