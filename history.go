package serp

import (
	"context"
	"time"
)

// RunService stores completed runs for later review and re-export.
type RunService interface {
	// CreateRun persists a validated, non-empty run and assigns its ID.
	// Returns EEMPTY if the run has no records.
	CreateRun(ctx context.Context, run *Run) error

	// FindRunByID retrieves a run with its records ordered by rank.
	// Returns ENOTFOUND if the run does not exist.
	FindRunByID(ctx context.Context, id string) (*Run, error)

	// FindRuns retrieves runs matching the filter, newest first.
	// Records are not loaded; use FindRunByID for the full run.
	FindRuns(ctx context.Context, filter RunFilter) ([]*RunInfo, error)

	// DeleteRun permanently removes a run and its records.
	// Returns ENOTFOUND if the run does not exist.
	DeleteRun(ctx context.Context, id string) error
}

// RunFilter represents a filter for FindRuns.
type RunFilter struct {
	ID    *string `json:"id"`
	Query *string `json:"query"`

	Offset int `json:"offset"`
	Limit  int `json:"limit"`
}

// RunInfo summarizes a stored run without its records.
type RunInfo struct {
	ID          string    `json:"id"`
	Query       string    `json:"query"`
	StartedAt   time.Time `json:"startedAt"`
	RecordCount int       `json:"recordCount"`

	// Fingerprint identifies the heading structure of all records, so two
	// runs with equal fingerprints found the same pages with the same
	// outline.
	Fingerprint string `json:"fingerprint"`
}
