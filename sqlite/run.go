package sqlite

import (
	"context"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/fwojciec/serp"
	"github.com/google/uuid"
)

// Compile-time interface verification.
var _ serp.RunService = (*RunService)(nil)

// createdAtLayout is fixed width so that created_at sorts lexically.
const createdAtLayout = "2006-01-02T15:04:05.000000000Z07:00"

// RunService implements serp.RunService using SQLite.
type RunService struct {
	db *DB
}

// NewRunService creates a new RunService.
func NewRunService(db *DB) *RunService {
	return &RunService{db: db}
}

// fingerprint hashes the heading outline of a record: each level tag
// followed by its heading texts.
func fingerprint(h serp.Headings) string {
	d := xxhash.New()
	for _, l := range serp.HeadingLevels {
		_, _ = d.WriteString(l.String())
		for _, text := range h.Level(l) {
			_, _ = d.WriteString("\x00")
			_, _ = d.WriteString(text)
		}
		_, _ = d.WriteString("\x01")
	}
	return hex.EncodeToString(d.Sum(nil))
}

// runFingerprint hashes the ordered URLs and record fingerprints of a run.
func runFingerprint(records []*serp.PageRecord) string {
	d := xxhash.New()
	for _, rec := range records {
		_, _ = d.WriteString(rec.URL)
		_, _ = d.WriteString("\x00")
		_, _ = d.WriteString(fingerprint(rec.Headings))
		_, _ = d.WriteString("\x01")
	}
	return hex.EncodeToString(d.Sum(nil))
}

// CreateRun stores a run and its records in a single transaction.
func (s *RunService) CreateRun(ctx context.Context, run *serp.Run) error {
	if run.Empty() {
		return serp.Errorf(serp.EEMPTY, "cannot save a run without records")
	}
	if err := run.Validate(); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	id := uuid.New().String()
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO runs (id, query, started_at, fingerprint, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, id, run.Query, run.StartedAt.Format(time.RFC3339), runFingerprint(run.Records),
		time.Now().UTC().Format(createdAtLayout)); err != nil {
		return err
	}

	for _, rec := range run.Records {
		headings, err := json.Marshal(rec.Headings)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO records (run_id, rank, url, title, meta_description, headings, fingerprint)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`, id, rec.Rank, rec.URL, rec.Title, rec.MetaDescription, string(headings),
			fingerprint(rec.Headings)); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	run.ID = id
	return nil
}

// FindRunByID retrieves a run with its records ordered by rank.
func (s *RunService) FindRunByID(ctx context.Context, id string) (*serp.Run, error) {
	run := &serp.Run{ID: id}
	var startedAt string

	err := s.db.QueryRowContext(ctx, `
		SELECT query, started_at FROM runs WHERE id = ?
	`, id).Scan(&run.Query, &startedAt)
	if err == sql.ErrNoRows {
		return nil, serp.Errorf(serp.ENOTFOUND, "run not found")
	}
	if err != nil {
		return nil, err
	}

	if run.StartedAt, err = parseRFC3339(startedAt, "started_at"); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT rank, url, title, meta_description, headings
		FROM records
		WHERE run_id = ?
		ORDER BY rank ASC
	`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	run.Records = []*serp.PageRecord{}
	for rows.Next() {
		rec := &serp.PageRecord{Headings: serp.NewHeadings()}
		var raw string
		if err := rows.Scan(&rec.Rank, &rec.URL, &rec.Title, &rec.MetaDescription, &raw); err != nil {
			return nil, err
		}
		var headings serp.Headings
		if err := json.Unmarshal([]byte(raw), &headings); err != nil {
			return nil, fmt.Errorf("failed to decode headings for rank %d: %w", rec.Rank, err)
		}
		for _, l := range serp.HeadingLevels {
			for _, text := range headings.Level(l) {
				rec.Add(l, text)
			}
		}
		run.Records = append(run.Records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return run, nil
}

// FindRuns retrieves runs matching the filter, newest first.
func (s *RunService) FindRuns(ctx context.Context, filter serp.RunFilter) ([]*serp.RunInfo, error) {
	var query strings.Builder
	var args []any

	query.WriteString(`
		SELECT r.id, r.query, r.started_at, r.fingerprint, COUNT(rec.rank)
		FROM runs r
		LEFT JOIN records rec ON rec.run_id = r.id
		WHERE 1=1`)

	if filter.ID != nil {
		query.WriteString(" AND r.id = ?")
		args = append(args, *filter.ID)
	}
	if filter.Query != nil {
		query.WriteString(" AND r.query = ?")
		args = append(args, *filter.Query)
	}

	query.WriteString(" GROUP BY r.id ORDER BY r.created_at DESC, r.rowid DESC")
	appendPagination(&query, &args, filter.Limit, filter.Offset)

	rows, err := s.db.QueryContext(ctx, query.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	runs := []*serp.RunInfo{}
	for rows.Next() {
		var info serp.RunInfo
		var startedAt string
		if err := rows.Scan(&info.ID, &info.Query, &startedAt, &info.Fingerprint, &info.RecordCount); err != nil {
			return nil, err
		}
		if info.StartedAt, err = parseRFC3339(startedAt, "started_at"); err != nil {
			return nil, err
		}
		runs = append(runs, &info)
	}
	return runs, rows.Err()
}

// DeleteRun permanently removes a run. Its records are removed by cascade.
func (s *RunService) DeleteRun(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM runs WHERE id = ?", id)
	if err != nil {
		return err
	}

	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return serp.Errorf(serp.ENOTFOUND, "run not found")
	}
	return nil
}
