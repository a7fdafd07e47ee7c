package serp

import (
	"strings"
	"time"
	"unicode"
)

// TimestampLayout formats run timestamps in output file names.
const TimestampLayout = "20060102_150405"

// FailureKind classifies why a URL or run produced no record.
type FailureKind string

// Failure kinds.
const (
	FailureNone   FailureKind = ""
	FailureSource FailureKind = "source"
	FailureFetch  FailureKind = "fetch"
	FailureParse  FailureKind = "parse"
	FailureEmpty  FailureKind = "empty"
)

// Outcome is the result of processing a single URL: either a ranked Record
// or a failure Kind with its error.
type Outcome struct {
	Index  int // 1-based position in the URL source order
	URL    string
	Record *PageRecord
	Kind   FailureKind
	Err    error
}

// OK reports whether the URL produced a record.
func (o Outcome) OK() bool {
	return o.Kind == FailureNone && o.Record != nil
}

// Run is the ordered collection of records produced by one query execution.
type Run struct {
	ID        string        `json:"id,omitempty"`
	Query     string        `json:"query"`
	StartedAt time.Time     `json:"startedAt"`
	Records   []*PageRecord `json:"records"`

	// Outcomes holds every processed URL in source order, failures included.
	Outcomes []Outcome `json:"-"`
}

// NewRun returns an empty run for query started at t.
func NewRun(query string, t time.Time) *Run {
	return &Run{
		Query:     query,
		StartedAt: t,
		Records:   []*PageRecord{},
	}
}

// Append ranks rec after the records already present and adds it to the run.
// The record must not be modified afterwards.
func (r *Run) Append(rec *PageRecord) {
	rec.Rank = len(r.Records) + 1
	r.Records = append(r.Records, rec)
}

// Empty reports whether the run has no records.
func (r *Run) Empty() bool {
	return len(r.Records) == 0
}

// Failed returns the outcomes that did not produce a record.
func (r *Run) Failed() []Outcome {
	var failed []Outcome
	for _, o := range r.Outcomes {
		if !o.OK() {
			failed = append(failed, o)
		}
	}
	return failed
}

// Validate returns an error if the run breaks its ranking or record invariants.
func (r *Run) Validate() error {
	if strings.TrimSpace(r.Query) == "" {
		return Errorf(EINVALID, "run query required")
	}
	for i, rec := range r.Records {
		if err := rec.Validate(); err != nil {
			return err
		}
		if rec.Rank != i+1 {
			return Errorf(EINVALID, "record %q has rank %d, want %d", rec.URL, rec.Rank, i+1)
		}
	}
	return nil
}

// BaseName returns the file name stem for the run's exports:
// the query with spaces replaced by underscores, followed by the start time.
func (r *Run) BaseName() string {
	return SanitizeQuery(r.Query) + "_" + r.StartedAt.Format(TimestampLayout)
}

// SanitizeQuery replaces spaces and characters that are unsafe in file names
// with underscores.
func SanitizeQuery(query string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case unicode.IsSpace(r):
			return '_'
		case strings.ContainsRune(`/\:*?"<>|`, r), unicode.IsControl(r):
			return '_'
		}
		return r
	}, strings.TrimSpace(query))
}

// Summary holds aggregate metrics for a run.
type Summary struct {
	Analyzed int
	Failed   int

	// AverageHeadings maps each level to the mean heading count per record.
	AverageHeadings map[HeadingLevel]float64
}

// Average returns the mean heading count for level l.
func (s Summary) Average(l HeadingLevel) float64 {
	return s.AverageHeadings[l]
}

// Summary computes aggregate metrics over the run's records.
func (r *Run) Summary() Summary {
	s := Summary{
		Analyzed:        len(r.Records),
		Failed:          len(r.Failed()),
		AverageHeadings: make(map[HeadingLevel]float64, len(HeadingLevels)),
	}
	if s.Analyzed == 0 {
		return s
	}
	for _, l := range HeadingLevels {
		var total int
		for _, rec := range r.Records {
			total += rec.Headings.Count(l)
		}
		s.AverageHeadings[l] = float64(total) / float64(s.Analyzed)
	}
	return s
}
