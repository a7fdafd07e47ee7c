package serp

import (
	"context"
	"encoding/json"
	"io"
	"strings"
)

// Format encodes a run into one export file type.
type Format interface {
	// Ext returns the file extension without a leading dot, e.g. "json".
	Ext() string

	// ContentType returns the MIME type of the encoded output.
	ContentType() string

	// Encode writes the run's records to w.
	Encode(w io.Writer, run *Run) error
}

// Artifact describes an exported file.
type Artifact struct {
	Name        string // file name, e.g. "seo_tips_20250101_120000.json"
	Path        string // full path on disk
	ContentType string
}

// Exporter writes a completed run to durable files.
type Exporter interface {
	// Export writes one artifact per format and returns them in format order.
	// Returns EEMPTY if the run has no records.
	Export(ctx context.Context, run *Run) ([]Artifact, error)
}

// Columns lists the exported fields in output order.
var Columns = []string{"url", "title", "meta_description", "h1", "h2", "h3", "h4", "h5", "h6", "rank"}

// JoinHeadings flattens a heading list into a single newline-delimited cell.
func JoinHeadings(list []string) string {
	return strings.Join(list, "\n")
}

// SplitHeadings reverses JoinHeadings. An empty cell yields an empty list.
func SplitHeadings(cell string) []string {
	if cell == "" {
		return []string{}
	}
	return strings.Split(cell, "\n")
}

// Ensure JSONFormat implements Format at compile time.
var _ Format = JSONFormat{}

// JSONFormat encodes records as an indented JSON array that preserves the
// nested heading lists.
type JSONFormat struct{}

// Ext implements Format.
func (JSONFormat) Ext() string { return "json" }

// ContentType implements Format.
func (JSONFormat) ContentType() string { return "application/json" }

// Encode implements Format.
func (JSONFormat) Encode(w io.Writer, run *Run) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(run.Records)
}

// DecodeRecords parses a JSON array written by JSONFormat.
func DecodeRecords(r io.Reader) ([]*PageRecord, error) {
	var records []*PageRecord
	if err := json.NewDecoder(r).Decode(&records); err != nil {
		return nil, Errorf(EINVALID, "invalid records JSON: %v", err)
	}
	for _, rec := range records {
		for _, l := range HeadingLevels {
			if p := rec.Headings.list(l); *p == nil {
				*p = []string{}
			}
		}
	}
	return records, nil
}
