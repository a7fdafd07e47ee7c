package mock

import (
	"context"
	"io"

	"github.com/fwojciec/serp"
)

var (
	_ serp.Exporter = (*Exporter)(nil)
	_ serp.Format   = (*Format)(nil)
)

// Exporter is a mock implementation of serp.Exporter.
type Exporter struct {
	ExportFn func(ctx context.Context, run *serp.Run) ([]serp.Artifact, error)
}

func (e *Exporter) Export(ctx context.Context, run *serp.Run) ([]serp.Artifact, error) {
	return e.ExportFn(ctx, run)
}

// Format is a mock implementation of serp.Format.
type Format struct {
	ExtValue         string
	ContentTypeValue string
	EncodeFn         func(w io.Writer, run *serp.Run) error
}

func (f *Format) Ext() string { return f.ExtValue }

func (f *Format) ContentType() string { return f.ContentTypeValue }

func (f *Format) Encode(w io.Writer, run *serp.Run) error {
	return f.EncodeFn(w, run)
}
