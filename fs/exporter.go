// Package fs provides file-based export of analysis runs.
package fs

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/fwojciec/serp"
)

// Ensure Exporter implements serp.Exporter at compile time.
var _ serp.Exporter = (*Exporter)(nil)

// maxSuffix bounds the search for an unused base name.
const maxSuffix = 1000

// Exporter writes a run to a directory, one file per format.
// Files are written to a temporary name and renamed into place, so a
// partially written export is never visible under its final name.
type Exporter struct {
	dir     string
	formats []serp.Format
}

// NewExporter creates a new Exporter that writes formats into dir.
func NewExporter(dir string, formats ...serp.Format) *Exporter {
	return &Exporter{dir: dir, formats: formats}
}

// Dir returns the output directory.
func (e *Exporter) Dir() string {
	return e.dir
}

// Export writes the run in every configured format.
func (e *Exporter) Export(ctx context.Context, run *serp.Run) ([]serp.Artifact, error) {
	if run.Empty() {
		return nil, serp.Errorf(serp.EEMPTY, "No results could be analyzed. Please try again.")
	}
	if err := run.Validate(); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(e.dir, 0755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	base, err := e.freeBaseName(run.BaseName())
	if err != nil {
		return nil, err
	}

	artifacts := make([]serp.Artifact, 0, len(e.formats))
	for _, f := range e.formats {
		if err := ctx.Err(); err != nil {
			return artifacts, err
		}
		name := base + "." + f.Ext()
		path := filepath.Join(e.dir, name)
		if err := writeAtomic(path, func(file *os.File) error {
			return f.Encode(file, run)
		}); err != nil {
			return artifacts, fmt.Errorf("writing %s: %w", name, err)
		}
		artifacts = append(artifacts, serp.Artifact{
			Name:        name,
			Path:        path,
			ContentType: f.ContentType(),
		})
	}
	return artifacts, nil
}

// freeBaseName returns base, or base with a "-N" suffix, such that no
// format's file exists yet.
func (e *Exporter) freeBaseName(base string) (string, error) {
	for n := 1; n <= maxSuffix; n++ {
		candidate := base
		if n > 1 {
			candidate = base + "-" + strconv.Itoa(n)
		}
		taken, err := e.taken(candidate)
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
	}
	return "", serp.Errorf(serp.EINTERNAL, "no free file name for %q", base)
}

func (e *Exporter) taken(base string) (bool, error) {
	for _, f := range e.formats {
		_, err := os.Lstat(filepath.Join(e.dir, base+"."+f.Ext()))
		if err == nil {
			return true, nil
		}
		if !errors.Is(err, os.ErrNotExist) {
			return false, err
		}
	}
	return false, nil
}

// writeAtomic writes path through a temp file in the same directory and
// renames it into place. The temp file is removed on failure.
func writeAtomic(path string, write func(*os.File) error) (err error) {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = os.Remove(tmp.Name())
		}
	}()

	if err := write(tmp); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmp.Name(), 0644); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// Open opens an exported file by name. Names containing path separators are
// rejected so callers cannot read outside the output directory.
func (e *Exporter) Open(name string) (*os.File, error) {
	if name == "" || name != filepath.Base(name) || name == "." || name == ".." {
		return nil, serp.Errorf(serp.EINVALID, "invalid file name %q", name)
	}
	f, err := os.Open(filepath.Join(e.dir, name))
	if errors.Is(err, os.ErrNotExist) {
		return nil, serp.Errorf(serp.ENOTFOUND, "file %q not found", name)
	}
	return f, err
}
