// Package uploads stages uploaded files at a fixed path before ingestion.
package uploads

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/custodia-labs/docqa/internal/core/ports/driven"
	"github.com/custodia-labs/docqa/internal/logger"
)

// Ensure Stager implements the interface.
var _ driven.UploadStager = (*Stager)(nil)

// DirName is the staging directory under the data directory.
const DirName = "uploads"

// baseName is the fixed file name of a staged upload, before its extension.
const baseName = "upload"

// Stager writes each upload to <dir>/upload<ext>, replacing the previous one.
type Stager struct {
	dir string
}

// NewStager creates a stager writing into dataDir/uploads.
func NewStager(dataDir string) *Stager {
	return &Stager{dir: filepath.Join(dataDir, DirName)}
}

// Dir returns the staging directory.
func (s *Stager) Dir() string {
	return s.dir
}

// Stage copies r to the staged path. The copy goes to a temporary file first
// so a failed upload never leaves a truncated file at the staged path.
// Earlier uploads with a different extension are removed.
func (s *Stager) Stage(ctx context.Context, name string, r io.Reader) (string, error) {
	if err := os.MkdirAll(s.dir, 0700); err != nil {
		return "", fmt.Errorf("create upload directory: %w", err)
	}

	ext := strings.ToLower(filepath.Ext(name))
	target := filepath.Join(s.dir, baseName+ext)

	tmp, err := os.CreateTemp(s.dir, ".upload-*")
	if err != nil {
		return "", fmt.Errorf("create staging file: %w", err)
	}
	defer os.Remove(tmp.Name())

	n, err := io.Copy(tmp, &ctxReader{ctx: ctx, r: r})
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return "", fmt.Errorf("stage %s: %w", name, err)
	}

	s.removeStale(target)
	if err := os.Rename(tmp.Name(), target); err != nil {
		return "", fmt.Errorf("stage %s: %w", name, err)
	}

	logger.Debug("staged %s (%d bytes) at %s", name, n, target)
	return target, nil
}

// removeStale deletes earlier staged uploads other than keep.
func (s *Stager) removeStale(keep string) {
	matches, _ := filepath.Glob(filepath.Join(s.dir, baseName+"*"))
	for _, m := range matches {
		if m != keep {
			_ = os.Remove(m)
		}
	}
}

// ctxReader stops a copy once ctx is cancelled.
type ctxReader struct {
	ctx context.Context
	r   io.Reader
}

func (c *ctxReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}
