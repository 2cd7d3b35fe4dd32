// Package pdf loads PDF files page by page.
package pdf

import (
	"context"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
	"github.com/custodia-labs/docqa/internal/loaders/loadutil"
	"github.com/custodia-labs/docqa/internal/logger"
)

// Ensure Loader implements the interface.
var _ driven.DocumentLoader = (*Loader)(nil)

// Loader extracts the plain text of each PDF page as its own document.
type Loader struct{}

// New creates a new PDF loader.
func New() *Loader {
	return &Loader{}
}

// Name returns the loader name.
func (l *Loader) Name() string { return "pdf" }

// SupportedExtensions returns the extensions this loader handles.
func (l *Loader) SupportedExtensions() []string {
	return []string{".pdf"}
}

// Load returns one document per page, numbered from 1. Pages whose text
// cannot be extracted are skipped with a warning; a file with no readable
// page at all is an error.
func (l *Loader) Load(ctx context.Context, path string) ([]domain.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if _, err := loadutil.ReadFile(path); err != nil {
		return nil, err
	}

	f, r, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: open pdf %s: %v", domain.ErrInvalidInput, path, err)
	}
	defer f.Close()

	title := loadutil.TitleFromPath(path)
	total := r.NumPage()
	docs := make([]domain.Document, 0, total)
	var failed int

	for i := 1; i <= total; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}

		text, err := pageText(page)
		if err != nil {
			failed++
			logger.Warn("pdf: page %d of %s: %v", i, path, err)
			continue
		}

		doc := loadutil.NewDocument(path, "pdf", title, text, i)
		doc.Metadata["total_pages"] = total
		docs = append(docs, doc)
	}

	if len(docs) == 0 && failed > 0 {
		return nil, fmt.Errorf("%w: no readable pages in %s", domain.ErrInvalidInput, path)
	}
	logger.Debug("pdf: loaded %d/%d pages from %s", len(docs), total, path)
	return docs, nil
}

// pageText extracts a page's text, converting library panics on malformed
// content streams into errors.
func pageText(page pdf.Page) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("extract text: %v", r)
		}
	}()
	text, err = page.GetPlainText(nil)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(text), nil
}
