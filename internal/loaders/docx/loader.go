// Package docx loads Word (.docx) files.
package docx

import (
	"archive/zip"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
	"github.com/custodia-labs/docqa/internal/loaders/loadutil"
)

// Ensure Loader implements the interface.
var _ driven.DocumentLoader = (*Loader)(nil)

const (
	bodyPart  = "word/document.xml"
	propsPart = "docProps/core.xml"
)

// Loader handles DOCX files.
type Loader struct{}

// New creates a new DOCX loader.
func New() *Loader {
	return &Loader{}
}

// Name returns the loader name.
func (l *Loader) Name() string { return "docx" }

// SupportedExtensions returns the extensions this loader handles.
func (l *Loader) SupportedExtensions() []string {
	return []string{".docx"}
}

// Load extracts paragraph text from the document body, one paragraph per line.
func (l *Loader) Load(ctx context.Context, path string) ([]domain.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	zr, err := zip.OpenReader(path)
	if err != nil {
		if _, statErr := loadutil.ReadFile(path); statErr != nil {
			return nil, statErr
		}
		return nil, fmt.Errorf("%w: not a docx archive: %v", domain.ErrInvalidInput, err)
	}
	defer zr.Close()

	body, err := readPart(&zr.Reader, bodyPart)
	if err != nil {
		return nil, err
	}
	if body == nil {
		return nil, fmt.Errorf("%w: missing %s", domain.ErrInvalidInput, bodyPart)
	}

	content, err := paragraphs(body)
	if err != nil {
		return nil, err
	}

	doc := loadutil.NewDocument(path, "docx", title(&zr.Reader, path), content, 0)
	return []domain.Document{doc}, nil
}

// readPart returns the bytes of a named archive member, or nil when absent.
func readPart(zr *zip.Reader, name string) ([]byte, error) {
	for _, f := range zr.File {
		if f.Name != name {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", name, err)
		}
		defer rc.Close()
		data, err := io.ReadAll(rc)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", name, err)
		}
		return data, nil
	}
	return nil, nil
}

type documentXML struct {
	Body struct {
		Paragraphs []struct {
			Runs []struct {
				Text []string `xml:"t"`
			} `xml:"r"`
		} `xml:"p"`
	} `xml:"body"`
}

func paragraphs(data []byte) (string, error) {
	var d documentXML
	if err := xml.Unmarshal(data, &d); err != nil {
		return "", fmt.Errorf("%w: parse %s: %v", domain.ErrInvalidInput, bodyPart, err)
	}

	lines := make([]string, 0, len(d.Body.Paragraphs))
	for _, p := range d.Body.Paragraphs {
		var b strings.Builder
		for _, r := range p.Runs {
			for _, t := range r.Text {
				b.WriteString(t)
			}
		}
		lines = append(lines, b.String())
	}
	return strings.TrimSpace(strings.Join(lines, "\n")), nil
}

func title(zr *zip.Reader, path string) string {
	data, err := readPart(zr, propsPart)
	if err == nil && data != nil {
		var core struct {
			Title string `xml:"title"`
		}
		if xml.Unmarshal(data, &core) == nil && strings.TrimSpace(core.Title) != "" {
			return strings.TrimSpace(core.Title)
		}
	}
	return loadutil.TitleFromPath(path)
}
