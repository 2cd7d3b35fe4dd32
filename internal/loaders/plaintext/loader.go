// Package plaintext loads plain text files as a single document.
package plaintext

import (
	"context"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
	"github.com/custodia-labs/docqa/internal/loaders/loadutil"
)

// Ensure Loader implements the interface.
var _ driven.DocumentLoader = (*Loader)(nil)

// Loader handles plain text files.
type Loader struct{}

// New creates a new plain text loader.
func New() *Loader {
	return &Loader{}
}

// Name returns the loader name.
func (l *Loader) Name() string { return "plaintext" }

// SupportedExtensions returns the extensions this loader handles.
func (l *Loader) SupportedExtensions() []string {
	return []string{".txt", ".text", ".log", ".csv", ".json", ".yaml", ".yml", ".toml"}
}

// Load reads the file verbatim.
func (l *Loader) Load(ctx context.Context, path string) ([]domain.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := loadutil.ReadFile(path)
	if err != nil {
		return nil, err
	}
	doc := loadutil.NewDocument(path, "text", loadutil.TitleFromPath(path), string(data), 0)
	return []domain.Document{doc}, nil
}
