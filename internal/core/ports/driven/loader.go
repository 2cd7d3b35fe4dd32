package driven

import (
	"context"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

// DocumentLoader extracts text documents from a file on disk.
// Each loader handles specific file extensions (e.g., .pdf, .md).
type DocumentLoader interface {
	// Name returns the loader name for logging.
	Name() string

	// SupportedExtensions returns lower-case extensions including the dot.
	SupportedExtensions() []string

	// Load reads the file at path. Paged formats return one document per page.
	Load(ctx context.Context, path string) ([]domain.Document, error)
}

// LoaderRegistry selects a DocumentLoader for a file path.
type LoaderRegistry interface {
	// ForPath returns the loader for the file's extension.
	// Returns domain.ErrUnsupportedFormat when none matches.
	ForPath(path string) (DocumentLoader, error)
}
