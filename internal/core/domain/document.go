package domain

import "time"

// Metadata keys attached to chunks by the chunker.
const (
	MetaSource     = "source"
	MetaPage       = "page"
	MetaDocumentID = "document_id"
	MetaPosition   = "position"
	MetaTitle      = "title"
)

// Document represents text loaded from an uploaded file.
// Paged formats produce one Document per page.
type Document struct {
	// ID is the unique identifier for the document.
	ID string

	// Source is the staged file path the document was loaded from.
	Source string

	// Title is the human-readable title.
	Title string

	// Content is the full text of the document (or page).
	Content string

	// Page is the 1-based page number, or 0 for formats without pages.
	Page int

	// Metadata contains arbitrary key-value pairs.
	Metadata map[string]any

	// CreatedAt is when the document was loaded.
	CreatedAt time.Time
}

// Chunk represents a retrievable unit within a document.
type Chunk struct {
	// ID is the unique identifier for the chunk.
	ID string

	// DocumentID links to the parent Document.
	DocumentID string

	// Content is the text content of this chunk.
	Content string

	// Position is the ordinal position within the document.
	Position int

	// Embedding is the vector representation, set by the index store.
	Embedding []float32

	// Metadata contains chunk-specific key-value pairs inherited from the document.
	Metadata map[string]any
}

// Page returns the page number recorded in the chunk metadata, or 0.
func (c Chunk) Page() int {
	switch v := c.Metadata[MetaPage].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	default:
		return 0
	}
}

// Source returns the source path recorded in the chunk metadata.
func (c Chunk) Source() string {
	s, _ := c.Metadata[MetaSource].(string)
	return s
}

// ScoredChunk pairs a chunk with its similarity to a query.
type ScoredChunk struct {
	Chunk Chunk

	// Score is the similarity score (higher is more similar).
	Score float64
}
