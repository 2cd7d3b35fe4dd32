package driven

import (
	"context"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

// VectorStore opens persistent nearest-neighbour collections by location.
// A location is a directory for file-backed stores or a collection name for
// remote stores.
type VectorStore interface {
	// Open opens the collection at location, creating it if absent.
	// Opening an existing location never duplicates stored entries.
	Open(ctx context.Context, location string, dimensions int) (VectorCollection, error)

	// Exists reports whether a collection has been persisted at location.
	Exists(ctx context.Context, location string) (bool, error)
}

// VectorCollection is one opened index of (chunk, embedding) pairs.
type VectorCollection interface {
	// Upsert stores chunks with their Embedding field set.
	// A chunk whose ID is already stored is replaced, not duplicated.
	Upsert(ctx context.Context, chunks []domain.Chunk) error

	// Search returns up to k chunks ordered by descending similarity to query.
	Search(ctx context.Context, query []float32, k int) ([]domain.ScoredChunk, error)

	// Count returns the number of stored chunks.
	Count(ctx context.Context) (int, error)

	// Location returns the location this collection was opened at.
	Location() string

	// Close releases resources.
	Close() error
}
