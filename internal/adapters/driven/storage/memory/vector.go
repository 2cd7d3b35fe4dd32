package memory

import (
	"context"
	"fmt"
	"maps"
	"sync"

	"github.com/custodia-labs/docqa/internal/adapters/driven/vector/rank"
	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
)

// Ensure VectorStore implements the interface.
var _ driven.VectorStore = (*VectorStore)(nil)

// VectorStore keeps collections in process memory, keyed by location.
// A location "exists" once it has been opened in this process.
type VectorStore struct {
	mu          sync.Mutex
	collections map[string]*Collection
}

// NewVectorStore creates an empty in-memory vector store.
func NewVectorStore() *VectorStore {
	return &VectorStore{collections: make(map[string]*Collection)}
}

// Open returns the collection at location, creating it on first use.
func (v *VectorStore) Open(_ context.Context, location string, dimensions int) (driven.VectorCollection, error) {
	if location == "" {
		return nil, fmt.Errorf("%w: empty index location", domain.ErrInvalidInput)
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	if c, ok := v.collections[location]; ok {
		if dimensions > 0 && c.dimensions > 0 && c.dimensions != dimensions {
			return nil, fmt.Errorf("%w: index has %d dimensions, embeddings have %d",
				domain.ErrDimensionMismatch, c.dimensions, dimensions)
		}
		return c, nil
	}

	c := &Collection{
		location:   location,
		dimensions: dimensions,
		chunks:     make(map[string]domain.Chunk),
	}
	v.collections[location] = c
	return c, nil
}

// Exists reports whether location has been opened.
func (v *VectorStore) Exists(_ context.Context, location string) (bool, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	_, ok := v.collections[location]
	return ok, nil
}

// Collection is an in-memory driven.VectorCollection.
type Collection struct {
	mu         sync.RWMutex
	location   string
	dimensions int
	chunks     map[string]domain.Chunk
}

var _ driven.VectorCollection = (*Collection)(nil)

// Upsert stores copies of the chunks, replacing any with the same ID.
func (c *Collection) Upsert(_ context.Context, chunks []domain.Chunk) error {
	for _, chunk := range chunks {
		if c.dimensions > 0 && len(chunk.Embedding) != c.dimensions {
			return fmt.Errorf("%w: chunk %s has %d dimensions, index has %d",
				domain.ErrDimensionMismatch, chunk.ID, len(chunk.Embedding), c.dimensions)
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	for _, chunk := range chunks {
		chunk.Metadata = maps.Clone(chunk.Metadata)
		chunk.Embedding = append([]float32(nil), chunk.Embedding...)
		c.chunks[chunk.ID] = chunk
	}
	return nil
}

// Search ranks every stored chunk against query.
func (c *Collection) Search(_ context.Context, query []float32, k int) ([]domain.ScoredChunk, error) {
	if c.dimensions > 0 && len(query) != c.dimensions {
		return nil, fmt.Errorf("%w: query has %d dimensions, index has %d",
			domain.ErrDimensionMismatch, len(query), c.dimensions)
	}

	c.mu.RLock()
	all := make([]domain.Chunk, 0, len(c.chunks))
	for _, chunk := range c.chunks {
		all = append(all, chunk)
	}
	c.mu.RUnlock()

	return rank.TopK(query, all, k), nil
}

// Count returns the number of stored chunks.
func (c *Collection) Count(_ context.Context) (int, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.chunks), nil
}

// Location returns the collection's location key.
func (c *Collection) Location() string { return c.location }

// Close is a no-op; data lives as long as the VectorStore.
func (c *Collection) Close() error { return nil }
