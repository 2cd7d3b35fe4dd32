package services

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
	"github.com/custodia-labs/docqa/internal/logger"
)

// ContextRetriever returns the chunks most relevant to a query.
type ContextRetriever interface {
	Retrieve(ctx context.Context, query string) ([]domain.Chunk, error)
}

// Ensure Retriever implements the interface.
var _ ContextRetriever = (*Retriever)(nil)

// Retriever finds the k chunks of one index closest to a query.
type Retriever struct {
	collection driven.VectorCollection
	embedder   driven.EmbeddingService
	k          int
}

// NewRetriever creates a retriever. k <= 0 selects domain.DefaultTopK.
func NewRetriever(collection driven.VectorCollection, embedder driven.EmbeddingService, k int) *Retriever {
	if k <= 0 {
		k = domain.DefaultTopK
	}
	return &Retriever{collection: collection, embedder: embedder, k: k}
}

// K returns the number of chunks returned per query.
func (r *Retriever) K() int {
	return r.k
}

// Retrieve returns up to k chunks, most similar first.
func (r *Retriever) Retrieve(ctx context.Context, query string) ([]domain.Chunk, error) {
	scored, err := r.RetrieveScored(ctx, query)
	if err != nil {
		return nil, err
	}
	chunks := make([]domain.Chunk, len(scored))
	for i, s := range scored {
		chunks[i] = s.Chunk
	}
	return chunks, nil
}

// RetrieveScored is Retrieve with similarity scores. Equal scores are
// ordered by chunk ID.
func (r *Retriever) RetrieveScored(ctx context.Context, query string) ([]domain.ScoredChunk, error) {
	if r.embedder == nil {
		return nil, domain.ErrEmbeddingUnavailable
	}
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("%w: empty query", domain.ErrInvalidInput)
	}

	vec, err := r.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	results, err := r.collection.Search(ctx, vec, r.k)
	if err != nil {
		return nil, fmt.Errorf("search index: %w", err)
	}

	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].Chunk.ID < results[j].Chunk.ID
	})
	if len(results) > r.k {
		results = results[:r.k]
	}

	logger.Debug("Retrieved %d chunks from %s", len(results), r.collection.Location())
	return results, nil
}
