package services

import (
	"context"
	"fmt"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
	"github.com/custodia-labs/docqa/internal/logger"
)

// DefaultBatchSize is the number of chunks embedded per request.
const DefaultBatchSize = 32

// AddResult summarises one Add call.
type AddResult struct {
	// Stored is the number of chunks written to the index.
	Stored int

	// Skipped is the number of chunks dropped by failed batches.
	Skipped int

	// Warnings describes each failed batch.
	Warnings []string
}

// IndexStore opens persistent vector indexes and fills them with embedded chunks.
type IndexStore struct {
	vectors   driven.VectorStore
	embedder  driven.EmbeddingService
	batchSize int
}

// IndexOption configures an IndexStore.
type IndexOption func(*IndexStore)

// WithBatchSize sets the number of chunks embedded per request.
func WithBatchSize(n int) IndexOption {
	return func(s *IndexStore) {
		if n > 0 {
			s.batchSize = n
		}
	}
}

// NewIndexStore creates an index store. The embedding service may be nil, in
// which case indexes can still be opened but Add stores nothing.
func NewIndexStore(vectors driven.VectorStore, embedder driven.EmbeddingService, opts ...IndexOption) *IndexStore {
	s := &IndexStore{
		vectors:   vectors,
		embedder:  embedder,
		batchSize: DefaultBatchSize,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// OpenOrCreate opens the index at location, creating it when absent.
// Opening the same location twice yields handles over the same collection.
func (s *IndexStore) OpenOrCreate(ctx context.Context, location string) (*IndexHandle, error) {
	if s.vectors == nil {
		return nil, fmt.Errorf("%w: no vector store configured", domain.ErrIndexUnavailable)
	}

	dims := domain.EmbeddingDimensions
	if s.embedder != nil {
		dims = s.embedder.Dimensions()
	}

	collection, err := s.vectors.Open(ctx, location, dims)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %w", domain.ErrIndexUnavailable, location, err)
	}
	logger.Debug("Opened index at %s (%d dimensions)", location, dims)

	return &IndexHandle{
		collection: collection,
		embedder:   s.embedder,
		batchSize:  s.batchSize,
	}, nil
}

// Exists reports whether an index has been persisted at location.
func (s *IndexStore) Exists(ctx context.Context, location string) (bool, error) {
	if s.vectors == nil {
		return false, nil
	}
	return s.vectors.Exists(ctx, location)
}

// CanEmbed reports whether an embedding service is configured.
func (s *IndexStore) CanEmbed() bool {
	return s.embedder != nil
}

// IndexHandle is an opened index.
type IndexHandle struct {
	collection driven.VectorCollection
	embedder   driven.EmbeddingService
	batchSize  int
}

// Location returns where the index lives.
func (h *IndexHandle) Location() string {
	return h.collection.Location()
}

// Count returns the number of stored chunks.
func (h *IndexHandle) Count(ctx context.Context) (int, error) {
	return h.collection.Count(ctx)
}

// Add embeds chunks batch by batch and stores them. A batch that fails to
// embed or store is skipped with a warning; later batches still run.
func (h *IndexHandle) Add(ctx context.Context, chunks []domain.Chunk) AddResult {
	var result AddResult
	if len(chunks) == 0 {
		return result
	}

	if h.embedder == nil {
		result.Skipped = len(chunks)
		result.Warnings = append(result.Warnings, domain.ErrEmbeddingUnavailable.Error())
		logger.Warn("Skipping %d chunks: %v", len(chunks), domain.ErrEmbeddingUnavailable)
		return result
	}

	for start := 0; start < len(chunks); start += h.batchSize {
		end := min(start+h.batchSize, len(chunks))
		batch := chunks[start:end]

		if err := h.addBatch(ctx, batch); err != nil {
			result.Skipped += len(batch)
			warning := fmt.Sprintf("chunks %d-%d not stored: %v", start, end-1, err)
			result.Warnings = append(result.Warnings, warning)
			logger.Warn("%s", warning)
			continue
		}
		result.Stored += len(batch)
	}

	logger.Debug("Indexed %d chunks, skipped %d", result.Stored, result.Skipped)
	return result
}

func (h *IndexHandle) addBatch(ctx context.Context, batch []domain.Chunk) error {
	texts := make([]string, len(batch))
	for i, c := range batch {
		texts[i] = c.Content
	}

	vectors, err := h.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return fmt.Errorf("embed: %w", err)
	}
	if len(vectors) != len(batch) {
		return fmt.Errorf("embed: got %d vectors for %d chunks", len(vectors), len(batch))
	}

	embedded := make([]domain.Chunk, len(batch))
	for i, c := range batch {
		c.Embedding = vectors[i]
		embedded[i] = c
	}

	if err := h.collection.Upsert(ctx, embedded); err != nil {
		return fmt.Errorf("store: %w", err)
	}
	return nil
}

// AsRetriever returns a retriever over this index. k <= 0 selects DefaultTopK.
func (h *IndexHandle) AsRetriever(k int) *Retriever {
	return NewRetriever(h.collection, h.embedder, k)
}

// Close releases the collection.
func (h *IndexHandle) Close() error {
	return h.collection.Close()
}
