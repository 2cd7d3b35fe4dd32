// Package cache wraps an embedding service with an LRU cache of vectors.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/custodia-labs/docqa/internal/core/ports/driven"
)

// DefaultSize is the number of vectors kept when no size is given.
const DefaultSize = 256

// Ensure Service implements the interface.
var _ driven.EmbeddingService = (*Service)(nil)

// Service is a caching decorator for driven.EmbeddingService. Cached vectors
// are keyed by a hash of the text; the embedding model is fixed so the text
// alone identifies a vector.
type Service struct {
	next  driven.EmbeddingService
	cache *lru.Cache[string, []float32]
}

// New wraps next with a cache holding up to size vectors.
// size <= 0 uses DefaultSize.
func New(next driven.EmbeddingService, size int) (*Service, error) {
	if size <= 0 {
		size = DefaultSize
	}
	c, err := lru.New[string, []float32](size)
	if err != nil {
		return nil, fmt.Errorf("init embedding cache: %w", err)
	}
	return &Service{next: next, cache: c}, nil
}

// Embed returns the cached vector for text or embeds and caches it.
func (s *Service) Embed(ctx context.Context, text string) ([]float32, error) {
	key := cacheKey(text)
	if v, ok := s.cache.Get(key); ok {
		return clone(v), nil
	}
	v, err := s.next.Embed(ctx, text)
	if err != nil {
		return nil, err
	}
	s.cache.Add(key, clone(v))
	return v, nil
}

// EmbedBatch embeds only the texts missing from the cache, in one call.
func (s *Service) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	var (
		missing []string
		slots   []int
	)
	for i, text := range texts {
		if v, ok := s.cache.Get(cacheKey(text)); ok {
			out[i] = clone(v)
			continue
		}
		missing = append(missing, text)
		slots = append(slots, i)
	}
	if len(missing) == 0 {
		return out, nil
	}

	vectors, err := s.next.EmbedBatch(ctx, missing)
	if err != nil {
		return nil, err
	}
	if len(vectors) != len(missing) {
		return nil, fmt.Errorf("embedding service returned %d vectors for %d texts", len(vectors), len(missing))
	}
	for j, v := range vectors {
		out[slots[j]] = v
		s.cache.Add(cacheKey(missing[j]), clone(v))
	}
	return out, nil
}

// Len returns the number of cached vectors.
func (s *Service) Len() int { return s.cache.Len() }

// Purge empties the cache.
func (s *Service) Purge() { s.cache.Purge() }

// Dimensions delegates to the wrapped service.
func (s *Service) Dimensions() int { return s.next.Dimensions() }

// ModelName delegates to the wrapped service.
func (s *Service) ModelName() string { return s.next.ModelName() }

// Ping delegates to the wrapped service.
func (s *Service) Ping(ctx context.Context) error { return s.next.Ping(ctx) }

// Close purges the cache and closes the wrapped service.
func (s *Service) Close() error {
	s.cache.Purge()
	return s.next.Close()
}

func cacheKey(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}

func clone(v []float32) []float32 {
	return append([]float32(nil), v...)
}
