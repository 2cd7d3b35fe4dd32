// Package rank orders stored chunks by cosine similarity to a query vector.
// It backs the file and in-memory vector stores, which scan every entry.
package rank

import (
	"sort"

	"github.com/viant/vec/search"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

// Query holds a query vector with its precomputed magnitude.
// CosineDistance is the only distance search.Float32s exports on every
// GOARCH, so scoring goes through it rather than the magnitude variant.
type Query struct {
	vec       search.Float32s
	magnitude float32
}

// NewQuery prepares a query vector for repeated scoring.
func NewQuery(v []float32) Query {
	q := search.Float32s(v)
	return Query{vec: q, magnitude: q.Magnitude()}
}

// Similarity returns the cosine similarity between the query and v in
// [-1, 1]. Zero vectors and length mismatches score 0.
func (q Query) Similarity(v []float32) float64 {
	if len(v) != len(q.vec) || q.magnitude == 0 {
		return 0
	}
	if search.Float32s(v).Magnitude() == 0 {
		return 0
	}
	return 1 - float64(q.vec.CosineDistance(v))
}

// TopK scores chunks against the query and returns the k most similar in
// descending order. Equal scores are ordered by chunk ID. k <= 0 returns all.
func TopK(query []float32, chunks []domain.Chunk, k int) []domain.ScoredChunk {
	q := NewQuery(query)
	scored := make([]domain.ScoredChunk, 0, len(chunks))
	for _, c := range chunks {
		scored = append(scored, domain.ScoredChunk{Chunk: c, Score: q.Similarity(c.Embedding)})
	}
	Sort(scored)
	if k > 0 && len(scored) > k {
		scored = scored[:k]
	}
	return scored
}

// Sort orders results by descending score, then ascending chunk ID.
func Sort(results []domain.ScoredChunk) {
	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].Chunk.ID < results[j].Chunk.ID
	})
}
