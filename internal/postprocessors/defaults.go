package postprocessors

import "github.com/custodia-labs/docqa/internal/postprocessors/chunker"

// Default builds the ingestion pipeline: a single chunker with the given
// window and overlap. Non-positive size or negative overlap keep the chunker
// defaults.
func Default(chunkSize, overlap int) *Pipeline {
	return NewPipeline(chunker.New(
		chunker.WithChunkSize(chunkSize),
		chunker.WithOverlap(overlap),
	))
}
