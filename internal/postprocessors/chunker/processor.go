// Package chunker splits document text into overlapping fixed-size windows.
package chunker

import (
	"context"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
)

// Compile-time check.
var _ driven.PostProcessor = (*Processor)(nil)

// chunkNamespace seeds deterministic chunk IDs.
var chunkNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("docqa/chunk"))

// Processor splits document content into windows of chunkSize characters,
// each starting chunkSize-overlap characters after its predecessor.
type Processor struct {
	chunkSize int
	overlap   int
}

// Option configures the chunker processor.
type Option func(*Processor)

// WithChunkSize sets the window length in characters. Non-positive values are ignored.
func WithChunkSize(size int) Option {
	return func(p *Processor) {
		if size > 0 {
			p.chunkSize = size
		}
	}
}

// WithOverlap sets the number of characters shared by consecutive chunks.
// Negative values are ignored.
func WithOverlap(overlap int) Option {
	return func(p *Processor) {
		if overlap >= 0 {
			p.overlap = overlap
		}
	}
}

// New creates a chunker with 500 character windows and 100 characters of overlap
// unless overridden.
func New(opts ...Option) *Processor {
	p := &Processor{
		chunkSize: domain.DefaultChunkSize,
		overlap:   domain.DefaultChunkOverlap,
	}
	for _, opt := range opts {
		opt(p)
	}

	// The window must advance.
	if p.overlap >= p.chunkSize {
		p.overlap = p.chunkSize / 4
	}
	return p
}

// Name returns the processor name.
func (p *Processor) Name() string {
	return "chunker"
}

// ChunkSize returns the configured window length.
func (p *Processor) ChunkSize() int { return p.chunkSize }

// Overlap returns the configured overlap.
func (p *Processor) Overlap() int { return p.overlap }

// Process implements driven.PostProcessor. Incoming chunks are ignored.
func (p *Processor) Process(_ context.Context, doc *domain.Document, _ []domain.Chunk) ([]domain.Chunk, error) {
	return p.Split(doc), nil
}

// Split cuts the document into chunks. Empty content yields no chunks.
// Splitting stops at the first window that reaches the end of the text,
// so the last chunk may be shorter than the window but never lies wholly
// inside its predecessor.
func (p *Processor) Split(doc *domain.Document) []domain.Chunk {
	if doc == nil || doc.Content == "" {
		return nil
	}

	text := []rune(doc.Content)
	stride := p.chunkSize - p.overlap
	chunks := make([]domain.Chunk, 0, len(text)/stride+1)

	for start, position := 0, 0; ; start, position = start+stride, position+1 {
		end := min(start+p.chunkSize, len(text))
		content := string(text[start:end])

		chunks = append(chunks, domain.Chunk{
			ID:         chunkID(doc, position, content),
			DocumentID: doc.ID,
			Content:    content,
			Position:   position,
			Metadata:   chunkMetadata(doc, position),
		})

		if end == len(text) {
			break
		}
	}
	return chunks
}

// chunkMetadata copies the document metadata and stamps provenance keys.
func chunkMetadata(doc *domain.Document, position int) map[string]any {
	meta := make(map[string]any, len(doc.Metadata)+4)
	for k, v := range doc.Metadata {
		meta[k] = v
	}
	meta[domain.MetaDocumentID] = doc.ID
	meta[domain.MetaPosition] = position
	if doc.Source != "" {
		meta[domain.MetaSource] = doc.Source
	}
	if doc.Page > 0 {
		meta[domain.MetaPage] = doc.Page
	}
	return meta
}

// chunkID derives a stable ID so re-ingesting the same file replaces rather
// than duplicates index entries.
func chunkID(doc *domain.Document, position int, content string) string {
	key := strings.Join([]string{
		doc.Source,
		strconv.Itoa(doc.Page),
		strconv.Itoa(position),
		content,
	}, "|")
	return uuid.NewSHA1(chunkNamespace, []byte(key)).String()
}
