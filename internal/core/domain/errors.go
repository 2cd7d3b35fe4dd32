package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotImplemented indicates functionality is not yet available.
	ErrNotImplemented = errors.New("not implemented")

	// ErrUnsupportedFormat indicates no loader handles the uploaded file type.
	ErrUnsupportedFormat = errors.New("unsupported document format")

	// ErrEmptyDocument indicates the uploaded file contained no extractable text.
	ErrEmptyDocument = errors.New("document has no text content")

	// ErrLLMUnavailable indicates the LLM service is not configured or unreachable.
	ErrLLMUnavailable = errors.New("LLM service unavailable")

	// ErrEmbeddingUnavailable indicates the embedding service is not configured or unreachable.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// Index Errors.

	// ErrIndexNotFound indicates a query arrived before any successful ingestion.
	// It is a recoverable precondition failure: ingest a document first.
	ErrIndexNotFound = errors.New("vector index not found")

	// ErrIndexUnavailable indicates the vector index could not be opened or created.
	ErrIndexUnavailable = errors.New("vector index unavailable")

	// ErrRetrieverUnavailable indicates reopening the index for retrieval failed.
	ErrRetrieverUnavailable = errors.New("retriever unavailable")

	// ErrDimensionMismatch indicates a vector does not match the collection dimensions.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")
)
