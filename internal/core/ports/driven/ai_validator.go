package driven

import "github.com/custodia-labs/docqa/internal/core/domain"

// AIConfigValidator validates provider configurations by testing connectivity
// to the embedding endpoint, the LLM provider and the vector index.
type AIConfigValidator interface {
	// ValidateEmbedding validates the embedding endpoint by pinging it.
	ValidateEmbedding(config *domain.EmbeddingSettings) error

	// ValidateLLM validates an LLM configuration by pinging the provider.
	// Returns nil if the provider is not configured.
	ValidateLLM(config *domain.LLMSettings) error

	// ValidateIndex checks that the index backend can be reached at the
	// configured location. A missing index is not an error.
	ValidateIndex(config *domain.IndexSettings) error
}
