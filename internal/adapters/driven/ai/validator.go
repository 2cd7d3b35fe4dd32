package ai

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
)

// Ensure ConfigValidator implements the interface.
var _ driven.AIConfigValidator = (*ConfigValidator)(nil)

// ConfigValidator checks settings against the live services before they are
// relied on by the question-answering pipeline.
type ConfigValidator struct {
	timeout time.Duration
}

// NewConfigValidator creates a validator that waits up to pingTimeout per check.
func NewConfigValidator() *ConfigValidator {
	return &ConfigValidator{timeout: pingTimeout}
}

// ValidateEmbedding pings the endpoint serving the embedding model.
func (v *ConfigValidator) ValidateEmbedding(config *domain.EmbeddingSettings) error {
	return ValidateEmbeddingConfig(config)
}

// ValidateLLM pings the configured LLM provider. An unconfigured provider
// passes; Validate on the settings reports it.
func (v *ConfigValidator) ValidateLLM(config *domain.LLMSettings) error {
	return ValidateLLMConfig(config)
}

// ValidateIndex opens the configured vector store and asks whether an index
// exists at the configured location. For Qdrant this is a round trip to the
// server; for SQLite it checks the index directory.
func (v *ConfigValidator) ValidateIndex(config *domain.IndexSettings) error {
	if config == nil {
		return nil
	}

	store, err := CreateVectorStore(config)
	if err != nil {
		return err
	}
	if c, ok := store.(io.Closer); ok {
		defer c.Close()
	}

	ctx, cancel := context.WithTimeout(context.Background(), v.timeout)
	defer cancel()

	if _, err := store.Exists(ctx, config.Dir); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrIndexUnavailable, err)
	}
	return nil
}
