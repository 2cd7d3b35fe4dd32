package ai

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
)

func TestNewConfigValidator(t *testing.T) {
	validator := NewConfigValidator()

	require.NotNil(t, validator)
}

func TestConfigValidator_ImplementsInterface(t *testing.T) {
	var _ driven.AIConfigValidator = (*ConfigValidator)(nil)
}

func TestConfigValidator_ValidateEmbedding_NilConfig(t *testing.T) {
	validator := NewConfigValidator()

	// nil config returns nil (nothing to validate)
	assert.NoError(t, validator.ValidateEmbedding(nil))
}

func TestConfigValidator_ValidateEmbedding_Reachable(t *testing.T) {
	server := ollamaServer(t)
	validator := NewConfigValidator()

	assert.NoError(t, validator.ValidateEmbedding(&domain.EmbeddingSettings{BaseURL: server.URL}))
}

func TestConfigValidator_ValidateEmbedding_Unreachable(t *testing.T) {
	validator := NewConfigValidator()

	err := validator.ValidateEmbedding(&domain.EmbeddingSettings{BaseURL: deadURL(t)})
	assert.ErrorIs(t, err, domain.ErrEmbeddingUnavailable)
}

func TestConfigValidator_ValidateLLM_NilConfig(t *testing.T) {
	validator := NewConfigValidator()

	assert.NoError(t, validator.ValidateLLM(nil))
}

func TestConfigValidator_ValidateLLM_UnconfiguredProvider(t *testing.T) {
	validator := NewConfigValidator()
	config := &domain.LLMSettings{
		Provider: "",
		Model:    "test-model",
	}

	// Unconfigured provider returns nil (nothing to validate)
	assert.NoError(t, validator.ValidateLLM(config))
}

func TestConfigValidator_ValidateIndex_NilConfig(t *testing.T) {
	assert.NoError(t, NewConfigValidator().ValidateIndex(nil))
}

func TestConfigValidator_ValidateIndex_SQLite(t *testing.T) {
	config := &domain.IndexSettings{
		Dir:     t.TempDir(),
		Backend: domain.IndexBackendSQLite,
	}

	assert.NoError(t, NewConfigValidator().ValidateIndex(config))
}

func TestConfigValidator_ValidateIndex_UnknownBackend(t *testing.T) {
	config := &domain.IndexSettings{Dir: t.TempDir(), Backend: "chroma"}

	assert.ErrorIs(t, NewConfigValidator().ValidateIndex(config), domain.ErrInvalidInput)
}
