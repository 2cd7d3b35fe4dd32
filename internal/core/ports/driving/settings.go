package driving

import "github.com/custodia-labs/docqa/internal/core/domain"

// SettingsService manages application settings.
type SettingsService interface {
	// Get retrieves current application settings, including environment overrides.
	Get() (*domain.AppSettings, error)

	// Save persists application settings.
	Save(settings *domain.AppSettings) error

	// SetLLMProvider configures the LLM provider.
	SetLLMProvider(provider domain.AIProvider, model, apiKey string) error

	// SetEmbeddingURL configures the embedding endpoint. The model is fixed.
	SetEmbeddingURL(baseURL string) error

	// SetIndex configures the index location and backend.
	SetIndex(dir string, backend domain.IndexBackend) error

	// SetDefaultMode updates the default ask mode.
	SetDefaultMode(mode domain.AskMode) error

	// Validate checks if current settings are complete enough to answer questions.
	Validate() error

	// GetDefaults returns default settings.
	GetDefaults() domain.AppSettings

	// ValidateEmbeddingConfig validates the current embedding configuration by pinging the provider.
	ValidateEmbeddingConfig() error

	// ValidateLLMConfig validates the current LLM configuration by pinging the provider.
	ValidateLLMConfig() error

	// ValidateIndexConfig checks that the configured index backend is reachable.
	ValidateIndexConfig() error
}
