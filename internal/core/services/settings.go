package services

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
	"github.com/custodia-labs/docqa/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	keyLLMProvider     = "llm.provider"
	keyLLMModel        = "llm.model"
	keyLLMBaseURL      = "llm.base_url"
	keyLLMAPIKey       = "llm.api_key"
	keyLLMRateLimit    = "llm.requests_per_minute"
	keyEmbedBaseURL    = "embedding.base_url"
	keyEmbedCacheSize  = "embedding.cache_size"
	keyIndexDir        = "index.dir"
	keyIndexBackend    = "index.backend"
	keyIndexQdrantAddr = "index.qdrant_addr"
	keyIndexTopK       = "index.top_k"
	keyChatMaxTurns    = "chat.max_turns"
	keyChatMode        = "chat.default_mode"
	keyDataDir         = "data_dir"
)

// dataDirName is the default data directory next to the config file.
const dataDirName = "data"

// SettingsService manages application settings. Stored values come from the
// config store; the overlay (environment variables) is applied on top on
// every Get and is never written back.
type SettingsService struct {
	configStore driven.ConfigStore
	aiValidator driven.AIConfigValidator
	overlay     driven.SettingsOverlay
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore, aiValidator driven.AIConfigValidator) *SettingsService {
	return &SettingsService{
		configStore: configStore,
		aiValidator: aiValidator,
	}
}

// SetOverlay sets the source of values that take precedence over the config file.
func (s *SettingsService) SetOverlay(overlay driven.SettingsOverlay) {
	s.overlay = overlay
}

// Get retrieves current application settings, including overlay values.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	settings := s.stored()
	if s.overlay != nil {
		s.overlay.Overlay(settings)
	}
	return settings, nil
}

// stored reads settings from the config store only.
func (s *SettingsService) stored() *domain.AppSettings {
	defaults := domain.DefaultAppSettings()

	settings := &domain.AppSettings{
		LLM: domain.LLMSettings{
			Provider:          s.getProvider(keyLLMProvider, defaults.LLM.Provider),
			Model:             s.configStore.GetString(keyLLMModel),
			BaseURL:           s.configStore.GetString(keyLLMBaseURL), // No default - empty is valid for cloud providers
			APIKey:            s.configStore.GetString(keyLLMAPIKey),
			RequestsPerMinute: s.configStore.GetInt(keyLLMRateLimit),
		},
		Embedding: domain.EmbeddingSettings{
			BaseURL:   s.getString(keyEmbedBaseURL, defaults.Embedding.BaseURL),
			CacheSize: s.getInt(keyEmbedCacheSize, defaults.Embedding.CacheSize),
		},
		Index: domain.IndexSettings{
			Dir:        s.getString(keyIndexDir, defaults.Index.Dir),
			Backend:    s.getBackend(defaults.Index.Backend),
			QdrantAddr: s.getString(keyIndexQdrantAddr, defaults.Index.QdrantAddr),
			TopK:       s.getInt(keyIndexTopK, defaults.Index.TopK),
		},
		Chat: domain.ChatSettings{
			MaxTurns:    s.getInt(keyChatMaxTurns, defaults.Chat.MaxTurns),
			DefaultMode: s.getMode(defaults.Chat.DefaultMode),
		},
		DataDir: s.configStore.GetString(keyDataDir),
	}

	if settings.LLM.Model == "" {
		settings.LLM.Model = domain.DefaultLLMModels()[settings.LLM.Provider]
	}
	if settings.DataDir == "" {
		if path := s.configStore.Path(); filepath.IsAbs(path) {
			settings.DataDir = filepath.Join(filepath.Dir(path), dataDirName)
		}
	}
	return settings
}

// Save persists application settings.
func (s *SettingsService) Save(settings *domain.AppSettings) error {
	values := []struct {
		key   string
		value any
	}{
		{keyLLMProvider, settings.LLM.Provider.String()},
		{keyLLMModel, settings.LLM.Model},
		{keyLLMBaseURL, settings.LLM.BaseURL},
		{keyLLMRateLimit, settings.LLM.RequestsPerMinute},
		{keyEmbedBaseURL, settings.Embedding.BaseURL},
		{keyEmbedCacheSize, settings.Embedding.CacheSize},
		{keyIndexDir, settings.Index.Dir},
		{keyIndexBackend, settings.Index.Backend.String()},
		{keyIndexQdrantAddr, settings.Index.QdrantAddr},
		{keyIndexTopK, settings.Index.TopK},
		{keyChatMaxTurns, settings.Chat.MaxTurns},
		{keyChatMode, settings.Chat.DefaultMode.String()},
	}
	for _, v := range values {
		if err := s.configStore.Set(v.key, v.value); err != nil {
			return fmt.Errorf("save %s: %w", v.key, err)
		}
	}

	if settings.LLM.APIKey != "" {
		if err := s.configStore.Set(keyLLMAPIKey, settings.LLM.APIKey); err != nil {
			return fmt.Errorf("save llm api_key: %w", err)
		}
	}
	if settings.DataDir != "" {
		if err := s.configStore.Set(keyDataDir, settings.DataDir); err != nil {
			return fmt.Errorf("save data_dir: %w", err)
		}
	}

	return nil
}

// SetLLMProvider configures the LLM provider.
func (s *SettingsService) SetLLMProvider(provider domain.AIProvider, model, apiKey string) error {
	if !provider.IsValid() {
		return fmt.Errorf("invalid LLM provider: %s", provider)
	}

	// Validate API key if required
	if provider.RequiresAPIKey() && apiKey == "" {
		return fmt.Errorf("API key required for %s", provider)
	}

	settings := s.stored()
	settings.LLM.Provider = provider

	// Set model - use provided or default
	if model != "" {
		settings.LLM.Model = model
	} else {
		settings.LLM.Model = domain.DefaultLLMModels()[provider]
	}

	// Set base URL based on provider type
	if provider.IsLocal() {
		if settings.LLM.BaseURL == "" {
			settings.LLM.BaseURL = settings.Embedding.BaseURL
		}
	} else {
		settings.LLM.BaseURL = ""
	}

	settings.LLM.APIKey = apiKey

	return s.Save(settings)
}

// SetEmbeddingURL configures the endpoint serving the embedding model.
func (s *SettingsService) SetEmbeddingURL(baseURL string) error {
	if baseURL == "" {
		return fmt.Errorf("%w: embedding URL is required", domain.ErrInvalidInput)
	}
	settings := s.stored()
	settings.Embedding.BaseURL = baseURL
	return s.Save(settings)
}

// SetIndex configures the index location and backend.
func (s *SettingsService) SetIndex(dir string, backend domain.IndexBackend) error {
	if !backend.IsValid() {
		return fmt.Errorf("invalid index backend: %s", backend)
	}
	if dir == "" {
		return fmt.Errorf("%w: index directory is required", domain.ErrInvalidInput)
	}
	settings := s.stored()
	settings.Index.Dir = dir
	settings.Index.Backend = backend
	return s.Save(settings)
}

// SetDefaultMode updates the default ask mode.
func (s *SettingsService) SetDefaultMode(mode domain.AskMode) error {
	if !mode.IsValid() {
		return fmt.Errorf("invalid ask mode: %s", mode)
	}
	settings := s.stored()
	settings.Chat.DefaultMode = mode
	return s.Save(settings)
}

// Validate checks that the settings are complete enough to answer questions.
func (s *SettingsService) Validate() error {
	settings, err := s.Get()
	if err != nil {
		return err
	}

	if !settings.LLM.IsConfigured() {
		if settings.LLM.Provider.RequiresAPIKey() {
			return fmt.Errorf("LLM provider %q requires an API key", settings.LLM.Provider.Description())
		}
		return fmt.Errorf("invalid LLM provider: %s", settings.LLM.Provider)
	}
	if settings.Embedding.BaseURL == "" {
		return fmt.Errorf("embedding endpoint for %s is not configured", domain.EmbeddingModel)
	}
	if !settings.Index.Backend.IsValid() {
		return fmt.Errorf("invalid index backend: %s", settings.Index.Backend)
	}
	if settings.Index.Dir == "" {
		return errors.New("index directory is not configured")
	}
	return nil
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

// ValidateEmbeddingConfig validates the current embedding configuration by pinging the provider.
func (s *SettingsService) ValidateEmbeddingConfig() error {
	if s.aiValidator == nil {
		return nil
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return s.aiValidator.ValidateEmbedding(&settings.Embedding)
}

// ValidateLLMConfig validates the current LLM configuration by pinging the provider.
func (s *SettingsService) ValidateLLMConfig() error {
	if s.aiValidator == nil {
		return nil
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return s.aiValidator.ValidateLLM(&settings.LLM)
}

// ValidateIndexConfig checks that the configured index backend is reachable.
func (s *SettingsService) ValidateIndexConfig() error {
	if s.aiValidator == nil {
		return nil
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return s.aiValidator.ValidateIndex(&settings.Index)
}

// Helper methods for reading config with defaults.

func (s *SettingsService) getString(key, defaultVal string) string {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getInt(key string, defaultVal int) int {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetInt(key)
}

func (s *SettingsService) getProvider(key string, defaultVal domain.AIProvider) domain.AIProvider {
	provider := domain.AIProvider(s.configStore.GetString(key))
	if !provider.IsValid() {
		return defaultVal
	}
	return provider
}

func (s *SettingsService) getBackend(defaultVal domain.IndexBackend) domain.IndexBackend {
	backend := domain.IndexBackend(s.configStore.GetString(keyIndexBackend))
	if !backend.IsValid() {
		return defaultVal
	}
	return backend
}

func (s *SettingsService) getMode(defaultVal domain.AskMode) domain.AskMode {
	mode := domain.AskMode(s.configStore.GetString(keyChatMode))
	if !mode.IsValid() {
		return defaultVal
	}
	return mode
}
