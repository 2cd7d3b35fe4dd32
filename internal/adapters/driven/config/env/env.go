// Package env reads docqa settings from environment variables and .env files.
package env

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
)

// Ensure Source implements the interface.
var _ driven.SettingsOverlay = (*Source)(nil)

// Environment variables. Each DOCQA_ name has an older alias that is read
// when the primary is unset.
//
//nolint:gosec // G101: These are variable names, not credentials.
const (
	KeyIndexDir     = "DOCQA_INDEX_DIR"
	KeyAPIKey       = "DOCQA_API_KEY"
	KeyModel        = "DOCQA_MODEL"
	KeyProvider     = "DOCQA_LLM_PROVIDER"
	KeyOllamaURL    = "DOCQA_OLLAMA_URL"
	KeyDataDir      = "DOCQA_DATA_DIR"
	KeyIndexBackend = "DOCQA_INDEX_BACKEND"
	KeyQdrantAddr   = "DOCQA_QDRANT_ADDR"
	KeyRateLimit    = "DOCQA_LLM_RPM"

	aliasIndexDir = "CHROMA_DB_DIR"
	aliasAPIKey   = "GOOGLE_API_KEY"
	aliasModel    = "MODEL"
)

// DefaultDotEnv is the file LoadDotEnv reads when given no paths.
const DefaultDotEnv = ".env"

// LoadDotEnv loads variables from .env files into the process environment.
// Variables already set are not overwritten and missing files are ignored.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{DefaultDotEnv}
	}
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return fmt.Errorf("load %s: %w", p, err)
		}
	}
	return nil
}

// Source overlays environment variables on settings.
type Source struct {
	lookup func(string) (string, bool)
}

// New creates a Source over the process environment.
func New() *Source {
	return &Source{lookup: os.LookupEnv}
}

// FromMap creates a Source over a fixed set of variables.
func FromMap(vars map[string]string) *Source {
	return &Source{lookup: func(key string) (string, bool) {
		v, ok := vars[key]
		return v, ok
	}}
}

// FromFile creates a Source over the variables of a single .env file
// without touching the process environment.
func FromFile(path string) (*Source, error) {
	vars, err := godotenv.Read(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return FromMap(vars), nil
}

// Overlay applies every variable that is set and non-empty.
//
// Changing the provider without naming a model selects that provider's
// default model. GOOGLE_API_KEY is only used by the Gemini provider.
func (s *Source) Overlay(settings *domain.AppSettings) {
	if v, ok := s.get(KeyProvider); ok {
		p := domain.AIProvider(v)
		if p.IsValid() && p != settings.LLM.Provider {
			settings.LLM.Provider = p
			settings.LLM.Model = domain.DefaultLLMModels()[p]
			settings.LLM.BaseURL = ""
		}
	}
	if v, ok := s.first(KeyModel, aliasModel); ok {
		settings.LLM.Model = v
	}
	if v, ok := s.get(KeyAPIKey); ok {
		settings.LLM.APIKey = v
	} else if v, ok := s.get(aliasAPIKey); ok && settings.LLM.Provider == domain.AIProviderGemini {
		settings.LLM.APIKey = v
	}
	if v, ok := s.get(KeyRateLimit); ok {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			settings.LLM.RequestsPerMinute = n
		}
	}

	if v, ok := s.get(KeyOllamaURL); ok {
		settings.Embedding.BaseURL = v
		if settings.LLM.Provider == domain.AIProviderOllama {
			settings.LLM.BaseURL = v
		}
	}

	if v, ok := s.first(KeyIndexDir, aliasIndexDir); ok {
		settings.Index.Dir = v
	}
	if v, ok := s.get(KeyIndexBackend); ok {
		if b := domain.IndexBackend(v); b.IsValid() {
			settings.Index.Backend = b
		}
	}
	if v, ok := s.get(KeyQdrantAddr); ok {
		settings.Index.QdrantAddr = v
	}

	if v, ok := s.get(KeyDataDir); ok {
		settings.DataDir = v
	}
}

func (s *Source) get(key string) (string, bool) {
	v, ok := s.lookup(key)
	if !ok || v == "" {
		return "", false
	}
	return v, true
}

func (s *Source) first(keys ...string) (string, bool) {
	for _, k := range keys {
		if v, ok := s.get(k); ok {
			return v, true
		}
	}
	return "", false
}
