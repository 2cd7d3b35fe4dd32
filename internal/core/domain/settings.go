package domain

const unknownDescription = "Unknown"

// Fixed embedding model. The embedding boundary has no configuration
// surface beyond the endpoint that serves it.
const (
	// EmbeddingModel is the Ollama name of all-MiniLM-L6-v2.
	EmbeddingModel = "all-minilm"

	// EmbeddingDimensions is the vector size produced by EmbeddingModel.
	EmbeddingDimensions = 384
)

// Retrieval and chunking defaults.
const (
	DefaultTopK         = 4
	DefaultChunkSize    = 500
	DefaultChunkOverlap = 100
	DefaultIndexDir     = "./docqa_index"
	DefaultMaxTurns     = 40
)

// AIProvider identifies an LLM service provider.
type AIProvider string

// Available AI providers.
const (
	// AIProviderGemini is the Google Gemini API.
	AIProviderGemini AIProvider = "gemini"

	// AIProviderOpenAI is OpenAI cloud API.
	AIProviderOpenAI AIProvider = "openai"

	// AIProviderAnthropic is Anthropic cloud API.
	AIProviderAnthropic AIProvider = "anthropic"

	// AIProviderOllama is local Ollama instance.
	AIProviderOllama AIProvider = "ollama"
)

// IsValid returns true if the AI provider is recognised.
func (p AIProvider) IsValid() bool {
	switch p {
	case AIProviderGemini, AIProviderOpenAI, AIProviderAnthropic, AIProviderOllama:
		return true
	default:
		return false
	}
}

// RequiresAPIKey returns true if this provider needs an API key.
func (p AIProvider) RequiresAPIKey() bool {
	return p != AIProviderOllama && p.IsValid()
}

// IsLocal returns true if this provider runs locally.
func (p AIProvider) IsLocal() bool {
	return p == AIProviderOllama
}

// String returns the string representation.
func (p AIProvider) String() string {
	return string(p)
}

// Description returns a human-readable description of the provider.
func (p AIProvider) Description() string {
	switch p {
	case AIProviderGemini:
		return "Google Gemini (cloud)"
	case AIProviderOpenAI:
		return "OpenAI (cloud)"
	case AIProviderAnthropic:
		return "Anthropic (cloud)"
	case AIProviderOllama:
		return "Ollama (local)"
	default:
		return unknownDescription
	}
}

// IndexBackend identifies the vector store implementation.
type IndexBackend string

// Available index backends.
const (
	// IndexBackendSQLite persists vectors in a SQLite file inside the index directory.
	IndexBackendSQLite IndexBackend = "sqlite"

	// IndexBackendMemory keeps vectors in process memory (tests, throwaway sessions).
	IndexBackendMemory IndexBackend = "memory"

	// IndexBackendQdrant stores vectors in a Qdrant collection named after the index directory.
	IndexBackendQdrant IndexBackend = "qdrant"
)

// IsValid returns true if the backend is recognised.
func (b IndexBackend) IsValid() bool {
	switch b {
	case IndexBackendSQLite, IndexBackendMemory, IndexBackendQdrant:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (b IndexBackend) String() string {
	return string(b)
}

// LLMSettings holds LLM provider configuration.
type LLMSettings struct {
	// Provider is the LLM service provider.
	Provider AIProvider

	// Model is the LLM model name.
	Model string

	// BaseURL is the API endpoint (for Ollama or proxies).
	BaseURL string

	// APIKey is the API key (for cloud providers).
	APIKey string

	// RequestsPerMinute paces LLM calls. Zero disables pacing.
	RequestsPerMinute int
}

// IsConfigured returns true if the LLM provider is set up.
func (l LLMSettings) IsConfigured() bool {
	if !l.Provider.IsValid() {
		return false
	}
	if l.Provider.RequiresAPIKey() && l.APIKey == "" {
		return false
	}
	return true
}

// EmbeddingSettings holds embedding endpoint configuration.
// The model itself is fixed (EmbeddingModel).
type EmbeddingSettings struct {
	// BaseURL is the Ollama endpoint serving EmbeddingModel.
	BaseURL string

	// CacheSize is the number of query embeddings kept in memory.
	CacheSize int
}

// IndexSettings holds vector index configuration.
type IndexSettings struct {
	// Dir is the index location.
	Dir string

	// Backend selects the vector store implementation.
	Backend IndexBackend

	// QdrantAddr is the Qdrant gRPC address (qdrant backend only).
	QdrantAddr string

	// TopK is the number of chunks retrieved per query.
	TopK int
}

// ChatSettings holds conversation memory configuration.
type ChatSettings struct {
	// MaxTurns bounds the stored conversation. Zero means unbounded; 1 keeps
	// one exchange, the same as 2.
	MaxTurns int

	// DefaultMode is the ask mode used when none is given.
	DefaultMode AskMode
}

// AppSettings holds all application settings.
type AppSettings struct {
	LLM       LLMSettings
	Embedding EmbeddingSettings
	Index     IndexSettings
	Chat      ChatSettings

	// DataDir holds the staged upload and conversation database.
	DataDir string
}

// DefaultAppSettings returns settings with sensible defaults.
// The LLM API key is left empty; it must come from the environment or the settings wizard.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		LLM: LLMSettings{
			Provider: AIProviderGemini,
			Model:    DefaultLLMModels()[AIProviderGemini],
		},
		Embedding: EmbeddingSettings{
			BaseURL:   "http://localhost:11434",
			CacheSize: 256,
		},
		Index: IndexSettings{
			Dir:        DefaultIndexDir,
			Backend:    IndexBackendSQLite,
			QdrantAddr: "localhost:6334",
			TopK:       DefaultTopK,
		},
		Chat: ChatSettings{
			MaxTurns:    DefaultMaxTurns,
			DefaultMode: AskModeSingleTurn,
		},
	}
}

// AllLLMProviders returns providers that support LLM operations.
func AllLLMProviders() []AIProvider {
	return []AIProvider{
		AIProviderGemini,
		AIProviderOpenAI,
		AIProviderAnthropic,
		AIProviderOllama,
	}
}

// DefaultLLMModels returns default models for each LLM provider.
func DefaultLLMModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderGemini:    "gemini-1.5-flash",
		AIProviderOpenAI:    "gpt-4o-mini",
		AIProviderAnthropic: "claude-3-5-sonnet-latest",
		AIProviderOllama:    "llama3.2",
	}
}
