package driven

// ConfigStore persists flat dot-separated settings keys such as
// "llm.provider" or "index.top_k".
type ConfigStore interface {
	// Get returns the raw value stored under key and whether it exists.
	Get(key string) (any, bool)

	// GetString returns the value under key, or "" when it is absent or not a string.
	GetString(key string) string

	// GetInt returns the value under key, or 0 when it is absent or not numeric.
	GetInt(key string) int

	// Set stores value under key. File-backed stores persist it immediately.
	Set(key string, value any) error

	// Save writes every key to storage.
	Save() error

	// Load replaces the in-memory keys with those in storage.
	Load() error

	// Path returns where the settings are stored.
	Path() string
}
