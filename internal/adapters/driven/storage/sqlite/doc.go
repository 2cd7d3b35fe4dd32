// Package sqlite provides SQLite-backed implementations of driven port interfaces.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that requires
// no CGO, enabling easy cross-compilation. One database file can serve:
//
//   - VectorCollection: chunks and their embeddings for one index location
//   - ConversationStore: per-session conversation turns
//   - SessionStore: session state across process restarts
//
// # Schema
//
// The schema is managed through versioned migrations embedded from the
// migrations/ directory. Each migration is a pair of .up.sql and .down.sql files.
//
// # Data Location
//
// A vector index lives at <index dir>/index.db. Sessions and conversations
// live at ~/.docqa/data/docqa.db unless another data directory is configured.
//
// # Thread Safety
//
// All operations are safe for concurrent use. The store relies on SQLite's
// locking in WAL mode with a busy timeout.
package sqlite
