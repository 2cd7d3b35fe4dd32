package domain

import (
	"time"

	"github.com/google/uuid"
)

// Session carries per-user state between requests: whether a document has been
// ingested, where its index lives, the preferred ask mode, and the key of its
// conversation memory.
type Session struct {
	// ID identifies the session and keys its conversation memory.
	ID string

	// Ready is set once a document has been ingested in this session.
	Ready bool

	// IndexLocation is the location of the vector index this session queries.
	IndexLocation string

	// Mode is the default ask mode for Ask.
	Mode AskMode

	// CreatedAt is when the session was created.
	CreatedAt time.Time
}

// NewSession creates a session. An empty id is replaced with a random one and
// an invalid mode falls back to single-turn.
func NewSession(id string, mode AskMode) *Session {
	if id == "" {
		id = uuid.New().String()
	}
	if !mode.IsValid() {
		mode = AskModeSingleTurn
	}
	return &Session{
		ID:        id,
		Mode:      mode,
		CreatedAt: time.Now(),
	}
}

// IngestReport summarises one ingestion.
type IngestReport struct {
	// Source is the staged file path that was loaded.
	Source string

	// Documents is the number of documents (pages) loaded.
	Documents int

	// Chunks is the number of chunks produced.
	Chunks int

	// Stored is the number of chunks written to the index.
	Stored int

	// Warnings lists non-fatal storage problems.
	Warnings []string
}

// Indexed reports whether every chunk reached the index.
func (r *IngestReport) Indexed() bool {
	return r.Stored == r.Chunks && len(r.Warnings) == 0
}
