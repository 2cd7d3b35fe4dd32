package driving

import (
	"context"
	"io"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

// DocumentQA is the UI-facing surface of the application: ingest one document
// and ask questions about it, either single-turn or as a conversation.
type DocumentQA interface {
	// Session restores the session with the given id, or creates a new one when
	// id is empty. The session is bound to the persistent conversation memory.
	Session(ctx context.Context, id string, mode domain.AskMode) (*domain.Session, error)

	// Ingest stages, loads, chunks and indexes an uploaded file.
	// Storage failures are reported as warnings, not errors.
	Ingest(ctx context.Context, sess *domain.Session, name string, r io.Reader) (*domain.IngestReport, error)

	// Ask answers query in the session's mode.
	Ask(ctx context.Context, sess *domain.Session, query string) (*domain.Answer, error)

	// AskSingleTurn answers query without memory.
	AskSingleTurn(ctx context.Context, sess *domain.Session, query string) (*domain.Answer, error)

	// AskConversational answers query using and updating the session memory.
	// It returns the full updated transcript.
	AskConversational(ctx context.Context, sess *domain.Session, query string) (*domain.Answer, []domain.Turn, error)

	// History returns the session transcript, oldest first.
	History(ctx context.Context, sess *domain.Session) ([]domain.Turn, error)

	// ClearHistory empties the session memory.
	ClearHistory(ctx context.Context, sess *domain.Session) error
}
