package driven

import (
	"context"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

// SessionStore persists session state so a session can be resumed by ID.
type SessionStore interface {
	// Save creates or replaces the session.
	Save(ctx context.Context, sess *domain.Session) error

	// Get returns the session with the given ID.
	// Returns domain.ErrNotFound when no such session exists.
	Get(ctx context.Context, id string) (*domain.Session, error)

	// List returns all sessions, newest first.
	List(ctx context.Context) ([]domain.Session, error)

	// Delete removes the session. Deleting an unknown session is not an error.
	Delete(ctx context.Context, id string) error
}
