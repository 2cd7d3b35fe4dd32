package driven

import (
	"context"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

// ConversationStore is the injectable backing storage for conversation memory.
// Turns are kept per session in insertion order.
type ConversationStore interface {
	// Append adds turns to the end of the session's conversation. Either
	// every turn is stored or none is.
	Append(ctx context.Context, sessionID string, turns ...domain.Turn) error

	// List returns the session's turns, oldest first.
	List(ctx context.Context, sessionID string) ([]domain.Turn, error)

	// DropOldest removes the n oldest turns of the session.
	DropOldest(ctx context.Context, sessionID string, n int) error

	// Clear removes all turns of the session.
	Clear(ctx context.Context, sessionID string) error
}
