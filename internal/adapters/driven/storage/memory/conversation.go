package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
)

// Ensure ConversationStore implements the interface.
var _ driven.ConversationStore = (*ConversationStore)(nil)

// ConversationStore keeps conversation turns per session in memory.
type ConversationStore struct {
	mu    sync.RWMutex
	turns map[string][]domain.Turn
}

// NewConversationStore creates an empty conversation store.
func NewConversationStore() *ConversationStore {
	return &ConversationStore{turns: make(map[string][]domain.Turn)}
}

// Append adds turns to the end of the session's conversation. Nothing is
// stored if any turn is invalid.
func (s *ConversationStore) Append(_ context.Context, sessionID string, turns ...domain.Turn) error {
	for _, turn := range turns {
		if !turn.Role.IsValid() {
			return fmt.Errorf("%w: role %q", domain.ErrInvalidInput, turn.Role)
		}
	}
	if len(turns) == 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.turns[sessionID] = append(s.turns[sessionID], turns...)
	return nil
}

// List returns a copy of the session's turns, oldest first.
func (s *ConversationStore) List(_ context.Context, sessionID string) ([]domain.Turn, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	turns := s.turns[sessionID]
	if len(turns) == 0 {
		return nil, nil
	}
	return append([]domain.Turn(nil), turns...), nil
}

// DropOldest removes the n oldest turns of the session.
func (s *ConversationStore) DropOldest(_ context.Context, sessionID string, n int) error {
	if n <= 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	turns := s.turns[sessionID]
	if n >= len(turns) {
		delete(s.turns, sessionID)
		return nil
	}
	s.turns[sessionID] = append([]domain.Turn(nil), turns[n:]...)
	return nil
}

// Clear removes all turns of the session.
func (s *ConversationStore) Clear(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.turns, sessionID)
	return nil
}
