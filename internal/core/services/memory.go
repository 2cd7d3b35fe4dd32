package services

import (
	"context"
	"fmt"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
	"github.com/custodia-labs/docqa/internal/logger"
)

// minWindow is the smallest bounded window: one question and its answer.
const minWindow = 2

// Memory is the conversation of one session, kept in an injected store.
// Turns are only ever appended; the window bound drops whole exchanges from
// the front.
type Memory struct {
	store     driven.ConversationStore
	sessionID string
	maxTurns  int
}

// NewMemory creates the memory of sessionID. maxTurns <= 0 keeps every turn;
// a positive window smaller than one exchange is raised to one exchange.
func NewMemory(store driven.ConversationStore, sessionID string, maxTurns int) *Memory {
	if maxTurns > 0 && maxTurns < minWindow {
		maxTurns = minWindow
	}
	return &Memory{store: store, sessionID: sessionID, maxTurns: maxTurns}
}

// MaxTurns returns the window bound, 0 when unbounded.
func (m *Memory) MaxTurns() int {
	if m.maxTurns < 0 {
		return 0
	}
	return m.maxTurns
}

// SessionID returns the key the turns are stored under.
func (m *Memory) SessionID() string {
	return m.sessionID
}

// Append adds one turn.
func (m *Memory) Append(ctx context.Context, turn domain.Turn) error {
	if !turn.Role.IsValid() {
		return fmt.Errorf("%w: role %q", domain.ErrInvalidInput, turn.Role)
	}
	if err := m.store.Append(ctx, m.sessionID, turn); err != nil {
		return fmt.Errorf("append turn: %w", err)
	}
	m.trimOrWarn(ctx)
	return nil
}

// AppendExchange adds a user question followed by the assistant answer as
// one write. On error neither turn is stored.
func (m *Memory) AppendExchange(ctx context.Context, question, answer string) error {
	if err := m.store.Append(ctx, m.sessionID,
		domain.UserTurn(question), domain.AssistantTurn(answer)); err != nil {
		return fmt.Errorf("append exchange: %w", err)
	}
	m.trimOrWarn(ctx)
	return nil
}

// All returns every turn, oldest first.
func (m *Memory) All(ctx context.Context) ([]domain.Turn, error) {
	turns, err := m.store.List(ctx, m.sessionID)
	if err != nil {
		return nil, fmt.Errorf("list turns: %w", err)
	}
	return turns, nil
}

// Len returns the number of stored turns.
func (m *Memory) Len(ctx context.Context) (int, error) {
	turns, err := m.All(ctx)
	if err != nil {
		return 0, err
	}
	return len(turns), nil
}

// Clear removes every turn.
func (m *Memory) Clear(ctx context.Context) error {
	if err := m.store.Clear(ctx, m.sessionID); err != nil {
		return fmt.Errorf("clear turns: %w", err)
	}
	return nil
}

// trimOrWarn trims the window. The turn is already stored, so a failed trim
// only leaves the window temporarily over its bound.
func (m *Memory) trimOrWarn(ctx context.Context) {
	if err := m.trim(ctx); err != nil {
		logger.Warn("Session %s: %v", m.sessionID, err)
	}
}

// trim drops the oldest exchanges once the window is exceeded. The number
// dropped is rounded up to an even count so exchanges stay paired.
func (m *Memory) trim(ctx context.Context) error {
	if m.maxTurns <= 0 {
		return nil
	}
	n, err := m.Len(ctx)
	if err != nil {
		return err
	}
	excess := n - m.maxTurns
	if excess <= 0 {
		return nil
	}
	if excess%2 == 1 {
		excess++
	}
	if err := m.store.DropOldest(ctx, m.sessionID, excess); err != nil {
		return fmt.Errorf("trim memory: %w", err)
	}
	return nil
}
