package services

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docqa/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/docqa/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/docqa/internal/core/domain"
)

func TestMemory_AppendAndAll(t *testing.T) {
	ctx := context.Background()
	mem := NewMemory(memory.NewConversationStore(), "s1", 0)

	require.NoError(t, mem.Append(ctx, domain.UserTurn("q")))
	require.NoError(t, mem.Append(ctx, domain.AssistantTurn("a")))

	turns, err := mem.All(ctx)
	require.NoError(t, err)
	assert.Equal(t, []domain.Turn{domain.UserTurn("q"), domain.AssistantTurn("a")}, turns)

	n, err := mem.Len(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, "s1", mem.SessionID())
}

func TestMemory_Append_InvalidRole(t *testing.T) {
	mem := NewMemory(memory.NewConversationStore(), "s1", 0)
	err := mem.Append(context.Background(), domain.Turn{Role: "system", Content: "x"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestMemory_Clear(t *testing.T) {
	ctx := context.Background()
	mem := NewMemory(memory.NewConversationStore(), "s1", 0)
	require.NoError(t, mem.AppendExchange(ctx, "q", "a"))

	require.NoError(t, mem.Clear(ctx))

	turns, err := mem.All(ctx)
	require.NoError(t, err)
	assert.Empty(t, turns)
}

func TestMemory_SessionsAreIsolated(t *testing.T) {
	ctx := context.Background()
	store := memory.NewConversationStore()
	a := NewMemory(store, "a", 0)
	b := NewMemory(store, "b", 0)

	require.NoError(t, a.AppendExchange(ctx, "qa", "aa"))

	turns, err := b.All(ctx)
	require.NoError(t, err)
	assert.Empty(t, turns)
}

func TestMemory_WindowEvictsWholeExchanges(t *testing.T) {
	ctx := context.Background()
	mem := NewMemory(memory.NewConversationStore(), "s1", 4)

	for i := 1; i <= 3; i++ {
		require.NoError(t, mem.AppendExchange(ctx, fmt.Sprintf("q%d", i), fmt.Sprintf("a%d", i)))
	}

	turns, err := mem.All(ctx)
	require.NoError(t, err)
	assert.Equal(t, []domain.Turn{
		domain.UserTurn("q2"), domain.AssistantTurn("a2"),
		domain.UserTurn("q3"), domain.AssistantTurn("a3"),
	}, turns)
}

func TestMemory_OddWindowRoundsToExchanges(t *testing.T) {
	ctx := context.Background()
	mem := NewMemory(memory.NewConversationStore(), "s1", 3)

	require.NoError(t, mem.AppendExchange(ctx, "q1", "a1"))
	require.NoError(t, mem.AppendExchange(ctx, "q2", "a2"))

	turns, err := mem.All(ctx)
	require.NoError(t, err)
	require.Len(t, turns, 2)
	assert.Equal(t, domain.UserTurn("q2"), turns[0])
}

func TestMemory_WindowBelowOneExchangeKeepsLastExchange(t *testing.T) {
	ctx := context.Background()
	mem := NewMemory(memory.NewConversationStore(), "s1", 1)
	assert.Equal(t, 2, mem.MaxTurns())

	require.NoError(t, mem.AppendExchange(ctx, "q1", "a1"))
	require.NoError(t, mem.AppendExchange(ctx, "q2", "a2"))

	turns, err := mem.All(ctx)
	require.NoError(t, err)
	assert.Equal(t, []domain.Turn{domain.UserTurn("q2"), domain.AssistantTurn("a2")}, turns)
}

func TestMemory_FailedExchangeStoresNothing(t *testing.T) {
	ctx := context.Background()
	store := &flakyConversationStore{ConversationStore: memory.NewConversationStore(), failAppend: 2}
	mem := NewMemory(store, "s1", 0)
	require.NoError(t, mem.AppendExchange(ctx, "q1", "a1"))

	err := mem.AppendExchange(ctx, "q2", "a2")

	require.Error(t, err)
	turns, err := mem.All(ctx)
	require.NoError(t, err)
	assert.Equal(t, []domain.Turn{domain.UserTurn("q1"), domain.AssistantTurn("a1")}, turns)
}

func TestMemory_TrimFailureKeepsExchange(t *testing.T) {
	ctx := context.Background()
	store := &flakyConversationStore{
		ConversationStore: memory.NewConversationStore(),
		dropErr:           errors.New("database is locked"),
	}
	mem := NewMemory(store, "s1", 2)
	require.NoError(t, mem.AppendExchange(ctx, "q1", "a1"))

	require.NoError(t, mem.AppendExchange(ctx, "q2", "a2"))

	n, err := mem.Len(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, n, "window is over its bound until the next successful trim")
}

func TestMemory_UnboundedKeepsEverything(t *testing.T) {
	ctx := context.Background()
	mem := NewMemory(memory.NewConversationStore(), "s1", 0)
	for i := 0; i < 50; i++ {
		require.NoError(t, mem.AppendExchange(ctx, "q", "a"))
	}
	n, err := mem.Len(ctx)
	require.NoError(t, err)
	assert.Equal(t, 100, n)
}

func TestMemory_StoreFailure(t *testing.T) {
	cause := errors.New("database is locked")
	mem := NewMemory(&failingConversationStore{err: cause}, "s1", 0)

	assert.ErrorIs(t, mem.Append(context.Background(), domain.UserTurn("q")), cause)
	assert.ErrorIs(t, mem.AppendExchange(context.Background(), "q", "a"), cause)
	assert.ErrorIs(t, mem.Clear(context.Background()), cause)
}

func TestMemory_SQLiteSurvivesReopen(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	store, err := sqlite.NewStore(dir)
	require.NoError(t, err)
	require.NoError(t, NewMemory(store.ConversationStore(), "s1", 0).AppendExchange(ctx, "q", "a"))
	require.NoError(t, store.Close())

	store, err = sqlite.NewStore(dir)
	require.NoError(t, err)
	defer store.Close()

	turns, err := NewMemory(store.ConversationStore(), "s1", 0).All(ctx)
	require.NoError(t, err)
	assert.Equal(t, []domain.Turn{domain.UserTurn("q"), domain.AssistantTurn("a")}, turns)
}
