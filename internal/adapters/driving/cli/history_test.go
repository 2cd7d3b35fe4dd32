package cli

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

func TestHistoryCmd_Empty(t *testing.T) {
	setupTestServices(t, &MockQAService{})

	out, err := executeCommand(t, "", "history")

	require.NoError(t, err)
	assert.Contains(t, out, "No conversation yet.")
}

func TestHistoryCmd_Transcript(t *testing.T) {
	setupTestServices(t, &MockQAService{Turns: []domain.Turn{
		domain.UserTurn("What is it?"),
		domain.AssistantTurn("A guide."),
	}})

	out, err := executeCommand(t, "", "history")

	require.NoError(t, err)
	assert.Contains(t, out, "You: What is it?\nAI: A guide.\n")
}

func TestHistoryClearCmd(t *testing.T) {
	qa := &MockQAService{Turns: []domain.Turn{domain.UserTurn("q")}}
	setupTestServices(t, qa)

	out, err := executeCommand(t, "", "history", "clear", "-s", "work")

	require.NoError(t, err)
	assert.Contains(t, out, "Cleared conversation for session work.")
	assert.Equal(t, 1, qa.Cleared)
}

func TestHistoryClearCmd_Failure(t *testing.T) {
	setupTestServices(t, &MockQAService{Err: errors.New("locked")})

	_, err := executeCommand(t, "", "history", "clear")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to clear history")
}

func TestHistoryShowCmd(t *testing.T) {
	setupTestServices(t, &MockQAService{Turns: []domain.Turn{domain.UserTurn("hi")}})

	out, err := executeCommand(t, "", "history", "show")

	require.NoError(t, err)
	assert.Contains(t, out, "You: hi")
}
