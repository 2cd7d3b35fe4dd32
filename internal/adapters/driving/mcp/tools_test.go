package mcp

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/services"
)

func newTestServer(t *testing.T, qa *mockQAService) *Server {
	t.Helper()
	server, err := NewServer(&Ports{QA: qa})
	require.NoError(t, err)
	return server
}

func TestServer_handleIngest(t *testing.T) {
	ctx := context.Background()

	t.Run("ingests file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "notes.txt")
		require.NoError(t, os.WriteFile(path, []byte("hello"), 0o600))

		qa := &mockQAService{report: &domain.IngestReport{Documents: 1, Chunks: 2, Stored: 2}}
		server := newTestServer(t, qa)

		_, output, err := server.handleIngest(ctx, nil, IngestInput{Path: path, Session: "s1"})

		require.NoError(t, err)
		assert.Equal(t, "s1", output.Session)
		assert.Equal(t, 2, output.Chunks)
		assert.Equal(t, 2, output.Stored)
		assert.Equal(t, "notes.txt:hello", qa.ingested)
	})

	t.Run("storage warnings are reported", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "notes.txt")
		require.NoError(t, os.WriteFile(path, []byte("hello"), 0o600))

		qa := &mockQAService{report: &domain.IngestReport{Chunks: 2, Warnings: []string{"index offline"}}}
		server := newTestServer(t, qa)

		_, output, err := server.handleIngest(ctx, nil, IngestInput{Path: path})

		require.NoError(t, err)
		assert.Equal(t, DefaultSessionID, output.Session)
		assert.Equal(t, []string{"index offline"}, output.Warnings)
	})

	t.Run("missing path", func(t *testing.T) {
		server := newTestServer(t, &mockQAService{})

		_, _, err := server.handleIngest(ctx, nil, IngestInput{})

		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("unreadable file", func(t *testing.T) {
		server := newTestServer(t, &mockQAService{})

		_, _, err := server.handleIngest(ctx, nil, IngestInput{Path: filepath.Join(t.TempDir(), "absent.pdf")})

		require.Error(t, err)
		assert.Contains(t, err.Error(), "absent.pdf")
	})

	t.Run("unsupported format", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "image.png")
		require.NoError(t, os.WriteFile(path, []byte{0x89}, 0o600))

		server := newTestServer(t, &mockQAService{ingestErr: domain.ErrUnsupportedFormat})

		_, _, err := server.handleIngest(ctx, nil, IngestInput{Path: path})

		assert.ErrorIs(t, err, domain.ErrUnsupportedFormat)
	})
}

func TestServer_handleAsk(t *testing.T) {
	ctx := context.Background()
	answer := &domain.Answer{
		Text:     "Forty-two.",
		Question: "What is the answer?",
		Mode:     domain.AskModeSingleTurn,
		Context: []domain.Chunk{{
			Content:  "The answer is forty-two.",
			Metadata: map[string]any{domain.MetaSource: "guide.pdf", domain.MetaPage: 3},
		}},
	}

	t.Run("session mode by default", func(t *testing.T) {
		qa := &mockQAService{answer: answer}
		server := newTestServer(t, qa)

		_, output, err := server.handleAsk(ctx, nil, AskInput{Question: "What is the answer?"})

		require.NoError(t, err)
		assert.Equal(t, "ask", qa.lastCall)
		assert.Equal(t, "Forty-two.", output.Answer)
		assert.Equal(t, "single_turn", output.Mode)
		require.Len(t, output.Sources, 1)
		assert.Equal(t, "guide.pdf", output.Sources[0].Source)
		assert.Equal(t, 3, output.Sources[0].Page)
	})

	t.Run("explicit modes", func(t *testing.T) {
		qa := &mockQAService{answer: answer}
		server := newTestServer(t, qa)

		_, _, err := server.handleAsk(ctx, nil, AskInput{Question: "q", Mode: "chat"})
		require.NoError(t, err)
		assert.Equal(t, "chat", qa.lastCall)

		_, _, err = server.handleAsk(ctx, nil, AskInput{Question: "q", Mode: "single"})
		require.NoError(t, err)
		assert.Equal(t, "single", qa.lastCall)
	})

	t.Run("invalid mode", func(t *testing.T) {
		server := newTestServer(t, &mockQAService{answer: answer})

		_, _, err := server.handleAsk(ctx, nil, AskInput{Question: "q", Mode: "loud"})

		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("empty question", func(t *testing.T) {
		server := newTestServer(t, &mockQAService{answer: answer})

		_, _, err := server.handleAsk(ctx, nil, AskInput{})

		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("missing index becomes message", func(t *testing.T) {
		server := newTestServer(t, &mockQAService{err: domain.ErrIndexNotFound})

		_, output, err := server.handleAsk(ctx, nil, AskInput{Question: "q"})

		require.NoError(t, err)
		assert.Equal(t, services.MsgIndexNotFound, output.Answer)
	})

	t.Run("llm failure becomes message", func(t *testing.T) {
		server := newTestServer(t, &mockQAService{err: errors.New("connection refused")})

		_, output, err := server.handleAsk(ctx, nil, AskInput{Question: "q", Mode: "chat"})

		require.NoError(t, err)
		assert.Contains(t, output.Answer, "connection refused")
	})
}

func TestServer_handleClearHistory(t *testing.T) {
	ctx := context.Background()

	t.Run("clears session", func(t *testing.T) {
		qa := &mockQAService{}
		server := newTestServer(t, qa)

		_, output, err := server.handleClearHistory(ctx, nil, ClearHistoryInput{Session: "s2"})

		require.NoError(t, err)
		assert.True(t, output.Cleared)
		assert.Equal(t, "s2", output.Session)
		assert.True(t, qa.cleared)
	})

	t.Run("store failure", func(t *testing.T) {
		server := newTestServer(t, &mockQAService{err: errors.New("disk full")})

		_, _, err := server.handleClearHistory(ctx, nil, ClearHistoryInput{})

		require.Error(t, err)
		assert.Contains(t, err.Error(), "clearing history")
	})
}
