package mcp

import (
	"context"
	"errors"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

func TestExtractSessionID(t *testing.T) {
	tests := []struct {
		name     string
		uri      string
		expected string
	}{
		{name: "valid transcript URI", uri: "docqa://transcript/abc-123", expected: "abc-123"},
		{name: "invalid prefix", uri: "file://transcript/abc", expected: ""},
		{name: "nested path", uri: "docqa://transcript/abc/more", expected: ""},
		{name: "missing session", uri: "docqa://transcript/", expected: ""},
		{name: "empty URI", uri: "", expected: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, extractSessionID(tt.uri))
		})
	}
}

// Helper to create a ReadResourceRequest with the given URI.
func makeReadResourceRequest(uri string) *mcp.ReadResourceRequest {
	return &mcp.ReadResourceRequest{
		Params: &mcp.ReadResourceParams{
			URI: uri,
		},
	}
}

func TestServer_handleTranscriptResource(t *testing.T) {
	ctx := context.Background()

	t.Run("returns transcript", func(t *testing.T) {
		qa := &mockQAService{turns: []domain.Turn{
			domain.UserTurn("What is it?"),
			domain.AssistantTurn("A guide."),
		}}
		server := newTestServer(t, qa)

		result, err := server.handleTranscriptResource(ctx, makeReadResourceRequest("docqa://transcript/s1"))

		require.NoError(t, err)
		require.Len(t, result.Contents, 1)
		assert.Equal(t, "s1", qa.lastSession)
		assert.Contains(t, result.Contents[0].Text, `"role": "user"`)
		assert.Contains(t, result.Contents[0].Text, "A guide.")
	})

	t.Run("empty transcript", func(t *testing.T) {
		server := newTestServer(t, &mockQAService{})

		result, err := server.handleTranscriptResource(ctx, makeReadResourceRequest("docqa://transcript/s1"))

		require.NoError(t, err)
		assert.Equal(t, "[]", result.Contents[0].Text)
	})

	t.Run("invalid URI returns not found", func(t *testing.T) {
		server := newTestServer(t, &mockQAService{})

		_, err := server.handleTranscriptResource(ctx, makeReadResourceRequest("docqa://other"))

		require.Error(t, err)
	})

	t.Run("history failure", func(t *testing.T) {
		server := newTestServer(t, &mockQAService{err: errors.New("locked")})

		_, err := server.handleTranscriptResource(ctx, makeReadResourceRequest("docqa://transcript/s1"))

		require.Error(t, err)
		assert.Contains(t, err.Error(), "loading transcript")
	})
}
