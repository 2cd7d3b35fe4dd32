package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const (
	// uriScheme is the custom URI scheme for docqa resources.
	uriScheme = "docqa://"
)

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "transcript/{session}",
		Name:        "transcript",
		Description: "Conversation transcript of a session, oldest turn first",
		MIMEType:    "application/json",
	}, s.handleTranscriptResource)
}

// handleTranscriptResource returns the conversation of a session.
func (s *Server) handleTranscriptResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	id := extractSessionID(req.Params.URI)
	if id == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	sess, err := s.ports.QA.Session(ctx, id, "")
	if err != nil {
		return nil, fmt.Errorf("opening session: %w", err)
	}

	turns, err := s.ports.QA.History(ctx, sess)
	if err != nil {
		return nil, fmt.Errorf("loading transcript: %w", err)
	}

	type turnInfo struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	}

	infos := make([]turnInfo, len(turns))
	for i, t := range turns {
		infos[i] = turnInfo{Role: string(t.Role), Content: t.Content}
	}

	data, err := json.MarshalIndent(infos, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling transcript: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

// extractSessionID extracts the session ID from a URI like docqa://transcript/{session}.
func extractSessionID(uri string) string {
	const prefix = uriScheme + "transcript/"

	if !strings.HasPrefix(uri, prefix) {
		return ""
	}

	id := strings.TrimPrefix(uri, prefix)
	if strings.Contains(id, "/") {
		return ""
	}
	return id
}
