package mcp

import (
	"github.com/custodia-labs/docqa/internal/core/ports/driving"
)

// DefaultSessionID is used by tools called without a session argument.
const DefaultSessionID = "default"

// Ports aggregates all driving port interfaces required by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// QA ingests documents and answers questions.
	QA driving.DocumentQA

	// SessionID is the session used when a tool call names none.
	// Empty means DefaultSessionID.
	SessionID string
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p.QA == nil {
		return ErrMissingQAService
	}
	return nil
}

func (p *Ports) sessionID(id string) string {
	if id != "" {
		return id
	}
	if p.SessionID != "" {
		return p.SessionID
	}
	return DefaultSessionID
}
