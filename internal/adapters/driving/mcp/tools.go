package mcp

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/services"
)

// IngestInput is the input schema for the ingest tool.
type IngestInput struct {
	Path    string `json:"path" jsonschema:"absolute path of the document to ingest (pdf, docx, html, md or txt)"`
	Session string `json:"session,omitempty" jsonschema:"session id (default: the server session)"`
}

// IngestOutput is the output schema for the ingest tool.
type IngestOutput struct {
	Session   string   `json:"session"`
	Documents int      `json:"documents"`
	Chunks    int      `json:"chunks"`
	Stored    int      `json:"stored"`
	Warnings  []string `json:"warnings,omitempty"`
}

// AskInput is the input schema for the ask tool.
type AskInput struct {
	Question string `json:"question" jsonschema:"the question to answer from the ingested document"`
	Mode     string `json:"mode,omitempty" jsonschema:"single or chat (default: the session mode)"`
	Session  string `json:"session,omitempty" jsonschema:"session id (default: the server session)"`
}

// AskOutput is the output schema for the ask tool.
type AskOutput struct {
	Answer   string         `json:"answer"`
	Question string         `json:"question,omitempty"`
	Mode     string         `json:"mode,omitempty"`
	Sources  []SourceOutput `json:"sources,omitempty"`
}

// SourceOutput is one retrieved passage behind an answer.
type SourceOutput struct {
	Source  string `json:"source"`
	Page    int    `json:"page,omitempty"`
	Content string `json:"content"`
}

// ClearHistoryInput is the input schema for the clear_history tool.
type ClearHistoryInput struct {
	Session string `json:"session,omitempty" jsonschema:"session id (default: the server session)"`
}

// ClearHistoryOutput is the output schema for the clear_history tool.
type ClearHistoryOutput struct {
	Session string `json:"session"`
	Cleared bool   `json:"cleared"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "ingest",
		Description: "Load, chunk and index a local document so questions can be asked about it",
	}, s.handleIngest)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "ask",
		Description: "Answer a question from the ingested document, single-turn or as part of a conversation",
	}, s.handleAsk)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "clear_history",
		Description: "Forget the conversation of a session",
	}, s.handleClearHistory)
}

// handleIngest handles the ingest tool invocation.
func (s *Server) handleIngest(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input IngestInput,
) (*mcp.CallToolResult, IngestOutput, error) {
	if input.Path == "" {
		return nil, IngestOutput{}, fmt.Errorf("path is required: %w", domain.ErrInvalidInput)
	}

	sess, err := s.ports.QA.Session(ctx, s.ports.sessionID(input.Session), "")
	if err != nil {
		return nil, IngestOutput{}, fmt.Errorf("opening session: %w", err)
	}

	f, err := os.Open(input.Path)
	if err != nil {
		return nil, IngestOutput{}, fmt.Errorf("opening %s: %w", input.Path, err)
	}
	defer f.Close()

	report, err := s.ports.QA.Ingest(ctx, sess, filepath.Base(input.Path), f)
	if err != nil {
		return nil, IngestOutput{}, err
	}

	return nil, IngestOutput{
		Session:   sess.ID,
		Documents: report.Documents,
		Chunks:    report.Chunks,
		Stored:    report.Stored,
		Warnings:  report.Warnings,
	}, nil
}

// handleAsk handles the ask tool invocation. Pipeline failures are returned
// as the answer text so the assistant can relay them.
func (s *Server) handleAsk(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input AskInput,
) (*mcp.CallToolResult, AskOutput, error) {
	if input.Question == "" {
		return nil, AskOutput{}, fmt.Errorf("question is required: %w", domain.ErrInvalidInput)
	}

	var mode domain.AskMode
	if input.Mode != "" {
		parsed, ok := domain.ParseAskMode(input.Mode)
		if !ok {
			return nil, AskOutput{}, fmt.Errorf("unknown mode %q: %w", input.Mode, domain.ErrInvalidInput)
		}
		mode = parsed
	}

	sess, err := s.ports.QA.Session(ctx, s.ports.sessionID(input.Session), "")
	if err != nil {
		return nil, AskOutput{}, fmt.Errorf("opening session: %w", err)
	}

	var answer *domain.Answer
	switch mode {
	case domain.AskModeSingleTurn:
		answer, err = s.ports.QA.AskSingleTurn(ctx, sess, input.Question)
	case domain.AskModeConversational:
		answer, _, err = s.ports.QA.AskConversational(ctx, sess, input.Question)
	default:
		answer, err = s.ports.QA.Ask(ctx, sess, input.Question)
	}
	if err != nil {
		return nil, AskOutput{Answer: services.UserMessage(err)}, nil
	}

	output := AskOutput{
		Answer:   answer.Text,
		Question: answer.Question,
		Mode:     answer.Mode.String(),
		Sources:  make([]SourceOutput, len(answer.Context)),
	}
	for i, c := range answer.Context {
		output.Sources[i] = SourceOutput{
			Source:  c.Source(),
			Page:    c.Page(),
			Content: c.Content,
		}
	}

	return nil, output, nil
}

// handleClearHistory handles the clear_history tool invocation.
func (s *Server) handleClearHistory(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ClearHistoryInput,
) (*mcp.CallToolResult, ClearHistoryOutput, error) {
	sess, err := s.ports.QA.Session(ctx, s.ports.sessionID(input.Session), "")
	if err != nil {
		return nil, ClearHistoryOutput{}, fmt.Errorf("opening session: %w", err)
	}

	if err := s.ports.QA.ClearHistory(ctx, sess); err != nil {
		return nil, ClearHistoryOutput{}, fmt.Errorf("clearing history: %w", err)
	}

	return nil, ClearHistoryOutput{Session: sess.ID, Cleared: true}, nil
}
