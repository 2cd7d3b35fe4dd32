package mcp

import (
	"context"
	"io"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

// mockQAService is a mock implementation of driving.DocumentQA.
type mockQAService struct {
	answer    *domain.Answer
	report    *domain.IngestReport
	turns     []domain.Turn
	err       error
	ingestErr error

	lastSession string
	lastCall    string
	ingested    string
	cleared     bool
}

func (m *mockQAService) Session(_ context.Context, id string, mode domain.AskMode) (*domain.Session, error) {
	m.lastSession = id
	return domain.NewSession(id, mode), nil
}

func (m *mockQAService) Ingest(_ context.Context, _ *domain.Session, name string, r io.Reader) (*domain.IngestReport, error) {
	data, _ := io.ReadAll(r)
	m.ingested = name + ":" + string(data)
	return m.report, m.ingestErr
}

func (m *mockQAService) Ask(_ context.Context, _ *domain.Session, _ string) (*domain.Answer, error) {
	m.lastCall = "ask"
	return m.answer, m.err
}

func (m *mockQAService) AskSingleTurn(_ context.Context, _ *domain.Session, _ string) (*domain.Answer, error) {
	m.lastCall = "single"
	return m.answer, m.err
}

func (m *mockQAService) AskConversational(_ context.Context, _ *domain.Session, _ string) (*domain.Answer, []domain.Turn, error) {
	m.lastCall = "chat"
	return m.answer, m.turns, m.err
}

func (m *mockQAService) History(_ context.Context, _ *domain.Session) ([]domain.Turn, error) {
	return m.turns, m.err
}

func (m *mockQAService) ClearHistory(_ context.Context, _ *domain.Session) error {
	m.cleared = m.err == nil
	return m.err
}
