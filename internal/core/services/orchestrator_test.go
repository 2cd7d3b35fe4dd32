package services

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docqa/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/docqa/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/docqa/internal/adapters/driven/storage/uploads"
	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
	"github.com/custodia-labs/docqa/internal/loaders"
	"github.com/custodia-labs/docqa/internal/postprocessors"
)

const contractText = "The contract duration is two years.\n\nPayment is due monthly."

type orchestratorHarness struct {
	cfg      OrchestratorConfig
	orch     *Orchestrator
	llm      *mockLLMService
	embedder *mockEmbeddingService
	vectors  *memory.VectorStore
}

func newHarness(t *testing.T) *orchestratorHarness {
	t.Helper()
	dataDir := t.TempDir()
	h := &orchestratorHarness{
		llm:      &mockLLMService{},
		embedder: &mockEmbeddingService{},
		vectors:  memory.NewVectorStore(),
	}
	h.cfg = OrchestratorConfig{
		Stager:        uploads.NewStager(dataDir),
		Loaders:       loaders.Default(),
		Splitter:      postprocessors.Default(domain.DefaultChunkSize, domain.DefaultChunkOverlap),
		Index:         NewIndexStore(h.vectors, h.embedder),
		LLM:           h.llm,
		Prompts:       &mockPromptStore{},
		Conversations: memory.NewConversationStore(),
		Sessions:      memory.NewSessionStore(),
		IndexDir:      filepath.Join(dataDir, "index"),
		TopK:          domain.DefaultTopK,
		MaxTurns:      domain.DefaultMaxTurns,
	}
	h.orch = NewOrchestrator(h.cfg)
	return h
}

func (h *orchestratorHarness) ingest(t *testing.T, sess *domain.Session) *domain.IngestReport {
	t.Helper()
	report, err := h.orch.Ingest(context.Background(), sess, "contract.txt", strings.NewReader(contractText))
	require.NoError(t, err)
	return report
}

func promptWith(prefix, fragment string) any {
	return mock.MatchedBy(func(p string) bool {
		return strings.HasPrefix(p, prefix) && strings.Contains(p, fragment)
	})
}

func TestOrchestrator_Session_New(t *testing.T) {
	h := newHarness(t)

	sess, err := h.orch.Session(context.Background(), "", "")

	require.NoError(t, err)
	assert.NotEmpty(t, sess.ID)
	assert.Equal(t, domain.AskModeSingleTurn, sess.Mode)
	assert.Equal(t, h.cfg.IndexDir, sess.IndexLocation)
	assert.False(t, sess.Ready)
}

func TestOrchestrator_Session_Restore(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)

	created, err := h.orch.Session(ctx, "s1", domain.AskModeConversational)
	require.NoError(t, err)
	h.ingest(t, created)

	restored, err := h.orch.Session(ctx, "s1", "")
	require.NoError(t, err)
	assert.True(t, restored.Ready)
	assert.Equal(t, domain.AskModeConversational, restored.Mode)

	switched, err := h.orch.Session(ctx, "s1", domain.AskModeSingleTurn)
	require.NoError(t, err)
	assert.Equal(t, domain.AskModeSingleTurn, switched.Mode)

	again, err := h.orch.Session(ctx, "s1", "")
	require.NoError(t, err)
	assert.Equal(t, domain.AskModeSingleTurn, again.Mode)
}

func TestOrchestrator_Ingest(t *testing.T) {
	h := newHarness(t)
	sess, err := h.orch.Session(context.Background(), "s1", "")
	require.NoError(t, err)

	report := h.ingest(t, sess)

	assert.Equal(t, 1, report.Documents)
	assert.Equal(t, 1, report.Chunks)
	assert.Equal(t, 1, report.Stored)
	assert.True(t, report.Indexed())
	assert.Equal(t, "upload.txt", filepath.Base(report.Source))
	assert.True(t, sess.Ready)
}

func TestOrchestrator_Ingest_SameFileTwiceDoesNotGrowIndex(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	sess, err := h.orch.Session(ctx, "s1", "")
	require.NoError(t, err)

	h.ingest(t, sess)
	h.ingest(t, sess)

	handle, err := h.cfg.Index.OpenOrCreate(ctx, sess.IndexLocation)
	require.NoError(t, err)
	n, err := handle.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestOrchestrator_Ingest_LongDocumentChunks(t *testing.T) {
	h := newHarness(t)
	sess, err := h.orch.Session(context.Background(), "", "")
	require.NoError(t, err)

	text := strings.Repeat("a", 1300)
	report, err := h.orch.Ingest(context.Background(), sess, "long.txt", strings.NewReader(text))

	require.NoError(t, err)
	assert.Equal(t, 3, report.Chunks)
	assert.Equal(t, 3, report.Stored)
}

func TestOrchestrator_Ingest_UnsupportedFormat(t *testing.T) {
	h := newHarness(t)
	sess, err := h.orch.Session(context.Background(), "", "")
	require.NoError(t, err)

	_, err = h.orch.Ingest(context.Background(), sess, "image.xyz", strings.NewReader("data"))

	assert.ErrorIs(t, err, domain.ErrUnsupportedFormat)
	assert.False(t, sess.Ready)
}

func TestOrchestrator_Ingest_EmptyDocument(t *testing.T) {
	h := newHarness(t)
	sess, err := h.orch.Session(context.Background(), "", "")
	require.NoError(t, err)

	_, err = h.orch.Ingest(context.Background(), sess, "empty.txt", strings.NewReader("  \n "))

	assert.ErrorIs(t, err, domain.ErrEmptyDocument)
	assert.False(t, sess.Ready)
}

func TestOrchestrator_Ingest_StorageFailureIsWarning(t *testing.T) {
	h := newHarness(t)
	h.cfg.Index = NewIndexStore(&failingVectorStore{err: errors.New("read-only filesystem")}, h.embedder)
	orch := NewOrchestrator(h.cfg)
	sess, err := orch.Session(context.Background(), "", "")
	require.NoError(t, err)

	report, err := orch.Ingest(context.Background(), sess, "contract.txt", strings.NewReader(contractText))

	require.NoError(t, err)
	assert.Zero(t, report.Stored)
	require.Len(t, report.Warnings, 1)
	assert.Contains(t, report.Warnings[0], "continuing without vector storage")
	assert.Contains(t, report.Warnings[0], "read-only filesystem")
	assert.False(t, report.Indexed())
	assert.True(t, sess.Ready)
}

func TestOrchestrator_Ask_BeforeIngest(t *testing.T) {
	h := newHarness(t)
	sess, err := h.orch.Session(context.Background(), "", "")
	require.NoError(t, err)

	_, err = h.orch.AskSingleTurn(context.Background(), sess, "What is the term?")
	require.ErrorIs(t, err, domain.ErrIndexNotFound)
	assert.Equal(t, MsgIndexNotFound, UserMessage(err))

	_, _, err = h.orch.AskConversational(context.Background(), sess, "What is the term?")
	assert.ErrorIs(t, err, domain.ErrIndexNotFound)
	h.llm.AssertNumberOfCalls(t, "Generate", 0)
}

func TestOrchestrator_Ask_PersistedIndexWithoutIngest(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	first, err := h.orch.Session(ctx, "", "")
	require.NoError(t, err)
	h.ingest(t, first)

	fresh, err := h.orch.Session(ctx, "", "")
	require.NoError(t, err)
	require.False(t, fresh.Ready)

	h.llm.On("Generate", promptWith("CONTEXT:", "duration")).Return("draft", nil).Once()
	h.llm.On("Generate", "REFINE: draft").Return("Two years.", nil).Once()

	answer, err := h.orch.AskSingleTurn(ctx, fresh, "What is the contract duration?")

	require.NoError(t, err)
	assert.Equal(t, "Two years.", answer.Text)
}

func TestOrchestrator_Ask_ReadySessionWithoutStorage(t *testing.T) {
	h := newHarness(t)
	h.cfg.Index = NewIndexStore(&failingVectorStore{err: errors.New("read-only filesystem")}, h.embedder)
	orch := NewOrchestrator(h.cfg)
	sess, err := orch.Session(context.Background(), "", "")
	require.NoError(t, err)
	_, err = orch.Ingest(context.Background(), sess, "contract.txt", strings.NewReader(contractText))
	require.NoError(t, err)
	require.True(t, sess.Ready)

	_, err = orch.AskSingleTurn(context.Background(), sess, "What is the term?")

	require.ErrorIs(t, err, domain.ErrIndexNotFound)
	h.llm.AssertNumberOfCalls(t, "Generate", 0)
}

func TestOrchestrator_Ask_IndexRemovedAfterIngest(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	vectors := sqlite.NewVectorStore()
	h.cfg.Index = NewIndexStore(vectors, h.embedder)
	orch := NewOrchestrator(h.cfg)
	sess, err := orch.Session(ctx, "s1", "")
	require.NoError(t, err)
	_, err = orch.Ingest(ctx, sess, "contract.txt", strings.NewReader(contractText))
	require.NoError(t, err)
	require.NoError(t, vectors.Close())
	require.NoError(t, os.RemoveAll(orch.location(sess)))

	fresh := sqlite.NewVectorStore()
	defer fresh.Close()
	h.cfg.Index = NewIndexStore(fresh, h.embedder)
	orch = NewOrchestrator(h.cfg)
	restored, err := orch.Session(ctx, "s1", "")
	require.NoError(t, err)
	require.True(t, restored.Ready)

	_, err = orch.AskSingleTurn(ctx, restored, "What is the contract duration?")
	require.ErrorIs(t, err, domain.ErrIndexNotFound)
	_, _, err = orch.AskConversational(ctx, restored, "What is the contract duration?")
	require.ErrorIs(t, err, domain.ErrIndexNotFound)
	h.llm.AssertNumberOfCalls(t, "Generate", 0)
	h.llm.AssertNumberOfCalls(t, "Chat", 0)
}

func TestOrchestrator_Ask_RetrieverUnavailable(t *testing.T) {
	h := newHarness(t)
	sess, err := h.orch.Session(context.Background(), "", "")
	require.NoError(t, err)
	h.ingest(t, sess)

	h.cfg.Index = NewIndexStore(h.vectors, nil)
	orch := NewOrchestrator(h.cfg)

	_, err = orch.AskSingleTurn(context.Background(), sess, "q")

	require.ErrorIs(t, err, domain.ErrRetrieverUnavailable)
	assert.Equal(t, MsgRetrieverUnavailable, UserMessage(err))
}

func TestOrchestrator_AskSingleTurn(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	sess, err := h.orch.Session(ctx, "s1", "")
	require.NoError(t, err)
	h.ingest(t, sess)

	h.llm.On("Generate", promptWith("CONTEXT:", contractText)).Return("The contract is two years long.", nil).Once()
	h.llm.On("Generate", "REFINE: The contract is two years long.").Return("Two years.", nil).Once()

	answer, err := h.orch.AskSingleTurn(ctx, sess, "What is the contract duration?")

	require.NoError(t, err)
	assert.Equal(t, "Two years.", answer.Text)
	require.Len(t, answer.Context, 1)
	assert.Equal(t, contractText, answer.Context[0].Content)

	history, err := h.orch.History(ctx, sess)
	require.NoError(t, err)
	assert.Empty(t, history, "single-turn answers are not remembered")
	h.llm.AssertExpectations(t)
}

func TestOrchestrator_AskConversational_HistoryAndClear(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	sess, err := h.orch.Session(ctx, "s1", domain.AskModeConversational)
	require.NoError(t, err)
	h.ingest(t, sess)

	h.llm.On("Chat", mock.Anything).Return("Two years.", nil).Once()

	answer, err := h.orch.Ask(ctx, sess, "What is the contract duration?")
	require.NoError(t, err)
	assert.Equal(t, domain.AskModeConversational, answer.Mode)

	history, err := h.orch.History(ctx, sess)
	require.NoError(t, err)
	assert.Equal(t, []domain.Turn{
		domain.UserTurn("What is the contract duration?"),
		domain.AssistantTurn("Two years."),
	}, history)

	require.NoError(t, h.orch.ClearHistory(ctx, sess))
	history, err = h.orch.History(ctx, sess)
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestOrchestrator_AskConversational_FollowUp(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	sess, err := h.orch.Session(ctx, "s1", "")
	require.NoError(t, err)
	h.ingest(t, sess)

	h.llm.On("Chat", mock.Anything).Return("Two years.", nil).Once()
	h.llm.On("Generate", promptWith("HISTORY:\nHuman: What is the duration?", "FOLLOWUP: And the payment?")).
		Return("When is payment due?", nil).Once()
	h.llm.On("Chat", mock.MatchedBy(func(msgs []driven.ChatMessage) bool {
		return len(msgs) == 2 && msgs[1].Content == "When is payment due?"
	})).Return("Monthly.", nil).Once()

	_, _, err = h.orch.AskConversational(ctx, sess, "What is the duration?")
	require.NoError(t, err)
	answer, transcript, err := h.orch.AskConversational(ctx, sess, "And the payment?")

	require.NoError(t, err)
	assert.Equal(t, "Monthly.", answer.Text)
	assert.Len(t, transcript, 4)
	h.llm.AssertExpectations(t)
}

func TestOrchestrator_Ask_RoutesOnMode(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	sess, err := h.orch.Session(ctx, "s1", domain.AskModeSingleTurn)
	require.NoError(t, err)
	h.ingest(t, sess)

	h.llm.On("Generate", mock.Anything).Return("x", nil).Twice()

	answer, err := h.orch.Ask(ctx, sess, "q")

	require.NoError(t, err)
	assert.Equal(t, domain.AskModeSingleTurn, answer.Mode)
	h.llm.AssertNumberOfCalls(t, "Chat", 0)
}

func TestOrchestrator_SessionsShareNothing(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	a, err := h.orch.Session(ctx, "a", domain.AskModeConversational)
	require.NoError(t, err)
	b, err := h.orch.Session(ctx, "b", domain.AskModeConversational)
	require.NoError(t, err)
	h.ingest(t, a)

	h.llm.On("Chat", mock.Anything).Return("ok", nil)
	_, _, err = h.orch.AskConversational(ctx, a, "q")
	require.NoError(t, err)

	history, err := h.orch.History(ctx, b)
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestUserMessage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ""},
		{"index not found", fmt.Errorf("ask: %w", domain.ErrIndexNotFound), MsgIndexNotFound},
		{"retriever", fmt.Errorf("%w: boom", domain.ErrRetrieverUnavailable), MsgRetrieverUnavailable},
		{"llm", fmt.Errorf("answer question: %w", domain.ErrLLMUnavailable), "Error processing query: answer question: LLM service unavailable"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, UserMessage(tt.err))
		})
	}
}
