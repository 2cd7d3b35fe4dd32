package services

import (
	"context"
	"errors"
	"strings"

	"github.com/stretchr/testify/mock"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
)

// --- Mock implementations ---

// keywords are the axes of the fake embedding space.
var keywords = []string{"duration", "payment", "governing"}

// keywordVector embeds text by keyword presence. The baseline keeps every
// vector non-zero.
func keywordVector(text string) []float32 {
	lower := strings.ToLower(text)
	v := make([]float32, len(keywords))
	for i, k := range keywords {
		v[i] = 0.01
		if strings.Contains(lower, k) {
			v[i] = 1
		}
	}
	return v
}

// mockEmbeddingService implements driven.EmbeddingService for testing.
type mockEmbeddingService struct {
	embedErr error
	// failBatches lists EmbedBatch call numbers (0-based) that fail.
	failBatches map[int]bool
	batchCalls  int
	batchSizes  []int
	queries     []string
}

func (m *mockEmbeddingService) Embed(_ context.Context, text string) ([]float32, error) {
	m.queries = append(m.queries, text)
	if m.embedErr != nil {
		return nil, m.embedErr
	}
	return keywordVector(text), nil
}

func (m *mockEmbeddingService) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	call := m.batchCalls
	m.batchCalls++
	m.batchSizes = append(m.batchSizes, len(texts))
	if m.embedErr != nil {
		return nil, m.embedErr
	}
	if m.failBatches[call] {
		return nil, errors.New("embedding backend timeout")
	}
	result := make([][]float32, len(texts))
	for i, t := range texts {
		result[i] = keywordVector(t)
	}
	return result, nil
}

func (m *mockEmbeddingService) Dimensions() int { return len(keywords) }
func (m *mockEmbeddingService) ModelName() string { return "mock-embed" }
func (m *mockEmbeddingService) Ping(context.Context) error { return nil }
func (m *mockEmbeddingService) Close() error { return nil }

// mockLLMService implements driven.LLMService with testify expectations
// keyed on the prompt text or chat messages.
type mockLLMService struct {
	mock.Mock
}

func (m *mockLLMService) Generate(_ context.Context, prompt string, _ driven.GenerateOptions) (string, error) {
	args := m.Called(prompt)
	return args.String(0), args.Error(1)
}

func (m *mockLLMService) Chat(_ context.Context, messages []driven.ChatMessage, _ driven.ChatOptions) (string, error) {
	args := m.Called(messages)
	return args.String(0), args.Error(1)
}

func (m *mockLLMService) ModelName() string { return "mock-llm" }
func (m *mockLLMService) Ping(context.Context) error { return nil }
func (m *mockLLMService) Close() error { return nil }

// mockPromptStore returns short templates so tests can assert full prompts.
type mockPromptStore struct {
	loadErr error
}

var testPrompts = map[string]string{
	driven.PromptQuestionAnswer:     "CONTEXT:\n{context}\nQUESTION: {question}",
	driven.PromptRefine:             "REFINE: {answer}",
	driven.PromptCondenseQuestion:   "HISTORY:\n{chat_history}\nFOLLOWUP: {question}",
	driven.PromptConversationAnswer: "SYSTEM:\n{context}",
}

func (m *mockPromptStore) Load(name string) (string, error) {
	if m.loadErr != nil {
		return "", m.loadErr
	}
	p, ok := testPrompts[name]
	if !ok {
		return "", domain.ErrNotFound
	}
	return p, nil
}

func (m *mockPromptStore) Reload() {}

// staticPromptStore serves templates from a map.
type staticPromptStore map[string]string

func (s staticPromptStore) Load(name string) (string, error) {
	p, ok := s[name]
	if !ok {
		return "", domain.ErrNotFound
	}
	return p, nil
}

func (s staticPromptStore) Reload() {}

// stubRetriever implements ContextRetriever with fixed results.
type stubRetriever struct {
	chunks  []domain.Chunk
	err     error
	queries []string
}

func (s *stubRetriever) Retrieve(_ context.Context, query string) ([]domain.Chunk, error) {
	s.queries = append(s.queries, query)
	return s.chunks, s.err
}

// failingVectorStore implements driven.VectorStore and always fails to open.
type failingVectorStore struct {
	err error
}

func (f *failingVectorStore) Open(context.Context, string, int) (driven.VectorCollection, error) {
	return nil, f.err
}

func (f *failingVectorStore) Exists(context.Context, string) (bool, error) {
	return false, nil
}

// failingConversationStore fails every write.
type failingConversationStore struct {
	err error
}

func (f *failingConversationStore) Append(context.Context, string, ...domain.Turn) error { return f.err }
func (f *failingConversationStore) List(context.Context, string) ([]domain.Turn, error) {
	return nil, nil
}
func (f *failingConversationStore) DropOldest(context.Context, string, int) error { return f.err }
func (f *failingConversationStore) Clear(context.Context, string) error { return f.err }

// flakyConversationStore wraps a working store and fails the Append call
// numbered failAppend (1-based), or every DropOldest when dropErr is set.
type flakyConversationStore struct {
	driven.ConversationStore
	failAppend int
	appends    int
	dropErr    error
}

func (f *flakyConversationStore) Append(ctx context.Context, sessionID string, turns ...domain.Turn) error {
	f.appends++
	if f.appends == f.failAppend {
		return errors.New("disk full")
	}
	return f.ConversationStore.Append(ctx, sessionID, turns...)
}

func (f *flakyConversationStore) DropOldest(ctx context.Context, sessionID string, n int) error {
	if f.dropErr != nil {
		return f.dropErr
	}
	return f.ConversationStore.DropOldest(ctx, sessionID, n)
}

func chunk(id, content string) domain.Chunk {
	return domain.Chunk{ID: id, DocumentID: "doc", Content: content, Metadata: map[string]any{}}
}

// Ensure mocks implement interfaces
var (
	_ driven.EmbeddingService  = (*mockEmbeddingService)(nil)
	_ driven.LLMService        = (*mockLLMService)(nil)
	_ driven.PromptStore       = (*mockPromptStore)(nil)
	_ driven.PromptStore       = staticPromptStore(nil)
	_ driven.VectorStore       = (*failingVectorStore)(nil)
	_ driven.ConversationStore = (*failingConversationStore)(nil)
	_ driven.ConversationStore = (*flakyConversationStore)(nil)
	_ ContextRetriever         = (*stubRetriever)(nil)
)
