package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
)

func TestAnswerChain_RetrieveAnswerRefine(t *testing.T) {
	retriever := &stubRetriever{chunks: []domain.Chunk{
		chunk("a", "The contract duration is two years."),
		chunk("b", "Either party may renew."),
	}}
	llm := &mockLLMService{}
	llm.On("Generate", "CONTEXT:\nThe contract duration is two years.\n\nEither party may renew.\nQUESTION: How long is the contract?").
		Return("The contract lasts two years, renewable by either party.", nil).Once()
	llm.On("Generate", "REFINE: The contract lasts two years, renewable by either party.").
		Return("  Two years.  ", nil).Once()

	answer, err := NewAnswerChain(retriever, llm, &mockPromptStore{}).Answer(context.Background(), "How long is the contract?")

	require.NoError(t, err)
	assert.Equal(t, "Two years.", answer.Text)
	assert.Equal(t, "How long is the contract?", answer.Question)
	assert.Equal(t, domain.AskModeSingleTurn, answer.Mode)
	assert.Len(t, answer.Context, 2)
	assert.Equal(t, []string{"How long is the contract?"}, retriever.queries)
	llm.AssertExpectations(t)
}

func TestAnswerChain_RefineAlwaysRuns(t *testing.T) {
	llm := &mockLLMService{}
	llm.On("Generate", "CONTEXT:\nctx\nQUESTION: q").Return("already simple", nil).Once()
	llm.On("Generate", "REFINE: already simple").Return("already simple", nil).Once()

	_, err := NewAnswerChain(&stubRetriever{chunks: []domain.Chunk{chunk("a", "ctx")}}, llm, &mockPromptStore{}).
		Answer(context.Background(), "q")

	require.NoError(t, err)
	llm.AssertNumberOfCalls(t, "Generate", 2)
}

func TestAnswerChain_EmptyContextStillCallsLLM(t *testing.T) {
	llm := &mockLLMService{}
	llm.On("Generate", "CONTEXT:\n\nQUESTION: q").Return("I don't know.", nil).Once()
	llm.On("Generate", "REFINE: I don't know.").Return("Unknown.", nil).Once()

	answer, err := NewAnswerChain(&stubRetriever{}, llm, &mockPromptStore{}).Answer(context.Background(), "q")

	require.NoError(t, err)
	assert.Equal(t, "Unknown.", answer.Text)
	assert.Empty(t, answer.Context)
}

func TestAnswerChain_RetrievalFailure(t *testing.T) {
	llm := &mockLLMService{}
	cause := errors.New("index corrupt")

	_, err := NewAnswerChain(&stubRetriever{err: cause}, llm, &mockPromptStore{}).Answer(context.Background(), "q")

	assert.ErrorIs(t, err, cause)
	llm.AssertNumberOfCalls(t, "Generate", 0)
}

func TestAnswerChain_FirstStageFailureSkipsRefine(t *testing.T) {
	llm := &mockLLMService{}
	llm.On("Generate", "CONTEXT:\nctx\nQUESTION: q").Return("", domain.ErrLLMUnavailable).Once()

	_, err := NewAnswerChain(&stubRetriever{chunks: []domain.Chunk{chunk("a", "ctx")}}, llm, &mockPromptStore{}).
		Answer(context.Background(), "q")

	assert.ErrorIs(t, err, domain.ErrLLMUnavailable)
	llm.AssertNumberOfCalls(t, "Generate", 1)
}

func TestAnswerChain_RefineFailure(t *testing.T) {
	llm := &mockLLMService{}
	llm.On("Generate", "CONTEXT:\nctx\nQUESTION: q").Return("draft", nil).Once()
	llm.On("Generate", "REFINE: draft").Return("", errors.New("quota exceeded")).Once()

	_, err := NewAnswerChain(&stubRetriever{chunks: []domain.Chunk{chunk("a", "ctx")}}, llm, &mockPromptStore{}).
		Answer(context.Background(), "q")

	assert.ErrorContains(t, err, "refine answer")
	assert.ErrorContains(t, err, "quota exceeded")
}

func TestAnswerChain_NoLLM(t *testing.T) {
	_, err := NewAnswerChain(&stubRetriever{}, nil, &mockPromptStore{}).Answer(context.Background(), "q")
	assert.ErrorIs(t, err, domain.ErrLLMUnavailable)
}

func TestAnswerChain_PromptLoadFailure(t *testing.T) {
	llm := &mockLLMService{}
	_, err := NewAnswerChain(&stubRetriever{}, llm, &mockPromptStore{loadErr: errors.New("permission denied")}).
		Answer(context.Background(), "q")

	assert.ErrorContains(t, err, "permission denied")
	llm.AssertNumberOfCalls(t, "Generate", 0)
}

func TestRender(t *testing.T) {
	tests := []struct {
		name  string
		tmpl  string
		pairs []string
		want  string
	}{
		{
			name:  "literal percent",
			tmpl:  "Be 100% sure.\n{context}\nQ: {question}",
			pairs: []string{driven.PlaceholderContext, "ctx", driven.PlaceholderQuestion, "q"},
			want:  "Be 100% sure.\nctx\nQ: q",
		},
		{
			name:  "reordered and repeated",
			tmpl:  "{question}\n{context}\nAgain: {question}",
			pairs: []string{driven.PlaceholderContext, "ctx", driven.PlaceholderQuestion, "q"},
			want:  "q\nctx\nAgain: q",
		},
		{
			name:  "placeholder removed",
			tmpl:  "Answer briefly: {question}",
			pairs: []string{driven.PlaceholderContext, "ctx", driven.PlaceholderQuestion, "q"},
			want:  "Answer briefly: q",
		},
		{
			name:  "value containing a placeholder name",
			tmpl:  "{context} | {question}",
			pairs: []string{driven.PlaceholderContext, "see {question}", driven.PlaceholderQuestion, "q"},
			want:  "see {question} | q",
		},
		{
			name:  "unknown braces kept",
			tmpl:  "{answer} {\"json\": true}",
			pairs: []string{driven.PlaceholderAnswer, "a"},
			want:  "a {\"json\": true}",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := render(staticPromptStore{"p": tt.tmpl}, "p", tt.pairs...)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAnswerChain_EditedTemplateWithPercent(t *testing.T) {
	retriever := &stubRetriever{chunks: []domain.Chunk{chunk("a", "The term is two years.")}}
	prompts := staticPromptStore{
		driven.PromptQuestionAnswer: "Question first: {question}\nBe 100% faithful to:\n{context}",
		driven.PromptRefine:         "Simplify (keep 100%): {answer}",
	}
	llm := &mockLLMService{}
	llm.On("Generate", "Question first: What is the term?\nBe 100% faithful to:\nThe term is two years.").
		Return("draft", nil).Once()
	llm.On("Generate", "Simplify (keep 100%): draft").Return("Two years.", nil).Once()

	answer, err := NewAnswerChain(retriever, llm, prompts).Answer(context.Background(), "What is the term?")

	require.NoError(t, err)
	assert.Equal(t, "Two years.", answer.Text)
	llm.AssertExpectations(t)
}
