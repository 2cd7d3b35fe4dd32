package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
	"github.com/custodia-labs/docqa/internal/logger"
)

// contextSeparator joins retrieved chunks in the stuffed prompt.
const contextSeparator = "\n\n"

// AnswerChain answers one question from retrieved context, then asks the LLM
// to improve and simplify its own answer.
type AnswerChain struct {
	retriever ContextRetriever
	llm       driven.LLMService
	prompts   driven.PromptStore
}

// NewAnswerChain creates a single-turn answer chain.
func NewAnswerChain(retriever ContextRetriever, llm driven.LLMService, prompts driven.PromptStore) *AnswerChain {
	return &AnswerChain{retriever: retriever, llm: llm, prompts: prompts}
}

// Answer runs retrieval-QA followed by the refine step. The refine step
// always runs; it is skipped only when the first stage fails.
func (c *AnswerChain) Answer(ctx context.Context, query string) (*domain.Answer, error) {
	if c.llm == nil {
		return nil, domain.ErrLLMUnavailable
	}

	logger.Section("Single-turn Answer")
	logger.Debug("Query: %q", query)

	chunks, err := c.retriever.Retrieve(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("retrieve context: %w", err)
	}

	qaPrompt, err := render(c.prompts, driven.PromptQuestionAnswer,
		driven.PlaceholderContext, stuff(chunks),
		driven.PlaceholderQuestion, query)
	if err != nil {
		return nil, err
	}
	draft, err := c.llm.Generate(ctx, qaPrompt, driven.GenerateOptions{})
	if err != nil {
		return nil, fmt.Errorf("answer question: %w", err)
	}
	logger.Debug("Draft answer: %d chars", len(draft))

	refinePrompt, err := render(c.prompts, driven.PromptRefine,
		driven.PlaceholderAnswer, strings.TrimSpace(draft))
	if err != nil {
		return nil, err
	}
	refined, err := c.llm.Generate(ctx, refinePrompt, driven.GenerateOptions{})
	if err != nil {
		return nil, fmt.Errorf("refine answer: %w", err)
	}

	return &domain.Answer{
		Text:     strings.TrimSpace(refined),
		Question: query,
		Context:  chunks,
		Mode:     domain.AskModeSingleTurn,
	}, nil
}

// stuff concatenates chunk contents verbatim.
func stuff(chunks []domain.Chunk) string {
	parts := make([]string, len(chunks))
	for i, c := range chunks {
		parts[i] = c.Content
	}
	return strings.Join(parts, contextSeparator)
}

// render loads a template and replaces each named placeholder with its
// value. pairs alternates placeholder and value. Substituted values are not
// scanned again, so text containing a placeholder name is inserted as is.
func render(prompts driven.PromptStore, name string, pairs ...string) (string, error) {
	tmpl, err := prompts.Load(name)
	if err != nil {
		return "", fmt.Errorf("load prompt %s: %w", name, err)
	}
	return strings.NewReplacer(pairs...).Replace(tmpl), nil
}
