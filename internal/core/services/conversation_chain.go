package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
	"github.com/custodia-labs/docqa/internal/logger"
)

// ConversationalChain answers follow-up questions using conversation memory.
type ConversationalChain struct {
	retriever ContextRetriever
	llm       driven.LLMService
	prompts   driven.PromptStore
}

// NewConversationalChain creates a conversational chain.
func NewConversationalChain(retriever ContextRetriever, llm driven.LLMService, prompts driven.PromptStore) *ConversationalChain {
	return &ConversationalChain{retriever: retriever, llm: llm, prompts: prompts}
}

// Ask condenses query against the history, retrieves context for the
// standalone question and answers it. The exchange is recorded in memory
// only after the answer succeeds. It returns the updated transcript.
func (c *ConversationalChain) Ask(ctx context.Context, query string, memory *Memory) (*domain.Answer, []domain.Turn, error) {
	if c.llm == nil {
		return nil, nil, domain.ErrLLMUnavailable
	}

	logger.Section("Conversational Answer")

	history, err := memory.All(ctx)
	if err != nil {
		return nil, nil, err
	}

	question, err := c.condense(ctx, history, query)
	if err != nil {
		return nil, nil, err
	}
	logger.Debug("Standalone question: %q", question)

	chunks, err := c.retriever.Retrieve(ctx, question)
	if err != nil {
		return nil, nil, fmt.Errorf("retrieve context: %w", err)
	}

	system, err := render(c.prompts, driven.PromptConversationAnswer,
		driven.PlaceholderContext, stuff(chunks))
	if err != nil {
		return nil, nil, err
	}
	text, err := c.llm.Chat(ctx, []driven.ChatMessage{
		{Role: driven.ChatRoleSystem, Content: system},
		{Role: driven.ChatRoleUser, Content: question},
	}, driven.ChatOptions{})
	if err != nil {
		return nil, nil, fmt.Errorf("answer question: %w", err)
	}
	text = strings.TrimSpace(text)

	if err := memory.AppendExchange(ctx, query, text); err != nil {
		return nil, nil, err
	}
	transcript, err := memory.All(ctx)
	if err != nil {
		return nil, nil, err
	}

	return &domain.Answer{
		Text:     text,
		Question: question,
		Context:  chunks,
		Mode:     domain.AskModeConversational,
	}, transcript, nil
}

// condense rewrites query as a standalone question. With no history the
// query is used verbatim.
func (c *ConversationalChain) condense(ctx context.Context, history []domain.Turn, query string) (string, error) {
	if len(history) == 0 {
		return query, nil
	}

	prompt, err := render(c.prompts, driven.PromptCondenseQuestion,
		driven.PlaceholderChatHistory, RenderHistory(history),
		driven.PlaceholderQuestion, query)
	if err != nil {
		return "", err
	}
	out, err := c.llm.Generate(ctx, prompt, driven.GenerateOptions{})
	if err != nil {
		return "", fmt.Errorf("condense question: %w", err)
	}
	if out = strings.TrimSpace(out); out == "" {
		return query, nil
	}
	return out, nil
}

// RenderHistory formats turns as "Human: ..." and "Assistant: ..." lines.
func RenderHistory(turns []domain.Turn) string {
	var b strings.Builder
	for i, t := range turns {
		if i > 0 {
			b.WriteByte('\n')
		}
		switch t.Role {
		case domain.RoleUser:
			b.WriteString("Human: ")
		default:
			b.WriteString("Assistant: ")
		}
		b.WriteString(t.Content)
	}
	return b.String()
}
