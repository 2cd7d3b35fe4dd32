// Package gemini provides an LLM service adapter for Google Gemini built on langchaingo.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/googleai"
	"google.golang.org/api/googleapi"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
)

// Ensure LLMService implements the interface.
var _ driven.LLMService = (*LLMService)(nil)

// DefaultModel is used when no model is configured.
const DefaultModel = "gemini-1.5-flash"

// Config holds configuration for the Gemini LLM service.
type Config struct {
	// APIKey is the Google AI API key (required).
	APIKey string

	// Model is the Gemini model name (default: gemini-1.5-flash).
	Model string
}

// generator is the part of llms.Model the service calls.
type generator interface {
	GenerateContent(ctx context.Context, messages []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error)
}

// LLMService provides LLM operations using the Gemini API.
type LLMService struct {
	model generator
	name  string
}

// NewLLMService creates a Gemini client. The client is created eagerly so a
// bad key surfaces at startup rather than on the first question.
func NewLLMService(ctx context.Context, cfg Config) (*LLMService, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini: %w: API key is required", domain.ErrLLMUnavailable)
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}

	model, err := googleai.New(ctx,
		googleai.WithAPIKey(cfg.APIKey),
		googleai.WithDefaultModel(cfg.Model),
	)
	if err != nil {
		return nil, fmt.Errorf("gemini: %w: %w", domain.ErrLLMUnavailable, err)
	}
	return newWithModel(model, cfg.Model), nil
}

func newWithModel(model generator, name string) *LLMService {
	return &LLMService{model: model, name: name}
}

// Generate produces text completion from a prompt.
func (s *LLMService) Generate(ctx context.Context, prompt string, opts driven.GenerateOptions) (string, error) {
	messages := []llms.MessageContent{llms.TextParts(llms.ChatMessageTypeHuman, prompt)}
	callOpts := callOptions(opts.MaxTokens, opts.Temperature)
	if len(opts.StopWords) > 0 {
		callOpts = append(callOpts, llms.WithStopWords(opts.StopWords))
	}
	return s.generate(ctx, messages, callOpts)
}

// Chat conducts a multi-turn conversation.
func (s *LLMService) Chat(ctx context.Context, messages []driven.ChatMessage, opts driven.ChatOptions) (string, error) {
	content := make([]llms.MessageContent, 0, len(messages))
	for _, msg := range messages {
		content = append(content, llms.TextParts(messageType(msg.Role), msg.Content))
	}
	return s.generate(ctx, content, callOptions(opts.MaxTokens, opts.Temperature))
}

func (s *LLMService) generate(ctx context.Context, messages []llms.MessageContent, opts []llms.CallOption) (string, error) {
	resp, err := s.model.GenerateContent(ctx, messages, opts...)
	if err != nil {
		return "", classify(err)
	}
	if resp == nil || len(resp.Choices) == 0 {
		return "", errors.New("gemini: no response choices returned")
	}

	var b strings.Builder
	for _, choice := range resp.Choices {
		b.WriteString(choice.Content)
	}
	return b.String(), nil
}

func messageType(role string) llms.ChatMessageType {
	switch role {
	case driven.ChatRoleSystem:
		return llms.ChatMessageTypeSystem
	case driven.ChatRoleAssistant:
		return llms.ChatMessageTypeAI
	default:
		return llms.ChatMessageTypeHuman
	}
}

func callOptions(maxTokens int, temperature float64) []llms.CallOption {
	var opts []llms.CallOption
	if maxTokens > 0 {
		opts = append(opts, llms.WithMaxTokens(maxTokens))
	}
	if temperature > 0 {
		opts = append(opts, llms.WithTemperature(temperature))
	}
	return opts
}

// classify maps provider failures to domain errors. Quota, auth and
// transport failures mean the LLM is unavailable; anything else is returned
// wrapped as-is.
func classify(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("gemini: %w", err)
	}

	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		switch gerr.Code {
		case http.StatusUnauthorized, http.StatusForbidden, http.StatusTooManyRequests,
			http.StatusServiceUnavailable, http.StatusBadGateway, http.StatusGatewayTimeout:
			return fmt.Errorf("gemini: %w: %w", domain.ErrLLMUnavailable, err)
		}
		return fmt.Errorf("gemini: %w", err)
	}

	if st, ok := status.FromError(err); ok {
		switch st.Code() {
		case codes.Unauthenticated, codes.PermissionDenied, codes.ResourceExhausted, codes.Unavailable:
			return fmt.Errorf("gemini: %w: %w", domain.ErrLLMUnavailable, err)
		}
	}
	return fmt.Errorf("gemini: %w", err)
}

// ModelName returns the configured model.
func (s *LLMService) ModelName() string {
	return s.name
}

// Ping issues a one-token generation. The API has no cheaper authenticated call.
func (s *LLMService) Ping(ctx context.Context) error {
	_, err := s.generate(ctx,
		[]llms.MessageContent{llms.TextParts(llms.ChatMessageTypeHuman, "ping")},
		[]llms.CallOption{llms.WithMaxTokens(1)})
	if err != nil && !errors.Is(err, domain.ErrLLMUnavailable) {
		return fmt.Errorf("%w: %w", domain.ErrLLMUnavailable, err)
	}
	return err
}

// Close releases the underlying client when it holds one.
func (s *LLMService) Close() error {
	if c, ok := s.model.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
