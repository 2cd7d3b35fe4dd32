// Package ratelimit paces calls to an LLM service so bursts of questions stay
// within provider quotas.
package ratelimit

import (
	"context"
	"errors"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
	"github.com/custodia-labs/docqa/internal/logger"
)

// DefaultBackoff is how long calls pause after the provider reports it is unavailable.
const DefaultBackoff = 10 * time.Second

// Service wraps an LLMService with a token bucket. Generate and Chat wait for
// a token; Ping, ModelName and Close pass straight through.
type Service struct {
	inner   driven.LLMService
	limiter *rate.Limiter
	backoff time.Duration

	mu      sync.Mutex
	retryAt time.Time
}

var _ driven.LLMService = (*Service)(nil)

// Wrap returns inner paced at requestsPerMinute. A non-positive rate returns
// inner unchanged.
func Wrap(inner driven.LLMService, requestsPerMinute int) driven.LLMService {
	if requestsPerMinute <= 0 {
		return inner
	}
	return New(inner, rate.Limit(float64(requestsPerMinute)/60), 1, DefaultBackoff)
}

// New creates a paced service with an explicit limit, burst and backoff.
func New(inner driven.LLMService, limit rate.Limit, burst int, backoff time.Duration) *Service {
	if burst < 1 {
		burst = 1
	}
	return &Service{
		inner:   inner,
		limiter: rate.NewLimiter(limit, burst),
		backoff: backoff,
	}
}

// Wait blocks until a call may proceed, honouring any backoff in effect.
func (s *Service) Wait(ctx context.Context) error {
	s.mu.Lock()
	retryAt := s.retryAt
	s.mu.Unlock()

	if time.Now().Before(retryAt) {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Until(retryAt)):
		}
	}
	return s.limiter.Wait(ctx)
}

func (s *Service) record(err error) {
	if err == nil || !errors.Is(err, domain.ErrLLMUnavailable) || s.backoff <= 0 {
		return
	}
	s.mu.Lock()
	s.retryAt = time.Now().Add(s.backoff)
	s.mu.Unlock()
	logger.Debug("llm unavailable, pausing calls for %s", s.backoff)
}

// Generate waits for a token then delegates.
func (s *Service) Generate(ctx context.Context, prompt string, opts driven.GenerateOptions) (string, error) {
	if err := s.Wait(ctx); err != nil {
		return "", err
	}
	out, err := s.inner.Generate(ctx, prompt, opts)
	s.record(err)
	return out, err
}

// Chat waits for a token then delegates.
func (s *Service) Chat(ctx context.Context, messages []driven.ChatMessage, opts driven.ChatOptions) (string, error) {
	if err := s.Wait(ctx); err != nil {
		return "", err
	}
	out, err := s.inner.Chat(ctx, messages, opts)
	s.record(err)
	return out, err
}

// ModelName returns the wrapped model name.
func (s *Service) ModelName() string { return s.inner.ModelName() }

// Ping checks the wrapped service without consuming a token.
func (s *Service) Ping(ctx context.Context) error { return s.inner.Ping(ctx) }

// Close closes the wrapped service.
func (s *Service) Close() error { return s.inner.Close() }
