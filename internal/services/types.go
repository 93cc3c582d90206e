package services

import (
	"context"
	"sync"

	"github.com/pgvector/pgvector-go"
	"github.com/sashabaranov/go-openai"

	"minbar/internal/store"
)

// ChatCompleter is the slice of the OpenAI-compatible client the structured
// callers need. go-openai's *openai.Client satisfies it.
type ChatCompleter interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// EmbeddingProvider is one backend capable of producing embeddings.
type EmbeddingProvider interface {
	Name() string
	ModelName() string
	Status() store.ProviderStatus
	GenerateEmbedding(ctx context.Context, text string) (pgvector.Vector, error)
	Dimension() int
}

// RetryStrategy decides how long to wait before the next attempt.
// A negative return means stop retrying.
type RetryStrategy interface {
	NextBackoff(attempt int) int64 // ms
}

// SimpleRetryStrategy provides basic exponential backoff capped at 30s.
type SimpleRetryStrategy struct {
	MaxAttempts int
	BaseDelayMs int64
}

func (s *SimpleRetryStrategy) NextBackoff(attempt int) int64 {
	if s.MaxAttempts <= 0 {
		return -1
	}
	if attempt >= s.MaxAttempts {
		return -1
	}
	backoff := s.BaseDelayMs * (1 << attempt)
	maxDelay := int64(30000)
	if backoff > maxDelay {
		backoff = maxDelay
	}
	return backoff
}

// FallbackEmbeddingService rotates through providers when one keeps failing.
// All providers must share a dimension, enforced by the constructor.
type FallbackEmbeddingService struct {
	Providers      []EmbeddingProvider
	ActiveProvider int
	RetryStrategy  RetryStrategy
	mu             sync.RWMutex
}

func (s *FallbackEmbeddingService) ModelName() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.Providers) == 0 || s.ActiveProvider < 0 || s.ActiveProvider >= len(s.Providers) {
		return ""
	}
	return s.Providers[s.ActiveProvider].ModelName()
}

func (s *FallbackEmbeddingService) Name() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.Providers) == 0 || s.ActiveProvider < 0 || s.ActiveProvider >= len(s.Providers) {
		return ""
	}
	return s.Providers[s.ActiveProvider].Name()
}

func (s *FallbackEmbeddingService) Status() store.ProviderStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.Providers) == 0 || s.ActiveProvider < 0 || s.ActiveProvider >= len(s.Providers) {
		return store.ProviderStatusDisabled
	}
	return s.Providers[s.ActiveProvider].Status()
}

var _ store.EmbeddingService = (*FallbackEmbeddingService)(nil)
