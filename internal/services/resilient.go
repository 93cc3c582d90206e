package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
	log "github.com/sirupsen/logrus"

	"minbar/internal/models"
)

// StructuredCaller sends a prompt pair to a chat model and parses the reply
// as JSON into a caller-supplied struct, retrying with backoff when the model
// returns malformed output. After retry exhaustion it reports
// models.ErrRemoteService.
type StructuredCaller struct {
	client ChatCompleter
	model  string
	retry  RetryStrategy
}

func NewStructuredCaller(client ChatCompleter, model string, retry RetryStrategy) *StructuredCaller {
	if retry == nil {
		retry = &SimpleRetryStrategy{MaxAttempts: 3, BaseDelayMs: 200}
	}
	return &StructuredCaller{client: client, model: model, retry: retry}
}

// CompleteJSON runs one chat completion and unmarshals the reply into out.
// Transport errors and unparseable bodies both count as attempts.
func (c *StructuredCaller) CompleteJSON(ctx context.Context, systemPrompt, userPrompt string, out any) error {
	if c.client == nil {
		return fmt.Errorf("structured caller is not initialized with a chat client")
	}

	var lastErr error
	for attempt := 0; ; attempt++ {
		err := c.completeOnce(ctx, systemPrompt, userPrompt, out)
		if err == nil {
			return nil
		}
		if ctx.Err() != nil {
			return fmt.Errorf("context cancelled during structured completion: %w", ctx.Err())
		}
		lastErr = err

		backoffMs := c.retry.NextBackoff(attempt)
		if backoffMs < 0 {
			log.WithError(lastErr).WithField("model", c.model).
				Error("Structured completion failed after retries")
			return fmt.Errorf("%w: %v", models.ErrRemoteService, lastErr)
		}
		log.WithError(err).WithFields(log.Fields{"model": c.model, "attempt": attempt + 1}).
			Warn("Structured completion attempt failed, retrying")

		select {
		case <-time.After(time.Duration(backoffMs) * time.Millisecond):
		case <-ctx.Done():
			return fmt.Errorf("context cancelled while waiting to retry: %w", ctx.Err())
		}
	}
}

func (c *StructuredCaller) completeOnce(ctx context.Context, systemPrompt, userPrompt string, out any) error {
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: userPrompt},
		},
	})
	if err != nil {
		return fmt.Errorf("chat completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return fmt.Errorf("no choices returned from model")
	}

	content := stripCodeFence(resp.Choices[0].Message.Content)
	if content == "" {
		return fmt.Errorf("model returned empty content")
	}
	if err := json.Unmarshal([]byte(content), out); err != nil {
		return fmt.Errorf("failed to parse model response as JSON: %w", err)
	}
	return nil
}

// stripCodeFence tolerates models that wrap JSON in markdown fences despite
// being told not to.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		s = strings.TrimSuffix(s, "```")
		s = strings.TrimSpace(s)
	}
	return s
}
