// Package ai wraps the text-generation backend. Mistral's chat-completions
// API is OpenAI-compatible, so the live client reuses the go-openai SDK
// pointed at a custom base URL. With no API key configured the offline
// client is selected instead, which returns schema-valid synthetic payloads
// without any network call.
package ai

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/myrjola/lastbroadcast/internal/errors"
	"github.com/sashabaranov/go-openai"
)

// Client produces a raw completion for a prompt. Callers parse the result
// as JSON and fall back to scripted content when that fails.
type Client interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

const (
	MaxTokens   = 1000
	temperature = 0.8

	maxAttempts = 3
	backoffStep = 500 * time.Millisecond
)

// LiveClient talks to the real backend with bounded retries.
type LiveClient struct {
	client *openai.Client
	model  string
	logger *slog.Logger
}

// Options configure the backend connection.
type Options struct {
	APIKey  string
	BaseURL string
	Model   string
}

// NewClient returns a live client when an API key is configured and the
// offline client otherwise.
func NewClient(opts Options, logger *slog.Logger) Client {
	if opts.APIKey == "" {
		logger.Info("no API key configured, running in offline mode")
		return NewOfflineClient()
	}

	cfg := openai.DefaultConfig(opts.APIKey)
	if opts.BaseURL != "" {
		cfg.BaseURL = opts.BaseURL
	}
	return &LiveClient{
		client: openai.NewClientWithConfig(cfg),
		model:  opts.Model,
		logger: logger.With("source", "LiveClient"),
	}
}

// Complete requests a chat completion, retrying with linear backoff before
// giving up so callers can degrade to scripted content.
func (c *LiveClient) Complete(ctx context.Context, prompt string) (string, error) {
	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		completion, err := c.client.CreateChatCompletion(
			ctx,
			openai.ChatCompletionRequest{ //nolint:exhaustruct // this is better for readability
				Model:       c.model,
				MaxTokens:   MaxTokens,
				Temperature: temperature,
				Messages: []openai.ChatCompletionMessage{
					{Role: openai.ChatMessageRoleUser, Content: prompt},
				},
			},
		)
		if err == nil {
			if len(completion.Choices) == 0 {
				return "", errors.New("no choices in completion")
			}
			return completion.Choices[0].Message.Content, nil
		}
		lastErr = err
		c.logger.LogAttrs(ctx, slog.LevelWarn, "completion attempt failed",
			slog.Int("attempt", attempt), errors.SlogError(err))

		if attempt == maxAttempts {
			break
		}
		select {
		case <-ctx.Done():
			return "", errors.Wrap(ctx.Err(), "completion cancelled")
		case <-time.After(time.Duration(attempt) * backoffStep):
		}
	}
	return "", errors.Wrap(lastErr, "create chat completion")
}

// CleanJSON strips markdown code fences that models like to wrap JSON in.
func CleanJSON(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
