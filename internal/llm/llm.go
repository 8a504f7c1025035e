// Package llm talks to the external text-generation service.
package llm

import (
	"context"
	"fmt"
	"os"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/brandbrief/brandbrief/internal/config"
)

// Generator is a stateless narrative generation call. One attempt, no retry;
// any failure is terminal for the run's narrative.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Client calls an OpenAI-compatible chat completion endpoint with a fixed
// decoding temperature and output cap.
type Client struct {
	client      openai.Client
	model       string
	temperature float64
	maxTokens   int
}

// NewClient builds a generator client from config. The API key is read from
// the environment variable named by config.
func NewClient(cfg config.Generator) (*Client, error) {
	apiKey := os.Getenv(cfg.APIKeyEnv)
	if apiKey == "" {
		return nil, fmt.Errorf("generator API key not set (expected in $%s)", cfg.APIKeyEnv)
	}

	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	return &Client{
		client:      openai.NewClient(opts...),
		model:       cfg.Model,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
	}, nil
}

// Generate sends the prompt and returns the raw response text.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(c.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
		Temperature: openai.Float(c.temperature),
		MaxTokens:   openai.Int(int64(c.maxTokens)),
	})
	if err != nil {
		return "", fmt.Errorf("generation request: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no choices in generation response")
	}
	return resp.Choices[0].Message.Content, nil
}
