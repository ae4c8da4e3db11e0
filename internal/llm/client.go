// Package llm wraps an OpenAI-compatible chat completion endpoint behind
// the single-method Complete boundary the rest of the code depends on.
package llm

import (
	"context"
	"fmt"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

// Client is a thin completion client. The base URL makes it work against
// any OpenAI-compatible provider (Groq by default).
type Client struct {
	model       llms.Model
	temperature float64
}

// NewClient creates a completion client for the given endpoint and model
func NewClient(baseURL, model, apiKey string) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("missing API key")
	}

	opts := []openai.Option{
		openai.WithModel(model),
		openai.WithToken(apiKey),
	}
	if baseURL != "" {
		opts = append(opts, openai.WithBaseURL(baseURL))
	}

	m, err := openai.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create completion client: %w", err)
	}

	return &Client{model: m, temperature: 0.2}, nil
}

// Complete sends a single-prompt completion request and returns the raw
// response text.
func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	out, err := llms.GenerateFromSinglePrompt(ctx, c.model, prompt,
		llms.WithTemperature(c.temperature))
	if err != nil {
		return "", fmt.Errorf("completion request failed: %w", err)
	}
	return out, nil
}
