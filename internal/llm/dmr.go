package llm

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/masa1023/site-concierge/internal/dmr"
)

// Config selects the Docker Model Runner socket and chat model.
type Config struct {
	SocketPath string
	Model      string // e.g. "ai/gemma3"
}

// Client generates answers with a local Docker Model Runner model.
type Client struct {
	api   *dmr.Client
	model string
}

// New creates a Docker Model Runner generator.
func New(config Config) (*Client, error) {
	if config.Model == "" {
		return nil, fmt.Errorf("model is required")
	}
	api, err := dmr.New(config.SocketPath)
	if err != nil {
		return nil, err
	}
	return &Client{api: api, model: config.Model}, nil
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Temperature float32       `json:"temperature"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// Generate sends the prompt as a single user message.
func (c *Client) Generate(ctx context.Context, prompt string, opts Options) (string, error) {
	slog.Debug("generating completion", "model", c.model, "prompt_len", len(prompt))

	req := chatRequest{
		Model:       c.model,
		Messages:    []chatMessage{{Role: "user", Content: prompt}},
		MaxTokens:   opts.outputTokens(),
		Temperature: opts.Temperature,
	}
	var resp chatResponse
	if err := c.api.Post(ctx, "/chat/completions", req, &resp); err != nil {
		return "", fmt.Errorf("failed to generate completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", ErrNoCandidates
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
