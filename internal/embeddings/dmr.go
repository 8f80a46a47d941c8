// Package embeddings turns text into vectors for similarity search.
package embeddings

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/masa1023/site-concierge/internal/dmr"
)

// Embedder produces a vector for a piece of text.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	Dimensions() int
}

// Config selects the Docker Model Runner socket and embedding model.
type Config struct {
	SocketPath string
	Model      string // e.g. "ai/embeddinggemma"
}

// Client embeds text with a local Docker Model Runner model.
type Client struct {
	api   *dmr.Client
	model string
}

// New creates a Docker Model Runner embedder.
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

type embeddingRequest struct {
	Model string `json:"model"`
	Input string `json:"input"`
}

type embeddingResponse struct {
	Data []struct {
		Embedding []float32 `json:"embedding"`
	} `json:"data"`
}

// Embed returns the vector for text.
func (c *Client) Embed(ctx context.Context, text string) ([]float32, error) {
	slog.Debug("generating embedding", "model", c.model, "len", len(text))

	var resp embeddingResponse
	if err := c.api.Post(ctx, "/embeddings", embeddingRequest{Model: c.model, Input: text}, &resp); err != nil {
		return nil, fmt.Errorf("failed to embed text: %w", err)
	}
	if len(resp.Data) == 0 || len(resp.Data[0].Embedding) == 0 {
		return nil, ErrEmptyEmbedding
	}
	return resp.Data[0].Embedding, nil
}

// Dimensions returns the vector size of the configured model.
func (c *Client) Dimensions() int {
	return Dimensions(c.model)
}

var knownDimensions = map[string]int{
	"ai/embeddinggemma":                768,
	"ai/snowflake-arctic-embed":        1024,
	"ai/snowflake-arctic-embed-m-v1.5": 768,
	"ai/nomic-embed-text-v1.5":         768,
	"ai/qwen3-embedding":               2560,
	"text-embedding-004":               768,
	"models/text-embedding-004":        768,
}

// Dimensions returns the vector size for a known model, 768 otherwise.
func Dimensions(model string) int {
	if d, ok := knownDimensions[model]; ok {
		return d
	}
	return 768
}
