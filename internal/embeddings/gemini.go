package embeddings

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// DefaultGeminiModel is the hosted embedding model used when none is configured.
const DefaultGeminiModel = "text-embedding-004"

// ErrEmptyEmbedding is returned when the API answers without a vector.
var ErrEmptyEmbedding = errors.New("empty embedding")

// GeminiConfig holds Gemini embeddings configuration.
type GeminiConfig struct {
	APIKey string
	Model  string
}

// Gemini generates embeddings with the Gemini API.
type Gemini struct {
	client *genai.Client
	model  *genai.EmbeddingModel
	name   string
}

// NewGemini creates a Gemini embeddings client.
func NewGemini(ctx context.Context, config GeminiConfig) (*Gemini, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("api key is required")
	}
	if config.Model == "" {
		config.Model = DefaultGeminiModel
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(config.APIKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	return &Gemini{
		client: client,
		model:  client.EmbeddingModel(config.Model),
		name:   config.Model,
	}, nil
}

// Embed generates an embedding vector for the given text.
func (g *Gemini) Embed(ctx context.Context, text string) ([]float32, error) {
	slog.Debug("generating embedding", "model", g.name, "len", len(text))

	resp, err := g.model.EmbedContent(ctx, genai.Text(text))
	if err != nil {
		return nil, fmt.Errorf("failed to embed content: %w", err)
	}
	return embeddingValues(resp)
}

// Dimensions returns the vector size of the configured model.
func (g *Gemini) Dimensions() int {
	return Dimensions(g.name)
}

// Close releases the underlying client.
func (g *Gemini) Close() error {
	return g.client.Close()
}

func embeddingValues(resp *genai.EmbedContentResponse) ([]float32, error) {
	if resp == nil || resp.Embedding == nil || len(resp.Embedding.Values) == 0 {
		return nil, ErrEmptyEmbedding
	}

	values := resp.Embedding.Values
	result := make([]float32, len(values))
	for i, v := range values {
		result[i] = float32(v)
	}
	return result, nil
}
