package llm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// DefaultGeminiModel is the hosted model used when none is configured.
const DefaultGeminiModel = "gemini-2.0-flash"

var (
	// ErrNoCandidates is returned when the model answers with no content.
	ErrNoCandidates = errors.New("no candidates in response")
)

// GeminiConfig holds Gemini generation configuration.
type GeminiConfig struct {
	APIKey string
	Model  string
	TopK   int32
	TopP   float32
}

// Gemini generates text with the Gemini API.
type Gemini struct {
	client *genai.Client
	config GeminiConfig
}

// NewGemini creates a Gemini generation client.
func NewGemini(ctx context.Context, config GeminiConfig) (*Gemini, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("api key is required")
	}
	if config.Model == "" {
		config.Model = DefaultGeminiModel
	}
	if config.TopK == 0 {
		config.TopK = 40
	}
	if config.TopP == 0 {
		config.TopP = 0.95
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(config.APIKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	return &Gemini{client: client, config: config}, nil
}

// Generate sends prompt as a single user turn.
func (g *Gemini) Generate(ctx context.Context, prompt string, opts Options) (string, error) {
	model := g.model(opts)
	slog.Debug("generating completion", "model", g.config.Model, "prompt_len", len(prompt))

	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("failed to generate content: %w", err)
	}
	return responseText(resp)
}

// Close releases the underlying client.
func (g *Gemini) Close() error {
	return g.client.Close()
}

func (g *Gemini) model(opts Options) *genai.GenerativeModel {
	model := g.client.GenerativeModel(g.config.Model)
	model.SetTemperature(opts.Temperature)
	model.SetTopK(g.config.TopK)
	model.SetTopP(g.config.TopP)
	model.SetMaxOutputTokens(int32(opts.outputTokens()))
	model.SafetySettings = safetySettings()
	return model
}

func safetySettings() []*genai.SafetySetting {
	return []*genai.SafetySetting{
		{Category: genai.HarmCategoryHarassment, Threshold: genai.HarmBlockMediumAndAbove},
		{Category: genai.HarmCategoryHateSpeech, Threshold: genai.HarmBlockMediumAndAbove},
	}
}

// responseText returns the text parts of the first candidate.
func responseText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 {
		return "", ErrNoCandidates
	}

	cand := resp.Candidates[0]
	if cand.Content == nil {
		return "", fmt.Errorf("%w: finish reason %s", ErrNoCandidates, cand.FinishReason)
	}

	var b strings.Builder
	for _, part := range cand.Content.Parts {
		if text, ok := part.(genai.Text); ok {
			b.WriteString(string(text))
		}
	}
	if b.Len() == 0 {
		return "", fmt.Errorf("%w: no text parts", ErrNoCandidates)
	}
	return b.String(), nil
}
