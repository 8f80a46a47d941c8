// Package chat answers visitor questions from the indexed site content and
// keeps the widget's conversation transcript.
package chat

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/masa1023/site-concierge/internal/llm"
	"github.com/masa1023/site-concierge/internal/pipeline"
	"github.com/masa1023/site-concierge/internal/prompt"
	"github.com/masa1023/site-concierge/internal/vectorstore"
	"github.com/masa1023/site-concierge/pkg/models"
)

// DefaultMaxPromptTokens is the prompt size above which a warning is logged.
const DefaultMaxPromptTokens = 30000

// ErrEmptyQuestion is returned for a blank question.
var ErrEmptyQuestion = errors.New("question is empty")

// Searcher retrieves chunks relevant to a query.
type Searcher interface {
	Search(ctx context.Context, query string, opts vectorstore.SearchOptions) ([]models.SearchResult, error)
}

// Responder turns a question into answer text.
type Responder interface {
	Respond(ctx context.Context, question string) (string, error)
}

// Config is built once at startup and shared by the chat components.
type Config struct {
	AssistantName   string
	Search          vectorstore.SearchOptions
	Generation      llm.Options
	MaxPromptTokens int
}

// Reply is a generated answer together with the chunks it was grounded on.
type Reply struct {
	Answer  string
	Sources []models.SearchResult
	Tokens  int
}

// Assistant runs retrieve, assemble and generate for one question.
type Assistant struct {
	searcher  Searcher
	generator llm.Generator
	assembler *prompt.Assembler
	counter   TokenCounter
	config    Config
}

// Option configures an Assistant.
type Option func(*Assistant)

// WithTokenCounter replaces the prompt token counter.
func WithTokenCounter(counter TokenCounter) Option {
	return func(a *Assistant) {
		a.counter = counter
	}
}

// NewAssistant creates an Assistant.
func NewAssistant(searcher Searcher, generator llm.Generator, config Config, opts ...Option) *Assistant {
	if config.MaxPromptTokens <= 0 {
		config.MaxPromptTokens = DefaultMaxPromptTokens
	}
	a := &Assistant{
		searcher:  searcher,
		generator: generator,
		assembler: prompt.New(config.AssistantName),
		counter:   DefaultTokenCounter(),
		config:    config,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Ask answers question. Retrieval failures match pipeline.ErrRetrievalFailed
// and generation failures match pipeline.ErrGenerationFailed.
func (a *Assistant) Ask(ctx context.Context, question string) (*Reply, error) {
	if strings.TrimSpace(question) == "" {
		return nil, ErrEmptyQuestion
	}

	results, err := a.searcher.Search(ctx, question, a.config.Search)
	if err != nil {
		return nil, pipeline.Wrap(pipeline.ErrRetrievalFailed, err)
	}

	text := a.assembler.Assemble(question, vectorstore.Texts(results))

	tokens := a.counter.Count(text)
	if tokens > a.config.MaxPromptTokens {
		slog.Warn("prompt exceeds token budget",
			"tokens", tokens,
			"max_tokens", a.config.MaxPromptTokens,
			"chunks", len(results))
	}

	answer, err := a.generator.Generate(ctx, text, a.config.Generation)
	if err != nil {
		return nil, pipeline.Wrap(pipeline.ErrGenerationFailed, err)
	}

	slog.Debug("question answered", "sources", len(results), "prompt_tokens", tokens)
	return &Reply{Answer: answer, Sources: results, Tokens: tokens}, nil
}

// Respond returns only the answer text.
func (a *Assistant) Respond(ctx context.Context, question string) (string, error) {
	reply, err := a.Ask(ctx, question)
	if err != nil {
		return "", err
	}
	return reply.Answer, nil
}
