package cmd

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/masa1023/site-concierge/internal/chat"
	"github.com/masa1023/site-concierge/internal/chromemstore"
	"github.com/masa1023/site-concierge/internal/config"
	"github.com/masa1023/site-concierge/internal/elasticsearch"
	"github.com/masa1023/site-concierge/internal/embeddings"
	"github.com/masa1023/site-concierge/internal/ingestion"
	"github.com/masa1023/site-concierge/internal/llm"
	"github.com/masa1023/site-concierge/internal/pipeline"
	"github.com/masa1023/site-concierge/internal/processor"
	"github.com/masa1023/site-concierge/internal/scraper"
	"github.com/masa1023/site-concierge/internal/storage"
	"github.com/masa1023/site-concierge/internal/vectorstore"
)

// app holds the wired components for one command invocation.
type app struct {
	content   storage.ContentStore
	store     vectorstore.Store
	retriever *vectorstore.Retriever
	generator llm.Generator
	engine    *ingestion.Engine
	assistant *chat.Assistant
	closers   []func() error
}

// newApp builds every component from cfg. Hosted providers without a key
// are replaced by stand-ins that fail with a missing-configuration error, so
// the commands that don't need them keep working.
func newApp(ctx context.Context, cfg config.Config) (*app, error) {
	a := &app{}

	content, err := newContentStore(cfg.Content)
	if err != nil {
		return nil, err
	}
	a.content = content

	embedder, err := a.newEmbedder(ctx, cfg)
	if err != nil {
		return nil, err
	}

	store, err := newVectorStore(cfg.VectorStore, embedder)
	if err != nil {
		return nil, err
	}
	a.store = store

	generator, err := a.newGenerator(ctx, cfg)
	if err != nil {
		return nil, err
	}
	a.generator = generator

	a.retriever = vectorstore.NewRetriever(store, cfg.VectorStore.Collection)

	a.engine = ingestion.New(
		scraper.New(scraper.Config{
			Delay:     cfg.Scraper.Delay,
			UserAgent: cfg.Scraper.UserAgent,
			Timeout:   cfg.Scraper.Timeout,
			Format:    processor.Format(cfg.Scraper.Format),
		}),
		content,
		store,
		ingestion.Config{
			Collection:    cfg.VectorStore.Collection,
			Vectorizer:    cfg.Embeddings.Provider + "/" + cfg.Embeddings.Model,
			MaxChunkSize:  cfg.Chunker.MaxChunkSize,
			MissingConfig: cfg.Missing,
		},
	)

	a.assistant = chat.NewAssistant(a.retriever, generator, chatConfig(cfg))
	return a, nil
}

// Close releases provider clients.
func (a *app) Close() {
	for _, closeFn := range a.closers {
		if err := closeFn(); err != nil {
			slog.Warn("failed to close client", "error", err)
		}
	}
}

func chatConfig(cfg config.Config) chat.Config {
	return chat.Config{
		AssistantName: cfg.Chat.AssistantName,
		Search: vectorstore.SearchOptions{
			Limit:    cfg.Chat.Limit,
			Distance: cfg.Chat.Distance,
		},
		Generation: llm.Options{
			Temperature:     cfg.LLM.Temperature,
			MaxOutputTokens: cfg.LLM.MaxOutputTokens,
		},
		MaxPromptTokens: cfg.Chat.MaxPromptTokens,
	}
}

func newContentStore(cfg config.Content) (storage.ContentStore, error) {
	switch cfg.Backend {
	case config.BackendFile, "":
		return storage.NewFile(nil, cfg.Path), nil
	case config.BackendS3:
		s3, err := storage.NewS3(storage.Config{
			Endpoint:        cfg.S3.Endpoint,
			Bucket:          cfg.S3.Bucket,
			Key:             cfg.S3.Key,
			AccessKeyID:     cfg.S3.AccessKeyID,
			SecretAccessKey: cfg.S3.SecretAccessKey,
			UseSSL:          cfg.S3.UseSSL,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create storage client: %w", err)
		}
		return s3, nil
	default:
		return nil, fmt.Errorf("unknown content backend %q", cfg.Backend)
	}
}

func (a *app) newEmbedder(ctx context.Context, cfg config.Config) (embeddings.Embedder, error) {
	switch cfg.Embeddings.Provider {
	case config.ProviderGemini:
		if cfg.Google.APIKey == "" {
			return missingEmbedder{dims: embeddings.Dimensions(cfg.Embeddings.Model)}, nil
		}
		g, err := embeddings.NewGemini(ctx, embeddings.GeminiConfig{
			APIKey: cfg.Google.APIKey,
			Model:  cfg.Embeddings.Model,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create embeddings client: %w", err)
		}
		a.closers = append(a.closers, g.Close)
		return g, nil
	case config.ProviderDMR:
		c, err := embeddings.New(embeddings.Config{
			SocketPath: cfg.Embeddings.SocketPath,
			Model:      cfg.Embeddings.Model,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create embeddings client: %w", err)
		}
		return c, nil
	default:
		return nil, fmt.Errorf("unknown embeddings provider %q", cfg.Embeddings.Provider)
	}
}

func newVectorStore(cfg config.VectorStore, embedder embeddings.Embedder) (vectorstore.Store, error) {
	switch cfg.Type {
	case config.StoreElasticsearch:
		es, err := elasticsearch.New(elasticsearch.Config{
			Addresses: cfg.Elasticsearch.Addresses,
			Username:  cfg.Elasticsearch.Username,
			Password:  cfg.Elasticsearch.Password,
			APIKey:    cfg.Elasticsearch.APIKey,
		}, embedder)
		if err != nil {
			return nil, fmt.Errorf("failed to create ES client: %w", err)
		}
		return es, nil
	case config.StoreChromem:
		store, err := chromemstore.New(chromemstore.Config{
			Path:     cfg.Chromem.Path,
			Compress: cfg.Chromem.Compress,
		}, embedder)
		if err != nil {
			return nil, fmt.Errorf("failed to open vector database: %w", err)
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unknown vector store type %q", cfg.Type)
	}
}

func (a *app) newGenerator(ctx context.Context, cfg config.Config) (llm.Generator, error) {
	switch cfg.LLM.Provider {
	case config.ProviderGemini:
		if cfg.Google.APIKey == "" {
			return missingGenerator{}, nil
		}
		g, err := llm.NewGemini(ctx, llm.GeminiConfig{
			APIKey: cfg.Google.APIKey,
			Model:  cfg.LLM.Model,
			TopK:   cfg.LLM.TopK,
			TopP:   cfg.LLM.TopP,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create LLM client: %w", err)
		}
		a.closers = append(a.closers, g.Close)
		return g, nil
	case config.ProviderDMR:
		c, err := llm.New(llm.Config{
			SocketPath: cfg.LLM.SocketPath,
			Model:      cfg.LLM.Model,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create LLM client: %w", err)
		}
		return c, nil
	default:
		return nil, fmt.Errorf("unknown LLM provider %q", cfg.LLM.Provider)
	}
}

func errMissingKey() error {
	return &pipeline.ConfigMissingError{Missing: []string{config.EnvGoogleAPIKey}}
}

// missingEmbedder stands in for the hosted embedder when no key is set.
type missingEmbedder struct {
	dims int
}

func (missingEmbedder) Embed(context.Context, string) ([]float32, error) {
	return nil, errMissingKey()
}

func (m missingEmbedder) Dimensions() int { return m.dims }

// missingGenerator stands in for the hosted generator when no key is set.
type missingGenerator struct{}

func (missingGenerator) Generate(context.Context, string, llm.Options) (string, error) {
	return "", errMissingKey()
}
