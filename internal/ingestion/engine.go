// Package ingestion runs the admin paths: scraping a page into the content
// store, and rebuilding the vector collection from the stored content.
package ingestion

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
	"unicode/utf8"

	"github.com/masa1023/site-concierge/internal/chunker"
	"github.com/masa1023/site-concierge/internal/events"
	"github.com/masa1023/site-concierge/internal/pipeline"
	"github.com/masa1023/site-concierge/internal/storage"
	"github.com/masa1023/site-concierge/internal/vectorstore"
	"github.com/masa1023/site-concierge/pkg/models"
)

// Scraper fetches a page's text.
type Scraper interface {
	Scrape(ctx context.Context, url string) (*models.Page, error)
}

// Config holds ingestion engine configuration.
type Config struct {
	Collection   string
	Vectorizer   string
	MaxChunkSize int

	// MissingConfig lists required settings that are unset. Indexing refuses
	// to start while it returns anything.
	MissingConfig func() []string
}

// Engine scrapes pages into the content store and indexes stored content.
type Engine struct {
	scraper Scraper
	content storage.ContentStore
	store   vectorstore.Store
	config  Config
}

// New creates a new ingestion engine.
func New(scraper Scraper, content storage.ContentStore, store vectorstore.Store, config Config) *Engine {
	if config.Collection == "" {
		config.Collection = vectorstore.DefaultCollection
	}
	if config.MaxChunkSize <= 0 {
		config.MaxChunkSize = chunker.DefaultMaxChunkSize
	}
	return &Engine{
		scraper: scraper,
		content: content,
		store:   store,
		config:  config,
	}
}

type scrapeState struct {
	url  string
	page *models.Page
}

// Scrape fetches url and replaces the stored content with its text.
// Failures match pipeline.ErrScrapeFailed.
func (e *Engine) Scrape(ctx context.Context, url string) (*events.ScrapeCompleteEvent, error) {
	state := &scrapeState{url: url}

	err := pipeline.Run(ctx, state,
		pipeline.Step[scrapeState]{Name: "fetch", Run: e.fetch},
		pipeline.Step[scrapeState]{Name: "store", Run: e.storePage},
	)
	if err != nil {
		slog.Error("scrape failed", "url", url, "error", err)
		return nil, pipeline.Wrap(pipeline.ErrScrapeFailed, err)
	}

	event := &events.ScrapeCompleteEvent{
		SourceURL:     state.page.URL,
		Title:         state.page.Title,
		ContentLength: utf8.RuneCountInString(state.page.Content),
		Timestamp:     time.Now(),
	}
	slog.Info("content scraped", "url", event.SourceURL, "length", event.ContentLength)
	return event, nil
}

func (e *Engine) fetch(ctx context.Context, s *scrapeState) error {
	page, err := e.scraper.Scrape(ctx, s.url)
	if err != nil {
		return err
	}
	s.page = page
	return nil
}

func (e *Engine) storePage(ctx context.Context, s *scrapeState) error {
	return e.content.Write(ctx, *s.page)
}

type indexState struct {
	content string
	chunks  []models.Chunk
	result  vectorstore.InsertResult
}

// Index chunks the stored content and rebuilds the collection from it.
//
// The collection is dropped and then recreated as two separate calls. The
// pair is not atomic: a concurrent query between them fails, and a crash
// between them leaves no collection until the next successful run.
func (e *Engine) Index(ctx context.Context) (*events.IndexCompleteEvent, error) {
	start := time.Now()
	state := &indexState{}

	err := pipeline.Run(ctx, state,
		pipeline.Step[indexState]{Name: "check-config", Run: e.checkConfig},
		pipeline.Step[indexState]{Name: "read", Run: e.readContent},
		pipeline.Step[indexState]{Name: "chunk", Run: e.chunk},
		pipeline.Step[indexState]{Name: "drop-collection", Run: e.dropCollection},
		pipeline.Step[indexState]{Name: "create-collection", Run: e.createCollection},
		pipeline.Step[indexState]{Name: "insert", Run: e.insert},
	)
	if err != nil {
		slog.Error("indexing failed", "collection", e.config.Collection, "error", err)
		return nil, indexError(err)
	}

	event := &events.IndexCompleteEvent{
		Collection:  e.config.Collection,
		ChunksCount: len(state.chunks),
		Inserted:    state.result.Successful,
		Failed:      state.result.Failed(),
		Duration:    time.Since(start),
	}
	slog.Info("indexing complete",
		"collection", event.Collection,
		"chunks", event.ChunksCount,
		"failed", event.Failed,
		"duration", event.Duration)
	return event, nil
}

// indexError keeps the precondition kinds and tags everything else as an
// index failure.
func indexError(err error) error {
	for _, kind := range []error{pipeline.ErrConfigMissing, pipeline.ErrContentMissing, pipeline.ErrEmptyChunkSet} {
		if errors.Is(err, kind) {
			return err
		}
	}
	return pipeline.Wrap(pipeline.ErrIndexFailed, err)
}

func (e *Engine) checkConfig(_ context.Context, _ *indexState) error {
	if e.config.MissingConfig == nil {
		return nil
	}
	if missing := e.config.MissingConfig(); len(missing) > 0 {
		return &pipeline.ConfigMissingError{Missing: missing}
	}
	return nil
}

func (e *Engine) readContent(ctx context.Context, s *indexState) error {
	content, err := e.content.Read(ctx)
	if err != nil {
		return err
	}
	s.content = content
	return nil
}

func (e *Engine) chunk(_ context.Context, s *indexState) error {
	s.chunks = chunker.Chunks(s.content, e.config.MaxChunkSize)
	if len(s.chunks) == 0 {
		return fmt.Errorf("%w: content of %d characters", pipeline.ErrEmptyChunkSet, utf8.RuneCountInString(s.content))
	}
	slog.Debug("content chunked", "chunks", len(s.chunks), "max_chunk_size", e.config.MaxChunkSize)
	return nil
}

// dropCollection is the first half of the non-atomic replace. A failed
// existence check is logged and creation is attempted anyway.
func (e *Engine) dropCollection(ctx context.Context, _ *indexState) error {
	exists, err := e.store.CollectionExists(ctx, e.config.Collection)
	if err != nil {
		slog.Warn("collection check failed, proceeding with creation", "collection", e.config.Collection, "error", err)
		return nil
	}
	if !exists {
		return nil
	}

	slog.Info("deleting existing collection", "collection", e.config.Collection)
	if err := e.store.DeleteCollection(ctx, e.config.Collection); err != nil {
		return fmt.Errorf("failed to delete collection: %w", err)
	}
	return nil
}

func (e *Engine) createCollection(ctx context.Context, _ *indexState) error {
	schema := vectorstore.ChunkSchema(e.config.Collection, e.config.Vectorizer)
	if err := e.store.CreateCollection(ctx, schema); err != nil {
		return fmt.Errorf("failed to create collection: %w", err)
	}
	return nil
}

func (e *Engine) insert(ctx context.Context, s *indexState) error {
	result, err := e.store.InsertMany(ctx, e.config.Collection, s.chunks)
	if err != nil {
		return fmt.Errorf("failed to insert chunks: %w", err)
	}
	for pos, itemErr := range result.Errors {
		slog.Warn("chunk not indexed", "position", pos, "error", itemErr)
	}
	s.result = result
	return nil
}

// Verify returns up to n stored chunks so an operator can check the index.
func (e *Engine) Verify(ctx context.Context, n int) ([]models.SearchResult, error) {
	results, err := e.store.Sample(ctx, e.config.Collection, n)
	if err != nil {
		return nil, pipeline.Wrap(pipeline.ErrRetrievalFailed, err)
	}
	return results, nil
}
