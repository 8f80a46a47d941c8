// Package chromemstore is an embedded vector store backed by chromem-go,
// for running without an external database.
package chromemstore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/philippgille/chromem-go"

	"github.com/masa1023/site-concierge/internal/embeddings"
	"github.com/masa1023/site-concierge/internal/vectorstore"
	"github.com/masa1023/site-concierge/pkg/models"
)

// ErrCollectionNotFound is returned when operating on a collection that does not exist.
var ErrCollectionNotFound = errors.New("collection not found")

const metaChunkIndex = "chunkIndex"

// Config holds chromem store configuration.
type Config struct {
	Path     string // directory for persistence; empty keeps everything in memory
	Compress bool
}

// Store keeps collections in a chromem-go database.
type Store struct {
	db       *chromem.DB
	embedder embeddings.Embedder
}

var _ vectorstore.Store = (*Store)(nil)

// New opens or creates the database.
func New(config Config, embedder embeddings.Embedder) (*Store, error) {
	if embedder == nil {
		return nil, fmt.Errorf("embedder is required")
	}

	var db *chromem.DB
	if config.Path == "" {
		db = chromem.NewDB()
	} else {
		var err error
		db, err = chromem.NewPersistentDB(config.Path, config.Compress)
		if err != nil {
			return nil, fmt.Errorf("failed to open vector db: %w", err)
		}
	}

	return &Store{db: db, embedder: embedder}, nil
}

func (s *Store) embed(ctx context.Context, text string) ([]float32, error) {
	return s.embedder.Embed(ctx, text)
}

func (s *Store) collection(name string) (*chromem.Collection, error) {
	c := s.db.GetCollection(name, s.embed)
	if c == nil {
		return nil, fmt.Errorf("%w: %s", ErrCollectionNotFound, name)
	}
	return c, nil
}

// CollectionExists reports whether the collection exists.
func (s *Store) CollectionExists(_ context.Context, name string) (bool, error) {
	return s.db.GetCollection(name, s.embed) != nil, nil
}

// DeleteCollection removes the collection. A missing collection is not an error.
func (s *Store) DeleteCollection(_ context.Context, name string) error {
	if err := s.db.DeleteCollection(name); err != nil {
		return fmt.Errorf("failed to delete collection: %w", err)
	}
	return nil
}

// CreateCollection creates an empty collection. The schema's properties are
// recorded as collection metadata; chunk positions are stored per document.
func (s *Store) CreateCollection(_ context.Context, schema vectorstore.Schema) error {
	metadata := map[string]string{
		"vectorizer":      schema.Vectorizer,
		"vector":          schema.VectorName,
		"source_property": schema.SourceProperty,
	}
	for _, p := range schema.Properties {
		metadata["property:"+p.Name] = string(p.Type)
	}

	if _, err := s.db.CreateCollection(schema.Name, metadata, s.embed); err != nil {
		return fmt.Errorf("failed to create collection: %w", err)
	}
	return nil
}

// documentID is positional; a collection only ever holds one chunk set.
func documentID(index int) string {
	return "chunk-" + strconv.Itoa(index)
}

// InsertMany embeds and adds each chunk. Failed chunks are reported by
// position and do not stop the batch.
func (s *Store) InsertMany(ctx context.Context, name string, chunks []models.Chunk) (vectorstore.InsertResult, error) {
	result := vectorstore.InsertResult{Errors: map[int]error{}}

	c, err := s.collection(name)
	if err != nil {
		return result, err
	}

	for i, chunk := range chunks {
		doc := chromem.Document{
			ID:       documentID(chunk.Index),
			Metadata: map[string]string{metaChunkIndex: strconv.Itoa(chunk.Index)},
			Content:  chunk.Text,
		}
		if err := c.AddDocument(ctx, doc); err != nil {
			result.Errors[i] = fmt.Errorf("failed to add chunk %d: %w", chunk.Index, err)
			continue
		}
		result.Successful++
	}
	return result, nil
}

// NearText queries by the embedding of concept and keeps matches within
// distance, where distance is one minus cosine similarity.
func (s *Store) NearText(ctx context.Context, name, concept string, distance float64, limit int) ([]models.SearchResult, error) {
	c, err := s.collection(name)
	if err != nil {
		return nil, err
	}

	// chromem rejects nResults larger than the collection.
	n := min(limit, c.Count())
	if n <= 0 {
		return []models.SearchResult{}, nil
	}

	matches, err := c.Query(ctx, concept, n, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to query collection: %w", err)
	}

	results := make([]models.SearchResult, 0, len(matches))
	for _, m := range matches {
		if 1-float64(m.Similarity) > distance {
			continue
		}
		results = append(results, toSearchResult(m.Content, m.Metadata))
	}
	slog.Debug("chromem query", "collection", name, "matches", len(matches), "kept", len(results))
	return results, nil
}

// Sample returns the first n chunks by position.
func (s *Store) Sample(ctx context.Context, name string, n int) ([]models.SearchResult, error) {
	c, err := s.collection(name)
	if err != nil {
		return nil, err
	}

	// Chunks that failed to insert leave gaps in the positions.
	var results []models.SearchResult
	for i := 0; len(results) < n && i < n+c.Count(); i++ {
		doc, err := c.GetByID(ctx, documentID(i))
		if err != nil {
			continue
		}
		results = append(results, toSearchResult(doc.Content, doc.Metadata))
	}
	return results, nil
}

func toSearchResult(content string, metadata map[string]string) models.SearchResult {
	index, _ := strconv.Atoi(metadata[metaChunkIndex])
	return models.SearchResult{Text: content, ChunkIndex: index}
}
