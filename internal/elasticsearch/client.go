// Package elasticsearch stores site chunks as dense vectors in Elasticsearch
// and answers nearest-neighbour queries over them.
package elasticsearch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esutil"

	"github.com/masa1023/site-concierge/internal/embeddings"
	"github.com/masa1023/site-concierge/internal/vectorstore"
	"github.com/masa1023/site-concierge/pkg/models"
)

// Config holds Elasticsearch client configuration.
type Config struct {
	Addresses []string
	Username  string
	Password  string
	APIKey    string
}

// Client wraps the Elasticsearch client with collection operations. Chunk
// text is embedded client-side with the configured embedder.
type Client struct {
	es       *elasticsearch.Client
	embedder embeddings.Embedder
}

var _ vectorstore.Store = (*Client)(nil)

// New creates a new Elasticsearch client.
func New(config Config, embedder embeddings.Embedder) (*Client, error) {
	if embedder == nil {
		return nil, fmt.Errorf("embedder is required")
	}

	cfg := elasticsearch.Config{
		Addresses: config.Addresses,
		Username:  config.Username,
		Password:  config.Password,
		APIKey:    config.APIKey,
	}

	es, err := elasticsearch.NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create ES client: %w", err)
	}

	return &Client{
		es:       es,
		embedder: embedder,
	}, nil
}

// Ping checks if Elasticsearch is available.
func (c *Client) Ping(ctx context.Context) bool {
	res, err := c.es.Ping(c.es.Ping.WithContext(ctx))
	if err != nil {
		return false
	}
	defer res.Body.Close()
	return !res.IsError()
}

// indexName maps a collection name to an index name; ES index names must be
// lower case.
func indexName(collection string) string {
	return strings.ToLower(collection)
}

// CollectionExists reports whether the collection's index exists.
func (c *Client) CollectionExists(ctx context.Context, name string) (bool, error) {
	res, err := c.es.Indices.Exists([]string{indexName(name)}, c.es.Indices.Exists.WithContext(ctx))
	if err != nil {
		return false, fmt.Errorf("failed to check index: %w", err)
	}
	defer res.Body.Close()

	switch res.StatusCode {
	case http.StatusOK:
		return true, nil
	case http.StatusNotFound:
		return false, nil
	default:
		return false, fmt.Errorf("error checking index: %s", res.String())
	}
}

// DeleteCollection removes the collection's index. A missing index is not an error.
func (c *Client) DeleteCollection(ctx context.Context, name string) error {
	res, err := c.es.Indices.Delete([]string{indexName(name)}, c.es.Indices.Delete.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("failed to delete index: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() && res.StatusCode != http.StatusNotFound {
		return fmt.Errorf("error deleting index: %s", res.String())
	}
	return nil
}

// CreateCollection creates the index with a mapping derived from schema.
func (c *Client) CreateCollection(ctx context.Context, schema vectorstore.Schema) error {
	body, err := json.Marshal(c.mapping(schema))
	if err != nil {
		return fmt.Errorf("failed to marshal mapping: %w", err)
	}

	res, err := c.es.Indices.Create(
		indexName(schema.Name),
		c.es.Indices.Create.WithContext(ctx),
		c.es.Indices.Create.WithBody(bytes.NewReader(body)),
	)
	if err != nil {
		return fmt.Errorf("failed to create index: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("error creating index: %s", res.String())
	}
	return nil
}

func (c *Client) mapping(schema vectorstore.Schema) map[string]any {
	properties := map[string]any{}
	for _, p := range schema.Properties {
		switch p.Type {
		case vectorstore.TypeInt:
			properties[p.Name] = map[string]any{"type": "integer"}
		default:
			properties[p.Name] = map[string]any{"type": "text"}
		}
	}
	properties[vectorField(schema)] = map[string]any{
		"type":       "dense_vector",
		"dims":       c.embedder.Dimensions(),
		"index":      true,
		"similarity": "cosine",
	}

	return map[string]any{
		"mappings": map[string]any{
			"_meta": map[string]any{
				"vectorizer":      schema.Vectorizer,
				"source_property": schema.SourceProperty,
			},
			"properties": properties,
		},
	}
}

func vectorField(schema vectorstore.Schema) string {
	if schema.VectorName == "" {
		return vectorstore.DefaultVectorName
	}
	return schema.VectorName
}

// chunkDocument is the stored form of a chunk.
type chunkDocument struct {
	Text       string    `json:"text"`
	ChunkIndex int       `json:"chunkIndex"`
	Vector     []float32 `json:"text_vector,omitempty"`
}

// InsertMany embeds each chunk and bulk indexes the batch. Chunks that fail to
// embed or index are reported in the result.
func (c *Client) InsertMany(ctx context.Context, name string, chunks []models.Chunk) (vectorstore.InsertResult, error) {
	result := vectorstore.InsertResult{Errors: map[int]error{}}
	// The bulk indexer reports items from its worker goroutines.
	var mu sync.Mutex
	fail := func(pos int, err error) {
		mu.Lock()
		result.Errors[pos] = err
		mu.Unlock()
	}

	bi, err := esutil.NewBulkIndexer(esutil.BulkIndexerConfig{
		Client:  c.es,
		Index:   indexName(name),
		Refresh: "wait_for",
		OnError: func(_ context.Context, err error) {
			slog.Error("bulk indexer error", "index", indexName(name), "error", err)
		},
	})
	if err != nil {
		return result, fmt.Errorf("failed to create bulk indexer: %w", err)
	}

	for i, chunk := range chunks {
		vector, err := c.embedder.Embed(ctx, chunk.Text)
		if err != nil {
			fail(i, fmt.Errorf("failed to embed chunk %d: %w", chunk.Index, err))
			continue
		}

		data, err := json.Marshal(chunkDocument{Text: chunk.Text, ChunkIndex: chunk.Index, Vector: vector})
		if err != nil {
			fail(i, fmt.Errorf("failed to marshal chunk %d: %w", chunk.Index, err))
			continue
		}

		pos := i
		err = bi.Add(ctx, esutil.BulkIndexerItem{
			Action:     "index",
			DocumentID: chunk.ID(),
			Body:       bytes.NewReader(data),
			OnSuccess: func(_ context.Context, _ esutil.BulkIndexerItem, _ esutil.BulkIndexerResponseItem) {
				mu.Lock()
				result.Successful++
				mu.Unlock()
			},
			OnFailure: func(_ context.Context, _ esutil.BulkIndexerItem, res esutil.BulkIndexerResponseItem, err error) {
				if err == nil {
					err = fmt.Errorf("%s: %s", res.Error.Type, res.Error.Reason)
				}
				fail(pos, err)
			},
		})
		if err != nil {
			fail(i, fmt.Errorf("failed to queue chunk %d: %w", chunk.Index, err))
		}
	}

	if err := bi.Close(ctx); err != nil {
		return result, fmt.Errorf("failed to flush bulk indexer: %w", err)
	}

	stats := bi.Stats()
	slog.Debug("bulk index complete", "index", indexName(name), "indexed", stats.NumIndexed, "failed", stats.NumFailed)
	return result, nil
}

// searchResponse represents ES search response structure.
type searchResponse struct {
	Hits struct {
		Hits []struct {
			Source chunkDocument `json:"_source"`
		} `json:"hits"`
	} `json:"hits"`
}

// NearText embeds concept and runs a kNN query. For cosine similarity, a
// maximum distance d corresponds to a minimum similarity of 1-d.
func (c *Client) NearText(ctx context.Context, name, concept string, distance float64, limit int) ([]models.SearchResult, error) {
	vector, err := c.embedder.Embed(ctx, concept)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	query := map[string]any{
		"knn": map[string]any{
			"field":          vectorstore.DefaultVectorName,
			"query_vector":   vector,
			"k":              limit,
			"num_candidates": numCandidates(limit),
			"similarity":     1 - distance,
		},
		"_source": []string{"text", "chunkIndex"},
		"size":    limit,
	}

	return c.search(ctx, name, query)
}

// Sample returns the first n chunks by position.
func (c *Client) Sample(ctx context.Context, name string, n int) ([]models.SearchResult, error) {
	query := map[string]any{
		"query":   map[string]any{"match_all": map[string]any{}},
		"sort":    []map[string]any{{"chunkIndex": "asc"}},
		"_source": []string{"text", "chunkIndex"},
		"size":    n,
	}
	return c.search(ctx, name, query)
}

func (c *Client) search(ctx context.Context, name string, query map[string]any) ([]models.SearchResult, error) {
	data, err := json.Marshal(query)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal query: %w", err)
	}

	res, err := c.es.Search(
		c.es.Search.WithContext(ctx),
		c.es.Search.WithIndex(indexName(name)),
		c.es.Search.WithBody(bytes.NewReader(data)),
	)
	if err != nil {
		return nil, fmt.Errorf("search failed: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, fmt.Errorf("search error: %s", res.String())
	}

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	var sr searchResponse
	if err := json.Unmarshal(body, &sr); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	results := make([]models.SearchResult, len(sr.Hits.Hits))
	for i, hit := range sr.Hits.Hits {
		results[i] = models.SearchResult{Text: hit.Source.Text, ChunkIndex: hit.Source.ChunkIndex}
	}
	return results, nil
}

func numCandidates(limit int) int {
	n := limit * 10
	if n < 100 {
		n = 100
	}
	return n
}
