// Package vectorstore defines the collection operations the indexing and
// query paths need from a vector database, independent of the backend.
package vectorstore

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/masa1023/site-concierge/pkg/models"
)

const (
	// DefaultCollection holds the chunks of the scraped site.
	DefaultCollection = "WebsiteContent"

	// DefaultVectorName names the vector built from the text property.
	DefaultVectorName = "text_vector"

	DefaultLimit    = 3
	DefaultDistance = 0.7
)

// PropertyType is the storage type of a collection property.
type PropertyType string

const (
	TypeText PropertyType = "text"
	TypeInt  PropertyType = "int"
)

// Property is one stored field of a collection.
type Property struct {
	Name string
	Type PropertyType
}

// Schema describes a collection: its properties and the single vectorizer
// that embeds SourceProperty into VectorName.
type Schema struct {
	Name           string
	Properties     []Property
	VectorName     string
	SourceProperty string
	Vectorizer     string
}

// ChunkSchema returns the schema for site chunks: a text field, an integer
// position field and one vector over the text.
func ChunkSchema(name, vectorizer string) Schema {
	if name == "" {
		name = DefaultCollection
	}
	return Schema{
		Name: name,
		Properties: []Property{
			{Name: "text", Type: TypeText},
			{Name: "chunkIndex", Type: TypeInt},
		},
		VectorName:     DefaultVectorName,
		SourceProperty: "text",
		Vectorizer:     vectorizer,
	}
}

// InsertResult reports a batch insert. Errors is keyed by the position of the
// failed chunk in the batch.
type InsertResult struct {
	Successful int
	Errors     map[int]error
}

// Failed returns the number of chunks that were not stored.
func (r InsertResult) Failed() int {
	return len(r.Errors)
}

// Store is a vector database holding named collections.
//
// Collections are replaced by DeleteCollection followed by CreateCollection.
// The two calls are not atomic: between them the collection does not exist
// and queries against it fail.
type Store interface {
	CollectionExists(ctx context.Context, name string) (bool, error)
	DeleteCollection(ctx context.Context, name string) error
	CreateCollection(ctx context.Context, schema Schema) error

	// InsertMany stores chunks in one batch. Per-chunk failures are reported
	// in the result; the error is for failures of the batch as a whole.
	InsertMany(ctx context.Context, name string, chunks []models.Chunk) (InsertResult, error)

	// NearText returns up to limit chunks whose cosine distance to concept
	// is at most distance, closest first.
	NearText(ctx context.Context, name, concept string, distance float64, limit int) ([]models.SearchResult, error)

	// Sample returns up to n stored chunks in position order.
	Sample(ctx context.Context, name string, n int) ([]models.SearchResult, error)
}

// SearchOptions bound a retrieval. The zero value selects
// DefaultSearchOptions; otherwise Distance is used as given and a
// non-positive Limit selects DefaultLimit.
type SearchOptions struct {
	Limit    int
	Distance float64
}

// DefaultSearchOptions returns the bounds used when a request names none.
func DefaultSearchOptions() SearchOptions {
	return SearchOptions{Limit: DefaultLimit, Distance: DefaultDistance}
}

func (o SearchOptions) withDefaults() SearchOptions {
	if o == (SearchOptions{}) {
		return DefaultSearchOptions()
	}
	if o.Limit <= 0 {
		o.Limit = DefaultLimit
	}
	return o
}

// Retriever runs similarity queries against one collection.
type Retriever struct {
	store      Store
	collection string
}

// NewRetriever returns a Retriever for collection.
func NewRetriever(store Store, collection string) *Retriever {
	if collection == "" {
		collection = DefaultCollection
	}
	return &Retriever{store: store, collection: collection}
}

// Collection returns the queried collection name.
func (r *Retriever) Collection() string {
	return r.collection
}

// Search returns the chunks most similar to query, in store order.
func (r *Retriever) Search(ctx context.Context, query string, opts SearchOptions) ([]models.SearchResult, error) {
	opts = opts.withDefaults()

	results, err := r.store.NearText(ctx, r.collection, query, opts.Distance, opts.Limit)
	if err != nil {
		return nil, fmt.Errorf("failed to search %s: %w", r.collection, err)
	}

	slog.Debug("retrieved chunks", "collection", r.collection, "limit", opts.Limit, "distance", opts.Distance, "count", len(results))
	if results == nil {
		results = []models.SearchResult{}
	}
	return results, nil
}

// Texts returns the text of each result, in order.
func Texts(results []models.SearchResult) []string {
	texts := make([]string, len(results))
	for i, r := range results {
		texts[i] = r.Text
	}
	return texts
}
