package chromemstore

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/masa1023/site-concierge/internal/vectorstore"
	"github.com/masa1023/site-concierge/pkg/models"
)

// keywordEmbedder maps text onto a few keyword axes so similarity is
// predictable. Text containing "FAIL" cannot be embedded.
type keywordEmbedder struct{}

var axes = []string{"coffee", "hours", "delivery"}

func (keywordEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	if strings.Contains(text, "FAIL") {
		return nil, errors.New("embedding failed")
	}
	lower := strings.ToLower(text)
	v := make([]float32, len(axes)+1)
	for i, a := range axes {
		if strings.Contains(lower, a) {
			v[i] = 1
		}
	}
	v[len(axes)] = 0.05 // keeps every vector non-zero
	return v, nil
}

func (keywordEmbedder) Dimensions() int { return len(axes) + 1 }

func newStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(Config{}, keywordEmbedder{})
	require.NoError(t, err)
	return s
}

func TestNew_RequiresEmbedder(t *testing.T) {
	_, err := New(Config{}, nil)
	assert.Error(t, err)
}

func TestStore_CollectionLifecycle(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	exists, err := s.CollectionExists(ctx, "WebsiteContent")
	require.NoError(t, err)
	assert.False(t, exists)

	require.NoError(t, s.DeleteCollection(ctx, "WebsiteContent"), "deleting a missing collection is not an error")
	require.NoError(t, s.CreateCollection(ctx, vectorstore.ChunkSchema("WebsiteContent", "keyword")))

	exists, err = s.CollectionExists(ctx, "WebsiteContent")
	require.NoError(t, err)
	assert.True(t, exists)

	require.NoError(t, s.DeleteCollection(ctx, "WebsiteContent"))
	exists, err = s.CollectionExists(ctx, "WebsiteContent")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestStore_InsertMany_PartialFailure(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	require.NoError(t, s.CreateCollection(ctx, vectorstore.ChunkSchema("", "keyword")))

	chunks := []models.Chunk{
		{Text: "We roast coffee every morning.", Index: 0},
		{Text: "This chunk will FAIL to embed.", Index: 1},
		{Text: "Opening hours are nine to five.", Index: 2},
	}

	result, err := s.InsertMany(ctx, vectorstore.DefaultCollection, chunks)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Successful)
	assert.Equal(t, 1, result.Failed())
	assert.Contains(t, result.Errors, 1)
}

func TestStore_InsertMany_MissingCollection(t *testing.T) {
	s := newStore(t)
	_, err := s.InsertMany(context.Background(), "Nope", []models.Chunk{{Text: "x", Index: 0}})
	assert.ErrorIs(t, err, ErrCollectionNotFound)
}

func TestStore_NearText(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	require.NoError(t, s.CreateCollection(ctx, vectorstore.ChunkSchema("", "keyword")))

	_, err := s.InsertMany(ctx, vectorstore.DefaultCollection, []models.Chunk{
		{Text: "We roast coffee every morning.", Index: 0},
		{Text: "Opening hours are nine to five.", Index: 1},
		{Text: "Free delivery over fifty dollars.", Index: 2},
	})
	require.NoError(t, err)

	t.Run("closest first within distance", func(t *testing.T) {
		results, err := s.NearText(ctx, vectorstore.DefaultCollection, "what are your hours", 0.5, 3)
		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.Equal(t, models.SearchResult{Text: "Opening hours are nine to five.", ChunkIndex: 1}, results[0])
	})

	t.Run("limit larger than collection", func(t *testing.T) {
		results, err := s.NearText(ctx, vectorstore.DefaultCollection, "coffee", 2, 50)
		require.NoError(t, err)
		assert.Len(t, results, 3)
		assert.Equal(t, 0, results[0].ChunkIndex)
	})

	t.Run("missing collection", func(t *testing.T) {
		_, err := s.NearText(ctx, "Nope", "coffee", 0.7, 3)
		assert.ErrorIs(t, err, ErrCollectionNotFound)
	})
}

func TestStore_NearText_EmptyCollection(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	require.NoError(t, s.CreateCollection(ctx, vectorstore.ChunkSchema("", "keyword")))

	results, err := s.NearText(ctx, vectorstore.DefaultCollection, "coffee", 0.7, 3)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestStore_Sample(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	require.NoError(t, s.CreateCollection(ctx, vectorstore.ChunkSchema("", "keyword")))

	_, err := s.InsertMany(ctx, vectorstore.DefaultCollection, []models.Chunk{
		{Text: "We roast coffee every morning.", Index: 0},
		{Text: "This chunk will FAIL to embed.", Index: 1},
		{Text: "Opening hours are nine to five.", Index: 2},
		{Text: "Free delivery over fifty dollars.", Index: 3},
	})
	require.NoError(t, err)

	sample, err := s.Sample(ctx, vectorstore.DefaultCollection, 2)
	require.NoError(t, err)
	require.Len(t, sample, 2)
	assert.Equal(t, 0, sample[0].ChunkIndex)
	assert.Equal(t, 2, sample[1].ChunkIndex)
}

func TestStore_Persistent(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	s, err := New(Config{Path: dir}, keywordEmbedder{})
	require.NoError(t, err)
	require.NoError(t, s.CreateCollection(ctx, vectorstore.ChunkSchema("", "keyword")))
	_, err = s.InsertMany(ctx, vectorstore.DefaultCollection, []models.Chunk{{Text: "We roast coffee every morning.", Index: 0}})
	require.NoError(t, err)

	reopened, err := New(Config{Path: dir}, keywordEmbedder{})
	require.NoError(t, err)

	results, err := reopened.NearText(ctx, vectorstore.DefaultCollection, "coffee", 0.7, 3)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "We roast coffee every morning.", results[0].Text)
}
