package vectorstore

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/masa1023/site-concierge/pkg/models"
)

type nearTextCall struct {
	name     string
	concept  string
	distance float64
	limit    int
}

type stubStore struct {
	Store
	calls   []nearTextCall
	results []models.SearchResult
	err     error
}

func (s *stubStore) NearText(_ context.Context, name, concept string, distance float64, limit int) ([]models.SearchResult, error) {
	s.calls = append(s.calls, nearTextCall{name, concept, distance, limit})
	return s.results, s.err
}

func TestRetriever_Defaults(t *testing.T) {
	store := &stubStore{results: []models.SearchResult{{Text: "a", ChunkIndex: 2}, {Text: "b", ChunkIndex: 0}}}
	r := NewRetriever(store, "")

	got, err := r.Search(context.Background(), "hours", SearchOptions{})
	require.NoError(t, err)

	require.Len(t, store.calls, 1)
	assert.Equal(t, nearTextCall{DefaultCollection, "hours", DefaultDistance, DefaultLimit}, store.calls[0])
	assert.Equal(t, []string{"a", "b"}, Texts(got))
}

func TestRetriever_CustomOptions(t *testing.T) {
	store := &stubStore{}
	r := NewRetriever(store, "Other")

	got, err := r.Search(context.Background(), "q", SearchOptions{Limit: 10, Distance: 0.3})
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
	assert.Equal(t, nearTextCall{"Other", "q", 0.3, 10}, store.calls[0])
}

func TestRetriever_ExplicitZeroDistance(t *testing.T) {
	tests := []struct {
		name string
		opts SearchOptions
		want nearTextCall
	}{
		{"zero distance kept", SearchOptions{Limit: 5, Distance: 0}, nearTextCall{DefaultCollection, "q", 0, 5}},
		{"limit defaulted, distance kept", SearchOptions{Limit: -1, Distance: 0.2}, nearTextCall{DefaultCollection, "q", 0.2, DefaultLimit}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &stubStore{}
			_, err := NewRetriever(store, "").Search(context.Background(), "q", tt.opts)
			require.NoError(t, err)
			assert.Equal(t, tt.want, store.calls[0])
		})
	}
}

func TestRetriever_Error(t *testing.T) {
	boom := errors.New("connection refused")
	r := NewRetriever(&stubStore{err: boom}, "")

	_, err := r.Search(context.Background(), "q", SearchOptions{})
	assert.ErrorIs(t, err, boom)
}

func TestChunkSchema(t *testing.T) {
	s := ChunkSchema("", "text-embedding-004")

	assert.Equal(t, DefaultCollection, s.Name)
	assert.Equal(t, []Property{{"text", TypeText}, {"chunkIndex", TypeInt}}, s.Properties)
	assert.Equal(t, "text", s.SourceProperty)
	assert.Equal(t, DefaultVectorName, s.VectorName)
	assert.Equal(t, "text-embedding-004", s.Vectorizer)
}

func TestInsertResult_Failed(t *testing.T) {
	r := InsertResult{Successful: 3, Errors: map[int]error{1: errors.New("x")}}
	assert.Equal(t, 1, r.Failed())
	assert.Equal(t, 0, InsertResult{}.Failed())
}
