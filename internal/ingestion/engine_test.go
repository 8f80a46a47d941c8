package ingestion

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/masa1023/site-concierge/internal/pipeline"
	"github.com/masa1023/site-concierge/internal/storage"
	"github.com/masa1023/site-concierge/internal/vectorstore"
	"github.com/masa1023/site-concierge/pkg/models"
)

const sampleContent = "Our cafe opens at eight every weekday morning. " +
	"We roast all of our coffee beans in house each week! " +
	"Delivery is available within five kilometres of the shop?"

type fakeScraper struct {
	page *models.Page
	err  error
}

func (f *fakeScraper) Scrape(_ context.Context, url string) (*models.Page, error) {
	if f.err != nil {
		return nil, f.err
	}
	page := *f.page
	page.URL = url
	return &page, nil
}

// recordingStore logs every call in order.
type recordingStore struct {
	calls     []string
	exists    bool
	existsErr error
	createErr error
	inserted  []models.Chunk
	insertRes *vectorstore.InsertResult
	schema    vectorstore.Schema
}

func (s *recordingStore) CollectionExists(_ context.Context, name string) (bool, error) {
	s.calls = append(s.calls, "exists:"+name)
	return s.exists, s.existsErr
}

func (s *recordingStore) DeleteCollection(_ context.Context, name string) error {
	s.calls = append(s.calls, "delete:"+name)
	return nil
}

func (s *recordingStore) CreateCollection(_ context.Context, schema vectorstore.Schema) error {
	s.calls = append(s.calls, "create:"+schema.Name)
	s.schema = schema
	return s.createErr
}

func (s *recordingStore) InsertMany(_ context.Context, name string, chunks []models.Chunk) (vectorstore.InsertResult, error) {
	s.calls = append(s.calls, "insert:"+name)
	s.inserted = chunks
	if s.insertRes != nil {
		return *s.insertRes, nil
	}
	return vectorstore.InsertResult{Successful: len(chunks)}, nil
}

func (s *recordingStore) NearText(context.Context, string, string, float64, int) ([]models.SearchResult, error) {
	return nil, nil
}

func (s *recordingStore) Sample(_ context.Context, _ string, n int) ([]models.SearchResult, error) {
	s.calls = append(s.calls, "sample")
	var out []models.SearchResult
	for i, c := range s.inserted {
		if i == n {
			break
		}
		out = append(out, models.SearchResult{Text: c.Text, ChunkIndex: c.Index})
	}
	return out, nil
}

func newContent(t *testing.T, text string) storage.ContentStore {
	t.Helper()
	fs := afero.NewMemMapFs()
	content := storage.NewFile(fs, "scraped_content.txt")
	if text != "" {
		require.NoError(t, content.Write(context.Background(), models.Page{Content: text}))
	}
	return content
}

func TestEngine_Scrape(t *testing.T) {
	content := newContent(t, "")
	scraper := &fakeScraper{page: &models.Page{Title: "Cafe", Content: "Welcome to the café"}}
	engine := New(scraper, content, &recordingStore{}, Config{})

	event, err := engine.Scrape(context.Background(), "https://example.com")
	require.NoError(t, err)
	assert.Equal(t, "https://example.com", event.SourceURL)
	assert.Equal(t, "Cafe", event.Title)
	assert.Equal(t, 19, event.ContentLength)
	assert.False(t, event.Timestamp.IsZero())

	stored, err := content.Read(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Welcome to the café", stored)
}

func TestEngine_ScrapeFailureKeepsPreviousContent(t *testing.T) {
	content := newContent(t, "previous content")
	boom := errors.New("connection refused")
	engine := New(&fakeScraper{err: boom}, content, &recordingStore{}, Config{})

	_, err := engine.Scrape(context.Background(), "https://example.com")
	require.Error(t, err)
	assert.ErrorIs(t, err, pipeline.ErrScrapeFailed)
	assert.ErrorIs(t, err, boom)

	stored, err := content.Read(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "previous content", stored)
}

func TestEngine_IndexRebuildsCollection(t *testing.T) {
	store := &recordingStore{exists: true}
	engine := New(nil, newContent(t, sampleContent), store, Config{Collection: "WebsiteContent", Vectorizer: "text2vec-palm"})

	event, err := engine.Index(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{
		"exists:WebsiteContent",
		"delete:WebsiteContent",
		"create:WebsiteContent",
		"insert:WebsiteContent",
	}, store.calls)
	assert.Equal(t, "text2vec-palm", store.schema.Vectorizer)
	assert.Equal(t, 1, event.ChunksCount)
	assert.Equal(t, 1, event.Inserted)
	assert.Zero(t, event.Failed)
	require.Len(t, store.inserted, 1)
	assert.Equal(t, 0, store.inserted[0].Index)
}

func TestEngine_IndexSmallChunks(t *testing.T) {
	store := &recordingStore{}
	engine := New(nil, newContent(t, sampleContent), store, Config{MaxChunkSize: 60})

	event, err := engine.Index(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, event.ChunksCount)
	assert.Equal(t, vectorstore.DefaultCollection, event.Collection)
	// No delete when the collection does not exist.
	assert.NotContains(t, store.calls, "delete:"+vectorstore.DefaultCollection)
	for i, c := range store.inserted {
		assert.Equal(t, i, c.Index)
	}
}

func TestEngine_IndexPreconditions(t *testing.T) {
	tests := []struct {
		name    string
		content string
		missing []string
		wantErr error
	}{
		{name: "missing config", content: sampleContent, missing: []string{"GOOGLE_API_KEY"}, wantErr: pipeline.ErrConfigMissing},
		{name: "no content", wantErr: pipeline.ErrContentMissing},
		{name: "too short to chunk", content: "Too short.", wantErr: pipeline.ErrEmptyChunkSet},
		{name: "whitespace only", content: "   \n\t ", wantErr: pipeline.ErrEmptyChunkSet},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &recordingStore{exists: true}
			cfg := Config{MissingConfig: func() []string { return tt.missing }}
			engine := New(nil, newContent(t, tt.content), store, cfg)

			_, err := engine.Index(context.Background())
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.NotErrorIs(t, err, pipeline.ErrIndexFailed)
			assert.Empty(t, store.calls, "store must not be touched")
		})
	}
}

func TestEngine_IndexMissingConfigNames(t *testing.T) {
	cfg := Config{MissingConfig: func() []string { return []string{"GOOGLE_API_KEY", "ELASTICSEARCH_ADDRESSES"} }}
	engine := New(nil, newContent(t, sampleContent), &recordingStore{}, cfg)

	_, err := engine.Index(context.Background())
	missing, ok := pipeline.MissingConfig(err)
	require.True(t, ok)
	assert.Equal(t, []string{"GOOGLE_API_KEY", "ELASTICSEARCH_ADDRESSES"}, missing)
}

func TestEngine_IndexExistsCheckFailureProceeds(t *testing.T) {
	store := &recordingStore{existsErr: errors.New("timeout")}
	engine := New(nil, newContent(t, sampleContent), store, Config{})

	_, err := engine.Index(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{
		"exists:" + vectorstore.DefaultCollection,
		"create:" + vectorstore.DefaultCollection,
		"insert:" + vectorstore.DefaultCollection,
	}, store.calls)
}

func TestEngine_IndexCreateFailure(t *testing.T) {
	boom := errors.New("mapping rejected")
	store := &recordingStore{createErr: boom}
	engine := New(nil, newContent(t, sampleContent), store, Config{})

	_, err := engine.Index(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, pipeline.ErrIndexFailed)
	assert.ErrorIs(t, err, boom)
	assert.True(t, strings.Contains(err.Error(), "mapping rejected"))
	assert.NotContains(t, store.calls, "insert:"+vectorstore.DefaultCollection)
}

func TestEngine_IndexPartialInsertIsNotFatal(t *testing.T) {
	store := &recordingStore{insertRes: &vectorstore.InsertResult{
		Successful: 2,
		Errors:     map[int]error{1: errors.New("rejected")},
	}}
	engine := New(nil, newContent(t, sampleContent), store, Config{MaxChunkSize: 60})

	event, err := engine.Index(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, event.ChunksCount)
	assert.Equal(t, 2, event.Inserted)
	assert.Equal(t, 1, event.Failed)
}

func TestEngine_Verify(t *testing.T) {
	store := &recordingStore{}
	engine := New(nil, newContent(t, sampleContent), store, Config{MaxChunkSize: 60})

	_, err := engine.Index(context.Background())
	require.NoError(t, err)

	sample, err := engine.Verify(context.Background(), 2)
	require.NoError(t, err)
	require.Len(t, sample, 2)
	assert.Equal(t, 0, sample[0].ChunkIndex)
	assert.Equal(t, 1, sample[1].ChunkIndex)
}
