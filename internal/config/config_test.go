package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearCredentials hides credentials from the surrounding environment.
func clearCredentials(t *testing.T) {
	t.Helper()
	t.Setenv(EnvGoogleAPIKey, "")
	t.Setenv(EnvElasticsearchAddresses, "")
	t.Setenv("CONCIERGE_GOOGLE_API_KEY", "")
}

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())
	clearCredentials(t)

	cfg, err := Load(viper.New(), "")
	require.NoError(t, err)
	assert.Equal(t, Defaults(), cfg)
}

func TestLoad_File(t *testing.T) {
	clearCredentials(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  addr: ":8080"
vector_store:
  type: chromem
  chromem:
    path: /var/lib/vectors
scraper:
  timeout: 5s
chunker:
  max_chunk_size: 200
`), 0o644))

	cfg, err := Load(viper.New(), path)
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, "development", cfg.Server.Environment, "unset keys keep defaults")
	assert.Equal(t, StoreChromem, cfg.VectorStore.Type)
	assert.Equal(t, "/var/lib/vectors", cfg.VectorStore.Chromem.Path)
	assert.Equal(t, "WebsiteContent", cfg.VectorStore.Collection)
	assert.Equal(t, 5*time.Second, cfg.Scraper.Timeout)
	assert.Equal(t, 200, cfg.Chunker.MaxChunkSize)
}

func TestLoad_BadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server: [unclosed"), 0o644))

	_, err := Load(viper.New(), path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config")
}

func TestLoad_Env(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("GOOGLE_API_KEY", "secret")
	t.Setenv("ELASTICSEARCH_ADDRESSES", "http://es1:9200, http://es2:9200")
	t.Setenv("CONCIERGE_LLM_PROVIDER", "dmr")
	t.Setenv("CONCIERGE_CHAT_LIMIT", "5")
	t.Setenv("CONCIERGE_SCRAPER_DELAY", "250ms")

	cfg, err := Load(viper.New(), "")
	require.NoError(t, err)

	assert.Equal(t, "secret", cfg.Google.APIKey)
	assert.Equal(t, []string{"http://es1:9200", "http://es2:9200"}, cfg.VectorStore.Elasticsearch.Addresses)
	assert.Equal(t, ProviderDMR, cfg.LLM.Provider)
	assert.Equal(t, 5, cfg.Chat.Limit)
	assert.Equal(t, 250*time.Millisecond, cfg.Scraper.Delay)
}

func TestLoad_PrefixedKeyWins(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("GOOGLE_API_KEY", "plain")
	t.Setenv("CONCIERGE_GOOGLE_API_KEY", "prefixed")

	cfg, err := Load(viper.New(), "")
	require.NoError(t, err)
	assert.Equal(t, "prefixed", cfg.Google.APIKey)
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env.local"), []byte("CONCIERGE_TEST_A=local\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("CONCIERGE_TEST_A=env\nCONCIERGE_TEST_B=env\n"), 0o644))
	t.Setenv("CONCIERGE_TEST_A", "")
	t.Setenv("CONCIERGE_TEST_B", "")
	os.Unsetenv("CONCIERGE_TEST_A")
	os.Unsetenv("CONCIERGE_TEST_B")

	require.NoError(t, LoadDotEnv(dir))
	assert.Equal(t, "local", os.Getenv("CONCIERGE_TEST_A"))
	assert.Equal(t, "env", os.Getenv("CONCIERGE_TEST_B"))
}

func TestLoadDotEnv_NoFiles(t *testing.T) {
	assert.NoError(t, LoadDotEnv(t.TempDir()))
}

func TestSave_RoundTrip(t *testing.T) {
	t.Chdir(t.TempDir())
	clearCredentials(t)
	want := Defaults()
	want.Server.Addr = ":9999"
	want.Scraper.Delay = 2 * time.Second

	path := filepath.Join("nested", "config.yaml")
	require.NoError(t, Save(want, path))

	got, err := Load(viper.New(), path)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestCredentials(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		want    []Credential
		missing []string
	}{
		{
			name: "defaults",
			want: []Credential{
				{Name: EnvGoogleAPIKey, Set: false},
				{Name: EnvElasticsearchAddresses, Set: false},
			},
			missing: []string{EnvGoogleAPIKey, EnvElasticsearchAddresses},
		},
		{
			name: "all set",
			mutate: func(c *Config) {
				c.Google.APIKey = "k"
				c.VectorStore.Elasticsearch.Addresses = []string{"http://es:9200"}
			},
			want: []Credential{
				{Name: EnvGoogleAPIKey, Set: true},
				{Name: EnvElasticsearchAddresses, Set: true},
			},
		},
		{
			name: "local stack needs nothing",
			mutate: func(c *Config) {
				c.Embeddings.Provider = ProviderDMR
				c.LLM.Provider = ProviderDMR
				c.VectorStore.Type = StoreChromem
			},
		},
		{
			name:   "no addresses",
			mutate: func(c *Config) { c.Google.APIKey = "k" },
			want: []Credential{
				{Name: EnvGoogleAPIKey, Set: true},
				{Name: EnvElasticsearchAddresses, Set: false},
			},
			missing: []string{EnvElasticsearchAddresses},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Defaults()
			if tt.mutate != nil {
				tt.mutate(&cfg)
			}
			assert.Equal(t, tt.want, cfg.Credentials())
			assert.Equal(t, tt.missing, cfg.Missing())
		})
	}
}

func TestLoad_ElasticsearchAddressesReportedOnlyWhenProvided(t *testing.T) {
	t.Chdir(t.TempDir())
	clearCredentials(t)

	cfg, err := Load(viper.New(), "")
	require.NoError(t, err)
	assert.Contains(t, cfg.Missing(), EnvElasticsearchAddresses)

	t.Setenv(EnvElasticsearchAddresses, "http://localhost:9200")
	cfg, err = Load(viper.New(), "")
	require.NoError(t, err)
	assert.NotContains(t, cfg.Missing(), EnvElasticsearchAddresses)
}
