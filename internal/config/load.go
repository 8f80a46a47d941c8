package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override:
// CONCIERGE_VECTOR_STORE_TYPE -> vector_store.type
const EnvPrefix = "CONCIERGE"

// Names of the credentials the deployment must provide. They are read
// without the prefix so existing environments keep working.
const (
	EnvGoogleAPIKey           = "GOOGLE_API_KEY"
	EnvElasticsearchAddresses = "ELASTICSEARCH_ADDRESSES"
)

// DotEnvFiles are loaded in order; earlier files win.
var DotEnvFiles = []string{".env.local", ".env"}

// keys lists every setting that may come from the environment.
var keys = []string{
	"server.addr", "server.environment",
	"embeddings.provider", "embeddings.model", "embeddings.socket_path",
	"llm.provider", "llm.model", "llm.socket_path",
	"llm.temperature", "llm.max_output_tokens", "llm.top_k", "llm.top_p",
	"vector_store.type", "vector_store.collection",
	"vector_store.elasticsearch.username", "vector_store.elasticsearch.password",
	"vector_store.elasticsearch.api_key",
	"vector_store.chromem.path", "vector_store.chromem.compress",
	"content.backend", "content.path",
	"content.s3.endpoint", "content.s3.bucket", "content.s3.key",
	"content.s3.access_key_id", "content.s3.secret_access_key", "content.s3.use_ssl",
	"scraper.timeout", "scraper.delay", "scraper.user_agent", "scraper.format",
	"chunker.max_chunk_size",
	"chat.assistant_name", "chat.limit", "chat.distance", "chat.max_prompt_tokens", "chat.api_url",
	"mcp.name", "mcp.version",
}

// LoadDotEnv loads the dotenv files that exist. Variables already set in
// the environment are never overridden.
func LoadDotEnv(dir string) error {
	for _, name := range DotEnvFiles {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if err := godotenv.Load(path); err != nil {
			return fmt.Errorf("failed to load %s: %w", path, err)
		}
	}
	return nil
}

// Load merges defaults, the config file and environment overrides. An empty
// file searches ./config, /etc/site-concierge and the working directory; a
// missing config file is not an error.
func Load(v *viper.Viper, file string) (Config, error) {
	cfg := Defaults()

	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./config")
		v.AddConfigPath("/etc/site-concierge")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for _, key := range keys {
		if err := v.BindEnv(key); err != nil {
			return cfg, fmt.Errorf("failed to bind %s: %w", key, err)
		}
	}
	if err := v.BindEnv("google.api_key", EnvPrefix+"_GOOGLE_API_KEY", EnvGoogleAPIKey); err != nil {
		return cfg, fmt.Errorf("failed to bind google.api_key: %w", err)
	}
	if err := v.BindEnv("vector_store.elasticsearch.addresses",
		EnvPrefix+"_VECTOR_STORE_ELASTICSEARCH_ADDRESSES", EnvElasticsearchAddresses); err != nil {
		return cfg, fmt.Errorf("failed to bind elasticsearch addresses: %w", err)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return cfg, fmt.Errorf("failed to read config: %w", err)
		}
	}

	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config: %w", err)
	}

	// Comma-separated addresses from the environment. An empty list from a
	// config file counts as unset.
	switch addrs := cfg.VectorStore.Elasticsearch.Addresses; len(addrs) {
	case 0:
		cfg.VectorStore.Elasticsearch.Addresses = nil
	case 1:
		cfg.VectorStore.Elasticsearch.Addresses = splitList(addrs[0])
	}

	return cfg, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// Save writes cfg as YAML, creating parent directories.
func Save(cfg Config, path string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}
