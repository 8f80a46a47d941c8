package config

import "time"

// Provider names.
const (
	ProviderGemini = "gemini"
	ProviderDMR    = "dmr"
)

// Vector store types.
const (
	StoreElasticsearch = "elasticsearch"
	StoreChromem       = "chromem"
)

// Content backends.
const (
	BackendFile = "file"
	BackendS3   = "s3"
)

// Config holds all application configuration.
type Config struct {
	Server      Server      `mapstructure:"server" yaml:"server"`
	Google      Google      `mapstructure:"google" yaml:"google"`
	Embeddings  Embeddings  `mapstructure:"embeddings" yaml:"embeddings"`
	LLM         LLM         `mapstructure:"llm" yaml:"llm"`
	VectorStore VectorStore `mapstructure:"vector_store" yaml:"vector_store"`
	Content     Content     `mapstructure:"content" yaml:"content"`
	Scraper     Scraper     `mapstructure:"scraper" yaml:"scraper"`
	Chunker     Chunker     `mapstructure:"chunker" yaml:"chunker"`
	Chat        Chat        `mapstructure:"chat" yaml:"chat"`
	MCP         MCP         `mapstructure:"mcp" yaml:"mcp"`
}

// Server holds admin API configuration.
type Server struct {
	Addr        string `mapstructure:"addr" yaml:"addr"`
	Environment string `mapstructure:"environment" yaml:"environment"`
}

// Google holds hosted model credentials.
type Google struct {
	APIKey string `mapstructure:"api_key" yaml:"api_key"`
}

// Embeddings holds embeddings generation configuration.
type Embeddings struct {
	Provider   string `mapstructure:"provider" yaml:"provider"`
	Model      string `mapstructure:"model" yaml:"model"`
	SocketPath string `mapstructure:"socket_path" yaml:"socket_path"` // Docker Model Runner socket, dmr only
}

// LLM holds text generation configuration.
type LLM struct {
	Provider        string  `mapstructure:"provider" yaml:"provider"`
	Model           string  `mapstructure:"model" yaml:"model"`
	SocketPath      string  `mapstructure:"socket_path" yaml:"socket_path"`
	Temperature     float32 `mapstructure:"temperature" yaml:"temperature"`
	MaxOutputTokens int     `mapstructure:"max_output_tokens" yaml:"max_output_tokens"`
	TopK            int32   `mapstructure:"top_k" yaml:"top_k"`
	TopP            float32 `mapstructure:"top_p" yaml:"top_p"`
}

// VectorStore selects and configures the chunk index.
type VectorStore struct {
	Type          string        `mapstructure:"type" yaml:"type"`
	Collection    string        `mapstructure:"collection" yaml:"collection"`
	Elasticsearch Elasticsearch `mapstructure:"elasticsearch" yaml:"elasticsearch"`
	Chromem       Chromem       `mapstructure:"chromem" yaml:"chromem"`
}

// Elasticsearch holds ES connection configuration.
type Elasticsearch struct {
	Addresses []string `mapstructure:"addresses" yaml:"addresses"`
	Username  string   `mapstructure:"username" yaml:"username"`
	Password  string   `mapstructure:"password" yaml:"password"`
	APIKey    string   `mapstructure:"api_key" yaml:"api_key"`
}

// Chromem holds embedded vector database configuration.
type Chromem struct {
	Path     string `mapstructure:"path" yaml:"path"`
	Compress bool   `mapstructure:"compress" yaml:"compress"`
}

// Content selects where the scraped text artifact lives.
type Content struct {
	Backend string `mapstructure:"backend" yaml:"backend"`
	Path    string `mapstructure:"path" yaml:"path"`
	S3      S3     `mapstructure:"s3" yaml:"s3"`
}

// S3 holds S3/MinIO storage configuration.
type S3 struct {
	Endpoint        string `mapstructure:"endpoint" yaml:"endpoint"`
	Bucket          string `mapstructure:"bucket" yaml:"bucket"`
	Key             string `mapstructure:"key" yaml:"key"`
	AccessKeyID     string `mapstructure:"access_key_id" yaml:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key" yaml:"secret_access_key"`
	UseSSL          bool   `mapstructure:"use_ssl" yaml:"use_ssl"`
}

// Scraper holds web scraping configuration.
type Scraper struct {
	Timeout   time.Duration `mapstructure:"timeout" yaml:"timeout"`
	Delay     time.Duration `mapstructure:"delay" yaml:"delay"`
	UserAgent string        `mapstructure:"user_agent" yaml:"user_agent"`
	Format    string        `mapstructure:"format" yaml:"format"`
}

// Chunker holds text splitting configuration.
type Chunker struct {
	MaxChunkSize int `mapstructure:"max_chunk_size" yaml:"max_chunk_size"`
}

// Chat holds question answering configuration.
type Chat struct {
	AssistantName   string  `mapstructure:"assistant_name" yaml:"assistant_name"`
	Limit           int     `mapstructure:"limit" yaml:"limit"`
	Distance        float64 `mapstructure:"distance" yaml:"distance"`
	MaxPromptTokens int     `mapstructure:"max_prompt_tokens" yaml:"max_prompt_tokens"`
	APIURL          string  `mapstructure:"api_url" yaml:"api_url"` // admin API used by chat --remote
}

// MCP holds MCP server configuration.
type MCP struct {
	Name    string `mapstructure:"name" yaml:"name"`
	Version string `mapstructure:"version" yaml:"version"`
}

// Defaults returns a Config with sensible default values.
func Defaults() Config {
	return Config{
		Server: Server{
			Addr:        ":3001",
			Environment: "development",
		},
		Embeddings: Embeddings{
			Provider: ProviderGemini,
			Model:    "text-embedding-004",
		},
		LLM: LLM{
			Provider:        ProviderGemini,
			Model:           "gemini-2.0-flash",
			Temperature:     0.7,
			MaxOutputTokens: 1024,
			TopK:            40,
			TopP:            0.95,
		},
		VectorStore: VectorStore{
			Type:       StoreElasticsearch,
			Collection: "WebsiteContent",
			// No default addresses: ELASTICSEARCH_ADDRESSES is a required
			// credential and health reports it until it is provided.
			Chromem: Chromem{
				Path: "./data/vectors",
			},
		},
		Content: Content{
			Backend: BackendFile,
			Path:    "scraped_content.txt",
			S3: S3{
				Endpoint:        "localhost:9002",
				Bucket:          "site-concierge",
				Key:             "scraped_content.txt",
				AccessKeyID:     "minioadmin",
				SecretAccessKey: "minioadmin",
			},
		},
		Scraper: Scraper{
			Timeout:   30 * time.Second,
			UserAgent: "site-concierge/1.0",
			Format:    "text",
		},
		Chunker: Chunker{
			MaxChunkSize: 500,
		},
		Chat: Chat{
			AssistantName:   "FlowAgent",
			Limit:           3,
			Distance:        0.7,
			MaxPromptTokens: 30000,
			APIURL:          "http://localhost:3001",
		},
		MCP: MCP{
			Name:    "site-concierge",
			Version: "1.0.0",
		},
	}
}
