package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/pelletier/go-toml/v2"
)

type ServerConfig struct {
	Port string `toml:"port"`
	Mode string `toml:"mode"`
}

type LLMConfig struct {
	Provider       string `toml:"provider"`
	Model          string `toml:"model"`
	EmbeddingModel string `toml:"embedding_model"`
	APIKey         string `toml:"api_key"`
	BaseURL        string `toml:"base_url"`
	// EmbeddingProvider overrides Provider for embeddings. Needed for
	// providers without an embeddings API such as claude.
	EmbeddingProvider string `toml:"embedding_provider"`
	MaxTokens         int    `toml:"max_tokens"`
	TimeoutSeconds    int    `toml:"timeout_seconds"`
}

func (c LLMConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

type RateLimitConfig struct {
	RequestsPerSecond float64 `toml:"requests_per_second"`
	Burst             int     `toml:"burst"`
}

type MemgraphConfig struct {
	URI      string `toml:"uri"`
	User     string `toml:"user"`
	Password string `toml:"password"`
}

type StoreConfig struct {
	// Backend is one of memory, sqlite or memgraph.
	Backend    string         `toml:"backend"`
	SQLitePath string         `toml:"sqlite_path"`
	Memgraph   MemgraphConfig `toml:"memgraph"`
}

type RAGConfig struct {
	ChunkSize      int    `toml:"chunk_size"`
	ChunkOverlap   int    `toml:"chunk_overlap"`
	Separator      string `toml:"separator"`
	TopK           int    `toml:"top_k"`
	HistoryLimit   int    `toml:"history_limit"`
	EventLimit     int    `toml:"event_limit"`
	EmbedBatchSize int    `toml:"embed_batch_size"`
	Rerank         bool   `toml:"rerank"`
}

type FaceConfig struct {
	Tolerance  float64 `toml:"tolerance"`
	Dimensions int     `toml:"dimensions"`
}

type Prompts struct {
	System string `toml:"system"`
}

type Config struct {
	Server    ServerConfig    `toml:"server"`
	LLM       LLMConfig       `toml:"llm"`
	RateLimit RateLimitConfig `toml:"rate_limit"`
	Store     StoreConfig     `toml:"store"`
	RAG       RAGConfig       `toml:"rag"`
	Face      FaceConfig      `toml:"face"`
	Prompts   Prompts         `toml:"prompts"`
}

func Default() *Config {
	return &Config{
		Server: ServerConfig{Port: "8080", Mode: "release"},
		LLM: LLMConfig{
			Provider:       "stub",
			TimeoutSeconds: 30,
			MaxTokens:      1000,
		},
		RateLimit: RateLimitConfig{RequestsPerSecond: 5, Burst: 10},
		Store: StoreConfig{
			Backend:    "memory",
			SQLitePath: "data/faces.db",
			Memgraph:   MemgraphConfig{URI: "bolt://localhost:7687"},
		},
		RAG: RAGConfig{
			ChunkSize:      1000,
			ChunkOverlap:   200,
			Separator:      "\n",
			TopK:           4,
			HistoryLimit:   10,
			EventLimit:     100,
			EmbedBatchSize: 32,
		},
		Face: FaceConfig{Tolerance: 0.6, Dimensions: 128},
	}
}

// Load reads a TOML file on top of the defaults. Keys missing from the file
// keep their default values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file '%s': %w", path, err)
	}

	cfg := Default()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse TOML: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadOrDefault is Load, falling back to the defaults when the file does not exist.
func LoadOrDefault(path string) (*Config, error) {
	cfg, err := Load(path)
	if errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}
	return cfg, err
}

// ApplyEnv overrides file values with environment variables when present.
func (c *Config) ApplyEnv() {
	setString := func(key string, dst *string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}

	setString("PORT", &c.Server.Port)
	setString("GIN_MODE", &c.Server.Mode)

	setString("LLM_PROVIDER", &c.LLM.Provider)
	setString("LLM_MODEL", &c.LLM.Model)
	setString("LLM_EMBEDDING_MODEL", &c.LLM.EmbeddingModel)
	setString("LLM_EMBEDDING_PROVIDER", &c.LLM.EmbeddingProvider)
	setString("LLM_API_KEY", &c.LLM.APIKey)
	setString("LLM_BASE_URL", &c.LLM.BaseURL)
	if v, err := strconv.Atoi(os.Getenv("LLM_TIMEOUT_SECONDS")); err == nil && v > 0 {
		c.LLM.TimeoutSeconds = v
	}

	setString("STORE_BACKEND", &c.Store.Backend)
	setString("SQLITE_PATH", &c.Store.SQLitePath)
	setString("MEMGRAPH_URI", &c.Store.Memgraph.URI)
	setString("MEMGRAPH_USER", &c.Store.Memgraph.User)
	setString("MEMGRAPH_PASSWORD", &c.Store.Memgraph.Password)
}

func (c *Config) Validate() error {
	if c.RAG.ChunkSize <= 0 {
		return fmt.Errorf("rag.chunk_size must be positive, got %d", c.RAG.ChunkSize)
	}
	if c.RAG.ChunkOverlap < 0 || c.RAG.ChunkOverlap >= c.RAG.ChunkSize {
		return fmt.Errorf("rag.chunk_overlap must be in [0, %d), got %d", c.RAG.ChunkSize, c.RAG.ChunkOverlap)
	}
	if c.RAG.TopK <= 0 {
		return fmt.Errorf("rag.top_k must be positive, got %d", c.RAG.TopK)
	}
	if c.RAG.HistoryLimit < 0 {
		return fmt.Errorf("rag.history_limit must not be negative, got %d", c.RAG.HistoryLimit)
	}
	if c.Face.Tolerance <= 0 {
		return fmt.Errorf("face.tolerance must be positive, got %v", c.Face.Tolerance)
	}
	if c.Face.Dimensions <= 0 {
		return fmt.Errorf("face.dimensions must be positive, got %d", c.Face.Dimensions)
	}
	switch c.Server.Mode {
	case "debug", "release", "test":
	default:
		return fmt.Errorf("server.mode must be debug, release or test, got %q", c.Server.Mode)
	}
	switch c.Store.Backend {
	case "memory", "sqlite", "memgraph":
	default:
		return fmt.Errorf("unsupported store backend: %s", c.Store.Backend)
	}
	return nil
}
