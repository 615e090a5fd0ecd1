package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// ChunkerConfig configures the token windower. Overlap is a pointer so an
// explicit 0 survives defaulting. It must be smaller than chunk size; that is
// validated here and again at chunker construction.
type ChunkerConfig struct {
	ChunkSize int  `yaml:"chunk_size"`
	Overlap   *int `yaml:"overlap"`
}

// EmbedderConfig configures the embedding provider.
type EmbedderConfig struct {
	BaseURL     string `yaml:"base_url"`
	APIKeyEnv   string `yaml:"api_key_env"`
	Model       string `yaml:"model"`
	Dimension   int    `yaml:"dimension"`
	BatchSize   int    `yaml:"batch_size"`
	TimeoutSecs int    `yaml:"timeout_secs"`
}

// FlatConfig locates the flat backend's persisted artifacts.
type FlatConfig struct {
	Dir string `yaml:"dir"`
}

// QdrantConfig contains connection details for the managed backend.
type QdrantConfig struct {
	Addr        string `yaml:"addr"`
	Collection  string `yaml:"collection"`
	TimeoutSecs int    `yaml:"timeout_secs"`
}

// IndexConfig selects and configures the vector index backend.
type IndexConfig struct {
	Backend string        `yaml:"backend"`
	Flat    *FlatConfig   `yaml:"flat,omitempty"`
	Qdrant  *QdrantConfig `yaml:"qdrant,omitempty"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// AppConfig is the root application configuration structure.
type AppConfig struct {
	Chunker  ChunkerConfig  `yaml:"chunker"`
	Embedder EmbedderConfig `yaml:"embedder"`
	Index    IndexConfig    `yaml:"index"`
	Server   ServerConfig   `yaml:"server"`
}

// Load reads a config from path. A missing file yields defaults. The
// returned config is validated.
func Load(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			cfg := defaultConfig()
			return cfg, nil
		}
		return nil, err
	}
	var cfg AppConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	applyDefaults(&cfg)
	if err := validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// ChunkOverlap returns the resolved chunker overlap.
func (c *AppConfig) ChunkOverlap() int {
	return *c.Chunker.Overlap
}

// EmbedTimeout returns the embedder timeout as a duration.
func (c *AppConfig) EmbedTimeout() time.Duration {
	return time.Duration(c.Embedder.TimeoutSecs) * time.Second
}

func defaultConfig() *AppConfig {
	cfg := &AppConfig{}
	applyDefaults(cfg)
	return cfg
}

func applyDefaults(cfg *AppConfig) {
	if cfg.Chunker.ChunkSize == 0 {
		cfg.Chunker.ChunkSize = 500
	}
	if cfg.Chunker.Overlap == nil {
		overlap := 50
		if overlap >= cfg.Chunker.ChunkSize {
			overlap = cfg.Chunker.ChunkSize / 10
		}
		cfg.Chunker.Overlap = &overlap
	}
	if cfg.Embedder.APIKeyEnv == "" {
		cfg.Embedder.APIKeyEnv = "OPENAI_API_KEY"
	}
	if cfg.Embedder.Model == "" {
		cfg.Embedder.Model = "text-embedding-3-small"
	}
	if cfg.Embedder.Dimension == 0 {
		cfg.Embedder.Dimension = 1536
	}
	if cfg.Embedder.BatchSize == 0 {
		cfg.Embedder.BatchSize = 32
	}
	if cfg.Embedder.TimeoutSecs == 0 {
		cfg.Embedder.TimeoutSecs = 30
	}
	if cfg.Index.Backend == "" {
		cfg.Index.Backend = "flat"
	}
	if cfg.Index.Backend == "flat" && cfg.Index.Flat == nil {
		cfg.Index.Flat = &FlatConfig{Dir: "data/vector_store"}
	}
	if cfg.Index.Flat != nil && cfg.Index.Flat.Dir == "" {
		cfg.Index.Flat.Dir = "data/vector_store"
	}
	if cfg.Index.Qdrant != nil {
		if cfg.Index.Qdrant.Addr == "" {
			cfg.Index.Qdrant.Addr = "localhost:6334"
		}
		if cfg.Index.Qdrant.Collection == "" {
			cfg.Index.Qdrant.Collection = "docqa_embeddings"
		}
		if cfg.Index.Qdrant.TimeoutSecs == 0 {
			cfg.Index.Qdrant.TimeoutSecs = 15
		}
	}
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = ":8080"
	}
}

func validate(cfg *AppConfig) error {
	if cfg.Chunker.ChunkSize <= 0 {
		return fmt.Errorf("chunker.chunk_size must be positive")
	}
	if *cfg.Chunker.Overlap < 0 || *cfg.Chunker.Overlap >= cfg.Chunker.ChunkSize {
		return fmt.Errorf("chunker.overlap must be non-negative and smaller than chunk_size")
	}
	if cfg.Embedder.Dimension <= 0 {
		return fmt.Errorf("embedder.dimension must be positive")
	}
	switch cfg.Index.Backend {
	case "flat":
	case "qdrant":
		if cfg.Index.Qdrant == nil {
			return fmt.Errorf("index.qdrant section is required for the qdrant backend")
		}
	default:
		return fmt.Errorf("unknown index backend %q", cfg.Index.Backend)
	}
	return nil
}
