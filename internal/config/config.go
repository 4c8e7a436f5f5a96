package config

import (
	"fmt"
	"log"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Backend identifiers accepted by DOCVEC_BACKEND.
const (
	BackendPgvector = "pgvector"
	BackendQdrant   = "qdrant"
)

// Config holds every knob for one docvec invocation. It is passed into
// components at construction; there is no ambient mutable state, so
// tests can run several isolated configurations in one process.
type Config struct {
	Backend string `envconfig:"BACKEND" default:"pgvector"`

	DatabaseURL string `envconfig:"DATABASE_URL"`

	QdrantHost   string `envconfig:"QDRANT_HOST" default:"localhost"`
	QdrantPort   int    `envconfig:"QDRANT_PORT" default:"6334"`
	QdrantAPIKey string `envconfig:"QDRANT_API_KEY"`

	// Embedding model selection is passed through to the backend; no
	// embedding logic lives in this program.
	OpenAIAPIKey        string `envconfig:"OPENAI_API_KEY"`
	EmbeddingModel      string `envconfig:"EMBEDDING_MODEL" default:"text-embedding-3-small"`
	EmbeddingDimensions int    `envconfig:"EMBEDDING_DIMENSIONS" default:"1536"`

	Collection string `envconfig:"COLLECTION" default:"docling_rag_chunks"`
	BatchSize  int    `envconfig:"BATCH_SIZE" default:"100"`

	DefaultResults int `envconfig:"DEFAULT_RESULTS" default:"5"`
	MaxResults     int `envconfig:"MAX_RESULTS" default:"50"`
	PreviewChars   int `envconfig:"PREVIEW_CHARS" default:"300"`

	// DistanceMetric overrides the metric the backend reports. Leave
	// empty to trust the backend's own declaration.
	DistanceMetric string `envconfig:"DISTANCE_METRIC"`

	Port string `envconfig:"PORT" default:"8080"`

	S3Endpoint  string `envconfig:"S3_ENDPOINT"`
	S3AccessKey string `envconfig:"S3_ACCESS_KEY_ID"`
	S3SecretKey string `envconfig:"S3_SECRET_ACCESS_KEY"`
	S3Region    string `envconfig:"S3_REGION" default:"us-east-1"`
}

// Load reads configuration from the environment, with a .env file as
// fallback.
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("DOCVEC", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	if cfg.Backend != BackendPgvector && cfg.Backend != BackendQdrant {
		return nil, fmt.Errorf("unknown backend %q (want %q or %q)", cfg.Backend, BackendPgvector, BackendQdrant)
	}
	if cfg.BatchSize <= 0 {
		return nil, fmt.Errorf("batch size must be positive, got %d", cfg.BatchSize)
	}

	return &cfg, nil
}

// MustLoad loads configuration or exits.
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	return cfg
}

// HasS3 reports whether S3 source fetching is configured.
func (c *Config) HasS3() bool {
	return c.S3AccessKey != "" && c.S3SecretKey != ""
}

// HasOpenAI reports whether an embedding provider is configured.
func (c *Config) HasOpenAI() bool {
	return c.OpenAIAPIKey != ""
}
