package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_WithEnvVars(t *testing.T) {
	os.Setenv("DOCVEC_BACKEND", "qdrant")
	os.Setenv("DOCVEC_QDRANT_HOST", "qdrant.internal")
	os.Setenv("DOCVEC_QDRANT_PORT", "7334")
	os.Setenv("DOCVEC_COLLECTION", "filings")
	os.Setenv("DOCVEC_OPENAI_API_KEY", "sk-test")
	os.Setenv("DOCVEC_S3_ACCESS_KEY_ID", "key")
	os.Setenv("DOCVEC_S3_SECRET_ACCESS_KEY", "secret")
	defer func() {
		os.Unsetenv("DOCVEC_BACKEND")
		os.Unsetenv("DOCVEC_QDRANT_HOST")
		os.Unsetenv("DOCVEC_QDRANT_PORT")
		os.Unsetenv("DOCVEC_COLLECTION")
		os.Unsetenv("DOCVEC_OPENAI_API_KEY")
		os.Unsetenv("DOCVEC_S3_ACCESS_KEY_ID")
		os.Unsetenv("DOCVEC_S3_SECRET_ACCESS_KEY")
	}()

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, BackendQdrant, cfg.Backend)
	assert.Equal(t, "qdrant.internal", cfg.QdrantHost)
	assert.Equal(t, 7334, cfg.QdrantPort)
	assert.Equal(t, "filings", cfg.Collection)
	assert.Equal(t, "sk-test", cfg.OpenAIAPIKey)
	assert.Equal(t, "key", cfg.S3AccessKey)
	assert.Equal(t, "secret", cfg.S3SecretKey)
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, BackendPgvector, cfg.Backend)
	assert.Equal(t, "localhost", cfg.QdrantHost)
	assert.Equal(t, 6334, cfg.QdrantPort)
	assert.Equal(t, "text-embedding-3-small", cfg.EmbeddingModel)
	assert.Equal(t, 1536, cfg.EmbeddingDimensions)
	assert.Equal(t, "docling_rag_chunks", cfg.Collection)
	assert.Equal(t, 100, cfg.BatchSize)
	assert.Equal(t, 5, cfg.DefaultResults)
	assert.Equal(t, 50, cfg.MaxResults)
	assert.Equal(t, 300, cfg.PreviewChars)
	assert.Equal(t, "", cfg.DistanceMetric)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "us-east-1", cfg.S3Region)
}

func TestLoad_UnknownBackend(t *testing.T) {
	os.Setenv("DOCVEC_BACKEND", "chroma")
	defer os.Unsetenv("DOCVEC_BACKEND")

	_, err := Load()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "chroma")
}

func TestLoad_InvalidBatchSize(t *testing.T) {
	os.Setenv("DOCVEC_BATCH_SIZE", "0")
	defer os.Unsetenv("DOCVEC_BATCH_SIZE")

	_, err := Load()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "batch size")
}

func TestHasS3(t *testing.T) {
	cfg := &Config{
		S3AccessKey: "key",
		S3SecretKey: "secret",
	}
	assert.True(t, cfg.HasS3())

	cfg.S3SecretKey = ""
	assert.False(t, cfg.HasS3())
}

func TestHasOpenAI(t *testing.T) {
	cfg := &Config{OpenAIAPIKey: "sk-test"}
	assert.True(t, cfg.HasOpenAI())

	cfg.OpenAIAPIKey = ""
	assert.False(t, cfg.HasOpenAI())
}
