// Package cli implements the docvec commands.
package cli

import (
	"context"
	"fmt"

	"github.com/docvec/docvec/internal/config"
	"github.com/docvec/docvec/internal/openai"
	"github.com/docvec/docvec/internal/service"
	"github.com/docvec/docvec/internal/store"
	"github.com/docvec/docvec/internal/store/pgvector"
	"github.com/docvec/docvec/internal/store/qdrant"
)

// OpenStore connects the configured vector store backend with an
// embedding client attached.
func OpenStore(ctx context.Context, cfg *config.Config) (store.VectorStore, error) {
	if !cfg.HasOpenAI() {
		return nil, fmt.Errorf("DOCVEC_OPENAI_API_KEY is required to embed documents and queries")
	}

	embedder := openai.NewClientWithConfig(openai.Config{
		APIKey:              cfg.OpenAIAPIKey,
		EmbeddingModel:      cfg.EmbeddingModel,
		EmbeddingDimensions: cfg.EmbeddingDimensions,
	})

	switch cfg.Backend {
	case config.BackendPgvector:
		return pgvector.Connect(ctx, pgvector.Config{DatabaseURL: cfg.DatabaseURL}, embedder)
	case config.BackendQdrant:
		return qdrant.Connect(qdrant.Config{
			Host:       cfg.QdrantHost,
			Port:       cfg.QdrantPort,
			APIKey:     cfg.QdrantAPIKey,
			Dimensions: cfg.EmbeddingDimensions,
		}, embedder)
	default:
		return nil, fmt.Errorf("unknown backend %q", cfg.Backend)
	}
}

// ResolveMetric picks the similarity metric: an explicit configuration
// override wins, otherwise the backend's own declaration is trusted.
func ResolveMetric(cfg *config.Config, st store.VectorStore) (store.Metric, error) {
	if cfg.DistanceMetric == "" {
		return st.DistanceMetric(), nil
	}
	switch store.Metric(cfg.DistanceMetric) {
	case store.MetricCosineDistance:
		return store.MetricCosineDistance, nil
	case store.MetricSimilarity:
		return store.MetricSimilarity, nil
	default:
		return "", fmt.Errorf("unknown distance metric %q (want %q or %q)",
			cfg.DistanceMetric, store.MetricCosineDistance, store.MetricSimilarity)
	}
}

// NewQueryService wires a QueryService for the configured backend.
func NewQueryService(cfg *config.Config, st store.VectorStore) (*service.QueryService, error) {
	metric, err := ResolveMetric(cfg, st)
	if err != nil {
		return nil, err
	}
	shaper, err := service.NewResultShaper(service.ShaperConfig{
		Metric:       metric,
		PreviewRunes: cfg.PreviewChars,
	})
	if err != nil {
		return nil, err
	}
	return service.NewQueryService(st, shaper, cfg.MaxResults), nil
}
