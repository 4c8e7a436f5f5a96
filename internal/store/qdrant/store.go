// Package qdrant implements the vector store capability on a Qdrant
// server. Qdrant reports cosine similarity directly, not a distance, so
// the result shaper is told to use the identity transform.
package qdrant

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	qd "github.com/qdrant/go-client/qdrant"

	"github.com/docvec/docvec/internal/domain"
	"github.com/docvec/docvec/internal/store"
)

const (
	payloadChunkID = "chunk_id"
	payloadContent = "content"
)

// EmbeddingClient generates embeddings for chunk and query text.
type EmbeddingClient interface {
	GenerateEmbedding(ctx context.Context, text string) ([]float32, error)
	GenerateEmbeddings(ctx context.Context, texts []string) ([][]float32, error)
}

// Config holds qdrant backend configuration.
type Config struct {
	Host       string
	Port       int
	APIKey     string
	Dimensions int
}

// Store is the Qdrant-backed vector store.
type Store struct {
	client     *qd.Client
	embedder   EmbeddingClient
	dimensions uint64
}

// Connect dials the Qdrant gRPC endpoint and returns a ready Store.
func Connect(cfg Config, embedder EmbeddingClient) (*Store, error) {
	client, err := qd.NewClient(&qd.Config{
		Host:   cfg.Host,
		Port:   cfg.Port,
		APIKey: cfg.APIKey,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to qdrant: %w", err)
	}
	return &Store{
		client:     client,
		embedder:   embedder,
		dimensions: uint64(cfg.Dimensions),
	}, nil
}

// UpsertBatch embeds a batch of chunks and upserts them as points. The
// collection is created on first use. Point ids are deterministic
// UUIDv5 values derived from collection and chunk id, so re-ingesting
// the same id overwrites instead of duplicating; the original chunk id
// travels in the payload.
func (s *Store) UpsertBatch(ctx context.Context, collection string, chunks []domain.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}

	if err := s.ensureCollection(ctx, collection); err != nil {
		return domain.Backendf(err, "failed to create collection %q", collection)
	}

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}
	embeddings, err := s.embedder.GenerateEmbeddings(ctx, texts)
	if err != nil {
		return domain.Backendf(err, "failed to embed batch")
	}

	points := make([]*qd.PointStruct, len(chunks))
	for i, c := range chunks {
		payload := map[string]any{
			payloadChunkID: c.ID,
			payloadContent: c.Text,
		}
		for field, value := range c.Metadata {
			payload[field] = value
		}
		points[i] = &qd.PointStruct{
			Id:      qd.NewIDUUID(pointID(collection, c.ID)),
			Vectors: qd.NewVectors(embeddings[i]...),
			Payload: qd.NewValueMap(payload),
		}
	}

	_, err = s.client.Upsert(ctx, &qd.UpsertPoints{
		CollectionName: collection,
		Points:         points,
		Wait:           qd.PtrOf(true),
	})
	if err != nil {
		return domain.Backendf(err, "failed to upsert batch into collection %q", collection)
	}
	return nil
}

// Query embeds the query text and runs a filtered similarity search.
func (s *Store) Query(ctx context.Context, collection, queryText string, topK int, filter *domain.Filter) (*store.QueryOutput, error) {
	if err := s.requireCollection(ctx, collection); err != nil {
		return nil, err
	}

	embedding, err := s.embedder.GenerateEmbedding(ctx, queryText)
	if err != nil {
		return nil, domain.Backendf(err, "failed to embed query")
	}

	qf, err := buildFilter(filter)
	if err != nil {
		return nil, err
	}

	points, err := s.client.Query(ctx, &qd.QueryPoints{
		CollectionName: collection,
		Query:          qd.NewQuery(embedding...),
		Filter:         qf,
		Limit:          qd.PtrOf(uint64(topK)),
		WithPayload:    qd.NewWithPayload(true),
	})
	if err != nil {
		return nil, domain.Backendf(err, "query against collection %q failed", collection)
	}

	out := &store.QueryOutput{}
	for _, p := range points {
		id, content, metadata := splitPayload(p.Payload)
		out.IDs = append(out.IDs, id)
		out.Documents = append(out.Documents, content)
		out.Metadatas = append(out.Metadatas, metadata)
		out.Distances = append(out.Distances, float64(p.Score))
	}
	return out, nil
}

// DeleteCollectionIfExists drops a collection; a missing collection is
// not an error.
func (s *Store) DeleteCollectionIfExists(ctx context.Context, collection string) error {
	exists, err := s.client.CollectionExists(ctx, collection)
	if err != nil {
		return domain.Backendf(err, "failed to check collection %q", collection)
	}
	if !exists {
		return nil
	}
	if err := s.client.DeleteCollection(ctx, collection); err != nil {
		return domain.Backendf(err, "failed to delete collection %q", collection)
	}
	return nil
}

// Count returns the exact number of points in a collection.
func (s *Store) Count(ctx context.Context, collection string) (int, error) {
	if err := s.requireCollection(ctx, collection); err != nil {
		return 0, err
	}
	count, err := s.client.Count(ctx, &qd.CountPoints{
		CollectionName: collection,
		Exact:          qd.PtrOf(true),
	})
	if err != nil {
		return 0, domain.Backendf(err, "failed to count collection %q", collection)
	}
	return int(count), nil
}

// ListCollections returns the names of all collections.
func (s *Store) ListCollections(ctx context.Context) ([]string, error) {
	names, err := s.client.ListCollections(ctx)
	if err != nil {
		return nil, domain.Backendf(err, "failed to list collections")
	}
	return names, nil
}

// Sample scrolls up to limit points and returns their metadata.
func (s *Store) Sample(ctx context.Context, collection string, limit int) ([]map[string]any, error) {
	if err := s.requireCollection(ctx, collection); err != nil {
		return nil, err
	}
	points, err := s.client.Scroll(ctx, &qd.ScrollPoints{
		CollectionName: collection,
		Limit:          qd.PtrOf(uint32(limit)),
		WithPayload:    qd.NewWithPayload(true),
	})
	if err != nil {
		return nil, domain.Backendf(err, "failed to sample collection %q", collection)
	}

	metadatas := make([]map[string]any, 0, len(points))
	for _, p := range points {
		_, _, metadata := splitPayload(p.Payload)
		metadatas = append(metadatas, metadata)
	}
	return metadatas, nil
}

// DistanceMetric reports similarity: Qdrant scores are already
// higher-is-closer for cosine collections.
func (s *Store) DistanceMetric() store.Metric {
	return store.MetricSimilarity
}

// Close closes the gRPC connection.
func (s *Store) Close() error {
	return s.client.Close()
}

func (s *Store) ensureCollection(ctx context.Context, collection string) error {
	exists, err := s.client.CollectionExists(ctx, collection)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}
	return s.client.CreateCollection(ctx, &qd.CreateCollection{
		CollectionName: collection,
		VectorsConfig: qd.NewVectorsConfig(&qd.VectorParams{
			Size:     s.dimensions,
			Distance: qd.Distance_Cosine,
		}),
	})
}

func (s *Store) requireCollection(ctx context.Context, collection string) error {
	exists, err := s.client.CollectionExists(ctx, collection)
	if err != nil {
		return domain.Backendf(err, "failed to check collection %q", collection)
	}
	if !exists {
		return domain.ErrCollectionNotFound
	}
	return nil
}

// pointID derives a stable UUID for a chunk within a collection.
func pointID(collection, chunkID string) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte("docvec/"+collection+"/"+chunkID)).String()
}

// splitPayload separates the chunk id and content from the metadata
// fields of a point payload.
func splitPayload(payload map[string]*qd.Value) (id, content string, metadata map[string]any) {
	metadata = make(map[string]any, len(payload))
	for field, value := range payload {
		switch field {
		case payloadChunkID:
			id = value.GetStringValue()
		case payloadContent:
			content = value.GetStringValue()
		default:
			metadata[field] = valueToAny(value)
		}
	}
	return id, content, metadata
}

func valueToAny(v *qd.Value) any {
	switch v.GetKind().(type) {
	case *qd.Value_StringValue:
		return v.GetStringValue()
	case *qd.Value_IntegerValue:
		return v.GetIntegerValue()
	case *qd.Value_DoubleValue:
		return v.GetDoubleValue()
	case *qd.Value_BoolValue:
		return v.GetBoolValue()
	default:
		return nil
	}
}
