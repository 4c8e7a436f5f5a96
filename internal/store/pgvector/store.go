// Package pgvector implements the vector store capability on top of
// PostgreSQL with the pgvector extension. Embeddings are computed here,
// behind the store boundary, so callers never handle raw vectors.
package pgvector

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	pgv "github.com/pgvector/pgvector-go"

	"github.com/docvec/docvec/internal/domain"
	"github.com/docvec/docvec/internal/store"
)

// EmbeddingClient generates embeddings for chunk and query text.
type EmbeddingClient interface {
	GenerateEmbedding(ctx context.Context, text string) ([]float32, error)
	GenerateEmbeddings(ctx context.Context, texts []string) ([][]float32, error)
}

// Config holds pgvector backend configuration.
type Config struct {
	DatabaseURL string
}

// Store is the pgvector-backed vector store.
type Store struct {
	pool     *pgxpool.Pool
	embedder EmbeddingClient
}

// New creates a Store on an existing connection pool.
func New(pool *pgxpool.Pool, embedder EmbeddingClient) *Store {
	return &Store{pool: pool, embedder: embedder}
}

// Connect opens a connection pool, verifies it and applies schema
// migrations, then returns a ready Store.
func Connect(ctx context.Context, cfg Config, embedder EmbeddingClient) (*Store, error) {
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DOCVEC_DATABASE_URL is required for the pgvector backend")
	}

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if err := Migrate(cfg.DatabaseURL); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return New(pool, embedder), nil
}

// UpsertBatch embeds a batch of chunks with a single provider call and
// writes them with insert-or-overwrite semantics on (collection, id).
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

	now := time.Now().UTC()
	for i, c := range chunks {
		metadata, err := json.Marshal(c.Metadata)
		if err != nil {
			return domain.Backendf(err, "failed to encode metadata for chunk %s", c.ID)
		}
		_, err = s.pool.Exec(ctx,
			`INSERT INTO chunks (collection, chunk_id, content, metadata, embedding, created_at, updated_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $6)
			 ON CONFLICT (collection, chunk_id) DO UPDATE SET
				content    = EXCLUDED.content,
				metadata   = EXCLUDED.metadata,
				embedding  = EXCLUDED.embedding,
				updated_at = EXCLUDED.updated_at`,
			collection, c.ID, c.Text, metadata, pgv.NewVector(embeddings[i]), now,
		)
		if err != nil {
			return domain.Backendf(err, "failed to upsert chunk %s", c.ID)
		}
	}
	return nil
}

// Query embeds the query text and runs a cosine nearest-neighbor scan
// restricted by the translated metadata filter.
func (s *Store) Query(ctx context.Context, collection, queryText string, topK int, filter *domain.Filter) (*store.QueryOutput, error) {
	exists, err := s.collectionExists(ctx, collection)
	if err != nil {
		return nil, domain.Backendf(err, "failed to check collection %q", collection)
	}
	if !exists {
		return nil, domain.ErrCollectionNotFound
	}

	embedding, err := s.embedder.GenerateEmbedding(ctx, queryText)
	if err != nil {
		return nil, domain.Backendf(err, "failed to embed query")
	}

	args := []any{pgv.NewVector(embedding), collection}
	where, args, err := filterSQL(filter, args)
	if err != nil {
		return nil, err
	}

	started := time.Now()
	sql := fmt.Sprintf(
		`SELECT chunk_id, content, metadata, embedding <=> $1 AS distance
		 FROM chunks
		 WHERE collection = $2%s
		 ORDER BY distance
		 LIMIT %d`, where, topK)

	rows, err := s.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, domain.Backendf(err, "query against collection %q failed", collection)
	}
	defer rows.Close()

	out := &store.QueryOutput{}
	for rows.Next() {
		var (
			id, content string
			rawMeta     []byte
			distance    float64
		)
		if err := rows.Scan(&id, &content, &rawMeta, &distance); err != nil {
			return nil, domain.Backendf(err, "failed to scan query result")
		}
		var metadata map[string]any
		if err := json.Unmarshal(rawMeta, &metadata); err != nil {
			return nil, domain.Backendf(err, "failed to decode metadata for chunk %s", id)
		}
		out.IDs = append(out.IDs, id)
		out.Documents = append(out.Documents, content)
		out.Metadatas = append(out.Metadatas, metadata)
		out.Distances = append(out.Distances, distance)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.Backendf(err, "query against collection %q failed", collection)
	}

	s.logQuery(ctx, collection, queryText, len(out.IDs), time.Since(started))
	return out, nil
}

// DeleteCollectionIfExists removes a collection; chunks cascade.
func (s *Store) DeleteCollectionIfExists(ctx context.Context, collection string) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM collections WHERE name = $1`, collection)
	if err != nil {
		return domain.Backendf(err, "failed to delete collection %q", collection)
	}
	return nil
}

// Count returns the number of chunks in a collection.
func (s *Store) Count(ctx context.Context, collection string) (int, error) {
	exists, err := s.collectionExists(ctx, collection)
	if err != nil {
		return 0, domain.Backendf(err, "failed to check collection %q", collection)
	}
	if !exists {
		return 0, domain.ErrCollectionNotFound
	}

	var count int
	err = s.pool.QueryRow(ctx, `SELECT count(*) FROM chunks WHERE collection = $1`, collection).Scan(&count)
	if err != nil {
		return 0, domain.Backendf(err, "failed to count collection %q", collection)
	}
	return count, nil
}

// ListCollections returns all collection names, sorted.
func (s *Store) ListCollections(ctx context.Context) ([]string, error) {
	rows, err := s.pool.Query(ctx, `SELECT name FROM collections ORDER BY name`)
	if err != nil {
		return nil, domain.Backendf(err, "failed to list collections")
	}
	defer rows.Close()

	names := []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, domain.Backendf(err, "failed to scan collection name")
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.Backendf(err, "failed to list collections")
	}
	return names, nil
}

// Sample returns the metadata of up to limit chunks.
func (s *Store) Sample(ctx context.Context, collection string, limit int) ([]map[string]any, error) {
	exists, err := s.collectionExists(ctx, collection)
	if err != nil {
		return nil, domain.Backendf(err, "failed to check collection %q", collection)
	}
	if !exists {
		return nil, domain.ErrCollectionNotFound
	}

	rows, err := s.pool.Query(ctx,
		`SELECT metadata FROM chunks WHERE collection = $1 LIMIT $2`, collection, limit)
	if err != nil {
		return nil, domain.Backendf(err, "failed to sample collection %q", collection)
	}
	defer rows.Close()

	metadatas := []map[string]any{}
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, domain.Backendf(err, "failed to scan metadata")
		}
		var metadata map[string]any
		if err := json.Unmarshal(raw, &metadata); err != nil {
			return nil, domain.Backendf(err, "failed to decode metadata")
		}
		metadatas = append(metadatas, metadata)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.Backendf(err, "failed to sample collection %q", collection)
	}
	return metadatas, nil
}

// DistanceMetric reports cosine distance, matching the <=> operator.
func (s *Store) DistanceMetric() store.Metric {
	return store.MetricCosineDistance
}

// Close releases the connection pool.
func (s *Store) Close() error {
	s.pool.Close()
	return nil
}

func (s *Store) ensureCollection(ctx context.Context, collection string) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO collections (name) VALUES ($1) ON CONFLICT (name) DO NOTHING`, collection)
	return err
}

func (s *Store) collectionExists(ctx context.Context, collection string) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM collections WHERE name = $1)`, collection).Scan(&exists)
	return exists, err
}

// logQuery records the query in the query log. Logging failures are
// reported but never fail the query itself.
func (s *Store) logQuery(ctx context.Context, collection, queryText string, results int, elapsed time.Duration) {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO query_log (id, collection, query_text, result_count, duration_ms)
		 VALUES ($1, $2, $3, $4, $5)`,
		uuid.NewString(), collection, queryText, results, elapsed.Milliseconds(),
	)
	if err != nil {
		log.Printf("failed to record query log entry: %v", err)
	}
}
