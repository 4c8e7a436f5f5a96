// Package store defines the capability surface a vector database
// backend must expose. The ingestion and query layers depend only on
// these interfaces, never on a concrete client, so they can be unit
// tested against an in-memory fake.
package store

import (
	"context"

	"github.com/docvec/docvec/internal/domain"
)

// Metric names a backend's ranking value so the result shaper can pick
// the right similarity transform. Silently mixing metrics up produces
// meaningless rankings.
type Metric string

const (
	// MetricCosineDistance means the backend reports cosine distance,
	// lower is closer.
	MetricCosineDistance Metric = "cosine"
	// MetricSimilarity means the backend already reports a similarity,
	// higher is closer.
	MetricSimilarity Metric = "similarity"
)

// QueryOutput carries the parallel result arrays reported by a backend
// for one query: index i of every slice describes the same match.
type QueryOutput struct {
	IDs       []string
	Documents []string
	Metadatas []map[string]any
	Distances []float64
}

// VectorStore is the full backend capability. Embedding computation is
// entirely the backend's responsibility; callers hand over text and
// never see a raw vector.
type VectorStore interface {
	// UpsertBatch inserts or overwrites chunks by id in a collection,
	// creating the collection on first use.
	UpsertBatch(ctx context.Context, collection string, chunks []domain.Chunk) error

	// Query runs a nearest-neighbor search over a collection, restricted
	// by an optional metadata filter. Returns domain.ErrCollectionNotFound
	// when the collection does not exist.
	Query(ctx context.Context, collection, queryText string, topK int, filter *domain.Filter) (*QueryOutput, error)

	// DeleteCollectionIfExists removes a collection and its chunks.
	// Deleting a missing collection is not an error.
	DeleteCollectionIfExists(ctx context.Context, collection string) error

	// Count returns the number of chunks in a collection.
	Count(ctx context.Context, collection string) (int, error)

	// ListCollections returns the names of all collections.
	ListCollections(ctx context.Context) ([]string, error)

	// Sample returns the metadata of up to limit chunks, used for
	// collection statistics.
	Sample(ctx context.Context, collection string, limit int) ([]map[string]any, error)

	// DistanceMetric reports how the backend ranks results.
	DistanceMetric() Metric

	// Close releases the backend connection.
	Close() error
}
