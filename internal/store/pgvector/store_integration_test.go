//go:build integration

package pgvector

import (
	"context"
	"hash/fnv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docvec/docvec/internal/domain"
	"github.com/docvec/docvec/internal/store"
	"github.com/docvec/docvec/internal/testutil"
)

// stubEmbedder produces deterministic vectors so similar tests do not
// need a live embedding provider. Texts sharing a first word land close
// together, which is enough to assert ranking.
type stubEmbedder struct{}

func (stubEmbedder) GenerateEmbedding(ctx context.Context, text string) ([]float32, error) {
	return embedText(text), nil
}

func (stubEmbedder) GenerateEmbeddings(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i] = embedText(t)
	}
	return out, nil
}

func embedText(text string) []float32 {
	h := fnv.New32a()
	h.Write([]byte(text))
	seed := h.Sum32()

	v := make([]float32, 1536)
	for i := range v {
		seed = seed*1664525 + 1013904223
		v[i] = float32(seed%1000)/1000 - 0.5
	}
	// bias a few leading components by the first byte so prefix-equal
	// texts rank near each other
	if len(text) > 0 {
		for i := 0; i < 8; i++ {
			v[i] = float32(text[0])
		}
	}
	return v
}

func setupStore(t *testing.T) (*Store, func()) {
	t.Helper()
	ctx := context.Background()

	pc := testutil.NewPostgresContainer(ctx, t)
	url := pc.ConnectionString()

	st, err := Connect(ctx, Config{DatabaseURL: url}, stubEmbedder{})
	if err != nil {
		pc.Terminate(ctx)
		t.Fatalf("failed to connect store: %v", err)
	}

	return st, func() {
		st.Close()
		pc.Terminate(ctx)
	}
}

func seedChunks(ids ...string) []domain.Chunk {
	chunks := make([]domain.Chunk, len(ids))
	for i, id := range ids {
		chunks[i] = domain.NewChunk(id, "content for "+id, map[string]any{
			domain.FieldSource:      "test.pdf",
			domain.FieldContentType: "text",
			domain.FieldPage:        i + 1,
			domain.FieldIsTable:     false,
		})
	}
	return chunks
}

func TestIntegration_UpsertQueryRoundTrip(t *testing.T) {
	st, teardown := setupStore(t)
	defer teardown()
	ctx := context.Background()

	require.NoError(t, st.UpsertBatch(ctx, "docs", seedChunks("chunk_0", "chunk_1", "chunk_2")))

	count, err := st.Count(ctx, "docs")
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	out, err := st.Query(ctx, "docs", "content for chunk_0", 2, nil)
	require.NoError(t, err)
	require.Len(t, out.IDs, 2)
	assert.Equal(t, "chunk_0", out.IDs[0])
	assert.Equal(t, "content for chunk_0", out.Documents[0])
	assert.Equal(t, "test.pdf", out.Metadatas[0][domain.FieldSource])
	// cosine distance of an identical vector is ~0
	assert.InDelta(t, 0, out.Distances[0], 1e-6)
}

func TestIntegration_UpsertOverwrites(t *testing.T) {
	st, teardown := setupStore(t)
	defer teardown()
	ctx := context.Background()

	require.NoError(t, st.UpsertBatch(ctx, "docs", seedChunks("chunk_0")))
	updated := domain.NewChunk("chunk_0", "updated content", map[string]any{
		domain.FieldContentType: "text",
	})
	require.NoError(t, st.UpsertBatch(ctx, "docs", []domain.Chunk{updated}))

	count, err := st.Count(ctx, "docs")
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	out, err := st.Query(ctx, "docs", "updated content", 1, nil)
	require.NoError(t, err)
	require.Len(t, out.Documents, 1)
	assert.Equal(t, "updated content", out.Documents[0])
}

func TestIntegration_QueryWithFilter(t *testing.T) {
	st, teardown := setupStore(t)
	defer teardown()
	ctx := context.Background()

	chunks := seedChunks("chunk_0", "chunk_1", "chunk_2")
	chunks[1].Metadata[domain.FieldContentType] = "table"
	chunks[1].Metadata[domain.FieldIsTable] = true
	require.NoError(t, st.UpsertBatch(ctx, "docs", chunks))

	out, err := st.Query(ctx, "docs", "content", 10,
		domain.And(domain.Eq(domain.FieldContentType, "table")))
	require.NoError(t, err)
	require.Len(t, out.IDs, 1)
	assert.Equal(t, "chunk_1", out.IDs[0])

	min := 2.0
	out, err = st.Query(ctx, "docs", "content", 10,
		domain.And(domain.Range(domain.FieldPage, &min, nil)))
	require.NoError(t, err)
	assert.Len(t, out.IDs, 2)
}

func TestIntegration_MissingCollection(t *testing.T) {
	st, teardown := setupStore(t)
	defer teardown()
	ctx := context.Background()

	_, err := st.Query(ctx, "missing", "anything", 5, nil)
	assert.ErrorIs(t, err, domain.ErrCollectionNotFound)

	_, err = st.Count(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrCollectionNotFound)

	// deleting a missing collection is fine
	assert.NoError(t, st.DeleteCollectionIfExists(ctx, "missing"))
}

func TestIntegration_DeleteCollection(t *testing.T) {
	st, teardown := setupStore(t)
	defer teardown()
	ctx := context.Background()

	require.NoError(t, st.UpsertBatch(ctx, "docs", seedChunks("chunk_0")))
	require.NoError(t, st.DeleteCollectionIfExists(ctx, "docs"))

	_, err := st.Count(ctx, "docs")
	assert.ErrorIs(t, err, domain.ErrCollectionNotFound)
}

func TestIntegration_ListCollectionsAndSample(t *testing.T) {
	st, teardown := setupStore(t)
	defer teardown()
	ctx := context.Background()

	require.NoError(t, st.UpsertBatch(ctx, "docs", seedChunks("chunk_0", "chunk_1")))
	require.NoError(t, st.UpsertBatch(ctx, "filings", seedChunks("chunk_0")))

	names, err := st.ListCollections(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"docs", "filings"}, names)

	metadatas, err := st.Sample(ctx, "docs", 10)
	require.NoError(t, err)
	require.Len(t, metadatas, 2)
	assert.Equal(t, "text", metadatas[0][domain.FieldContentType])
}

func TestIntegration_NewWithExistingPool(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	defer pc.Terminate(ctx)

	require.NoError(t, Migrate(pc.ConnectionString()))

	pool := testutil.NewTestPool(ctx, t, pc)
	st := New(pool, stubEmbedder{})
	defer st.Close()

	require.NoError(t, st.UpsertBatch(ctx, "docs", seedChunks("chunk_0")))
	count, err := st.Count(ctx, "docs")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestIntegration_DistanceMetric(t *testing.T) {
	st, teardown := setupStore(t)
	defer teardown()

	assert.Equal(t, store.MetricCosineDistance, st.DistanceMetric())
}
