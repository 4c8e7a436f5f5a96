package openai

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockEmbeddingAPI is a mock for the embedding API
type MockEmbeddingAPI struct {
	mock.Mock
}

func (m *MockEmbeddingAPI) CreateEmbeddings(ctx context.Context, texts []string) ([][]float32, error) {
	args := m.Called(ctx, texts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([][]float32), args.Error(1)
}

func vec(dims int, fill float32) []float32 {
	v := make([]float32, dims)
	for i := range v {
		v[i] = fill
	}
	return v
}

func TestClient_GenerateEmbeddings_Success(t *testing.T) {
	mockAPI := new(MockEmbeddingAPI)
	client := &Client{api: mockAPI, dimensions: 4}

	ctx := context.Background()
	texts := []string{"first chunk", "second chunk"}
	mockAPI.On("CreateEmbeddings", ctx, texts).Return([][]float32{vec(4, 0.1), vec(4, 0.2)}, nil)

	embeddings, err := client.GenerateEmbeddings(ctx, texts)

	require.NoError(t, err)
	require.Len(t, embeddings, 2)
	assert.Equal(t, vec(4, 0.1), embeddings[0])
	mockAPI.AssertNumberOfCalls(t, "CreateEmbeddings", 1)
}

func TestClient_GenerateEmbeddings_EmptyBatch(t *testing.T) {
	mockAPI := new(MockEmbeddingAPI)
	client := &Client{api: mockAPI, dimensions: 4}

	embeddings, err := client.GenerateEmbeddings(context.Background(), nil)

	require.NoError(t, err)
	assert.Empty(t, embeddings)
	mockAPI.AssertNotCalled(t, "CreateEmbeddings")
}

func TestClient_GenerateEmbeddings_EmptyText(t *testing.T) {
	mockAPI := new(MockEmbeddingAPI)
	client := &Client{api: mockAPI, dimensions: 4}

	_, err := client.GenerateEmbeddings(context.Background(), []string{"ok", ""})

	assert.ErrorIs(t, err, ErrEmptyText)
	mockAPI.AssertNotCalled(t, "CreateEmbeddings")
}

func TestClient_GenerateEmbeddings_DimensionMismatch(t *testing.T) {
	mockAPI := new(MockEmbeddingAPI)
	client := &Client{api: mockAPI, dimensions: 4}

	ctx := context.Background()
	mockAPI.On("CreateEmbeddings", ctx, []string{"text"}).Return([][]float32{vec(3, 0.1)}, nil)

	_, err := client.GenerateEmbeddings(ctx, []string{"text"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "dimensions")
}

func TestClient_GenerateEmbeddings_APIError(t *testing.T) {
	mockAPI := new(MockEmbeddingAPI)
	client := &Client{api: mockAPI, dimensions: 4}

	ctx := context.Background()
	cause := errors.New("rate limited")
	mockAPI.On("CreateEmbeddings", ctx, []string{"text"}).Return(nil, cause)

	_, err := client.GenerateEmbeddings(ctx, []string{"text"})

	assert.ErrorIs(t, err, cause)
}

func TestClient_GenerateEmbedding_Single(t *testing.T) {
	mockAPI := new(MockEmbeddingAPI)
	client := &Client{api: mockAPI, dimensions: 4}

	ctx := context.Background()
	mockAPI.On("CreateEmbeddings", ctx, []string{"text"}).Return([][]float32{vec(4, 0.5)}, nil)

	embedding, err := client.GenerateEmbedding(ctx, "text")

	require.NoError(t, err)
	assert.Equal(t, vec(4, 0.5), embedding)
}

func TestNewClientWithConfig_Defaults(t *testing.T) {
	client := NewClientWithConfig(Config{APIKey: "sk-test"})
	assert.Equal(t, DefaultEmbeddingDimensions, client.Dimensions())

	client = NewClientWithConfig(Config{APIKey: "sk-test", EmbeddingDimensions: 3072})
	assert.Equal(t, 3072, client.Dimensions())
}

func TestNewClientFromEnv(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	_, err := NewClientFromEnv()
	assert.ErrorIs(t, err, ErrNoAPIKey)

	t.Setenv("OPENAI_API_KEY", "sk-test")
	client, err := NewClientFromEnv()
	require.NoError(t, err)
	assert.NotNil(t, client)
}
