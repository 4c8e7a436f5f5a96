package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/docvec/docvec/internal/api/handlers"
	"github.com/docvec/docvec/internal/domain"
	"github.com/docvec/docvec/internal/service"
)

type MockQueryService struct {
	mock.Mock
}

func (m *MockQueryService) Search(ctx context.Context, collection string, intent service.QueryIntent) ([]service.Result, error) {
	args := m.Called(ctx, collection, intent)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]service.Result), args.Error(1)
}

func (m *MockQueryService) Stats(ctx context.Context, collection string) (*service.CollectionStats, error) {
	args := m.Called(ctx, collection)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.CollectionStats), args.Error(1)
}

func (m *MockQueryService) Collections(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func newTestRouter(svc *MockQueryService) http.Handler {
	return NewRouter(RouterConfig{
		QueryHandler: handlers.NewQueryHandler(svc, "docling_rag_chunks"),
	})
}

func TestHealthEndpoint(t *testing.T) {
	router := newTestRouter(new(MockQueryService))

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestQueryEndpoint(t *testing.T) {
	svc := new(MockQueryService)
	svc.On("Search", mock.Anything, "docling_rag_chunks", mock.MatchedBy(func(intent service.QueryIntent) bool {
		return intent.Text == "revenue growth" && intent.TopK == 3
	})).Return([]service.Result{
		{ID: "chunk_0", Text: "revenue grew", Similarity: 0.91, Metadata: map[string]any{"page": 3}},
	}, nil)

	router := newTestRouter(svc)

	body, _ := json.Marshal(map[string]any{"query": "revenue growth", "top_k": 3})
	req := httptest.NewRequest(http.MethodPost, "/v1/query", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Data handlers.QueryResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "docling_rag_chunks", resp.Data.Collection)
	require.Len(t, resp.Data.Results, 1)
	assert.Equal(t, "chunk_0", resp.Data.Results[0].ID)
	assert.InDelta(t, 0.91, resp.Data.Results[0].Similarity, 1e-9)
}

func TestQueryEndpointExplicitCollection(t *testing.T) {
	svc := new(MockQueryService)
	svc.On("Search", mock.Anything, "filings", mock.Anything).Return([]service.Result{}, nil)

	router := newTestRouter(svc)

	body, _ := json.Marshal(map[string]any{"query": "q", "collection": "filings"})
	req := httptest.NewRequest(http.MethodPost, "/v1/query", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	svc.AssertCalled(t, "Search", mock.Anything, "filings", mock.Anything)
}

func TestQueryEndpointErrors(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"empty query", domain.ErrEmptyQuery, http.StatusBadRequest, domain.ErrCodeValidation},
		{"missing collection", domain.ErrCollectionNotFound, http.StatusNotFound, domain.ErrCodeNotFound},
		{"backend failure", domain.Backendf(nil, "store down"), http.StatusBadGateway, domain.ErrCodeBackend},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockQueryService)
			svc.On("Search", mock.Anything, mock.Anything, mock.Anything).Return(nil, tt.err)

			router := newTestRouter(svc)

			body, _ := json.Marshal(map[string]any{"query": "q"})
			req := httptest.NewRequest(http.MethodPost, "/v1/query", bytes.NewReader(body))
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)

			var resp struct {
				Code string `json:"code"`
			}
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Equal(t, tt.wantCode, resp.Code)
		})
	}
}

func TestQueryEndpointBadBody(t *testing.T) {
	router := newTestRouter(new(MockQueryService))

	req := httptest.NewRequest(http.MethodPost, "/v1/query", bytes.NewReader([]byte("{not json")))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCollectionsEndpoint(t *testing.T) {
	svc := new(MockQueryService)
	svc.On("Collections", mock.Anything).Return([]string{"docs", "filings"}, nil)

	router := newTestRouter(svc)

	req := httptest.NewRequest(http.MethodGet, "/v1/collections", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Data map[string][]string `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, []string{"docs", "filings"}, resp.Data["collections"])
}

func TestStatsEndpoint(t *testing.T) {
	svc := new(MockQueryService)
	svc.On("Stats", mock.Anything, "docs").Return(&service.CollectionStats{
		Collection:   "docs",
		TotalChunks:  42,
		SampleSize:   42,
		ContentTypes: map[string]int{"text": 40, "table": 2},
	}, nil)

	router := newTestRouter(svc)

	req := httptest.NewRequest(http.MethodGet, "/v1/collections/docs/stats", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Data handlers.StatsResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 42, resp.Data.TotalChunks)
	assert.Equal(t, map[string]int{"text": 40, "table": 2}, resp.Data.ContentTypes)
}
