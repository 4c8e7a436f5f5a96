package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/docvec/docvec/internal/api"
	"github.com/docvec/docvec/internal/domain"
	"github.com/docvec/docvec/internal/service"
)

// QueryService defines the retrieval operations the handler needs.
type QueryService interface {
	Search(ctx context.Context, collection string, intent service.QueryIntent) ([]service.Result, error)
	Stats(ctx context.Context, collection string) (*service.CollectionStats, error)
	Collections(ctx context.Context) ([]string, error)
}

// QueryRequest is the POST /v1/query body.
type QueryRequest struct {
	Collection  string `json:"collection"`
	Query       string `json:"query"`
	TopK        int    `json:"top_k,omitempty"`
	ContentType string `json:"content_type,omitempty"`
	TablesOnly  bool   `json:"tables_only,omitempty"`
	Source      string `json:"source,omitempty"`
	PageMin     *int   `json:"page_min,omitempty"`
	PageMax     *int   `json:"page_max,omitempty"`
	FullContent bool   `json:"full_content,omitempty"`
}

// QueryResult is one ranked match in a query response.
type QueryResult struct {
	ID         string         `json:"id"`
	Text       string         `json:"text"`
	Metadata   map[string]any `json:"metadata"`
	Similarity float64        `json:"similarity"`
	Truncated  bool           `json:"truncated,omitempty"`
}

// QueryResponse is the POST /v1/query response body.
type QueryResponse struct {
	Collection string        `json:"collection"`
	Results    []QueryResult `json:"results"`
}

// StatsResponse is the collection stats response body.
type StatsResponse struct {
	Collection   string         `json:"collection"`
	TotalChunks  int            `json:"total_chunks"`
	SampleSize   int            `json:"sample_size"`
	ContentTypes map[string]int `json:"content_types"`
}

// QueryHandler serves the retrieval endpoints.
type QueryHandler struct {
	service           QueryService
	defaultCollection string
}

// NewQueryHandler creates a new QueryHandler instance.
func NewQueryHandler(svc QueryService, defaultCollection string) *QueryHandler {
	return &QueryHandler{service: svc, defaultCollection: defaultCollection}
}

// Query handles POST /v1/query.
func (h *QueryHandler) Query(w http.ResponseWriter, r *http.Request) {
	var req QueryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, domain.ErrCodeValidation, "invalid request body")
		return
	}

	collection := req.Collection
	if collection == "" {
		collection = h.defaultCollection
	}

	results, err := h.service.Search(r.Context(), collection, service.QueryIntent{
		Text:        req.Query,
		ContentType: req.ContentType,
		TablesOnly:  req.TablesOnly,
		Source:      req.Source,
		PageMin:     req.PageMin,
		PageMax:     req.PageMax,
		TopK:        req.TopK,
		FullContent: req.FullContent,
	})
	if err != nil {
		api.HandleError(w, err)
		return
	}

	resp := QueryResponse{Collection: collection, Results: make([]QueryResult, 0, len(results))}
	for _, res := range results {
		resp.Results = append(resp.Results, QueryResult{
			ID:         res.ID,
			Text:       res.Text,
			Metadata:   res.Metadata,
			Similarity: res.Similarity,
			Truncated:  res.Truncated,
		})
	}
	api.Success(w, http.StatusOK, resp)
}

// Stats handles GET /v1/collections/{name}/stats.
func (h *QueryHandler) Stats(w http.ResponseWriter, r *http.Request) {
	collection := chi.URLParam(r, "name")
	stats, err := h.service.Stats(r.Context(), collection)
	if err != nil {
		api.HandleError(w, err)
		return
	}
	api.Success(w, http.StatusOK, StatsResponse{
		Collection:   stats.Collection,
		TotalChunks:  stats.TotalChunks,
		SampleSize:   stats.SampleSize,
		ContentTypes: stats.ContentTypes,
	})
}

// Collections handles GET /v1/collections.
func (h *QueryHandler) Collections(w http.ResponseWriter, r *http.Request) {
	names, err := h.service.Collections(r.Context())
	if err != nil {
		api.HandleError(w, err)
		return
	}
	api.Success(w, http.StatusOK, map[string][]string{"collections": names})
}
