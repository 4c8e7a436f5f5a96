package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/docvec/docvec/internal/api"
	"github.com/docvec/docvec/internal/api/handlers"
	"github.com/docvec/docvec/internal/api/middleware"
)

type RouterConfig struct {
	QueryHandler *handlers.QueryHandler
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	const maxBodyBytes int64 = 1 * 1024 * 1024

	r.Use(middleware.RequestID)
	r.Use(middleware.SentryMiddleware)
	r.Use(middleware.AccessLog)
	r.Use(middleware.MaxBodyBytes(maxBodyBytes))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		api.Success(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Post("/v1/query", cfg.QueryHandler.Query)
	r.Route("/v1/collections", func(r chi.Router) {
		r.Get("/", cfg.QueryHandler.Collections)
		r.Get("/{name}/stats", cfg.QueryHandler.Stats)
	})

	return r
}
