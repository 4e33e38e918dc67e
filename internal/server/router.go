package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/relaymind/knowledgecore/internal/api"
	"github.com/relaymind/knowledgecore/internal/api/handlers"
	"github.com/relaymind/knowledgecore/internal/api/middleware"
)

type RouterConfig struct {
	IngestHandler   *handlers.IngestHandler
	DocumentHandler *handlers.DocumentHandler
	ContextHandler  *handlers.ContextHandler
	TrainHandler    *handlers.TrainHandler
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Uploads carry whole files in the request body.
	const maxBodyBytes int64 = 50 * 1024 * 1024

	r.Use(middleware.RequestID)
	r.Use(middleware.SentryMiddleware)
	r.Use(middleware.AccessLog)
	r.Use(middleware.MaxBodyBytes(maxBodyBytes))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		api.Success(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireOwner)

		r.Route("/containers/{containerID}", func(r chi.Router) {
			r.Post("/documents", cfg.IngestHandler.Upload)
			r.Get("/documents", cfg.DocumentHandler.List)
			r.Delete("/documents", cfg.DocumentHandler.Clear)

			r.Post("/train/website", cfg.TrainHandler.Website)
			r.Post("/train/youtube", cfg.TrainHandler.YouTube)

			r.Post("/context", cfg.ContextHandler.Query)
		})

		r.Delete("/documents/{id}", cfg.DocumentHandler.Delete)
	})

	return r
}
