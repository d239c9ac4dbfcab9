package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mrcgomez/safetyagent/internal/api/handlers"
	"github.com/mrcgomez/safetyagent/internal/api/middleware"
)

type RouterConfig struct {
	ChatHandler     *handlers.ChatHandler
	DocumentHandler *handlers.DocumentHandler
	SearchHandler   *handlers.SearchHandler
	StatsHandler    *handlers.StatsHandler
	MaxBodyBytes    int64
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	maxBodyBytes := cfg.MaxBodyBytes
	if maxBodyBytes <= 0 {
		maxBodyBytes = 10 * 1024 * 1024
	}

	r.Use(middleware.RequestID)
	r.Use(middleware.SentryMiddleware)
	r.Use(middleware.AccessLog)
	r.Use(middleware.MaxBodyBytes(maxBodyBytes))

	r.Get("/health", cfg.StatsHandler.Health)

	r.Route("/api", func(r chi.Router) {
		r.Post("/chat", cfg.ChatHandler.Chat)

		r.Post("/upload", cfg.DocumentHandler.Upload)
		r.Route("/documents", func(r chi.Router) {
			r.Get("/", cfg.DocumentHandler.List)
			r.Delete("/{id}", cfg.DocumentHandler.Delete)
			r.Get("/{id}/download", cfg.DocumentHandler.Download)
		})

		r.Get("/search", cfg.SearchHandler.Search)
		r.Get("/stats", cfg.StatsHandler.Stats)
		r.Post("/reindex", cfg.StatsHandler.Reindex)
	})

	return r
}
