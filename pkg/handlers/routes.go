package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// Router builds the HTTP routes. Static files under publicDir are served for
// any path the gallery routes do not claim.
func (h *Handler) Router(publicDir string) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Get("/", h.PageHandler)
	r.Get("/healthcheck", h.HealthHandler)

	origins := h.service.Config().AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	r.Route("/api", func(r chi.Router) {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: origins,
			AllowedMethods: []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders: []string{"Accept", "Content-Type"},
			MaxAge:         300,
		}))
		r.Get("/gallery", h.GalleryHandler)
		r.Get("/items", h.ItemsHandler)
		r.Get("/open", h.OpenHandler)
		r.Post("/cache/flush", h.FlushCacheHandler)
		r.Post("/verify", h.VerifyHandler)
	})

	if publicDir != "" {
		r.Handle("/*", http.FileServer(http.Dir(publicDir)))
	}
	return r
}
