// Package api is the HTTP sidecar the host chat app talks to.
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"rpoptimizer/api/middleware"
)

// NewRouter creates and configures the HTTP router.
func NewRouter(logger zerolog.Logger, h *Handler) *chi.Mux {
	r := chi.NewRouter()

	// Metrics middleware (first to capture all requests)
	r.Use(middleware.Metrics)
	r.Use(middleware.MaxBodySize(1 << 20))

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.Logger(logger))
	r.Use(chimw.Recoverer)

	// The host app runs in a browser on another port
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PATCH", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Handle("/metrics", promhttp.Handler())
	r.Get("/health", h.Health)

	r.Route("/v1", func(r chi.Router) {
		r.Post("/check", h.CheckText)
		r.Post("/extract", h.Extract)
		r.Post("/rewrite", h.Rewrite)
		r.Post("/replace", h.Replace)
		r.Post("/optimize", h.Optimize)
		r.Post("/events/rendered", h.Rendered)
		r.Get("/settings", h.GetSettings)
		r.Patch("/settings", h.PatchSettings)
	})

	return r
}

// NewServer wraps the sidecar router in an http.Server.
func NewServer(addr string, logger zerolog.Logger, h *Handler) *http.Server {
	return &http.Server{
		Addr:    addr,
		Handler: NewRouter(logger, h),
	}
}
