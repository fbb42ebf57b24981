// Package api exposes statement analysis, reconciliation and account
// mappings over HTTP.
package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/shekelsync/shekelsync/internal/accountmap"
	"github.com/shekelsync/shekelsync/internal/analyzer"
	"github.com/shekelsync/shekelsync/internal/importer"
	"github.com/shekelsync/shekelsync/internal/logger"
)

// NewRouter creates the Chi router with all API routes mounted.
func NewRouter(
	log zerolog.Logger,
	registry *importer.Registry,
	mappings accountmap.Store,
	accts AccountLister,
) http.Handler {
	h := &Handlers{
		analyzer: analyzer.New(registry, mappings),
		registry: registry,
		mappings: mappings,
		accounts: accts,
	}

	r := chi.NewRouter()

	// Middleware.
	r.Use(middleware.RequestID)
	r.Use(requestLogger(log))
	r.Use(middleware.Recoverer)
	r.Use(middleware.SetHeader("Content-Type", "application/json"))

	r.Route("/api/v1", func(r chi.Router) {
		// Statements.
		r.Post("/analyze", h.Analyze)
		r.Post("/reconcile", h.Reconcile)

		// Account mappings.
		r.Get("/mappings", h.ListMappings)
		r.Put("/mappings/{identifier}", h.PutMapping)
		r.Delete("/mappings/{identifier}", h.DeleteMapping)

		// Vendors.
		r.Get("/vendors", h.ListVendors)
	})

	return r
}

// requestLogger puts a request-scoped logger on the context and writes one
// line per request once it completes.
func requestLogger(base zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			log := base.With().
				Str("request_id", middleware.GetReqID(r.Context())).
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Logger()

			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(logger.WithContext(r.Context(), log)))

			log.Info().
				Int("status", ww.Status()).
				Int("bytes", ww.BytesWritten()).
				Dur("duration", time.Since(start)).
				Msg("request")
		})
	}
}
