// Package api provides the ops HTTP endpoint of the dirscout server:
// a liveness probe and, when metrics are enabled, the Prometheus scrape
// endpoint. The scout wire protocol itself does not go through HTTP.
package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/dirscout/dirscout/internal/logger"
	"github.com/dirscout/dirscout/pkg/metrics"
)

// NewRouter creates the chi router for the ops endpoint.
//
// Routes:
//   - GET /health  - liveness probe
//   - GET /metrics - Prometheus metrics (404 when metrics are disabled)
func NewRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	r.Get("/health", handleHealth)

	if metrics.IsEnabled() {
		r.Handle("/metrics", metrics.Handler())
	}

	return r
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

// requestLogger logs ops requests through the structured logger.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		logger.Debug("Ops request",
			"request_id", middleware.GetReqID(r.Context()),
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration_ms", float64(time.Since(start).Microseconds())/1000.0,
		)
	})
}
