// Package httptransport assembles the HTTP surface: middleware chain, health
// and metrics endpoints, and the authenticated scoring API.
package httptransport

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	scoringhandler "nexolend/internal/scoring/handler"
	"nexolend/pkg/platform/httputil"
	"nexolend/pkg/platform/middleware/auth"
	"nexolend/pkg/platform/middleware/metadata"
	"nexolend/pkg/platform/middleware/requestid"
	"nexolend/pkg/platform/middleware/requesttime"
)

const healthCheckTimeout = 2 * time.Second

// HealthCheck probes one backing dependency.
type HealthCheck struct {
	Name  string
	Check func(ctx context.Context) error
}

// NewRouter wires middleware and mounts all endpoints. Everything under the
// scoring API requires a bearer token; /healthz and /metrics stay open for
// the platform's probes and scrapers.
func NewRouter(scoring *scoringhandler.Handler, validator auth.JWTValidator, logger *slog.Logger, checks ...HealthCheck) http.Handler {
	r := chi.NewRouter()
	r.Use(requestid.Middleware)
	r.Use(requesttime.Middleware)
	r.Use(metadata.ClientMetadata)

	r.Get("/healthz", healthHandler(logger, checks))
	r.Handle("/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		r.Use(auth.RequireAuth(validator, logger))
		scoring.Register(r, auth.RequireAdmin(logger))
	})

	return r
}

func healthHandler(logger *slog.Logger, checks []HealthCheck) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
		defer cancel()

		status := map[string]string{"status": "ok"}
		healthy := true
		for _, c := range checks {
			if err := c.Check(ctx); err != nil {
				logger.WarnContext(ctx, "health check failed", "dependency", c.Name, "error", err)
				status[c.Name] = "unavailable"
				healthy = false
				continue
			}
			status[c.Name] = "ok"
		}

		code := http.StatusOK
		if !healthy {
			status["status"] = "degraded"
			code = http.StatusServiceUnavailable
		}
		httputil.WriteJSON(w, code, status)
	}
}
