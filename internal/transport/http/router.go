// Package httptransport assembles the public HTTP surface: shared middleware,
// operational endpoints and the domain handlers.
package httptransport

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"nilgate/internal/featuregate"
	"nilgate/internal/platform/metrics"
	dErrors "nilgate/pkg/domain-errors"
	"nilgate/pkg/platform/httputil"
	"nilgate/pkg/platform/middleware/request"
)

// Registrar is implemented by domain handlers.
type Registrar interface {
	Register(r chi.Router)
}

// HealthCheck reports whether a backing dependency is reachable.
type HealthCheck func(ctx context.Context) error

// Deps is everything the router mounts.
type Deps struct {
	Handlers []Registrar
	Gate     *featuregate.Gate
	Gatherer prometheus.Gatherer
	Metrics  *metrics.Metrics
	Health   map[string]HealthCheck
	Logger   *slog.Logger
}

// NewRouter wires middleware, operational endpoints and domain handlers.
func NewRouter(d Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(request.Context)
	r.Use(d.Metrics.Middleware)

	r.Get("/healthz", healthHandler(d.Health, d.Logger))
	if d.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{}))
	}
	if d.Gate != nil {
		r.Get("/flags", flagsHandler(d.Gate))
	}
	for _, h := range d.Handlers {
		h.Register(r)
	}
	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		httputil.WriteError(w, dErrors.New(dErrors.CodeNotFound, "route not found"))
	})
	return r
}

// FlagsResponse is returned by GET /flags.
type FlagsResponse struct {
	Flags     featuregate.FlagSet `json:"flags"`
	Fetched   bool                `json:"fetched"`
	FetchedAt *time.Time          `json:"fetched_at,omitempty"`
	Degraded  bool                `json:"degraded"`
}

func flagsHandler(gate *featuregate.Gate) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		st := gate.Status()
		resp := FlagsResponse{Flags: st.Flags, Fetched: st.Fetched, Degraded: st.Degraded}
		if st.Fetched {
			resp.FetchedAt = &st.FetchedAt
		}
		httputil.WriteJSON(w, http.StatusOK, resp)
	}
}

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

func healthHandler(checks map[string]HealthCheck, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		resp := healthResponse{Status: "ok", Checks: map[string]string{}}
		status := http.StatusOK
		for name, check := range checks {
			if err := check(ctx); err != nil {
				resp.Checks[name] = err.Error()
				resp.Status = "degraded"
				status = http.StatusServiceUnavailable
				if logger != nil {
					logger.WarnContext(ctx, "health check failed", "check", name, "error", err)
				}
				continue
			}
			resp.Checks[name] = "ok"
		}
		httputil.WriteJSON(w, status, resp)
	}
}
