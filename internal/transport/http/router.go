// Package httptransport assembles the chi router: the shared middleware
// chain, public and protected route groups, health and metrics.
package httptransport

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"roster/internal/auth/guard"
	authhandler "roster/internal/auth/handler"
	rosterhandler "roster/internal/roster/handler"
	"roster/pkg/platform/httputil"
	"roster/pkg/platform/middleware/auth"
	"roster/pkg/platform/middleware/request"
	"roster/pkg/platform/middleware/requesttime"
	"roster/pkg/requestcontext"
)

const requestTimeout = 30 * time.Second

// HealthCheck reports whether a backing service is reachable.
type HealthCheck func(ctx context.Context) error

type Deps struct {
	Logger      *slog.Logger
	Observer    request.Observer
	Tokens      auth.TokenValidator
	Revocations auth.TokenRevocationChecker
	Actors      guard.ActorResolver
	Auth        *authhandler.Handler
	Roster      *rosterhandler.Handler
	Health      map[string]HealthCheck
	// Metrics serves /metrics; nil uses the default Prometheus gatherer.
	Metrics http.Handler
}

func NewRouter(d Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(request.Recover(d.Logger))
	r.Use(request.RequestID)
	r.Use(request.ClientMetadata)
	r.Use(requesttime.Middleware)
	r.Use(request.Logger(d.Logger, d.Observer))

	metrics := d.Metrics
	if metrics == nil {
		metrics = promhttp.Handler()
	}
	r.Method(http.MethodGet, "/metrics", metrics)
	r.Get("/health", healthHandler(d.Health, d.Logger))

	r.Group(func(r chi.Router) {
		r.Use(chimiddleware.Timeout(requestTimeout))
		d.Auth.RegisterPublic(r)

		r.Group(func(r chi.Router) {
			r.Use(auth.RequireAuth(d.Tokens, d.Revocations, d.Logger))
			d.Auth.RegisterSession(r)

			r.Group(func(r chi.Router) {
				r.Use(guard.RequireActor(d.Actors, d.Logger))
				d.Auth.RegisterProtected(r)
				d.Roster.Register(r)
			})
		})
	})
	return r
}

// healthHandler reports per-dependency status. Failure details go to the log,
// never to the unauthenticated response.
func healthHandler(checks map[string]HealthCheck, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := http.StatusOK
		out := map[string]string{"status": "ok"}
		for name, check := range checks {
			if err := check(r.Context()); err != nil {
				status = http.StatusServiceUnavailable
				out["status"] = "degraded"
				out[name] = "unavailable"
				logger.WarnContext(r.Context(), "health check failed",
					"dependency", name,
					"error", err,
					"request_id", requestcontext.RequestID(r.Context()),
				)
				continue
			}
			out[name] = "ok"
		}
		httputil.WriteJSON(w, status, out)
	}
}
