// Package guard resolves the acting user on every protected request and
// applies the role route rules before any handler runs.
package guard

import (
	"context"
	"log/slog"
	"net/http"

	"roster/internal/roster/models"
	"roster/internal/roster/policy"
	id "roster/pkg/domain"
	dErrors "roster/pkg/domain-errors"
	"roster/pkg/platform/httputil"
	"roster/pkg/requestcontext"
)

// ActorResolver loads the actor behind an authenticated identity.
type ActorResolver interface {
	CurrentActor(ctx context.Context, userID id.UserID) (*models.Actor, error)
}

type contextKey struct{}

// WithActor stores the resolved actor.
func WithActor(ctx context.Context, actor models.Actor) context.Context {
	return context.WithValue(ctx, contextKey{}, actor)
}

// Actor returns the actor stored by RequireActor.
func Actor(ctx context.Context) (models.Actor, bool) {
	a, ok := ctx.Value(contextKey{}).(models.Actor)
	return a, ok
}

// RequireActor resolves a fresh actor for the authenticated user and enforces
// policy.Route on the request path. It must run after auth.RequireAuth.
func RequireActor(resolver ActorResolver, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			var actor *models.Actor
			if userID := requestcontext.UserID(ctx); !userID.IsNil() {
				a, err := resolver.CurrentActor(ctx, userID)
				if err != nil {
					if !dErrors.HasCode(err, dErrors.CodeUnauthorized) {
						logger.ErrorContext(ctx, "failed to resolve actor",
							"user_id", userID.String(),
							"error", err,
							"request_id", requestcontext.RequestID(ctx),
						)
					}
					httputil.WriteError(w, err)
					return
				}
				actor = a
			}

			decision := policy.Route(r.URL.Path, actor)
			if !decision.Allow {
				writeDenied(w, decision.Redirect)
				return
			}
			if actor != nil {
				ctx = WithActor(ctx, *actor)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func writeDenied(w http.ResponseWriter, redirect string) {
	if redirect == policy.PathProtected {
		w.Header().Set("Location", redirect)
		httputil.WriteJSON(w, http.StatusSeeOther, map[string]string{"redirect": redirect})
		return
	}
	code := dErrors.CodeForbidden
	msg := models.MsgForbidden
	if redirect == policy.PathHome {
		code = dErrors.CodeUnauthorized
		msg = "Debes iniciar sesión."
	}
	status, resp := httputil.NewErrorResponse(dErrors.New(code, msg))
	resp.Redirect = redirect
	httputil.WriteJSON(w, status, resp)
}
