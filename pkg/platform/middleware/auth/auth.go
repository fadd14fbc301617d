// Package auth authenticates bearer access tokens.
package auth

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	id "roster/pkg/domain"
	dErrors "roster/pkg/domain-errors"
	"roster/pkg/platform/httputil"
	"roster/pkg/requestcontext"
)

// TokenValidator validates an access token.
type TokenValidator interface {
	ValidateToken(tokenString string) (*Claims, error)
}

// TokenRevocationChecker reports whether a token id has been revoked.
type TokenRevocationChecker interface {
	IsTokenRevoked(ctx context.Context, jti string) (bool, error)
}

// Claims are the values the middleware needs from a validated token.
type Claims struct {
	UserID    id.UserID
	JTI       string
	ExpiresAt time.Time
}

// RequireAuth rejects requests without a valid, unrevoked bearer token and
// stores the caller's identity id and token id in the context.
func RequireAuth(validator TokenValidator, revocationChecker TokenRevocationChecker, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			requestID := requestcontext.RequestID(ctx)

			token, ok := httputil.BearerToken(r)
			if !ok {
				logger.WarnContext(ctx, "unauthorized access - missing token", "request_id", requestID)
				httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "Missing or invalid Authorization header"))
				return
			}

			claims, err := validator.ValidateToken(token)
			if err != nil {
				logger.WarnContext(ctx, "unauthorized access - invalid token", "error", err, "request_id", requestID)
				httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "Invalid or expired token"))
				return
			}

			if revocationChecker != nil {
				if claims.JTI == "" {
					logger.WarnContext(ctx, "unauthorized access - missing token jti", "request_id", requestID)
					httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "Invalid or expired token"))
					return
				}
				revoked, err := revocationChecker.IsTokenRevoked(ctx, claims.JTI)
				if err != nil {
					logger.ErrorContext(ctx, "failed to check token revocation", "error", err, "request_id", requestID)
					httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeInternal, "failed to validate token"))
					return
				}
				if revoked {
					logger.WarnContext(ctx, "unauthorized access - token revoked", "jti", claims.JTI, "request_id", requestID)
					httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "Token has been revoked"))
					return
				}
			}

			ctx = requestcontext.WithUserID(ctx, claims.UserID)
			ctx = requestcontext.WithToken(ctx, claims.JTI, claims.ExpiresAt)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
