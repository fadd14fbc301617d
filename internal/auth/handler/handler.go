package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"roster/internal/auth/guard"
	"roster/internal/auth/service"
	"roster/internal/roster/models"
	"roster/internal/roster/policy"
	dErrors "roster/pkg/domain-errors"
	"roster/pkg/platform/httputil"
	"roster/pkg/requestcontext"
)

// Service defines the authentication operations the handler exposes.
type Service interface {
	SignIn(ctx context.Context, req service.SignInRequest) (*service.SignInResult, error)
	SignOut(ctx context.Context) error
	ResetPassword(ctx context.Context, actor models.Actor, req models.ResetPasswordRequest) error
}

// Handler serves sign-in, sign-out and the caller's own account.
type Handler struct {
	auth   Service
	logger *slog.Logger
}

func New(auth Service, logger *slog.Logger) *Handler {
	return &Handler{auth: auth, logger: logger}
}

// RegisterPublic mounts routes that need no token.
func (h *Handler) RegisterPublic(r chi.Router) {
	r.Post("/auth/sign-in", h.handleSignIn)
}

// RegisterSession mounts routes that need a valid token but no actor.
func (h *Handler) RegisterSession(r chi.Router) {
	r.Post("/auth/sign-out", h.handleSignOut)
}

// RegisterProtected mounts routes behind guard.RequireActor.
func (h *Handler) RegisterProtected(r chi.Router) {
	r.Get("/protected/me", h.handleMe)
	r.Post("/protected/me/password", h.handleResetPassword)
}

type meResponse struct {
	models.Actor
	Permissions map[policy.Action]bool `json:"permissions"`
	Columns     policy.Columns         `json:"columns"`
}

type messageResponse struct {
	Message  string `json:"message"`
	Redirect string `json:"redirect,omitempty"`
}

func (h *Handler) handleSignIn(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req service.SignInRequest
	if err := httputil.DecodeAndPrepare(r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}
	res, err := h.auth.SignIn(ctx, req)
	if err != nil {
		h.writeError(ctx, w, "sign in failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, res)
}

func (h *Handler) handleSignOut(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := h.auth.SignOut(ctx); err != nil {
		h.writeError(ctx, w, "sign out failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, messageResponse{Redirect: policy.PathHome})
}

func (h *Handler) handleMe(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	httputil.WriteJSON(w, http.StatusOK, meResponse{
		Actor:       actor,
		Permissions: policy.Permissions(actor),
		Columns:     policy.ColumnsFor(actor),
	})
}

func (h *Handler) handleResetPassword(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	var req models.ResetPasswordRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}
	if err := h.auth.ResetPassword(ctx, actor, req); err != nil {
		h.writeError(ctx, w, "password reset failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, messageResponse{Message: service.MsgPasswordReset})
}

func (h *Handler) actor(w http.ResponseWriter, r *http.Request) (models.Actor, bool) {
	actor, ok := guard.Actor(r.Context())
	if !ok {
		// guard.RequireActor is missing from the chain
		h.logger.ErrorContext(r.Context(), "actor missing from context",
			"request_id", requestcontext.RequestID(r.Context()),
		)
		httputil.WriteError(w, dErrors.New(dErrors.CodeInternal, "authentication context error"))
	}
	return actor, ok
}

func (h *Handler) writeError(ctx context.Context, w http.ResponseWriter, msg string, err error) {
	if dErrors.CodeOf(err) == dErrors.CodeInternal {
		h.logger.ErrorContext(ctx, msg, "error", err, "request_id", requestcontext.RequestID(ctx))
	} else {
		h.logger.WarnContext(ctx, msg, "error", err, "request_id", requestcontext.RequestID(ctx))
	}
	httputil.WriteError(w, err)
}
