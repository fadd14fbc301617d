// Package handler exposes the roster workflows over HTTP. Every route runs
// behind guard.RequireActor and passes the resolved actor into the service.
package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"roster/internal/auth/guard"
	"roster/internal/roster/cell"
	"roster/internal/roster/models"
	"roster/internal/roster/policy"
	"roster/internal/roster/service"
	id "roster/pkg/domain"
	dErrors "roster/pkg/domain-errors"
	"roster/pkg/platform/httputil"
	"roster/pkg/requestcontext"
)

// Service is the roster surface the handler drives.
type Service interface {
	RosterView(ctx context.Context, actor models.Actor, term string) (*service.RosterView, error)
	CellDetail(ctx context.Context, actor models.Actor, leaderID id.UserID) (*service.CellView, error)
	Statistics(ctx context.Context, actor models.Actor, term string) (*cell.Statistics, error)
	SaveAffiliate(ctx context.Context, actor models.Actor, affiliateID *id.AffiliateID, req models.AffiliateRequest) (*models.Affiliate, error)
	DeleteAffiliate(ctx context.Context, actor models.Actor, affiliateID id.AffiliateID) (*service.RosterView, error)
	ListPlaces(ctx context.Context) ([]models.Place, error)
	ListRoles(ctx context.Context, actor models.Actor) ([]models.Role, error)
	ListProfiles(ctx context.Context, actor models.Actor, roleID *id.RoleID, term string) ([]service.ProfileRow, error)
	CreateAccount(ctx context.Context, actor models.Actor, req models.CreateAccountRequest) (*models.ProvisioningResult, error)
	GetProfile(ctx context.Context, actor models.Actor, userID id.UserID) (*models.Profile, error)
	UpdateProfile(ctx context.Context, actor models.Actor, userID id.UserID, req models.UpdateProfileRequest) (*models.Profile, error)
	DeleteLeader(ctx context.Context, actor models.Actor, leaderID id.UserID) (*service.RosterView, error)
	RenameRole(ctx context.Context, actor models.Actor, roleID id.RoleID, req models.RenameRoleRequest) (*models.Role, error)
}

type Handler struct {
	roster Service
	logger *slog.Logger
}

func New(roster Service, logger *slog.Logger) *Handler {
	return &Handler{roster: roster, logger: logger}
}

// Register mounts the roster routes. The caller applies authentication and
// the route guard.
func (h *Handler) Register(r chi.Router) {
	r.Get("/protected/roster", h.handleRoster)
	r.Get("/protected/cells/{leaderID}", h.handleCell)
	r.Get("/protected/statistics", h.handleStatistics)
	r.Post("/protected/affiliates", h.handleCreateAffiliate)
	r.Put("/protected/affiliates/{affiliateID}", h.handleUpdateAffiliate)
	r.Delete("/protected/affiliates/{affiliateID}", h.handleDeleteAffiliate)
	r.Get("/protected/places", h.handlePlaces)
	r.Get("/protected/roles", h.handleRoles)
	r.Get("/protected/leaders", h.handleLeaders)

	r.Post("/protected/admin/accounts", h.handleCreateAccount)
	r.Get("/protected/admin/users/{userID}", h.handleGetProfile)
	r.Put("/protected/admin/users/{userID}", h.handleUpdateProfile)
	r.Delete("/protected/admin/users/{userID}", h.handleDeleteLeader)
	r.Put("/protected/admin/configs/roles/{roleID}", h.handleRenameRole)
}

type messageResponse struct {
	Message  string `json:"message"`
	Redirect string `json:"redirect,omitempty"`
}

type accountCreatedResponse struct {
	messageResponse
	Stage   models.Stage    `json:"stage"`
	Profile *models.Profile `json:"profile"`
}

func (h *Handler) handleRoster(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	view, err := h.roster.RosterView(ctx, actor, searchTerm(r))
	if err != nil {
		h.writeError(ctx, w, "roster view failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, view)
}

func (h *Handler) handleCell(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	leaderID, err := id.ParseUserID(chi.URLParam(r, "leaderID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	cv, err := h.roster.CellDetail(ctx, actor, leaderID)
	if err != nil {
		h.writeError(ctx, w, "cell detail failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, cv)
}

func (h *Handler) handleStatistics(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	stats, err := h.roster.Statistics(ctx, actor, searchTerm(r))
	if err != nil {
		h.writeError(ctx, w, "statistics failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, stats)
}

func (h *Handler) handleCreateAffiliate(w http.ResponseWriter, r *http.Request) {
	h.saveAffiliate(w, r, nil, http.StatusCreated)
}

func (h *Handler) handleUpdateAffiliate(w http.ResponseWriter, r *http.Request) {
	affiliateID, err := id.ParseAffiliateID(chi.URLParam(r, "affiliateID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	h.saveAffiliate(w, r, &affiliateID, http.StatusOK)
}

func (h *Handler) saveAffiliate(w http.ResponseWriter, r *http.Request, affiliateID *id.AffiliateID, status int) {
	ctx := r.Context()
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	var req models.AffiliateRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}
	a, err := h.roster.SaveAffiliate(ctx, actor, affiliateID, req)
	if err != nil {
		h.writeError(ctx, w, "save affiliate failed", err)
		return
	}
	httputil.WriteJSON(w, status, a)
}

func (h *Handler) handleDeleteAffiliate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	affiliateID, err := id.ParseAffiliateID(chi.URLParam(r, "affiliateID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	view, err := h.roster.DeleteAffiliate(ctx, actor, affiliateID)
	if err != nil {
		h.writeError(ctx, w, "delete affiliate failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, view)
}

func (h *Handler) handlePlaces(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	places, err := h.roster.ListPlaces(ctx)
	if err != nil {
		h.writeError(ctx, w, "list places failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, places)
}

func (h *Handler) handleRoles(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	roles, err := h.roster.ListRoles(ctx, actor)
	if err != nil {
		h.writeError(ctx, w, "list roles failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, roles)
}

func (h *Handler) handleLeaders(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	var roleID *id.RoleID
	if raw := r.URL.Query().Get("role"); raw != "" {
		parsed, err := id.ParseRoleID(raw)
		if err != nil {
			httputil.WriteError(w, err)
			return
		}
		roleID = &parsed
	}
	rows, err := h.roster.ListProfiles(ctx, actor, roleID, searchTerm(r))
	if err != nil {
		h.writeError(ctx, w, "list profiles failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, rows)
}

// handleCreateAccount runs the provisioning saga. A failed attempt answers
// with the stage, the sanitized form and a redirect that repopulates it.
func (h *Handler) handleCreateAccount(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	var req models.CreateAccountRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}
	res, err := h.roster.CreateAccount(ctx, actor, req)
	if err != nil {
		var failure *models.ProvisioningFailure
		if errors.As(err, &failure) {
			h.writeFailure(ctx, w, failure)
			return
		}
		h.writeError(ctx, w, "create account failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, accountCreatedResponse{
		messageResponse: messageResponse{Message: models.MsgAccountCreated, Redirect: policy.PathProtected},
		Stage:           res.Stage,
		Profile:         res.Profile,
	})
}

func (h *Handler) writeFailure(ctx context.Context, w http.ResponseWriter, failure *models.ProvisioningFailure) {
	h.logger.WarnContext(ctx, "account provisioning failed",
		"stage", string(failure.Stage),
		"error", failure.Err,
		"request_id", requestcontext.RequestID(ctx),
	)
	status, resp := httputil.NewErrorResponse(failure.Err)
	resp.Description = failure.Message()
	resp.Stage = string(failure.Stage)
	resp.Form = failure.Form
	resp.Redirect = failure.Redirect(policy.PathAdmin)
	httputil.WriteJSON(w, status, resp)
}

func (h *Handler) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	userID, err := id.ParseUserID(chi.URLParam(r, "userID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	p, err := h.roster.GetProfile(ctx, actor, userID)
	if err != nil {
		h.writeError(ctx, w, "get profile failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, p)
}

func (h *Handler) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	userID, err := id.ParseUserID(chi.URLParam(r, "userID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	var req models.UpdateProfileRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}
	p, err := h.roster.UpdateProfile(ctx, actor, userID, req)
	if err != nil {
		h.writeError(ctx, w, "update profile failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, p)
}

func (h *Handler) handleDeleteLeader(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	leaderID, err := id.ParseUserID(chi.URLParam(r, "userID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	view, err := h.roster.DeleteLeader(ctx, actor, leaderID)
	if err != nil {
		h.writeError(ctx, w, "delete leader failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, view)
}

func (h *Handler) handleRenameRole(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	roleID, err := id.ParseRoleID(chi.URLParam(r, "roleID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	var req models.RenameRoleRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}
	role, err := h.roster.RenameRole(ctx, actor, roleID, req)
	if err != nil {
		h.writeError(ctx, w, "rename role failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, role)
}

func (h *Handler) actor(w http.ResponseWriter, r *http.Request) (models.Actor, bool) {
	actor, ok := guard.Actor(r.Context())
	if !ok {
		h.logger.ErrorContext(r.Context(), "actor missing from context",
			"request_id", requestcontext.RequestID(r.Context()),
		)
		httputil.WriteError(w, dErrors.New(dErrors.CodeInternal, "authentication context error"))
	}
	return actor, ok
}

func (h *Handler) writeError(ctx context.Context, w http.ResponseWriter, msg string, err error) {
	attrs := []any{"error", err, "request_id", requestcontext.RequestID(ctx)}
	switch {
	case dErrors.IsPartial(err):
		h.logger.ErrorContext(ctx, msg+": partial", attrs...)
	case dErrors.CodeOf(err) == dErrors.CodeInternal:
		h.logger.ErrorContext(ctx, msg, attrs...)
	default:
		h.logger.WarnContext(ctx, msg, attrs...)
	}
	httputil.WriteError(w, err)
}

func searchTerm(r *http.Request) string {
	return strings.TrimSpace(r.URL.Query().Get("q"))
}
