// Package service runs the roster workflows: uniqueness validation, the
// account provisioning saga, deletions, affiliate and profile edits, and the
// aggregated cell views. Every operation takes the acting models.Actor
// explicitly; nothing reads ambient session state.
package service

import (
	"context"
	"errors"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"roster/internal/identity"
	"roster/internal/roster/metrics"
	"roster/internal/roster/models"
	"roster/internal/roster/store/profile"
	id "roster/pkg/domain"
	dErrors "roster/pkg/domain-errors"
	audit "roster/pkg/platform/audit"
	"roster/pkg/platform/sentinel"
	"roster/pkg/requestcontext"
)

type ProfileStore interface {
	Create(ctx context.Context, p *models.Profile) error
	Update(ctx context.Context, p *models.Profile) error
	FindByID(ctx context.Context, userID id.UserID) (*models.Profile, error)
	List(ctx context.Context, f profile.Filter) ([]models.Profile, error)
	ExistsByEmail(ctx context.Context, email string, exclude *id.UserID) (bool, error)
	ExistsByDPI(ctx context.Context, dpi id.DPI, exclude *id.UserID) (bool, error)
	DeleteIfNoDependents(ctx context.Context, userID id.UserID) error
}

type AffiliateStore interface {
	Create(ctx context.Context, a *models.Affiliate) error
	Update(ctx context.Context, a *models.Affiliate) error
	FindByID(ctx context.Context, affiliateID id.AffiliateID) (*models.Affiliate, error)
	List(ctx context.Context) ([]models.Affiliate, error)
	ListByLeader(ctx context.Context, leaderID id.UserID) ([]models.Affiliate, error)
	ExistsByDPI(ctx context.Context, dpi id.DPI, exclude *id.AffiliateID) (bool, error)
	Delete(ctx context.Context, affiliateID id.AffiliateID) error
}

type RoleStore interface {
	List(ctx context.Context) ([]models.Role, error)
	FindByID(ctx context.Context, roleID id.RoleID) (*models.Role, error)
	Update(ctx context.Context, r *models.Role) error
}

type PlaceStore interface {
	List(ctx context.Context) ([]models.Place, error)
	FindByID(ctx context.Context, placeID id.PlaceID) (*models.Place, error)
}

// IdentityProvider is the credential store. CreateIdentity with confirmed set
// skips email confirmation.
type IdentityProvider interface {
	CreateIdentity(ctx context.Context, email, password string, confirmed bool) (id.UserID, error)
	UpdateIdentity(ctx context.Context, userID id.UserID, changes identity.Changes) error
	DeleteIdentity(ctx context.Context, userID id.UserID) error
}

type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Service orchestrates roster workflows over the stores and the identity
// provider.
type Service struct {
	profiles       ProfileStore
	affiliates     AffiliateStore
	roles          RoleStore
	places         PlaceStore
	identities     IdentityProvider
	logger         *slog.Logger
	auditPublisher AuditPublisher
	metrics        *metrics.Metrics
	tracer         trace.Tracer
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithAuditPublisher(publisher AuditPublisher) Option {
	return func(s *Service) {
		s.auditPublisher = publisher
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithTracer overrides the global otel tracer.
func WithTracer(t trace.Tracer) Option {
	return func(s *Service) {
		if t != nil {
			s.tracer = t
		}
	}
}

// New constructs a Service.
func New(profiles ProfileStore, affiliates AffiliateStore, roles RoleStore, places PlaceStore, identities IdentityProvider, opts ...Option) *Service {
	s := &Service{
		profiles:   profiles,
		affiliates: affiliates,
		roles:      roles,
		places:     places,
		identities: identities,
		tracer:     otel.Tracer("roster/internal/roster/service"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func forbidden() *dErrors.Error {
	return dErrors.New(dErrors.CodeForbidden, models.MsgForbidden)
}

// loadError translates a failed store read.
func loadError(err error, notFoundMsg string) error {
	if errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.New(dErrors.CodeNotFound, notFoundMsg)
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, models.MsgLoadFailed)
}

func (s *Service) logAudit(ctx context.Context, event audit.AuditEvent, subject string, attributes ...any) {
	actorID := requestcontext.UserID(ctx)
	requestID := requestcontext.RequestID(ctx)
	if requestID != "" {
		attributes = append(attributes, "request_id", requestID)
	}
	args := append(attributes, "subject", subject, "event", string(event), "log_type", "audit")
	if s.logger != nil {
		s.logger.InfoContext(ctx, string(event), args...)
	}
	if s.auditPublisher == nil {
		return
	}
	if err := s.auditPublisher.Emit(ctx, audit.Event{
		UserID:    actorID,
		Subject:   subject,
		Action:    string(event),
		RequestID: requestID,
	}); err != nil && s.logger != nil {
		s.logger.WarnContext(ctx, "audit emit failed", "event", string(event), "error", err)
	}
}

// reconcile records a half-applied operation that needs an operator. It logs
// at error level, emits a security audit event and bumps the partial metric.
func (s *Service) reconcile(ctx context.Context, orphan id.UserID, stage string, cause error) {
	if s.logger != nil {
		s.logger.ErrorContext(ctx, "partial account requires reconciliation",
			"orphan_id", orphan.String(),
			"stage", stage,
			"error", cause,
		)
	}
	if s.metrics != nil {
		s.metrics.IncrementPartialAccount()
	}
	if s.auditPublisher != nil {
		if err := s.auditPublisher.Emit(ctx, audit.Event{
			UserID:    requestcontext.UserID(ctx),
			Subject:   orphan.String(),
			Action:    string(audit.EventPartialAccount),
			Reason:    stage,
			RequestID: requestcontext.RequestID(ctx),
		}); err != nil && s.logger != nil {
			s.logger.ErrorContext(ctx, "reconciliation audit emit failed", "orphan_id", orphan.String(), "error", err)
		}
	}
}

func (s *Service) countConflict(err error) {
	if s.metrics == nil {
		return
	}
	if de, ok := dErrors.As(err); ok && de.Code == dErrors.CodeConflict && de.Reason != "" {
		s.metrics.IncrementConflict(de.Reason)
	}
}
