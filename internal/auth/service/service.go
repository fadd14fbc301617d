// Package service authenticates roster users: sign-in against the identity
// provider, sign-out through the revocation list, password resets, and the
// per-request actor resolution every roster operation receives.
package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"roster/internal/auth/metrics"
	"roster/internal/identity"
	jwttoken "roster/internal/jwt_token"
	"roster/internal/roster/models"
	id "roster/pkg/domain"
	dErrors "roster/pkg/domain-errors"
	audit "roster/pkg/platform/audit"
	"roster/pkg/platform/sentinel"
	"roster/pkg/requestcontext"
)

type IdentityProvider interface {
	VerifyCredentials(ctx context.Context, email, password string) (*identity.Identity, error)
	FindIdentity(ctx context.Context, userID id.UserID) (*identity.Identity, error)
	UpdateIdentity(ctx context.Context, userID id.UserID, changes identity.Changes) error
}

type ProfileStore interface {
	FindByID(ctx context.Context, userID id.UserID) (*models.Profile, error)
}

type RoleStore interface {
	FindByID(ctx context.Context, roleID id.RoleID) (*models.Role, error)
}

type TokenIssuer interface {
	GenerateAccessToken(userID id.UserID, email string) (*jwttoken.IssuedToken, error)
}

// RevocationList holds revoked token ids until their tokens expire.
type RevocationList interface {
	RevokeToken(ctx context.Context, jti string, ttl time.Duration) error
}

type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Lockout throttles repeated credential failures for an email and address.
type Lockout interface {
	Check(ctx context.Context, email, ip string) error
	RecordFailure(ctx context.Context, email, ip string) error
	Clear(ctx context.Context, email, ip string) error
}

type Service struct {
	identities     IdentityProvider
	profiles       ProfileStore
	roles          RoleStore
	tokens         TokenIssuer
	trl            RevocationList
	logger         *slog.Logger
	auditPublisher AuditPublisher
	metrics        *metrics.Metrics
	lockout        Lockout
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

func WithLockout(l Lockout) Option {
	return func(s *Service) {
		s.lockout = l
	}
}

func New(identities IdentityProvider, profiles ProfileStore, roles RoleStore, tokens TokenIssuer, trl RevocationList, opts ...Option) *Service {
	s := &Service{
		identities: identities,
		profiles:   profiles,
		roles:      roles,
		tokens:     tokens,
		trl:        trl,
		logger:     slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SignInRequest is the sign-in form.
type SignInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Normalize trims the email.
func (r *SignInRequest) Normalize() {
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
}

// SignInResult is an issued session.
type SignInResult struct {
	AccessToken string        `json:"access_token"`
	TokenType   string        `json:"token_type"`
	ExpiresAt   time.Time     `json:"expires_at"`
	Actor       *models.Actor `json:"actor"`
}

// SignIn verifies credentials, refuses deactivated profiles and issues an
// access token.
func (s *Service) SignIn(ctx context.Context, req SignInRequest) (*SignInResult, error) {
	req.Normalize()
	if req.Email == "" || req.Password == "" {
		return nil, dErrors.New(dErrors.CodeValidation, MsgCredentialsRequired)
	}
	ip := requestcontext.ClientIP(ctx)
	if s.lockout != nil {
		if err := s.lockout.Check(ctx, req.Email, ip); err != nil {
			if dErrors.HasCode(err, dErrors.CodeRateLimited) {
				s.signInFailed(ctx, req.Email, "locked")
			}
			return nil, err
		}
	}

	ident, err := s.identities.VerifyCredentials(ctx, req.Email, req.Password)
	if err != nil {
		msg := identity.UserMessage(err)
		if msg == "" {
			msg = MsgSignInUnavailable
		}
		if identity.HasCode(err, identity.CodeUnexpected) {
			s.signInFailed(ctx, req.Email, "provider_error")
			return nil, dErrors.Wrap(err, dErrors.CodeProvider, msg)
		}
		s.signInFailed(ctx, req.Email, "credentials")
		if s.lockout != nil {
			if lerr := s.lockout.RecordFailure(ctx, req.Email, ip); lerr != nil {
				s.logger.ErrorContext(ctx, "failed to record sign-in failure", "error", lerr)
			}
		}
		return nil, dErrors.Wrap(err, dErrors.CodeUnauthorized, msg)
	}
	if s.lockout != nil {
		if err := s.lockout.Clear(ctx, req.Email, ip); err != nil {
			s.logger.ErrorContext(ctx, "failed to clear sign-in failures", "error", err)
		}
	}

	actor, err := s.resolve(ctx, ident)
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeInternal) {
			s.logger.ErrorContext(ctx, "failed to verify account status", "user_id", ident.ID.String(), "error", err)
			s.signInFailed(ctx, req.Email, "profile_unavailable")
			return nil, dErrors.Wrap(err, dErrors.CodeUnauthorized, MsgSignInUnavailable)
		}
		s.signInFailed(ctx, req.Email, "inactive")
		return nil, err
	}

	issued, err := s.tokens.GenerateAccessToken(ident.ID, ident.Email)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to issue token")
	}

	if s.metrics != nil {
		s.metrics.IncrementSignIn("success")
	}
	s.logAudit(ctx, audit.EventSignedIn, ident.ID, "")
	return &SignInResult{
		AccessToken: issued.Token,
		TokenType:   "Bearer",
		ExpiresAt:   issued.ExpiresAt,
		Actor:       actor,
	}, nil
}

// SignOut revokes the caller's current token until it would have expired.
func (s *Service) SignOut(ctx context.Context) error {
	jti := requestcontext.TokenID(ctx)
	if jti == "" {
		return dErrors.New(dErrors.CodeUnauthorized, MsgSessionRequired)
	}
	ttl := requestcontext.TokenExpiry(ctx).Sub(requestcontext.Now(ctx))
	if ttl > 0 {
		if err := s.trl.RevokeToken(ctx, jti, ttl); err != nil {
			s.logger.ErrorContext(ctx, "failed to add token to revocation list", "error", err, "jti", jti)
			return dErrors.Wrap(err, dErrors.CodeInternal, MsgSignOutFailed)
		}
		if s.metrics != nil {
			s.metrics.IncrementTokenRevoked()
		}
	}
	s.logAudit(ctx, audit.EventSignedOut, requestcontext.UserID(ctx), "")
	return nil
}

// ResetPassword changes the actor's own password.
func (s *Service) ResetPassword(ctx context.Context, actor models.Actor, req models.ResetPasswordRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}
	if err := s.identities.UpdateIdentity(ctx, actor.UserID, identity.Changes{Password: &req.Password}); err != nil {
		s.logger.ErrorContext(ctx, "password update failed", "user_id", actor.UserID.String(), "error", err)
		return dErrors.Wrap(err, dErrors.CodeProvider, MsgPasswordNotUpdated)
	}
	s.logAudit(ctx, audit.EventPasswordChanged, actor.UserID, "")
	return nil
}

// CurrentActor resolves the identity, profile and role behind userID. It
// reads fresh state on every call so role changes and deactivation apply to
// the next request.
func (s *Service) CurrentActor(ctx context.Context, userID id.UserID) (*models.Actor, error) {
	if userID.IsNil() {
		return nil, dErrors.New(dErrors.CodeUnauthorized, MsgSessionRequired)
	}
	ident, err := s.identities.FindIdentity(ctx, userID)
	if err != nil {
		if identity.HasCode(err, identity.CodeUserNotFound) {
			return nil, dErrors.New(dErrors.CodeUnauthorized, MsgSessionRequired)
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load identity")
	}
	return s.resolve(ctx, ident)
}

func (s *Service) resolve(ctx context.Context, ident *identity.Identity) (*models.Actor, error) {
	p, err := s.profiles.FindByID(ctx, ident.ID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeUnauthorized, MsgAccountDisabled)
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load profile")
	}
	if !p.Active {
		return nil, dErrors.New(dErrors.CodeUnauthorized, MsgAccountDisabled)
	}
	role, err := s.roles.FindByID(ctx, p.RoleID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load role")
	}
	return &models.Actor{
		UserID:   ident.ID,
		Email:    ident.Email,
		RoleID:   role.ID,
		RoleCode: role.Code,
		Name:     p.FullName(),
	}, nil
}

func (s *Service) signInFailed(ctx context.Context, email, reason string) {
	if s.metrics != nil {
		s.metrics.IncrementSignIn(reason)
	}
	s.logger.WarnContext(ctx, "sign in failed",
		"reason", reason,
		"client_ip", requestcontext.ClientIP(ctx),
		"request_id", requestcontext.RequestID(ctx),
	)
	s.emit(ctx, audit.Event{
		Subject:   email,
		Action:    string(audit.EventSignInFailed),
		Reason:    reason,
		RequestID: requestcontext.RequestID(ctx),
	})
}

func (s *Service) logAudit(ctx context.Context, event audit.AuditEvent, userID id.UserID, reason string) {
	s.logger.InfoContext(ctx, string(event),
		"user_id", userID.String(),
		"event", string(event),
		"log_type", "audit",
		"request_id", requestcontext.RequestID(ctx),
	)
	s.emit(ctx, audit.Event{
		UserID:    userID,
		Subject:   userID.String(),
		Action:    string(event),
		Reason:    reason,
		RequestID: requestcontext.RequestID(ctx),
	})
}

func (s *Service) emit(ctx context.Context, event audit.Event) {
	if s.auditPublisher == nil {
		return
	}
	if err := s.auditPublisher.Emit(ctx, event); err != nil {
		s.logger.WarnContext(ctx, "audit emit failed", "event", event.Action, "error", err)
	}
}
