package service

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"roster/internal/identity"
	"roster/internal/roster/models"
	"roster/internal/roster/policy"
	id "roster/pkg/domain"
	dErrors "roster/pkg/domain-errors"
	audit "roster/pkg/platform/audit"
	"roster/pkg/platform/sentinel"
	"roster/pkg/requestcontext"
)

// CreateAccount provisions a leader: an identity in the identity provider and
// the profile bound to it.
//
// The saga runs VALIDATING, CREATING_IDENTITY, CREATING_PROFILE and ends in
// DONE. Uniqueness is fully checked before the identity is created. If the
// profile insert fails the identity is deleted again; if that deletion also
// fails the error is marked partial and a reconciliation trail is written.
// Failures come back as *models.ProvisioningFailure carrying the form state.
func (s *Service) CreateAccount(ctx context.Context, actor models.Actor, req models.CreateAccountRequest) (*models.ProvisioningResult, error) {
	start := time.Now()
	if s.metrics != nil {
		defer s.metrics.ObserveProvisioning(start)
	}
	ctx, span := s.tracer.Start(ctx, "roster.CreateAccount")
	defer span.End()

	form := req.FormState()
	fail := func(stage models.FailedAt, err error) error {
		span.SetAttributes(attribute.String("roster.failed_at", string(stage)))
		span.SetStatus(codes.Error, string(stage))
		if s.metrics != nil {
			s.metrics.IncrementProvisioningFailure(string(stage))
		}
		return &models.ProvisioningFailure{Stage: stage, Err: err, Form: form}
	}

	if !policy.Can(actor, policy.CreateLeader) {
		return nil, forbidden()
	}

	span.AddEvent(string(models.StageValidating))
	input, err := s.validateAccount(ctx, actor, req)
	if err != nil {
		return nil, fail(models.FailedAtValidation, err)
	}

	span.AddEvent(string(models.StageCreatingIdentity))
	userID, err := s.identities.CreateIdentity(ctx, input.Email, input.Password, true)
	if err != nil {
		return nil, fail(models.FailedAtIdentity, s.identityCreateError(ctx, err, input.Email))
	}

	span.AddEvent(string(models.StageCreatingProfile))
	now := requestcontext.Now(ctx)
	p := input.Profile
	p.ID = userID
	p.Active = true
	p.CreatedAt = now
	p.UpdatedAt = now
	if err := s.profiles.Create(ctx, &p); err != nil {
		return nil, fail(models.FailedAtProfile, s.compensateIdentity(ctx, userID, input.Email, err))
	}

	span.AddEvent(string(models.StageDone))
	if s.metrics != nil {
		s.metrics.IncrementAccountCreated()
	}
	s.logAudit(ctx, audit.EventAccountCreated, userID.String(), "role_id", p.RoleID.String())
	return &models.ProvisioningResult{Stage: models.StageDone, Profile: &p}, nil
}

// validateAccount is the VALIDATING stage: format, role and place
// references, role assignability, then uniqueness.
func (s *Service) validateAccount(ctx context.Context, actor models.Actor, req models.CreateAccountRequest) (*models.AccountInput, error) {
	input, err := req.Parse(requestcontext.Now(ctx))
	if err != nil {
		return nil, err
	}
	if err := s.checkRoleAssignable(ctx, actor, input.Profile.RoleID); err != nil {
		return nil, err
	}
	if err := s.checkPlace(ctx, input.Profile.PlaceID); err != nil {
		return nil, err
	}
	if err := s.checkUnique(ctx, input.Email, input.Profile.DPI, models.Exclusion{}); err != nil {
		return nil, err
	}
	return input, nil
}

func (s *Service) checkRoleAssignable(ctx context.Context, actor models.Actor, roleID id.RoleID) error {
	role, err := s.roles.FindByID(ctx, roleID)
	if errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.New(dErrors.CodeValidation, models.MsgInvalidRole).WithField("role_id", models.MsgInvalidRole)
	}
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, models.MsgLoadFailed)
	}
	if !policy.CanAssignRole(actor, role.Code) {
		return forbidden()
	}
	return nil
}

func (s *Service) checkPlace(ctx context.Context, placeID id.PlaceID) error {
	_, err := s.places.FindByID(ctx, placeID)
	if errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.New(dErrors.CodeValidation, models.MsgInvalidPlace).WithField("place_id", models.MsgInvalidPlace)
	}
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, models.MsgLoadFailed)
	}
	return nil
}

// identityCreateError maps a CreateIdentity failure. A taken email is the same
// conflict the pre-flight scan reports; anything else carries the provider's
// translated message.
func (s *Service) identityCreateError(ctx context.Context, err error, email string) error {
	if identity.HasCode(err, identity.CodeEmailExists) {
		c := models.EmailConflict(email)
		s.countConflict(c)
		return c
	}
	if s.logger != nil {
		s.logger.WarnContext(ctx, "identity creation failed", "error", err)
	}
	msg := identity.UserMessage(err)
	if msg == "" {
		msg = models.MsgIdentityFailed
	}
	return dErrors.Wrap(err, dErrors.CodeProvider, msg)
}

// compensateIdentity undoes CREATING_IDENTITY after the profile insert
// failed and returns the error the saga reports.
func (s *Service) compensateIdentity(ctx context.Context, userID id.UserID, email string, cause error) error {
	reported := dErrors.Wrap(cause, dErrors.CodeProvider, models.MsgProfileSaveFailed)
	if c, ok := models.DuplicateConflict(cause, email); ok {
		s.countConflict(c)
		reported = c
	}

	if err := s.identities.DeleteIdentity(ctx, userID); err != nil {
		s.reconcile(ctx, userID, string(models.FailedAtProfile), errors.Join(cause, err))
		return dErrors.Wrap(errors.Join(cause, err), dErrors.CodeProvider, models.MsgPartialAccount).
			WithReason(models.ReasonPartial).
			MarkPartial()
	}
	if s.logger != nil {
		s.logger.WarnContext(ctx, "profile insert failed, identity removed",
			"user_id", userID.String(),
			"error", cause,
		)
	}
	return reported
}
