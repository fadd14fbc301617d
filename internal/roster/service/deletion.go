package service

import (
	"context"
	"errors"

	"roster/internal/roster/cell"
	"roster/internal/roster/models"
	"roster/internal/roster/policy"
	id "roster/pkg/domain"
	dErrors "roster/pkg/domain-errors"
	audit "roster/pkg/platform/audit"
	"roster/pkg/platform/sentinel"
)

func hasDependents() *dErrors.Error {
	return dErrors.New(dErrors.CodeDependency, models.MsgLeaderHasMembers).WithReason(models.ReasonHasDependents)
}

// DeleteAffiliate removes an affiliate and returns the roster as it stands
// afterwards.
func (s *Service) DeleteAffiliate(ctx context.Context, actor models.Actor, affiliateID id.AffiliateID) (*RosterView, error) {
	if !policy.Can(actor, policy.DeleteAffiliate) {
		return nil, forbidden()
	}
	if err := s.affiliates.Delete(ctx, affiliateID); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, models.MsgAffiliateNotFound)
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, models.MsgSaveFailed)
	}
	if s.metrics != nil {
		s.metrics.IncrementDeletion("affiliate")
	}
	s.logAudit(ctx, audit.EventAffiliateDeleted, affiliateID.String())
	return s.RosterView(ctx, actor, "")
}

// DeleteLeader removes a leader's profile and identity. The leader's cell is
// rebuilt from a fresh read and must be empty; the store re-checks that
// atomically, so an affiliate added in between still blocks the delete.
//
// The profile goes first. If the identity cannot be deleted afterwards the
// profile is restored; if restoring fails too, the error is marked partial.
func (s *Service) DeleteLeader(ctx context.Context, actor models.Actor, leaderID id.UserID) (*RosterView, error) {
	if !policy.Can(actor, policy.DeleteLeader) {
		return nil, forbidden()
	}
	ctx, span := s.tracer.Start(ctx, "roster.DeleteLeader")
	defer span.End()

	leader, err := s.profiles.FindByID(ctx, leaderID)
	if err != nil {
		return nil, loadError(err, models.MsgProfileNotFound)
	}
	if err := s.checkRoleAssignable(ctx, actor, leader.RoleID); err != nil && dErrors.HasCode(err, dErrors.CodeForbidden) {
		return nil, err
	}
	members, err := s.affiliates.ListByLeader(ctx, leaderID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, models.MsgLoadFailed)
	}
	if !cell.CanDeleteLeader(cell.Cell{Leader: leader, Affiliates: members}) {
		return nil, hasDependents()
	}

	if err := s.profiles.DeleteIfNoDependents(ctx, leaderID); err != nil {
		switch {
		case errors.Is(err, sentinel.ErrInUse):
			return nil, hasDependents()
		case errors.Is(err, sentinel.ErrNotFound):
			return nil, dErrors.New(dErrors.CodeNotFound, models.MsgProfileNotFound)
		}
		return nil, dErrors.Wrap(err, dErrors.CodeProvider, models.MsgLeaderDeleteFailed)
	}

	if err := s.identities.DeleteIdentity(ctx, leaderID); err != nil {
		if restoreErr := s.profiles.Create(ctx, leader); restoreErr != nil {
			s.reconcile(ctx, leaderID, "identity_delete", errors.Join(err, restoreErr))
			return nil, dErrors.Wrap(errors.Join(err, restoreErr), dErrors.CodeProvider, models.MsgPartialAccount).
				WithReason(models.ReasonPartial).
				MarkPartial()
		}
		if s.logger != nil {
			s.logger.WarnContext(ctx, "identity delete failed, profile restored",
				"user_id", leaderID.String(),
				"error", err,
			)
		}
		return nil, dErrors.Wrap(err, dErrors.CodeProvider, models.MsgLeaderDeleteFailed)
	}

	if s.metrics != nil {
		s.metrics.IncrementDeletion("leader")
	}
	s.logAudit(ctx, audit.EventAccountDeleted, leaderID.String())
	return s.RosterView(ctx, actor, "")
}
