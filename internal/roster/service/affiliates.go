package service

import (
	"context"
	"errors"

	"roster/internal/roster/models"
	"roster/internal/roster/policy"
	id "roster/pkg/domain"
	dErrors "roster/pkg/domain-errors"
	audit "roster/pkg/platform/audit"
	"roster/pkg/platform/sentinel"
	"roster/pkg/requestcontext"
)

// SaveAffiliate creates an affiliate when affiliateID is nil and edits it
// otherwise. Leaders may only save affiliates into their own cell, and may
// not move someone else's affiliate.
func (s *Service) SaveAffiliate(ctx context.Context, actor models.Actor, affiliateID *id.AffiliateID, req models.AffiliateRequest) (*models.Affiliate, error) {
	now := requestcontext.Now(ctx)
	a, err := req.Parse(now)
	if err != nil {
		return nil, err
	}
	if !policy.CanAssignAffiliateTo(actor, a.LeaderID) {
		return nil, forbidden()
	}

	var existing *models.Affiliate
	if affiliateID != nil {
		existing, err = s.affiliates.FindByID(ctx, *affiliateID)
		if err != nil {
			return nil, loadError(err, models.MsgAffiliateNotFound)
		}
		if !policy.CanSeeAllCells(actor) && !existing.BelongsTo(actor.UserID) {
			return nil, forbidden()
		}
		a.ID = existing.ID
		a.CreatedAt = existing.CreatedAt
	} else {
		a.ID = id.NewAffiliateID()
		a.CreatedAt = now
	}
	a.UpdatedAt = now

	if a.LeaderID != nil {
		if id.UserID(a.ID) == *a.LeaderID {
			return nil, dErrors.New(dErrors.CodeValidation, models.MsgSelfReference).WithField("leader_id", models.MsgSelfReference)
		}
		if _, err := s.profiles.FindByID(ctx, *a.LeaderID); err != nil {
			if errors.Is(err, sentinel.ErrNotFound) {
				return nil, invalidLeader()
			}
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, models.MsgLoadFailed)
		}
	}
	if err := s.checkPlace(ctx, a.PlaceID); err != nil {
		return nil, err
	}

	exclude := models.Exclusion{}
	if existing != nil {
		exclude.AffiliateID = &existing.ID
	}
	if err := s.checkUnique(ctx, "", a.DPI, exclude); err != nil {
		return nil, err
	}

	if existing != nil {
		err = s.affiliates.Update(ctx, a)
	} else {
		err = s.affiliates.Create(ctx, a)
	}
	if err != nil {
		return nil, s.affiliateWriteError(err)
	}

	if s.metrics != nil {
		s.metrics.IncrementAffiliateSaved()
	}
	s.logAudit(ctx, audit.EventAffiliateSaved, a.ID.String())
	return a, nil
}

func invalidLeader() *dErrors.Error {
	return dErrors.New(dErrors.CodeValidation, models.MsgInvalidLeader).WithField("leader_id", models.MsgInvalidLeader)
}

// affiliateWriteError maps store backstops. The leader was checked before
// the write, so a missing reference here means it vanished in between.
func (s *Service) affiliateWriteError(err error) error {
	if c, ok := models.DuplicateConflict(err, ""); ok {
		s.countConflict(c)
		return c
	}
	switch {
	case errors.Is(err, sentinel.ErrInvalidState):
		return dErrors.New(dErrors.CodeValidation, models.MsgSelfReference).WithField("leader_id", models.MsgSelfReference)
	case errors.Is(err, sentinel.ErrNotFound):
		return invalidLeader()
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, models.MsgSaveFailed)
}
