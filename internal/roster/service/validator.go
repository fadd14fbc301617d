package service

import (
	"context"

	"roster/internal/roster/models"
	id "roster/pkg/domain"
	dErrors "roster/pkg/domain-errors"
)

// ValidateUnique scans the stores for an email or DPI already in use.
//
// Email is checked against profiles only and skipped when empty. The DPI is
// checked against profiles first, then affiliates. exclude drops the record
// being edited from the scan. Any failed read fails closed: the caller gets a
// provider error and must not go on to create anything.
func (s *Service) ValidateUnique(ctx context.Context, email string, dpi id.DPI, exclude models.Exclusion) (models.Uniqueness, error) {
	result := models.Uniqueness{DPIOwner: models.DPIOwnerNone}

	if email != "" {
		taken, err := s.profiles.ExistsByEmail(ctx, email, exclude.ProfileID)
		if err != nil {
			return result, dErrors.Wrap(err, dErrors.CodeProvider, models.MsgCheckEmailFailed)
		}
		result.EmailTaken = taken
	}

	inProfiles, err := s.profiles.ExistsByDPI(ctx, dpi, exclude.ProfileID)
	if err != nil {
		return result, dErrors.Wrap(err, dErrors.CodeProvider, models.MsgCheckDPIProfile)
	}
	if inProfiles {
		result.DPIOwner = models.DPIOwnerProfile
		return result, nil
	}

	inAffiliates, err := s.affiliates.ExistsByDPI(ctx, dpi, exclude.AffiliateID)
	if err != nil {
		return result, dErrors.Wrap(err, dErrors.CodeProvider, models.MsgCheckDPIAffiliate)
	}
	if inAffiliates {
		result.DPIOwner = models.DPIOwnerAffiliate
	}
	return result, nil
}

// checkUnique runs ValidateUnique and turns a collision into its conflict.
func (s *Service) checkUnique(ctx context.Context, email string, dpi id.DPI, exclude models.Exclusion) error {
	u, err := s.ValidateUnique(ctx, email, dpi, exclude)
	if err != nil {
		return err
	}
	if err := u.Conflict(email); err != nil {
		s.countConflict(err)
		return err
	}
	return nil
}
