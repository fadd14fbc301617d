package service

import (
	"context"
	"errors"
	"time"

	"golang.org/x/sync/errgroup"

	"roster/internal/identity"
	"roster/internal/roster/cell"
	"roster/internal/roster/models"
	"roster/internal/roster/policy"
	"roster/internal/roster/store/profile"
	id "roster/pkg/domain"
	dErrors "roster/pkg/domain-errors"
	audit "roster/pkg/platform/audit"
	"roster/pkg/platform/sentinel"
	"roster/pkg/requestcontext"
)

// ProfileRow is a listing row. Role is only filled for actors who may see
// role columns; Affiliates counts the members of the profile's cell.
type ProfileRow struct {
	ID          id.UserID    `json:"id"`
	Email       string       `json:"email"`
	GivenNames  string       `json:"given_names"`
	FamilyNames string       `json:"family_names"`
	Phone       id.Phone     `json:"phone"`
	DPI         id.DPI       `json:"dpi"`
	BirthDate   time.Time    `json:"birth_date"`
	Sex         models.Sex   `json:"sex"`
	PlaceID     id.PlaceID   `json:"place_id"`
	Active      bool         `json:"active"`
	Affiliates  int          `json:"affiliates"`
	Role        *models.Role `json:"role,omitempty"`
}

func newProfileRow(p models.Profile, affiliates int) ProfileRow {
	return ProfileRow{
		ID:          p.ID,
		Email:       p.Email,
		GivenNames:  p.GivenNames,
		FamilyNames: p.FamilyNames,
		Phone:       p.Phone,
		DPI:         p.DPI,
		BirthDate:   p.BirthDate,
		Sex:         p.Sex,
		PlaceID:     p.PlaceID,
		Active:      p.Active,
		Affiliates:  affiliates,
	}
}

// UpdateProfile edits a leader. The profile is written first; email or
// password changes then go to the identity provider, and the profile is put
// back if that fails.
func (s *Service) UpdateProfile(ctx context.Context, actor models.Actor, userID id.UserID, req models.UpdateProfileRequest) (*models.Profile, error) {
	if !policy.Can(actor, policy.EditLeader) {
		return nil, forbidden()
	}
	now := requestcontext.Now(ctx)
	upd, err := req.Parse(now)
	if err != nil {
		return nil, err
	}

	current, err := s.profiles.FindByID(ctx, userID)
	if err != nil {
		return nil, loadError(err, models.MsgProfileNotFound)
	}
	if current.RoleID != upd.RoleID {
		if err := s.checkRoleAssignable(ctx, actor, current.RoleID); err != nil && dErrors.HasCode(err, dErrors.CodeForbidden) {
			return nil, err
		}
	}
	if err := s.checkRoleAssignable(ctx, actor, upd.RoleID); err != nil {
		return nil, err
	}
	if upd.PlaceID != nil {
		if err := s.checkPlace(ctx, *upd.PlaceID); err != nil {
			return nil, err
		}
	}

	snapshot := *current
	updated := *current
	upd.Apply(&updated, now)

	if err := s.checkUnique(ctx, updated.Email, updated.DPI, models.Exclusion{ProfileID: &userID}); err != nil {
		return nil, err
	}
	if err := s.profiles.Update(ctx, &updated); err != nil {
		if c, ok := models.DuplicateConflict(err, updated.Email); ok {
			s.countConflict(c)
			return nil, c
		}
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, models.MsgProfileNotFound)
		}
		return nil, dErrors.Wrap(err, dErrors.CodeProvider, models.MsgProfileSaveFailed)
	}

	changes := identity.Changes{}
	if updated.Email != snapshot.Email {
		changes.Email = &updated.Email
	}
	if upd.Password != "" {
		changes.Password = &upd.Password
	}
	if !changes.Empty() {
		if err := s.identities.UpdateIdentity(ctx, userID, changes); err != nil {
			return nil, s.restoreProfile(ctx, &snapshot, updated.Email, err)
		}
	}

	s.logAudit(ctx, audit.EventAccountUpdated, userID.String())
	return &updated, nil
}

// restoreProfile undoes a profile update after the identity update failed.
func (s *Service) restoreProfile(ctx context.Context, snapshot *models.Profile, email string, cause error) error {
	if err := s.profiles.Update(ctx, snapshot); err != nil {
		s.reconcile(ctx, snapshot.ID, "identity_update", errors.Join(cause, err))
		return dErrors.Wrap(errors.Join(cause, err), dErrors.CodeProvider, models.MsgPartialAccount).
			WithReason(models.ReasonPartial).
			MarkPartial()
	}
	if identity.HasCode(cause, identity.CodeEmailExists) {
		c := models.EmailConflict(email)
		s.countConflict(c)
		return c
	}
	msg := identity.UserMessage(cause)
	if msg == "" {
		msg = models.MsgProfileSaveFailed
	}
	return dErrors.Wrap(cause, dErrors.CodeProvider, msg)
}

// GetProfile returns a profile. Actors without edit rights may only read
// their own.
func (s *Service) GetProfile(ctx context.Context, actor models.Actor, userID id.UserID) (*models.Profile, error) {
	if !policy.Can(actor, policy.EditLeader) && actor.UserID != userID {
		return nil, forbidden()
	}
	p, err := s.profiles.FindByID(ctx, userID)
	if err != nil {
		return nil, loadError(err, models.MsgProfileNotFound)
	}
	return p, nil
}

// ListProfiles lists profiles, optionally of one role and narrowed by term.
func (s *Service) ListProfiles(ctx context.Context, actor models.Actor, roleID *id.RoleID, term string) ([]ProfileRow, error) {
	withRoles := policy.ColumnsFor(actor).Role

	var (
		profiles   []models.Profile
		affiliates []models.Affiliate
		roleList   []models.Role
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		ps, err := s.profiles.List(gctx, profile.Filter{RoleID: roleID})
		profiles = ps
		return err
	})
	g.Go(func() error {
		as, err := s.affiliates.List(gctx)
		affiliates = as
		return err
	})
	if withRoles {
		g.Go(func() error {
			rs, err := s.roles.List(gctx)
			roleList = rs
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, models.MsgLoadFailed)
	}

	members := make(map[id.UserID]int)
	for _, a := range affiliates {
		if a.LeaderID != nil {
			members[*a.LeaderID]++
		}
	}
	roles := make(map[id.RoleID]models.Role, len(roleList))
	for _, r := range roleList {
		roles[r.ID] = r
	}

	profiles = cell.FilterProfiles(profiles, term)
	rows := make([]ProfileRow, 0, len(profiles))
	for _, p := range profiles {
		row := newProfileRow(p, members[p.ID])
		if r, ok := roles[p.RoleID]; ok && withRoles {
			row.Role = &r
		}
		rows = append(rows, row)
	}
	return rows, nil
}
