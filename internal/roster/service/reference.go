package service

import (
	"context"

	"roster/internal/roster/models"
	"roster/internal/roster/policy"
	id "roster/pkg/domain"
	dErrors "roster/pkg/domain-errors"
	audit "roster/pkg/platform/audit"
)

// ListRoles returns the roles actor may assign, ordered by display name.
func (s *Service) ListRoles(ctx context.Context, actor models.Actor) ([]models.Role, error) {
	roles, err := s.roles.List(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, models.MsgLoadFailed)
	}
	return policy.AssignableRoles(actor, roles), nil
}

// RenameRole changes a role's display name. The code, and so every access
// decision, is unaffected.
func (s *Service) RenameRole(ctx context.Context, actor models.Actor, roleID id.RoleID, req models.RenameRoleRequest) (*models.Role, error) {
	if !policy.Can(actor, policy.ManageConfig) {
		return nil, forbidden()
	}
	role, err := s.roles.FindByID(ctx, roleID)
	if err != nil {
		return nil, loadError(err, models.MsgRoleNotFound)
	}
	if err := role.Rename(req.Name); err != nil {
		return nil, err
	}
	if err := s.roles.Update(ctx, role); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, models.MsgSaveFailed)
	}
	s.logAudit(ctx, audit.EventRoleRenamed, roleID.String(), "name", role.Name)
	return role, nil
}

func (s *Service) ListPlaces(ctx context.Context) ([]models.Place, error) {
	places, err := s.places.List(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, models.MsgLoadFailed)
	}
	return places, nil
}
