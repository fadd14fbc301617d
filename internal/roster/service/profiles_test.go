package service

import (
	"context"
	"encoding/json"
	"errors"

	"go.uber.org/mock/gomock"

	"roster/internal/identity"
	"roster/internal/roster/models"
	id "roster/pkg/domain"
	dErrors "roster/pkg/domain-errors"
)

func updateRequest(email string) models.UpdateProfileRequest {
	return models.UpdateProfileRequest{
		Email:       email,
		GivenNames:  "Luis",
		FamilyNames: "Perez",
		RoleID:      "3",
	}
}

func (s *ServiceSuite) TestUpdateProfile() {
	s.Run("email change reaches the identity provider", func() {
		uid := id.NewUserID()
		s.profiles.EXPECT().FindByID(gomock.Any(), uid).Return(profileFixture(uid, "Luis", "Perez"), nil)
		s.roles.EXPECT().FindByID(gomock.Any(), id.RoleID(3)).Return(leaderRole, nil)
		s.profiles.EXPECT().ExistsByEmail(gomock.Any(), "nuevo@example.com", &uid).Return(false, nil)
		s.profiles.EXPECT().ExistsByDPI(gomock.Any(), gomock.Any(), &uid).Return(false, nil)
		s.affiliates.EXPECT().ExistsByDPI(gomock.Any(), gomock.Any(), gomock.Nil()).Return(false, nil)
		s.profiles.EXPECT().Update(gomock.Any(), gomock.Any()).Return(nil)
		s.identities.EXPECT().UpdateIdentity(gomock.Any(), uid, gomock.Any()).DoAndReturn(
			func(_ context.Context, _ id.UserID, c identity.Changes) error {
				s.Require().NotNil(c.Email)
				s.Equal("nuevo@example.com", *c.Email)
				s.Nil(c.Password)
				return nil
			})
		s.audit.EXPECT().Emit(gomock.Any(), gomock.Any()).Return(nil)

		p, err := s.service.UpdateProfile(s.ctx, s.admin, uid, updateRequest("nuevo@example.com"))
		s.Require().NoError(err)
		s.Equal("nuevo@example.com", p.Email)
		s.Equal(testNow, p.UpdatedAt)
	})

	s.Run("identity failure restores the profile", func() {
		uid := id.NewUserID()
		before := profileFixture(uid, "Luis", "Perez")
		s.profiles.EXPECT().FindByID(gomock.Any(), uid).Return(before, nil)
		s.roles.EXPECT().FindByID(gomock.Any(), id.RoleID(3)).Return(leaderRole, nil)
		s.profiles.EXPECT().ExistsByEmail(gomock.Any(), gomock.Any(), gomock.Any()).Return(false, nil)
		s.profiles.EXPECT().ExistsByDPI(gomock.Any(), gomock.Any(), gomock.Any()).Return(false, nil)
		s.affiliates.EXPECT().ExistsByDPI(gomock.Any(), gomock.Any(), gomock.Any()).Return(false, nil)
		gomock.InOrder(
			s.profiles.EXPECT().Update(gomock.Any(), gomock.Any()).Return(nil),
			s.profiles.EXPECT().Update(gomock.Any(), before).Return(nil),
		)
		s.identities.EXPECT().UpdateIdentity(gomock.Any(), uid, gomock.Any()).
			Return(&identity.Error{Code: identity.CodeEmailExists, Message: "taken"})

		_, err := s.service.UpdateProfile(s.ctx, s.admin, uid, updateRequest("otro@example.com"))
		de := s.requireDomainError(err, dErrors.CodeConflict)
		s.Equal(models.ReasonEmailTaken, de.Reason)
	})

	s.Run("provider rejections reach the caller translated", func() {
		uid := id.NewUserID()
		s.profiles.EXPECT().FindByID(gomock.Any(), uid).Return(profileFixture(uid, "Luis", "Perez"), nil)
		s.roles.EXPECT().FindByID(gomock.Any(), id.RoleID(3)).Return(leaderRole, nil)
		s.profiles.EXPECT().ExistsByEmail(gomock.Any(), gomock.Any(), gomock.Any()).Return(false, nil)
		s.profiles.EXPECT().ExistsByDPI(gomock.Any(), gomock.Any(), gomock.Any()).Return(false, nil)
		s.affiliates.EXPECT().ExistsByDPI(gomock.Any(), gomock.Any(), gomock.Any()).Return(false, nil)
		s.profiles.EXPECT().Update(gomock.Any(), gomock.Any()).Return(nil).Times(2)
		s.identities.EXPECT().UpdateIdentity(gomock.Any(), uid, gomock.Any()).
			Return(&identity.Error{Code: identity.CodeUserNotFound, Message: "User not found"})

		_, err := s.service.UpdateProfile(s.ctx, s.admin, uid, updateRequest("otro@example.com"))
		de := s.requireDomainError(err, dErrors.CodeProvider)
		s.Equal("Usuario no encontrado.", de.Message)
	})

	s.Run("administrators cannot edit a SUPER into a leader", func() {
		uid := id.NewUserID()
		target := profileFixture(uid, "Root", "Admin")
		target.RoleID = 1
		s.profiles.EXPECT().FindByID(gomock.Any(), uid).Return(target, nil)
		s.roles.EXPECT().FindByID(gomock.Any(), id.RoleID(1)).Return(superRole, nil)
		s.profiles.EXPECT().Update(gomock.Any(), gomock.Any()).Times(0)

		_, err := s.service.UpdateProfile(s.ctx, s.admin, uid, updateRequest("root@example.com"))
		s.requireDomainError(err, dErrors.CodeForbidden)
	})

	s.Run("leaders cannot edit", func() {
		_, err := s.service.UpdateProfile(s.ctx, s.leader, id.NewUserID(), updateRequest("x@example.com"))
		s.requireDomainError(err, dErrors.CodeForbidden)
	})
}

func (s *ServiceSuite) TestListProfilesColumns() {
	uid := id.NewUserID()
	rows := []models.Profile{*profileFixture(uid, "Luis", "Perez")}
	members := []models.Affiliate{
		affiliateFixture(&uid, "Ana", "Uno"),
		affiliateFixture(&uid, "Bea", "Dos"),
		affiliateFixture(nil, "Sin", "Lider"),
	}

	s.Run("administrators see roles", func() {
		s.profiles.EXPECT().List(gomock.Any(), gomock.Any()).Return(rows, nil)
		s.affiliates.EXPECT().List(gomock.Any()).Return(members, nil)
		s.roles.EXPECT().List(gomock.Any()).Return([]models.Role{*leaderRole}, nil)

		out, err := s.service.ListProfiles(s.ctx, s.admin, nil, "")
		s.Require().NoError(err)
		s.Require().Len(out, 1)
		s.Require().NotNil(out[0].Role)
		s.Equal(models.RoleLeader, out[0].Role.Code)
		s.Equal(2, out[0].Affiliates)
	})

	s.Run("leaders get no role column", func() {
		s.profiles.EXPECT().List(gomock.Any(), gomock.Any()).Return(rows, nil)
		s.affiliates.EXPECT().List(gomock.Any()).Return(members, nil)
		s.roles.EXPECT().List(gomock.Any()).Times(0)

		out, err := s.service.ListProfiles(s.ctx, s.leader, nil, "")
		s.Require().NoError(err)
		s.Require().Len(out, 1)
		s.Nil(out[0].Role)
		s.Equal(2, out[0].Affiliates)

		raw, err := json.Marshal(out[0])
		s.Require().NoError(err)
		s.NotContains(string(raw), "role")
	})

	s.Run("read failure", func() {
		s.profiles.EXPECT().List(gomock.Any(), gomock.Any()).Return(rows, nil)
		s.affiliates.EXPECT().List(gomock.Any()).Return(nil, errors.New("down"))

		_, err := s.service.ListProfiles(s.ctx, s.leader, nil, "")
		s.requireDomainError(err, dErrors.CodeInternal)
	})
}

func (s *ServiceSuite) TestRoles() {
	roles := []models.Role{*superRole, *leaderRole}

	s.Run("SUPER is hidden from administrators", func() {
		s.roles.EXPECT().List(gomock.Any()).Return(roles, nil)
		out, err := s.service.ListRoles(s.ctx, s.admin)
		s.Require().NoError(err)
		s.Len(out, 1)
	})

	s.Run("only SUPER renames", func() {
		_, err := s.service.RenameRole(s.ctx, s.admin, 3, models.RenameRoleRequest{Name: "Coordinador"})
		s.requireDomainError(err, dErrors.CodeForbidden)
	})

	s.Run("rename keeps the code", func() {
		r := *leaderRole
		s.roles.EXPECT().FindByID(gomock.Any(), id.RoleID(3)).Return(&r, nil)
		s.roles.EXPECT().Update(gomock.Any(), gomock.Any()).Return(nil)
		s.audit.EXPECT().Emit(gomock.Any(), gomock.Any()).Return(errors.New("audit down"))

		out, err := s.service.RenameRole(s.ctx, s.super, 3, models.RenameRoleRequest{Name: " Coordinador "})
		s.Require().NoError(err, "audit failures are logged, not returned")
		s.Equal("Coordinador", out.Name)
		s.Equal(models.RoleLeader, out.Code)
	})
}
