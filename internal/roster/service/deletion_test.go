package service

import (
	"errors"
	"time"

	"go.uber.org/mock/gomock"

	"roster/internal/roster/models"
	id "roster/pkg/domain"
	dErrors "roster/pkg/domain-errors"
	"roster/pkg/platform/sentinel"
)

func profileFixture(userID id.UserID, given, family string) *models.Profile {
	return &models.Profile{
		ID:          userID,
		Email:       family + "@example.com",
		GivenNames:  given,
		FamilyNames: family,
		Phone:       "55512345",
		DPI:         "3456789012345",
		BirthDate:   time.Date(1985, 1, 1, 0, 0, 0, 0, time.UTC),
		Sex:         models.SexMale,
		RoleID:      3,
		PlaceID:     1,
		Active:      true,
	}
}

func affiliateFixture(leaderID *id.UserID, given, family string) models.Affiliate {
	return models.Affiliate{
		ID:          id.NewAffiliateID(),
		GivenNames:  given,
		FamilyNames: family,
		DPI:         "4567890123456",
		BirthDate:   time.Date(1999, 6, 1, 0, 0, 0, 0, time.UTC),
		Sex:         models.SexFemale,
		LeaderID:    leaderID,
		PlaceID:     1,
	}
}

// expectView allows the re-aggregation reads that follow a mutation.
func (s *ServiceSuite) expectView(profiles []models.Profile, affiliates []models.Affiliate) {
	s.profiles.EXPECT().List(gomock.Any(), gomock.Any()).Return(profiles, nil)
	s.affiliates.EXPECT().List(gomock.Any()).Return(affiliates, nil)
	s.places.EXPECT().List(gomock.Any()).Return([]models.Place{*centro}, nil)
}

func (s *ServiceSuite) TestDeleteLeaderWithAffiliates() {
	leaderID := id.NewUserID()
	leader := profileFixture(leaderID, "Luis", "Perez")
	members := []models.Affiliate{
		affiliateFixture(&leaderID, "Ana", "Uno"),
		affiliateFixture(&leaderID, "Bea", "Dos"),
		affiliateFixture(&leaderID, "Cia", "Tres"),
	}
	s.profiles.EXPECT().FindByID(gomock.Any(), leaderID).Return(leader, nil)
	s.roles.EXPECT().FindByID(gomock.Any(), id.RoleID(3)).Return(leaderRole, nil)
	s.affiliates.EXPECT().ListByLeader(gomock.Any(), leaderID).Return(members, nil)
	s.profiles.EXPECT().DeleteIfNoDependents(gomock.Any(), gomock.Any()).Times(0)
	s.identities.EXPECT().DeleteIdentity(gomock.Any(), gomock.Any()).Times(0)

	_, err := s.service.DeleteLeader(s.ctx, s.admin, leaderID)
	de := s.requireDomainError(err, dErrors.CodeDependency)
	s.Equal(models.ReasonHasDependents, de.Reason)
	s.Equal(models.MsgLeaderHasMembers, de.Message)
}

func (s *ServiceSuite) TestDeleteLeaderRaceCaughtByStore() {
	leaderID := id.NewUserID()
	s.profiles.EXPECT().FindByID(gomock.Any(), leaderID).Return(profileFixture(leaderID, "Luis", "Perez"), nil)
	s.roles.EXPECT().FindByID(gomock.Any(), id.RoleID(3)).Return(leaderRole, nil)
	s.affiliates.EXPECT().ListByLeader(gomock.Any(), leaderID).Return([]models.Affiliate{}, nil)
	s.profiles.EXPECT().DeleteIfNoDependents(gomock.Any(), leaderID).Return(sentinel.ErrInUse)
	s.identities.EXPECT().DeleteIdentity(gomock.Any(), gomock.Any()).Times(0)

	_, err := s.service.DeleteLeader(s.ctx, s.admin, leaderID)
	s.requireDomainError(err, dErrors.CodeDependency)
}

func (s *ServiceSuite) TestDeleteLeaderReturnsFreshView() {
	leaderID := id.NewUserID()
	other := id.NewUserID()
	remaining := *profileFixture(other, "Eva", "Garcia")

	s.profiles.EXPECT().FindByID(gomock.Any(), leaderID).Return(profileFixture(leaderID, "Luis", "Perez"), nil)
	s.roles.EXPECT().FindByID(gomock.Any(), id.RoleID(3)).Return(leaderRole, nil)
	s.affiliates.EXPECT().ListByLeader(gomock.Any(), leaderID).Return(nil, nil)
	s.profiles.EXPECT().DeleteIfNoDependents(gomock.Any(), leaderID).Return(nil)
	s.identities.EXPECT().DeleteIdentity(gomock.Any(), leaderID).Return(nil)
	s.audit.EXPECT().Emit(gomock.Any(), gomock.Any()).Return(nil)
	s.expectView([]models.Profile{remaining}, []models.Affiliate{affiliateFixture(&other, "Ana", "Uno")})

	view, err := s.service.DeleteLeader(s.ctx, s.super, leaderID)
	s.Require().NoError(err)
	s.Require().Len(view.Cells, 1)
	s.Equal(other, view.Cells[0].Leader.ID)
	s.Equal(2, view.Cells[0].Progress.Size)
	s.False(view.Cells[0].CanDeleteLeader)
}

func (s *ServiceSuite) TestDeleteLeaderIdentityFailure() {
	s.Run("profile is restored", func() {
		leaderID := id.NewUserID()
		leader := profileFixture(leaderID, "Luis", "Perez")
		s.profiles.EXPECT().FindByID(gomock.Any(), leaderID).Return(leader, nil)
		s.roles.EXPECT().FindByID(gomock.Any(), id.RoleID(3)).Return(leaderRole, nil)
		s.affiliates.EXPECT().ListByLeader(gomock.Any(), leaderID).Return(nil, nil)
		s.profiles.EXPECT().DeleteIfNoDependents(gomock.Any(), leaderID).Return(nil)
		s.identities.EXPECT().DeleteIdentity(gomock.Any(), leaderID).Return(errors.New("provider down"))
		s.profiles.EXPECT().Create(gomock.Any(), leader).Return(nil)

		_, err := s.service.DeleteLeader(s.ctx, s.admin, leaderID)
		de := s.requireDomainError(err, dErrors.CodeProvider)
		s.Equal(models.MsgLeaderDeleteFailed, de.Message)
		s.False(de.Partial)
	})

	s.Run("failed restore is partial", func() {
		leaderID := id.NewUserID()
		s.profiles.EXPECT().FindByID(gomock.Any(), leaderID).Return(profileFixture(leaderID, "Luis", "Perez"), nil)
		s.roles.EXPECT().FindByID(gomock.Any(), id.RoleID(3)).Return(leaderRole, nil)
		s.affiliates.EXPECT().ListByLeader(gomock.Any(), leaderID).Return(nil, nil)
		s.profiles.EXPECT().DeleteIfNoDependents(gomock.Any(), leaderID).Return(nil)
		s.identities.EXPECT().DeleteIdentity(gomock.Any(), leaderID).Return(errors.New("provider down"))
		s.profiles.EXPECT().Create(gomock.Any(), gomock.Any()).Return(errors.New("db down"))
		s.audit.EXPECT().Emit(gomock.Any(), gomock.Any()).Return(nil)

		_, err := s.service.DeleteLeader(s.ctx, s.admin, leaderID)
		s.True(dErrors.IsPartial(err))
	})
}

func (s *ServiceSuite) TestDeleteLeaderProtectsSuper() {
	targetID := id.NewUserID()
	target := profileFixture(targetID, "Root", "Admin")
	target.RoleID = 1

	s.Run("administrators cannot delete a SUPER", func() {
		s.profiles.EXPECT().FindByID(gomock.Any(), targetID).Return(target, nil)
		s.roles.EXPECT().FindByID(gomock.Any(), id.RoleID(1)).Return(superRole, nil)
		s.profiles.EXPECT().DeleteIfNoDependents(gomock.Any(), gomock.Any()).Times(0)
		s.identities.EXPECT().DeleteIdentity(gomock.Any(), gomock.Any()).Times(0)

		_, err := s.service.DeleteLeader(s.ctx, s.admin, targetID)
		s.requireDomainError(err, dErrors.CodeForbidden)
	})

	s.Run("SUPER may", func() {
		s.profiles.EXPECT().FindByID(gomock.Any(), targetID).Return(target, nil)
		s.roles.EXPECT().FindByID(gomock.Any(), id.RoleID(1)).Return(superRole, nil)
		s.affiliates.EXPECT().ListByLeader(gomock.Any(), targetID).Return(nil, nil)
		s.profiles.EXPECT().DeleteIfNoDependents(gomock.Any(), targetID).Return(nil)
		s.identities.EXPECT().DeleteIdentity(gomock.Any(), targetID).Return(nil)
		s.audit.EXPECT().Emit(gomock.Any(), gomock.Any()).Return(nil)
		s.expectView(nil, nil)

		_, err := s.service.DeleteLeader(s.ctx, s.super, targetID)
		s.Require().NoError(err)
	})
}

func (s *ServiceSuite) TestDeleteAuthorization() {
	_, err := s.service.DeleteLeader(s.ctx, s.leader, id.NewUserID())
	s.requireDomainError(err, dErrors.CodeForbidden)

	_, err = s.service.DeleteAffiliate(s.ctx, s.leader, id.NewAffiliateID())
	s.requireDomainError(err, dErrors.CodeForbidden)
}

func (s *ServiceSuite) TestDeleteAffiliate() {
	s.Run("returns the view without the affiliate", func() {
		leaderID := id.NewUserID()
		gone := affiliateFixture(&leaderID, "Ana", "Uno")
		s.affiliates.EXPECT().Delete(gomock.Any(), gone.ID).Return(nil)
		s.audit.EXPECT().Emit(gomock.Any(), gomock.Any()).Return(nil)
		s.expectView([]models.Profile{*profileFixture(leaderID, "Luis", "Perez")}, []models.Affiliate{})

		view, err := s.service.DeleteAffiliate(s.ctx, s.admin, gone.ID)
		s.Require().NoError(err)
		s.Require().Len(view.Cells, 1)
		s.Empty(view.Cells[0].Affiliates)
		s.True(view.Cells[0].CanDeleteLeader)
	})

	s.Run("missing affiliate", func() {
		s.affiliates.EXPECT().Delete(gomock.Any(), gomock.Any()).Return(sentinel.ErrNotFound)

		_, err := s.service.DeleteAffiliate(s.ctx, s.admin, id.NewAffiliateID())
		s.requireDomainError(err, dErrors.CodeNotFound)
	})
}
