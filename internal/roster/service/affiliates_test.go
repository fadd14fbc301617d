package service

import (
	"context"

	"go.uber.org/mock/gomock"

	"roster/internal/roster/models"
	id "roster/pkg/domain"
	dErrors "roster/pkg/domain-errors"
	"roster/pkg/platform/sentinel"
)

func affiliateRequest(leaderID *id.UserID) models.AffiliateRequest {
	req := models.AffiliateRequest{
		GivenNames:  "Maria",
		FamilyNames: "Garcia Lopez",
		Phone:       "55598765",
		DPI:         "1234567890123",
		BirthDate:   "1998-02-10",
		Sex:         "F",
		PlaceID:     "1",
	}
	if leaderID != nil {
		req.LeaderID = leaderID.String()
	}
	return req
}

func (s *ServiceSuite) TestSaveAffiliateCreate() {
	me := s.leader.UserID
	s.profiles.EXPECT().FindByID(gomock.Any(), me).Return(profileFixture(me, "Luis", "Perez"), nil)
	s.places.EXPECT().FindByID(gomock.Any(), id.PlaceID(1)).Return(centro, nil)
	s.profiles.EXPECT().ExistsByDPI(gomock.Any(), id.DPI("1234567890123"), gomock.Nil()).Return(false, nil)
	s.affiliates.EXPECT().ExistsByDPI(gomock.Any(), id.DPI("1234567890123"), gomock.Nil()).Return(false, nil)
	s.affiliates.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, a *models.Affiliate) error {
		s.False(a.ID.IsNil())
		s.True(a.BelongsTo(me))
		return nil
	})
	s.audit.EXPECT().Emit(gomock.Any(), gomock.Any()).Return(nil)

	a, err := s.service.SaveAffiliate(s.ctx, s.leader, nil, affiliateRequest(&me))
	s.Require().NoError(err)
	s.Equal(testNow, a.CreatedAt)
	s.Require().NotNil(a.Phone)
	s.Equal(id.Phone("55598765"), *a.Phone)
}

func (s *ServiceSuite) TestSaveAffiliateLeaderScope() {
	s.Run("leaders cannot fill another cell", func() {
		other := id.NewUserID()
		s.affiliates.EXPECT().Create(gomock.Any(), gomock.Any()).Times(0)

		_, err := s.service.SaveAffiliate(s.ctx, s.leader, nil, affiliateRequest(&other))
		s.requireDomainError(err, dErrors.CodeForbidden)
	})

	s.Run("leaders cannot leave affiliates unassigned", func() {
		_, err := s.service.SaveAffiliate(s.ctx, s.leader, nil, affiliateRequest(nil))
		s.requireDomainError(err, dErrors.CodeForbidden)
	})

	s.Run("leaders cannot take over another leader's affiliate", func() {
		me := s.leader.UserID
		other := id.NewUserID()
		theirs := affiliateFixture(&other, "Rosa", "Mendez")
		s.affiliates.EXPECT().FindByID(gomock.Any(), theirs.ID).Return(&theirs, nil)

		_, err := s.service.SaveAffiliate(s.ctx, s.leader, &theirs.ID, affiliateRequest(&me))
		s.requireDomainError(err, dErrors.CodeForbidden)
	})
}

func (s *ServiceSuite) TestSaveAffiliateConflicts() {
	s.Run("dpi held by a leader", func() {
		s.places.EXPECT().FindByID(gomock.Any(), gomock.Any()).Return(centro, nil)
		s.profiles.EXPECT().ExistsByDPI(gomock.Any(), gomock.Any(), gomock.Nil()).Return(true, nil)
		s.affiliates.EXPECT().Create(gomock.Any(), gomock.Any()).Times(0)

		_, err := s.service.SaveAffiliate(s.ctx, s.admin, nil, affiliateRequest(nil))
		de := s.requireDomainError(err, dErrors.CodeConflict)
		s.Equal(models.ReasonDPIProfile, de.Reason)
	})

	s.Run("edit excludes the affiliate itself", func() {
		mine := affiliateFixture(nil, "Maria", "Garcia Lopez")
		s.affiliates.EXPECT().FindByID(gomock.Any(), mine.ID).Return(&mine, nil)
		s.places.EXPECT().FindByID(gomock.Any(), gomock.Any()).Return(centro, nil)
		s.profiles.EXPECT().ExistsByDPI(gomock.Any(), gomock.Any(), gomock.Nil()).Return(false, nil)
		s.affiliates.EXPECT().ExistsByDPI(gomock.Any(), gomock.Any(), &mine.ID).Return(false, nil)
		s.affiliates.EXPECT().Update(gomock.Any(), gomock.Any()).
			Return(&models.DuplicateError{Field: "dpi", Owner: models.DPIOwnerAffiliate})

		_, err := s.service.SaveAffiliate(s.ctx, s.admin, &mine.ID, affiliateRequest(nil))
		de := s.requireDomainError(err, dErrors.CodeConflict)
		s.Equal(models.ReasonDPIAffiliate, de.Reason)
	})
}

func (s *ServiceSuite) TestSaveAffiliateUnknownLeader() {
	ghost := id.NewUserID()
	s.profiles.EXPECT().FindByID(gomock.Any(), ghost).Return(nil, sentinel.ErrNotFound)

	_, err := s.service.SaveAffiliate(s.ctx, s.admin, nil, affiliateRequest(&ghost))
	de := s.requireDomainError(err, dErrors.CodeValidation)
	s.Equal(models.MsgInvalidLeader, de.Message)
}
