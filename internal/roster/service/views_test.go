package service

import (
	"errors"
	"time"

	"go.uber.org/mock/gomock"

	"roster/internal/roster/cell"
	"roster/internal/roster/models"
	id "roster/pkg/domain"
	dErrors "roster/pkg/domain-errors"
)

func (s *ServiceSuite) TestCellDetailLeaderScope() {
	s.Run("another leader's cell is forbidden", func() {
		s.profiles.EXPECT().FindByID(gomock.Any(), gomock.Any()).Times(0)

		_, err := s.service.CellDetail(s.ctx, s.leader, id.NewUserID())
		s.requireDomainError(err, dErrors.CodeForbidden)
	})

	s.Run("own cell", func() {
		me := s.leader.UserID
		s.profiles.EXPECT().FindByID(gomock.Any(), me).Return(profileFixture(me, "Luis", "Perez"), nil)
		s.affiliates.EXPECT().ListByLeader(gomock.Any(), me).Return([]models.Affiliate{
			affiliateFixture(&me, "Ana", "Uno"),
		}, nil)

		cv, err := s.service.CellDetail(s.ctx, s.leader, me)
		s.Require().NoError(err)
		s.Equal(2, cv.Progress.Size)
		s.Equal(cell.BandB, cv.Progress.Band)
		s.False(cv.CanDeleteLeader, "leaders may not delete")
	})

	s.Run("administrators open any cell", func() {
		other := id.NewUserID()
		s.profiles.EXPECT().FindByID(gomock.Any(), other).Return(profileFixture(other, "Eva", "Garcia"), nil)
		s.affiliates.EXPECT().ListByLeader(gomock.Any(), other).Return(nil, nil)

		cv, err := s.service.CellDetail(s.ctx, s.admin, other)
		s.Require().NoError(err)
		s.Equal(cell.BandA, cv.Progress.Band)
		s.True(cv.CanDeleteLeader)
		s.NotNil(cv.Affiliates)
	})
}

func (s *ServiceSuite) TestRosterView() {
	me := s.leader.UserID
	other := id.NewUserID()
	profiles := []models.Profile{
		*profileFixture(other, "Eva", "Garcia"),
		*profileFixture(me, "Luis", "Perez"),
	}
	affiliates := []models.Affiliate{
		affiliateFixture(&me, "Maria", "Garcia Lopez"),
		affiliateFixture(&me, "Jose", "Ramirez"),
		affiliateFixture(&other, "Rosa", "Mendez"),
		affiliateFixture(nil, "Sin", "Lider"),
	}

	s.Run("leaders only see their own cell", func() {
		s.expectView(profiles, affiliates)

		view, err := s.service.RosterView(s.ctx, s.leader, "")
		s.Require().NoError(err)
		s.Require().Len(view.Cells, 1)
		s.Equal(me, view.Cells[0].Leader.ID)
		s.Equal(2, view.Affiliates)
		s.False(view.Columns.Role)
	})

	s.Run("administrators see every cell and the unassigned bucket", func() {
		s.expectView(profiles, affiliates)

		view, err := s.service.RosterView(s.ctx, s.admin, "")
		s.Require().NoError(err)
		s.Require().Len(view.Cells, 3)
		s.True(view.Cells[2].Unassigned)
		s.Equal(4, view.Affiliates)
		s.True(view.Columns.Role)
	})

	s.Run("search keeps matching affiliates and their full progress", func() {
		s.expectView(profiles, affiliates)

		view, err := s.service.RosterView(s.ctx, s.admin, "garcia")
		s.Require().NoError(err)
		s.Require().Len(view.Cells, 1)
		s.Require().Len(view.Cells[0].Affiliates, 1)
		s.Equal("Garcia Lopez", view.Cells[0].Affiliates[0].FamilyNames)
		s.Equal(3, view.Cells[0].Progress.Size)
	})

	s.Run("read failure", func() {
		s.profiles.EXPECT().List(gomock.Any(), gomock.Any()).Return(nil, errors.New("down"))
		s.affiliates.EXPECT().List(gomock.Any()).Return(affiliates, nil).AnyTimes()
		s.places.EXPECT().List(gomock.Any()).Return(nil, nil).AnyTimes()

		_, err := s.service.RosterView(s.ctx, s.admin, "")
		s.requireDomainError(err, dErrors.CodeInternal)
	})
}

func (s *ServiceSuite) TestStatistics() {
	me := s.leader.UserID
	young := affiliateFixture(&me, "Ana", "Uno")
	young.BirthDate = time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)
	minor := affiliateFixture(&me, "Beto", "Dos")
	minor.Sex = models.SexMale
	minor.BirthDate = time.Date(2015, 1, 1, 0, 0, 0, 0, time.UTC)
	s.affiliates.EXPECT().ListByLeader(gomock.Any(), me).Return([]models.Affiliate{young, minor}, nil)

	stats, err := s.service.Statistics(s.ctx, s.leader, "")
	s.Require().NoError(err)
	s.Equal(2, stats.Total)
	s.Equal(1, stats.Young.Women)
	s.Equal(0, stats.Men)
	s.Equal(50.0, stats.Young.Percent)
}
