package service

import (
	"context"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"roster/internal/roster/cell"
	"roster/internal/roster/models"
	"roster/internal/roster/policy"
	"roster/internal/roster/store/profile"
	id "roster/pkg/domain"
	dErrors "roster/pkg/domain-errors"
	"roster/pkg/requestcontext"
)

// CellView is one cell as shown to an actor. Progress and CanDeleteLeader
// are derived from the whole cell even when Affiliates was narrowed by a
// search term.
type CellView struct {
	Leader          *models.Profile    `json:"leader"`
	Affiliates      []models.Affiliate `json:"affiliates"`
	Progress        cell.Progress      `json:"progress"`
	CanDeleteLeader bool               `json:"can_delete_leader"`
	Unassigned      bool               `json:"unassigned"`
}

// RosterView is the grouped roster visible to an actor.
type RosterView struct {
	Cells      []CellView     `json:"cells"`
	Affiliates int            `json:"affiliates"`
	Places     []models.Place `json:"places"`
	Columns    policy.Columns `json:"columns"`
}

type snapshot struct {
	profiles   []models.Profile
	affiliates []models.Affiliate
	places     []models.Place
}

// load reads profiles, affiliates and places concurrently.
func (s *Service) load(ctx context.Context) (*snapshot, error) {
	var snap snapshot
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		ps, err := s.profiles.List(gctx, profile.Filter{})
		snap.profiles = ps
		return err
	})
	g.Go(func() error {
		as, err := s.affiliates.List(gctx)
		snap.affiliates = as
		return err
	})
	g.Go(func() error {
		pl, err := s.places.List(gctx)
		snap.places = pl
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, models.MsgLoadFailed)
	}
	return &snap, nil
}

// RosterView groups the roster into cells for actor. Leaders only see their
// own cell. A non-empty term keeps the affiliates it matches and drops cells
// left without any.
func (s *Service) RosterView(ctx context.Context, actor models.Actor, term string) (*RosterView, error) {
	start := time.Now()
	if s.metrics != nil {
		defer s.metrics.ObserveView(start)
	}
	ctx, span := s.tracer.Start(ctx, "roster.RosterView")
	defer span.End()

	snap, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	leaders, affiliates := scope(actor, snap.profiles, snap.affiliates)
	term = strings.TrimSpace(term)

	view := &RosterView{Cells: []CellView{}, Places: snap.places, Columns: policy.ColumnsFor(actor)}
	for _, c := range cell.GroupByLeader(affiliates, leaders) {
		cv := newCellView(actor, c)
		if term != "" {
			cv.Affiliates = cell.FilterAffiliates(c.Affiliates, term)
			if len(cv.Affiliates) == 0 {
				continue
			}
		}
		view.Affiliates += len(cv.Affiliates)
		view.Cells = append(view.Cells, cv)
	}
	return view, nil
}

// CellDetail returns leaderID's cell. Leaders may only open their own.
func (s *Service) CellDetail(ctx context.Context, actor models.Actor, leaderID id.UserID) (*CellView, error) {
	if !policy.CanViewCell(actor, leaderID) {
		return nil, forbidden()
	}
	leader, err := s.profiles.FindByID(ctx, leaderID)
	if err != nil {
		return nil, loadError(err, models.MsgProfileNotFound)
	}
	members, err := s.affiliates.ListByLeader(ctx, leaderID)
	if err != nil {
		return nil, loadError(err, models.MsgProfileNotFound)
	}
	cv := newCellView(actor, cell.Cell{Leader: leader, Affiliates: members})
	return &cv, nil
}

// Statistics summarizes the affiliates visible to actor by age band and sex,
// optionally narrowed by term.
func (s *Service) Statistics(ctx context.Context, actor models.Actor, term string) (*cell.Statistics, error) {
	if !policy.Can(actor, policy.ViewStatistics) {
		return nil, forbidden()
	}
	var (
		affiliates []models.Affiliate
		err        error
	)
	if policy.CanSeeAllCells(actor) {
		affiliates, err = s.affiliates.List(ctx)
	} else {
		affiliates, err = s.affiliates.ListByLeader(ctx, actor.UserID)
	}
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, models.MsgLoadFailed)
	}
	stats := cell.Summarize(cell.FilterAffiliates(affiliates, strings.TrimSpace(term)), requestcontext.Now(ctx))
	return &stats, nil
}

// scope narrows the roster to what actor may see.
func scope(actor models.Actor, profiles []models.Profile, affiliates []models.Affiliate) ([]models.Profile, []models.Affiliate) {
	if policy.CanSeeAllCells(actor) {
		return profiles, affiliates
	}
	var leaders []models.Profile
	for _, p := range profiles {
		if p.ID == actor.UserID {
			leaders = append(leaders, p)
		}
	}
	own := []models.Affiliate{}
	for _, a := range affiliates {
		if a.BelongsTo(actor.UserID) {
			own = append(own, a)
		}
	}
	return leaders, own
}

func newCellView(actor models.Actor, c cell.Cell) CellView {
	affiliates := c.Affiliates
	if affiliates == nil {
		affiliates = []models.Affiliate{}
	}
	return CellView{
		Leader:          c.Leader,
		Affiliates:      affiliates,
		Progress:        cell.ProgressOf(c),
		CanDeleteLeader: cell.CanDeleteLeader(c) && policy.Can(actor, policy.DeleteLeader),
		Unassigned:      c.Unassigned(),
	}
}
