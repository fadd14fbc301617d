// Package affiliate persists affiliates.
package affiliate

import (
	"context"
	"sort"
	"strings"
	"sync"

	"roster/internal/roster/models"
	"roster/internal/roster/store/index"
	id "roster/pkg/domain"
	"roster/pkg/platform/sentinel"
)

// InMemory is an affiliate store that keeps its constraints in a shared index.
type InMemory struct {
	mu         sync.RWMutex
	index      *index.Index
	affiliates map[id.AffiliateID]*models.Affiliate
}

// NewInMemory builds a store sharing constraint state with x.
func NewInMemory(x *index.Index) *InMemory {
	return &InMemory{
		index:      x,
		affiliates: make(map[id.AffiliateID]*models.Affiliate),
	}
}

func (s *InMemory) Create(_ context.Context, a *models.Affiliate) error {
	if a.LeaderID != nil && uuidEqual(*a.LeaderID, a.ID) {
		return sentinel.ErrInvalidState
	}
	return s.index.Do(func(tx *index.Tx) error {
		s.mu.Lock()
		defer s.mu.Unlock()

		if _, ok := s.affiliates[a.ID]; ok {
			return sentinel.ErrConflict
		}
		if err := tx.ClaimDPI(a.DPI, models.DPIOwnerAffiliate, a.ID.String()); err != nil {
			return err
		}
		if err := tx.Link(a.LeaderID); err != nil {
			tx.ReleaseDPI(a.DPI, models.DPIOwnerAffiliate, a.ID.String())
			return err
		}
		cp := *a
		s.affiliates[a.ID] = &cp
		return nil
	})
}

func (s *InMemory) Update(_ context.Context, a *models.Affiliate) error {
	if a.LeaderID != nil && uuidEqual(*a.LeaderID, a.ID) {
		return sentinel.ErrInvalidState
	}
	return s.index.Do(func(tx *index.Tx) error {
		s.mu.Lock()
		defer s.mu.Unlock()

		cur, ok := s.affiliates[a.ID]
		if !ok {
			return sentinel.ErrNotFound
		}
		if err := tx.ClaimDPI(a.DPI, models.DPIOwnerAffiliate, a.ID.String()); err != nil {
			return err
		}
		if err := tx.Link(a.LeaderID); err != nil {
			if cur.DPI != a.DPI {
				tx.ReleaseDPI(a.DPI, models.DPIOwnerAffiliate, a.ID.String())
			}
			return err
		}
		tx.Unlink(cur.LeaderID)
		if cur.DPI != a.DPI {
			tx.ReleaseDPI(cur.DPI, models.DPIOwnerAffiliate, a.ID.String())
		}

		cp := *a
		cp.CreatedAt = cur.CreatedAt
		s.affiliates[a.ID] = &cp
		return nil
	})
}

func (s *InMemory) FindByID(_ context.Context, affiliateID id.AffiliateID) (*models.Affiliate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.affiliates[affiliateID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *a
	return &cp, nil
}

func (s *InMemory) List(_ context.Context) ([]models.Affiliate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Affiliate, 0, len(s.affiliates))
	for _, a := range s.affiliates {
		out = append(out, *a)
	}
	sortAffiliates(out)
	return out, nil
}

func (s *InMemory) ListByLeader(_ context.Context, leaderID id.UserID) ([]models.Affiliate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []models.Affiliate{}
	for _, a := range s.affiliates {
		if a.BelongsTo(leaderID) {
			out = append(out, *a)
		}
	}
	sortAffiliates(out)
	return out, nil
}

func (s *InMemory) ExistsByDPI(_ context.Context, dpi id.DPI, exclude *id.AffiliateID) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, a := range s.affiliates {
		if a.DPI == dpi && (exclude == nil || a.ID != *exclude) {
			return true, nil
		}
	}
	return false, nil
}

func (s *InMemory) Delete(_ context.Context, affiliateID id.AffiliateID) error {
	return s.index.Do(func(tx *index.Tx) error {
		s.mu.Lock()
		defer s.mu.Unlock()

		a, ok := s.affiliates[affiliateID]
		if !ok {
			return sentinel.ErrNotFound
		}
		tx.Unlink(a.LeaderID)
		tx.ReleaseDPI(a.DPI, models.DPIOwnerAffiliate, affiliateID.String())
		delete(s.affiliates, affiliateID)
		return nil
	})
}

func uuidEqual(leader id.UserID, self id.AffiliateID) bool {
	return leader.String() == self.String()
}

func sortAffiliates(as []models.Affiliate) {
	sort.SliceStable(as, func(i, j int) bool {
		fi, fj := strings.ToLower(as[i].FamilyNames), strings.ToLower(as[j].FamilyNames)
		if fi != fj {
			return fi < fj
		}
		gi, gj := strings.ToLower(as[i].GivenNames), strings.ToLower(as[j].GivenNames)
		if gi != gj {
			return gi < gj
		}
		return as[i].DPI < as[j].DPI
	})
}
