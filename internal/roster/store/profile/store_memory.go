package profile

import (
	"context"
	"strings"
	"sync"

	"roster/internal/roster/models"
	"roster/internal/roster/store/index"
	id "roster/pkg/domain"
	"roster/pkg/platform/sentinel"
)

// InMemory is a profile store that keeps its constraints in a shared index.
type InMemory struct {
	mu       sync.RWMutex
	index    *index.Index
	profiles map[id.UserID]*models.Profile
	emails   map[string]id.UserID
}

// NewInMemory builds a store sharing constraint state with x.
func NewInMemory(x *index.Index) *InMemory {
	return &InMemory{
		index:    x,
		profiles: make(map[id.UserID]*models.Profile),
		emails:   make(map[string]id.UserID),
	}
}

func emailKey(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *InMemory) Create(_ context.Context, p *models.Profile) error {
	return s.index.Do(func(tx *index.Tx) error {
		s.mu.Lock()
		defer s.mu.Unlock()

		if _, ok := s.profiles[p.ID]; ok {
			return sentinel.ErrConflict
		}
		if _, ok := s.emails[emailKey(p.Email)]; ok {
			return &models.DuplicateError{Field: "email", Owner: models.DPIOwnerProfile}
		}
		if err := tx.ClaimDPI(p.DPI, models.DPIOwnerProfile, p.ID.String()); err != nil {
			return err
		}
		tx.AddLeader(p.ID)

		cp := *p
		s.profiles[p.ID] = &cp
		s.emails[emailKey(p.Email)] = p.ID
		return nil
	})
}

func (s *InMemory) Update(_ context.Context, p *models.Profile) error {
	return s.index.Do(func(tx *index.Tx) error {
		s.mu.Lock()
		defer s.mu.Unlock()

		cur, ok := s.profiles[p.ID]
		if !ok {
			return sentinel.ErrNotFound
		}
		if owner, ok := s.emails[emailKey(p.Email)]; ok && owner != p.ID {
			return &models.DuplicateError{Field: "email", Owner: models.DPIOwnerProfile}
		}
		if cur.DPI != p.DPI {
			if err := tx.ClaimDPI(p.DPI, models.DPIOwnerProfile, p.ID.String()); err != nil {
				return err
			}
			tx.ReleaseDPI(cur.DPI, models.DPIOwnerProfile, p.ID.String())
		}

		delete(s.emails, emailKey(cur.Email))
		s.emails[emailKey(p.Email)] = p.ID
		cp := *p
		cp.CreatedAt = cur.CreatedAt
		s.profiles[p.ID] = &cp
		return nil
	})
}

func (s *InMemory) FindByID(_ context.Context, userID id.UserID) (*models.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.profiles[userID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (s *InMemory) List(_ context.Context, f Filter) ([]models.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Profile, 0, len(s.profiles))
	for _, p := range s.profiles {
		if f.RoleID != nil && p.RoleID != *f.RoleID {
			continue
		}
		out = append(out, *p)
	}
	sortProfiles(out)
	return out, nil
}

func (s *InMemory) ExistsByEmail(_ context.Context, email string, exclude *id.UserID) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	owner, ok := s.emails[emailKey(email)]
	if !ok {
		return false, nil
	}
	return exclude == nil || owner != *exclude, nil
}

func (s *InMemory) ExistsByDPI(_ context.Context, dpi id.DPI, exclude *id.UserID) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.profiles {
		if p.DPI == dpi && (exclude == nil || p.ID != *exclude) {
			return true, nil
		}
	}
	return false, nil
}

// DeleteIfNoDependents removes the profile unless an affiliate still
// references it, in which case it returns sentinel.ErrInUse.
func (s *InMemory) DeleteIfNoDependents(_ context.Context, userID id.UserID) error {
	return s.index.Do(func(tx *index.Tx) error {
		s.mu.Lock()
		defer s.mu.Unlock()

		p, ok := s.profiles[userID]
		if !ok {
			return sentinel.ErrNotFound
		}
		if err := tx.RemoveLeader(userID); err != nil {
			return err
		}
		tx.ReleaseDPI(p.DPI, models.DPIOwnerProfile, userID.String())
		delete(s.emails, emailKey(p.Email))
		delete(s.profiles, userID)
		return nil
	})
}
