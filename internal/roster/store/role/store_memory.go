// Package role persists the roles catalogue.
package role

import (
	"context"
	"sort"
	"strings"
	"sync"

	"roster/internal/roster/models"
	id "roster/pkg/domain"
	"roster/pkg/platform/sentinel"
)

// Defaults is the seeded catalogue. Ids match the schema's insert order.
func Defaults() []models.Role {
	return []models.Role{
		{ID: 1, Code: models.RoleSuper, Name: "SUPER"},
		{ID: 2, Code: models.RoleAdministrator, Name: "ADMINISTRADOR"},
		{ID: 3, Code: models.RoleLeader, Name: "LIDER"},
	}
}

// InMemory is a roles store seeded with Defaults.
type InMemory struct {
	mu    sync.RWMutex
	roles map[id.RoleID]models.Role
}

func NewInMemory() *InMemory {
	s := &InMemory{roles: make(map[id.RoleID]models.Role)}
	for _, r := range Defaults() {
		s.roles[r.ID] = r
	}
	return s
}

func (s *InMemory) List(_ context.Context) ([]models.Role, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Role, 0, len(s.roles))
	for _, r := range s.roles {
		out = append(out, r)
	}
	sortRoles(out)
	return out, nil
}

func (s *InMemory) FindByID(_ context.Context, roleID id.RoleID) (*models.Role, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.roles[roleID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return &r, nil
}

func (s *InMemory) FindByCode(_ context.Context, code models.RoleCode) (*models.Role, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, r := range s.roles {
		if r.Code == code {
			return &r, nil
		}
	}
	return nil, sentinel.ErrNotFound
}

func (s *InMemory) Update(_ context.Context, r *models.Role) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.roles[r.ID]
	if !ok {
		return sentinel.ErrNotFound
	}
	cur.Name = r.Name
	s.roles[r.ID] = cur
	return nil
}

// sortRoles orders by display name, the order role pickers show.
func sortRoles(rs []models.Role) {
	sort.SliceStable(rs, func(i, j int) bool {
		return strings.ToLower(rs[i].Name) < strings.ToLower(rs[j].Name)
	})
}
