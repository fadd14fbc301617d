// Package place persists the places lookup.
package place

import (
	"context"
	"sort"
	"strings"
	"sync"

	"roster/internal/roster/models"
	id "roster/pkg/domain"
	"roster/pkg/platform/sentinel"
)

type InMemory struct {
	mu     sync.RWMutex
	next   id.PlaceID
	places map[id.PlaceID]models.Place
}

func NewInMemory() *InMemory {
	return &InMemory{next: 1, places: make(map[id.PlaceID]models.Place)}
}

// Create assigns the next id to a new place. Names are unique case-insensitively.
func (s *InMemory) Create(_ context.Context, name string) (*models.Place, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	name = strings.TrimSpace(name)
	for _, p := range s.places {
		if strings.EqualFold(p.Name, name) {
			return nil, sentinel.ErrConflict
		}
	}
	p := models.Place{ID: s.next, Name: name}
	s.places[p.ID] = p
	s.next++
	return &p, nil
}

func (s *InMemory) List(_ context.Context) ([]models.Place, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Place, 0, len(s.places))
	for _, p := range s.places {
		out = append(out, p)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return strings.ToLower(out[i].Name) < strings.ToLower(out[j].Name)
	})
	return out, nil
}

func (s *InMemory) FindByID(_ context.Context, placeID id.PlaceID) (*models.Place, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.places[placeID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return &p, nil
}
