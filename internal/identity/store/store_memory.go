// Package store persists identities.
package store

import (
	"context"
	"strings"
	"sync"

	"roster/internal/identity"
	id "roster/pkg/domain"
	"roster/pkg/platform/sentinel"
)

type InMemory struct {
	mu         sync.RWMutex
	identities map[id.UserID]*identity.Identity
	emails     map[string]id.UserID
}

func NewInMemory() *InMemory {
	return &InMemory{
		identities: make(map[id.UserID]*identity.Identity),
		emails:     make(map[string]id.UserID),
	}
}

func key(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *InMemory) Create(_ context.Context, i *identity.Identity) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.emails[key(i.Email)]; ok {
		return sentinel.ErrConflict
	}
	if _, ok := s.identities[i.ID]; ok {
		return sentinel.ErrConflict
	}
	cp := *i
	s.identities[i.ID] = &cp
	s.emails[key(i.Email)] = i.ID
	return nil
}

func (s *InMemory) Update(_ context.Context, i *identity.Identity) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.identities[i.ID]
	if !ok {
		return sentinel.ErrNotFound
	}
	if owner, ok := s.emails[key(i.Email)]; ok && owner != i.ID {
		return sentinel.ErrConflict
	}
	delete(s.emails, key(cur.Email))
	cp := *i
	s.identities[i.ID] = &cp
	s.emails[key(i.Email)] = i.ID
	return nil
}

func (s *InMemory) Delete(_ context.Context, userID id.UserID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.identities[userID]
	if !ok {
		return sentinel.ErrNotFound
	}
	delete(s.emails, key(cur.Email))
	delete(s.identities, userID)
	return nil
}

func (s *InMemory) FindByID(_ context.Context, userID id.UserID) (*identity.Identity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i, ok := s.identities[userID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *i
	return &cp, nil
}

func (s *InMemory) FindByEmail(_ context.Context, email string) (*identity.Identity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	uid, ok := s.emails[key(email)]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *s.identities[uid]
	return &cp, nil
}
