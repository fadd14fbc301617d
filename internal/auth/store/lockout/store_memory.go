// Package lockout stores sign-in failure counters and locks.
package lockout

import (
	"context"
	"sync"
	"time"
)

type counter struct {
	n         int
	expiresAt time.Time
}

// InMemory is the single-instance store used without Redis.
type InMemory struct {
	mu       sync.Mutex
	failures map[string]counter
	locks    map[string]time.Time
	clock    func() time.Time
}

type InMemoryOption func(*InMemory)

// WithClock sets the clock function for testability.
func WithClock(clock func() time.Time) InMemoryOption {
	return func(s *InMemory) {
		if clock != nil {
			s.clock = clock
		}
	}
}

func NewInMemory(opts ...InMemoryOption) *InMemory {
	s := &InMemory{
		failures: make(map[string]counter),
		locks:    make(map[string]time.Time),
		clock:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *InMemory) IncrementFailures(_ context.Context, key string, window time.Duration) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.clock()
	c, ok := s.failures[key]
	if !ok || !now.Before(c.expiresAt) {
		c = counter{expiresAt: now.Add(window)}
	}
	c.n++
	s.failures[key] = c
	return c.n, nil
}

func (s *InMemory) Lock(_ context.Context, key string, d time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.locks[key] = s.clock().Add(d)
	delete(s.failures, key)
	return nil
}

func (s *InMemory) LockedFor(_ context.Context, key string) (time.Duration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	until, ok := s.locks[key]
	if !ok {
		return 0, nil
	}
	remaining := until.Sub(s.clock())
	if remaining <= 0 {
		delete(s.locks, key)
		return 0, nil
	}
	return remaining, nil
}

func (s *InMemory) Clear(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.failures, key)
	delete(s.locks, key)
	return nil
}
