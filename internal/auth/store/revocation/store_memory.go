package revocation

import (
	"context"
	"sync"
	"time"
)

// InMemoryTRL is the single-instance revocation list used without Redis.
type InMemoryTRL struct {
	mu      sync.Mutex
	entries map[string]time.Time
	clock   func() time.Time
}

// InMemoryOption configures an InMemoryTRL.
type InMemoryOption func(*InMemoryTRL)

// WithClock sets the clock function for testability.
func WithClock(clock func() time.Time) InMemoryOption {
	return func(t *InMemoryTRL) {
		if clock != nil {
			t.clock = clock
		}
	}
}

func NewInMemoryTRL(opts ...InMemoryOption) *InMemoryTRL {
	t := &InMemoryTRL{
		entries: make(map[string]time.Time),
		clock:   time.Now,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

func (t *InMemoryTRL) RevokeToken(_ context.Context, jti string, ttl time.Duration) error {
	if jti == "" {
		return nil
	}
	if err := validateTTL(ttl); err != nil {
		return err
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.sweep()
	t.entries[jti] = t.clock().Add(ttl)
	return nil
}

func (t *InMemoryTRL) IsTokenRevoked(_ context.Context, jti string) (bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	exp, ok := t.entries[jti]
	if !ok {
		return false, nil
	}
	if !t.clock().Before(exp) {
		delete(t.entries, jti)
		return false, nil
	}
	return true, nil
}

// sweep drops expired entries. Caller holds mu.
func (t *InMemoryTRL) sweep() {
	now := t.clock()
	for jti, exp := range t.entries {
		if !now.Before(exp) {
			delete(t.entries, jti)
		}
	}
}
