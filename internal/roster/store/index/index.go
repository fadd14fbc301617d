// Package index is the shared in-memory constraint layer for the roster's
// memory stores. It plays the part the database plays for the postgres
// stores: DPI uniqueness across profiles and affiliates, and the
// affiliate-to-leader reference that blocks deleting a leader with members.
//
// Lock order: Index first, then the calling store's own mutex.
package index

import (
	"sync"

	"roster/internal/roster/models"
	id "roster/pkg/domain"
	"roster/pkg/platform/sentinel"
)

type owner struct {
	kind models.DPIOwner
	id   string
}

// Index holds constraint state shared by the memory stores.
type Index struct {
	mu      sync.Mutex
	dpis    map[id.DPI]owner
	leaders map[id.UserID]int
}

// New returns an empty index.
func New() *Index {
	return &Index{
		dpis:    make(map[id.DPI]owner),
		leaders: make(map[id.UserID]int),
	}
}

// Tx is the view of the index handed to Do callbacks.
type Tx struct {
	x *Index
}

// Do runs fn with the index locked. Stores perform their map writes inside fn
// so the constraint check and the write are one atomic step.
func (x *Index) Do(fn func(tx *Tx) error) error {
	x.mu.Lock()
	defer x.mu.Unlock()
	return fn(&Tx{x: x})
}

// ClaimDPI records dpi as held by (kind, ownerID). Re-claiming one's own DPI
// is a no-op; any other holder yields a *models.DuplicateError.
func (t *Tx) ClaimDPI(dpi id.DPI, kind models.DPIOwner, ownerID string) error {
	if cur, ok := t.x.dpis[dpi]; ok {
		if cur.kind == kind && cur.id == ownerID {
			return nil
		}
		return &models.DuplicateError{Field: "dpi", Owner: cur.kind}
	}
	t.x.dpis[dpi] = owner{kind: kind, id: ownerID}
	return nil
}

// ReleaseDPI frees dpi if (kind, ownerID) holds it.
func (t *Tx) ReleaseDPI(dpi id.DPI, kind models.DPIOwner, ownerID string) {
	if cur, ok := t.x.dpis[dpi]; ok && cur.kind == kind && cur.id == ownerID {
		delete(t.x.dpis, dpi)
	}
}

// AddLeader registers a profile as a valid leader reference target.
func (t *Tx) AddLeader(leaderID id.UserID) {
	if _, ok := t.x.leaders[leaderID]; !ok {
		t.x.leaders[leaderID] = 0
	}
}

// RemoveLeader unregisters a profile. It fails with sentinel.ErrInUse while
// any affiliate still references it.
func (t *Tx) RemoveLeader(leaderID id.UserID) error {
	if t.x.leaders[leaderID] > 0 {
		return sentinel.ErrInUse
	}
	delete(t.x.leaders, leaderID)
	return nil
}

// Link adds an affiliate reference to leaderID. A nil leader is allowed; an
// unknown one is sentinel.ErrNotFound.
func (t *Tx) Link(leaderID *id.UserID) error {
	if leaderID == nil {
		return nil
	}
	n, ok := t.x.leaders[*leaderID]
	if !ok {
		return sentinel.ErrNotFound
	}
	t.x.leaders[*leaderID] = n + 1
	return nil
}

// Unlink drops an affiliate reference to leaderID.
func (t *Tx) Unlink(leaderID *id.UserID) {
	if leaderID == nil {
		return
	}
	if n, ok := t.x.leaders[*leaderID]; ok && n > 0 {
		t.x.leaders[*leaderID] = n - 1
	}
}
