// Package cell projects flat affiliate records into per-leader cells and
// derives their quota progress. Everything here is pure: cells are recomputed
// from fresh reads on every query and never stored.
package cell

import (
	"roster/internal/roster/models"
	id "roster/pkg/domain"
)

// Target is the cell quota: a leader plus fourteen affiliates.
const Target = 15

// Cell is a leader with the affiliates that reference them. Leader is nil for
// the unassigned bucket.
type Cell struct {
	Leader     *models.Profile
	Affiliates []models.Affiliate
}

// Unassigned reports whether this is the bucket of affiliates without a
// resolvable leader.
func (c Cell) Unassigned() bool {
	return c.Leader == nil
}

// Size counts the leader plus their affiliates.
func (c Cell) Size() int {
	return len(c.Affiliates) + 1
}

// GroupByLeader returns one cell per leader, in leader order, followed by the
// unassigned bucket when it is non-empty. Affiliates whose leader is missing
// from leaders land in the unassigned bucket, so every affiliate appears in
// exactly one cell.
func GroupByLeader(affiliates []models.Affiliate, leaders []models.Profile) []Cell {
	cells := make([]Cell, len(leaders))
	index := make(map[id.UserID]int, len(leaders))
	for i := range leaders {
		cells[i] = Cell{Leader: &leaders[i], Affiliates: []models.Affiliate{}}
		index[leaders[i].ID] = i
	}

	var unassigned []models.Affiliate
	for _, a := range affiliates {
		if a.LeaderID != nil {
			if i, ok := index[*a.LeaderID]; ok {
				cells[i].Affiliates = append(cells[i].Affiliates, a)
				continue
			}
		}
		unassigned = append(unassigned, a)
	}

	if len(unassigned) > 0 {
		cells = append(cells, Cell{Affiliates: unassigned})
	}
	return cells
}

// CanDeleteLeader reports whether the cell's leader may be deleted: only a
// real leader with no affiliates qualifies.
func CanDeleteLeader(c Cell) bool {
	return c.Leader != nil && len(c.Affiliates) == 0
}
