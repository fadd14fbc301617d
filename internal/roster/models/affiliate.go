package models

import (
	"time"

	id "roster/pkg/domain"
)

// Affiliate is a recruited member of a leader's cell.
//
// Invariants:
//   - DPI is unique across profiles and affiliates
//   - Phone is nil or exactly 8 digits
//   - LeaderID, when set, names an existing profile
type Affiliate struct {
	ID          id.AffiliateID `json:"id"`
	GivenNames  string         `json:"given_names"`
	FamilyNames string         `json:"family_names"`
	Phone       *id.Phone      `json:"phone,omitempty"`
	DPI         id.DPI         `json:"dpi"`
	BirthDate   time.Time      `json:"birth_date"`
	Sex         Sex            `json:"sex"`
	LeaderID    *id.UserID     `json:"leader_id,omitempty"`
	PlaceID     id.PlaceID     `json:"place_id"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

// FullName returns "given family".
func (a *Affiliate) FullName() string {
	return FullName(a.GivenNames, a.FamilyNames)
}

// BelongsTo reports whether the affiliate is in leaderID's cell.
func (a *Affiliate) BelongsTo(leaderID id.UserID) bool {
	return a.LeaderID != nil && *a.LeaderID == leaderID
}
