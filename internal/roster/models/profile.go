package models

import (
	"time"

	id "roster/pkg/domain"
)

// Profile is the roster record bound to an identity.
//
// Invariants:
//   - ID equals the identity id; a profile never exists without its identity
//   - Email is unique among profiles (case-insensitive)
//   - DPI is unique across profiles and affiliates
//   - BirthDate lies in [1900-01-01, today]
type Profile struct {
	ID          id.UserID  `json:"id"`
	Email       string     `json:"email"`
	GivenNames  string     `json:"given_names"`
	FamilyNames string     `json:"family_names"`
	Phone       id.Phone   `json:"phone"`
	DPI         id.DPI     `json:"dpi"`
	BirthDate   time.Time  `json:"birth_date"`
	Sex         Sex        `json:"sex"`
	RoleID      id.RoleID  `json:"role_id"`
	PlaceID     id.PlaceID `json:"place_id"`
	Active      bool       `json:"active"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// FullName returns "given family".
func (p *Profile) FullName() string {
	return FullName(p.GivenNames, p.FamilyNames)
}
