// Package identity is the email+password identity provider the roster's
// accounts authenticate against. Profiles reference identities by id; this
// package never reads profiles.
package identity

import (
	"time"

	id "roster/pkg/domain"
)

// Identity is a login identity.
//
// Invariants:
//   - Email is unique case-insensitively
//   - PasswordHash is a bcrypt hash, never the cleartext
type Identity struct {
	ID           id.UserID
	Email        string
	PasswordHash []byte
	Confirmed    bool
	Banned       bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Changes is a partial identity update. Nil fields are left untouched.
type Changes struct {
	Email    *string
	Password *string
}

// Empty reports whether the update changes nothing.
func (c Changes) Empty() bool {
	return c.Email == nil && c.Password == nil
}
