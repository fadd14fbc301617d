package models

import (
	"strings"

	id "roster/pkg/domain"
	dErrors "roster/pkg/domain-errors"
)

// RoleCode is the stable identity of a role. Display names can be renamed;
// access decisions only ever look at the code.
type RoleCode string

const (
	RoleSuper         RoleCode = "SUPER"
	RoleAdministrator RoleCode = "ADMINISTRADOR"
	RoleLeader        RoleCode = "LIDER"
)

// IsValid reports whether the code is one of the known roles.
func (c RoleCode) IsValid() bool {
	switch c {
	case RoleSuper, RoleAdministrator, RoleLeader:
		return true
	}
	return false
}

func (c RoleCode) String() string { return string(c) }

// Role is a row of the roles catalogue.
//
// Invariants:
//   - Code is immutable and unique
//   - Name is non-empty
type Role struct {
	ID   id.RoleID `json:"id"`
	Code RoleCode  `json:"code"`
	Name string    `json:"name"`
}

// Rename validates and applies a new display name.
func (r *Role) Rename(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return dErrors.New(dErrors.CodeValidation, MsgMissingData).WithField("name", MsgRequired)
	}
	if len(name) > 64 {
		return dErrors.New(dErrors.CodeValidation, MsgInvalidRole).WithField("name", "max 64 characters")
	}
	r.Name = name
	return nil
}
