package models

import id "roster/pkg/domain"

// Actor is the authenticated caller, resolved fresh on every request.
type Actor struct {
	UserID   id.UserID `json:"id"`
	Email    string    `json:"email"`
	RoleID   id.RoleID `json:"role_id"`
	RoleCode RoleCode  `json:"role"`
	Name     string    `json:"name"`
}

// Is reports whether the actor holds exactly the given role.
func (a Actor) Is(code RoleCode) bool {
	return a.RoleCode == code
}
