package models

import (
	"errors"
	"fmt"

	id "roster/pkg/domain"
	dErrors "roster/pkg/domain-errors"
	"roster/pkg/platform/sentinel"
)

// DPIOwner names which population already holds a DPI.
type DPIOwner string

const (
	DPIOwnerNone      DPIOwner = "none"
	DPIOwnerProfile   DPIOwner = "profile"
	DPIOwnerAffiliate DPIOwner = "affiliate"
)

// Conflict reasons carried on CodeConflict errors.
const (
	ReasonEmailTaken    = "email_taken"
	ReasonDPIProfile    = "dpi_profile"
	ReasonDPIAffiliate  = "dpi_affiliate"
	ReasonHasDependents = "has_dependents"
	ReasonPartial       = "partial_account"
)

// Exclusion removes the subject's own record from a uniqueness scan on edit.
type Exclusion struct {
	ProfileID   *id.UserID
	AffiliateID *id.AffiliateID
}

// Uniqueness is the outcome of a uniqueness scan.
type Uniqueness struct {
	EmailTaken bool
	DPIOwner   DPIOwner
}

// OK reports whether nothing collided.
func (u Uniqueness) OK() bool {
	return !u.EmailTaken && (u.DPIOwner == "" || u.DPIOwner == DPIOwnerNone)
}

// Conflict returns the user-facing conflict for the scan, or nil when clean.
// Email collisions are reported before DPI collisions.
func (u Uniqueness) Conflict(email string) error {
	if u.OK() {
		return nil
	}
	if u.EmailTaken {
		return EmailConflict(email)
	}
	switch u.DPIOwner {
	case DPIOwnerProfile, DPIOwnerAffiliate:
		return DPIConflict(u.DPIOwner)
	}
	return dErrors.New(dErrors.CodeInternal, "unknown dpi owner "+string(u.DPIOwner))
}

// EmailConflict is the conflict raised for a taken email.
func EmailConflict(email string) *dErrors.Error {
	return dErrors.New(dErrors.CodeConflict, MsgEmailTaken(email)).
		WithReason(ReasonEmailTaken).
		WithField("email", MsgEmailTaken(email))
}

// DPIConflict is the conflict raised for a DPI held by owner.
func DPIConflict(owner DPIOwner) *dErrors.Error {
	if owner == DPIOwnerAffiliate {
		return dErrors.New(dErrors.CodeConflict, MsgDPIAffiliate).
			WithReason(ReasonDPIAffiliate).
			WithField("dpi", MsgDPIAffiliate)
	}
	return dErrors.New(dErrors.CodeConflict, MsgDPIProfile).
		WithReason(ReasonDPIProfile).
		WithField("dpi", MsgDPIProfile)
}

// DuplicateError is returned by stores when a uniqueness constraint rejects a
// write. It unwraps to sentinel.ErrConflict.
type DuplicateError struct {
	Field string // "email" or "dpi"
	Owner DPIOwner
	Err   error
}

func (e *DuplicateError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("duplicate %s (%s): %v", e.Field, e.Owner, e.Err)
	}
	return fmt.Sprintf("duplicate %s (%s)", e.Field, e.Owner)
}

func (e *DuplicateError) Unwrap() error { return sentinel.ErrConflict }

// DuplicateConflict translates a store duplicate into the same conflict the
// pre-flight scan would have produced. ok is false when err is not a duplicate.
func DuplicateConflict(err error, email string) (*dErrors.Error, bool) {
	var dup *DuplicateError
	if !errors.As(err, &dup) {
		return nil, false
	}
	if dup.Field == "email" {
		return EmailConflict(email), true
	}
	return DPIConflict(dup.Owner), true
}
