// Package audit records who did what to the roster. Compliance events cover
// account and membership changes; security events cover authentication and
// the reconciliation trail of half-applied operations.
package audit

import (
	"context"
	"time"

	id "roster/pkg/domain"
)

// EventCategory classifies audit events by their primary purpose.
type EventCategory string

const (
	// CategoryCompliance covers changes to who is in the roster.
	CategoryCompliance EventCategory = "compliance"
	// CategorySecurity covers authentication and failures operators must act on.
	CategorySecurity EventCategory = "security"
	// CategoryOperations covers routine activity.
	CategoryOperations EventCategory = "operations"
)

type AuditEvent string

const (
	EventAccountCreated   AuditEvent = "account_created"
	EventAccountUpdated   AuditEvent = "account_updated"
	EventAccountDeleted   AuditEvent = "account_deleted"
	EventAffiliateSaved   AuditEvent = "affiliate_saved"
	EventAffiliateDeleted AuditEvent = "affiliate_deleted"
	EventRoleRenamed      AuditEvent = "role_renamed"

	// EventPartialAccount marks an identity left without its profile (or the
	// reverse) after compensation failed. Operators reconcile these by hand.
	EventPartialAccount AuditEvent = "partial_account"

	EventSignedIn        AuditEvent = "signed_in"
	EventSignInFailed    AuditEvent = "sign_in_failed"
	EventSignedOut       AuditEvent = "signed_out"
	EventPasswordChanged AuditEvent = "password_changed"
)

var eventCategories = map[AuditEvent]EventCategory{
	EventAccountCreated:   CategoryCompliance,
	EventAccountUpdated:   CategoryCompliance,
	EventAccountDeleted:   CategoryCompliance,
	EventAffiliateSaved:   CategoryCompliance,
	EventAffiliateDeleted: CategoryCompliance,
	EventRoleRenamed:      CategoryCompliance,

	EventPartialAccount:  CategorySecurity,
	EventSignInFailed:    CategorySecurity,
	EventPasswordChanged: CategorySecurity,

	EventSignedIn:  CategoryOperations,
	EventSignedOut: CategoryOperations,
}

// Category returns the EventCategory for this audit event.
// Unknown events default to CategoryOperations.
func (e AuditEvent) Category() EventCategory {
	if cat, ok := eventCategories[e]; ok {
		return cat
	}
	return CategoryOperations
}

// Event is emitted from domain logic to capture key actions.
type Event struct {
	Category  EventCategory
	Timestamp time.Time
	// UserID is the actor. Zero for unauthenticated events such as failed sign-ins.
	UserID id.UserID
	// Subject is the record acted on (profile, affiliate or role id).
	Subject   string
	Action    string
	Reason    string
	RequestID string
}

// Store persists audit events.
type Store interface {
	Append(ctx context.Context, event Event) error
}
