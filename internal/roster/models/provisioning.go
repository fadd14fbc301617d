package models

import (
	"encoding/json"
	"net/url"

	dErrors "roster/pkg/domain-errors"
)

// Stage is a step of the account provisioning saga.
type Stage string

const (
	StageValidating       Stage = "VALIDATING"
	StageCreatingIdentity Stage = "CREATING_IDENTITY"
	StageCreatingProfile  Stage = "CREATING_PROFILE"
	StageDone             Stage = "DONE"
	StageFailed           Stage = "FAILED"
)

// FailedAt names the stage a FAILED saga stopped in.
type FailedAt string

const (
	FailedAtValidation FailedAt = "validation"
	FailedAtIdentity   FailedAt = "identity"
	FailedAtProfile    FailedAt = "profile"
)

// ProvisioningResult is the outcome of a completed saga.
type ProvisioningResult struct {
	Stage   Stage    `json:"stage"`
	Profile *Profile `json:"profile"`
}

// FormState repopulates the signup form after a failure. It never carries the
// password.
type FormState struct {
	GivenNames  string `json:"given_names"`
	FamilyNames string `json:"family_names"`
	Phone       string `json:"phone"`
	DPI         string `json:"dpi"`
	BirthDate   string `json:"birth_date"`
	Sex         string `json:"sex"`
	Email       string `json:"email"`
	RoleID      string `json:"role_id"`
	PlaceID     string `json:"place_id"`
}

// ProvisioningFailure is a FAILED saga: the stage it stopped in, the domain
// error that stopped it and the form to hand back.
type ProvisioningFailure struct {
	Stage FailedAt
	Err   error
	Form  FormState
}

func (f *ProvisioningFailure) Error() string {
	return string(StageFailed) + "(" + string(f.Stage) + "): " + f.Err.Error()
}

func (f *ProvisioningFailure) Unwrap() error { return f.Err }

// Message is the human-readable reason of the failure.
func (f *ProvisioningFailure) Message() string {
	if de, ok := dErrors.As(f.Err); ok {
		return de.Message
	}
	return MsgIdentityFailed
}

// Redirect is the form location carrying the error and the form state.
func (f *ProvisioningFailure) Redirect(base string) string {
	data, _ := json.Marshal(f.Form)
	q := url.Values{}
	q.Set("error", f.Message())
	q.Set("data", string(data))
	return base + "?" + q.Encode()
}
