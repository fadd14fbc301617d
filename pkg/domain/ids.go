package domain

import (
	"strconv"
	"strings"

	"github.com/google/uuid"

	dErrors "roster/pkg/domain-errors"
)

// UserID identifies an identity and the profile bound to it.
// Profiles carry their identity's id, so one value addresses both.
type UserID uuid.UUID

// AffiliateID identifies an affiliate record.
type AffiliateID uuid.UUID

// RoleID identifies a role row.
type RoleID int64

// PlaceID identifies a place row.
type PlaceID int64

func (id UserID) String() string      { return uuid.UUID(id).String() }
func (id AffiliateID) String() string { return uuid.UUID(id).String() }
func (id UserID) IsNil() bool         { return uuid.UUID(id) == uuid.Nil }
func (id AffiliateID) IsNil() bool    { return uuid.UUID(id) == uuid.Nil }

// MarshalText renders ids as their canonical UUID string in JSON and logs.
func (id UserID) MarshalText() ([]byte, error)      { return []byte(id.String()), nil }
func (id AffiliateID) MarshalText() ([]byte, error) { return []byte(id.String()), nil }

func (id *UserID) UnmarshalText(b []byte) error {
	u, err := parseUUID(string(b), "user id")
	if err != nil {
		return err
	}
	*id = UserID(u)
	return nil
}

func (id *AffiliateID) UnmarshalText(b []byte) error {
	u, err := parseUUID(string(b), "affiliate id")
	if err != nil {
		return err
	}
	*id = AffiliateID(u)
	return nil
}

func (id RoleID) String() string  { return strconv.FormatInt(int64(id), 10) }
func (id PlaceID) String() string { return strconv.FormatInt(int64(id), 10) }

// NewUserID returns a fresh random UserID.
func NewUserID() UserID { return UserID(uuid.New()) }

// NewAffiliateID returns a fresh random AffiliateID.
func NewAffiliateID() AffiliateID { return AffiliateID(uuid.New()) }

// ParseUserID parses external input into a UserID.
//
// Errors: CodeInvalidInput when the value is empty, malformed or the nil UUID.
func ParseUserID(s string) (UserID, error) {
	u, err := parseUUID(s, "user id")
	return UserID(u), err
}

// ParseAffiliateID parses external input into an AffiliateID.
func ParseAffiliateID(s string) (AffiliateID, error) {
	u, err := parseUUID(s, "affiliate id")
	return AffiliateID(u), err
}

// ParseRoleID parses a positive integer role id.
func ParseRoleID(s string) (RoleID, error) {
	n, err := parsePositive(s, "role id")
	return RoleID(n), err
}

// ParsePlaceID parses a positive integer place id.
func ParsePlaceID(s string) (PlaceID, error) {
	n, err := parsePositive(s, "place id")
	return PlaceID(n), err
}

func parseUUID(s, what string) (uuid.UUID, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, what+" cannot be empty")
	}
	u, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "invalid "+what)
	}
	if u == uuid.Nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, what+" cannot be nil")
	}
	return u, nil
}

func parsePositive(s, what string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, dErrors.New(dErrors.CodeInvalidInput, what+" cannot be empty")
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil || n < 1 {
		return 0, dErrors.New(dErrors.CodeInvalidInput, "invalid "+what)
	}
	return n, nil
}
