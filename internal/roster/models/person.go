package models

import (
	"strings"
	"time"

	dErrors "roster/pkg/domain-errors"
)

// DateLayout is the wire format of calendar dates.
const DateLayout = "2006-01-02"

// MinBirthDate is the earliest accepted birth date.
var MinBirthDate = time.Date(1900, time.January, 1, 0, 0, 0, 0, time.UTC)

// Sex is the recorded sex of a person.
type Sex string

const (
	SexMale   Sex = "M"
	SexFemale Sex = "F"
)

// ParseSex accepts M or F case-insensitively.
func ParseSex(s string) (Sex, error) {
	switch Sex(strings.ToUpper(strings.TrimSpace(s))) {
	case SexMale:
		return SexMale, nil
	case SexFemale:
		return SexFemale, nil
	}
	return "", dErrors.New(dErrors.CodeInvalidInput, MsgInvalidSex)
}

// ParseBirthDate parses a YYYY-MM-DD date and checks it lies in
// [1900-01-01, today].
func ParseBirthDate(s string, today time.Time) (time.Time, error) {
	d, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, dErrors.New(dErrors.CodeInvalidInput, MsgInvalidBirthDate)
	}
	if d.Before(MinBirthDate) || d.After(DateOf(today)) {
		return time.Time{}, dErrors.New(dErrors.CodeInvalidInput, MsgInvalidBirthDate)
	}
	return d, nil
}

// DateOf truncates t to its calendar date in UTC.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// FullName joins given and family names the way searches match them.
func FullName(given, family string) string {
	return strings.TrimSpace(given + " " + family)
}
