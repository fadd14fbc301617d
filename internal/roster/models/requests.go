package models

import (
	"net/mail"
	"strings"
	"time"
	"unicode"

	id "roster/pkg/domain"
	dErrors "roster/pkg/domain-errors"
)

// CreateAccountRequest is the raw leader signup form. Fields stay as entered
// so a failed attempt can be echoed back verbatim.
type CreateAccountRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	GivenNames  string `json:"given_names"`
	FamilyNames string `json:"family_names"`
	Phone       string `json:"phone"`
	DPI         string `json:"dpi"`
	BirthDate   string `json:"birth_date"`
	Sex         string `json:"sex"`
	RoleID      string `json:"role_id"`
	PlaceID     string `json:"place_id"`
}

// AccountInput is a CreateAccountRequest that passed format validation.
type AccountInput struct {
	Email    string
	Password string
	Profile  Profile
}

// Parse checks presence and format of every field; uniqueness is checked
// separately against the stores.
func (r *CreateAccountRequest) Parse(today time.Time) (*AccountInput, error) {
	required := map[string]string{
		"email":        r.Email,
		"password":     r.Password,
		"given_names":  r.GivenNames,
		"family_names": r.FamilyNames,
		"phone":        r.Phone,
		"dpi":          r.DPI,
		"birth_date":   r.BirthDate,
		"sex":          r.Sex,
		"role_id":      r.RoleID,
		"place_id":     r.PlaceID,
	}
	if err := requireFields(MsgRequiredFields, required); err != nil {
		return nil, err
	}

	v := newFieldErrors(MsgRequiredFields)
	email := v.email("email", r.Email)
	v.password("password", r.Password)
	phone := v.phone("phone", r.Phone)
	dpi := v.dpi("dpi", r.DPI)
	birth := v.birthDate("birth_date", r.BirthDate, today)
	sex := v.sex("sex", r.Sex)
	roleID := v.roleID("role_id", r.RoleID)
	placeID := v.placeID("place_id", r.PlaceID)
	if err := v.err(); err != nil {
		return nil, err
	}

	return &AccountInput{
		Email:    email,
		Password: r.Password,
		Profile: Profile{
			Email:       email,
			GivenNames:  strings.TrimSpace(r.GivenNames),
			FamilyNames: strings.TrimSpace(r.FamilyNames),
			Phone:       phone,
			DPI:         dpi,
			BirthDate:   birth,
			Sex:         sex,
			RoleID:      roleID,
			PlaceID:     placeID,
			Active:      true,
		},
	}, nil
}

// FormState is the non-secret part of the signup form, echoed back on failure.
func (r *CreateAccountRequest) FormState() FormState {
	sex := r.Sex
	if strings.TrimSpace(sex) == "" {
		sex = string(SexMale)
	}
	return FormState{
		GivenNames:  r.GivenNames,
		FamilyNames: r.FamilyNames,
		Phone:       r.Phone,
		DPI:         r.DPI,
		BirthDate:   r.BirthDate,
		Sex:         sex,
		Email:       r.Email,
		RoleID:      r.RoleID,
		PlaceID:     r.PlaceID,
	}
}

// UpdateProfileRequest edits a leader. Empty optional fields keep their
// current value; a blank password leaves credentials untouched.
type UpdateProfileRequest struct {
	Email           string `json:"email"`
	GivenNames      string `json:"given_names"`
	FamilyNames     string `json:"family_names"`
	RoleID          string `json:"role_id"`
	Active          *bool  `json:"active,omitempty"`
	Phone           string `json:"phone,omitempty"`
	DPI             string `json:"dpi,omitempty"`
	BirthDate       string `json:"birth_date,omitempty"`
	Sex             string `json:"sex,omitempty"`
	PlaceID         string `json:"place_id,omitempty"`
	Password        string `json:"password,omitempty"`
	PasswordConfirm string `json:"password_confirm,omitempty"`
}

// ProfileUpdate is a parsed UpdateProfileRequest.
type ProfileUpdate struct {
	Email       string
	GivenNames  string
	FamilyNames string
	RoleID      id.RoleID
	Active      *bool
	Phone       *id.Phone
	DPI         *id.DPI
	BirthDate   *time.Time
	Sex         *Sex
	PlaceID     *id.PlaceID
	Password    string
}

// Parse validates the edit.
func (r *UpdateProfileRequest) Parse(today time.Time) (*ProfileUpdate, error) {
	required := map[string]string{
		"email":        r.Email,
		"given_names":  r.GivenNames,
		"family_names": r.FamilyNames,
		"role_id":      r.RoleID,
	}
	if err := requireFields(MsgMissingData, required); err != nil {
		return nil, err
	}

	v := newFieldErrors(MsgMissingData)
	out := &ProfileUpdate{
		Email:       v.email("email", r.Email),
		GivenNames:  strings.TrimSpace(r.GivenNames),
		FamilyNames: strings.TrimSpace(r.FamilyNames),
		RoleID:      v.roleID("role_id", r.RoleID),
		Active:      r.Active,
	}
	if strings.TrimSpace(r.Phone) != "" {
		p := v.phone("phone", r.Phone)
		out.Phone = &p
	}
	if strings.TrimSpace(r.DPI) != "" {
		d := v.dpi("dpi", r.DPI)
		out.DPI = &d
	}
	if strings.TrimSpace(r.BirthDate) != "" {
		b := v.birthDate("birth_date", r.BirthDate, today)
		out.BirthDate = &b
	}
	if strings.TrimSpace(r.Sex) != "" {
		s := v.sex("sex", r.Sex)
		out.Sex = &s
	}
	if strings.TrimSpace(r.PlaceID) != "" {
		p := v.placeID("place_id", r.PlaceID)
		out.PlaceID = &p
	}
	if r.Password != "" || r.PasswordConfirm != "" {
		if r.Password != r.PasswordConfirm {
			v.add("password_confirm", MsgPasswordMismatch)
		} else {
			v.password("password", r.Password)
			out.Password = r.Password
		}
	}
	if err := v.err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Apply copies the update onto p.
func (u *ProfileUpdate) Apply(p *Profile, now time.Time) {
	p.Email = u.Email
	p.GivenNames = u.GivenNames
	p.FamilyNames = u.FamilyNames
	p.RoleID = u.RoleID
	if u.Active != nil {
		p.Active = *u.Active
	}
	if u.Phone != nil {
		p.Phone = *u.Phone
	}
	if u.DPI != nil {
		p.DPI = *u.DPI
	}
	if u.BirthDate != nil {
		p.BirthDate = *u.BirthDate
	}
	if u.Sex != nil {
		p.Sex = *u.Sex
	}
	if u.PlaceID != nil {
		p.PlaceID = *u.PlaceID
	}
	p.UpdatedAt = now
}

// AffiliateRequest creates or edits an affiliate.
type AffiliateRequest struct {
	GivenNames  string `json:"given_names"`
	FamilyNames string `json:"family_names"`
	Phone       string `json:"phone,omitempty"`
	DPI         string `json:"dpi"`
	BirthDate   string `json:"birth_date"`
	Sex         string `json:"sex"`
	LeaderID    string `json:"leader_id,omitempty"`
	PlaceID     string `json:"place_id"`
}

// Parse validates the affiliate form. Leader existence is checked by the
// service against the profile store.
func (r *AffiliateRequest) Parse(today time.Time) (*Affiliate, error) {
	required := map[string]string{
		"given_names":  r.GivenNames,
		"family_names": r.FamilyNames,
		"dpi":          r.DPI,
		"birth_date":   r.BirthDate,
		"sex":          r.Sex,
		"place_id":     r.PlaceID,
	}
	if err := requireFields(MsgRequiredFields, required); err != nil {
		return nil, err
	}

	v := newFieldErrors(MsgRequiredFields)
	a := &Affiliate{
		GivenNames:  strings.TrimSpace(r.GivenNames),
		FamilyNames: strings.TrimSpace(r.FamilyNames),
		DPI:         v.dpi("dpi", r.DPI),
		BirthDate:   v.birthDate("birth_date", r.BirthDate, today),
		Sex:         v.sex("sex", r.Sex),
		PlaceID:     v.placeID("place_id", r.PlaceID),
	}
	if strings.TrimSpace(r.Phone) != "" {
		p := v.phone("phone", r.Phone)
		a.Phone = &p
	}
	if strings.TrimSpace(r.LeaderID) != "" {
		leader, err := id.ParseUserID(r.LeaderID)
		if err != nil {
			v.add("leader_id", MsgInvalidLeader)
		} else {
			a.LeaderID = &leader
		}
	}
	if err := v.err(); err != nil {
		return nil, err
	}
	return a, nil
}

// ResetPasswordRequest changes the caller's own password.
type ResetPasswordRequest struct {
	Password        string `json:"password"`
	PasswordConfirm string `json:"password_confirm"`
}

// Validate checks presence, match and policy.
func (r *ResetPasswordRequest) Validate() error {
	if r.Password == "" || r.PasswordConfirm == "" {
		return dErrors.New(dErrors.CodeValidation, MsgPasswordRequired)
	}
	if r.Password != r.PasswordConfirm {
		return dErrors.New(dErrors.CodeValidation, MsgPasswordMismatch).WithField("password_confirm", MsgPasswordMismatch)
	}
	return ValidatePassword(r.Password)
}

// RenameRoleRequest renames a role's display name.
type RenameRoleRequest struct {
	Name string `json:"name"`
}

// ValidatePassword enforces the password policy: at least 8 characters with a
// lowercase letter, an uppercase letter, a digit and a symbol.
func ValidatePassword(pw string) error {
	var lower, upper, digit, symbol bool
	for _, c := range pw {
		switch {
		case unicode.IsLower(c):
			lower = true
		case unicode.IsUpper(c):
			upper = true
		case unicode.IsDigit(c):
			digit = true
		case !unicode.IsLetter(c) && !unicode.IsSpace(c):
			symbol = true
		}
	}
	if len([]rune(pw)) < 8 || !lower || !upper || !digit || !symbol {
		return dErrors.New(dErrors.CodeValidation, MsgPasswordPolicy).WithField("password", MsgPasswordPolicy)
	}
	return nil
}

// NormalizeEmail validates and lowercases an email address.
func NormalizeEmail(s string) (string, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	addr, err := mail.ParseAddress(s)
	if err != nil || addr.Address != s || !strings.Contains(s[strings.LastIndex(s, "@")+1:], ".") {
		return "", dErrors.New(dErrors.CodeInvalidInput, MsgInvalidEmail)
	}
	return s, nil
}

func requireFields(msg string, fields map[string]string) error {
	var missing *dErrors.Error
	for name, value := range fields {
		if strings.TrimSpace(value) != "" {
			continue
		}
		if missing == nil {
			missing = dErrors.New(dErrors.CodeValidation, msg)
		}
		missing.WithField(name, MsgRequired)
	}
	if missing == nil {
		return nil
	}
	return missing
}

// fieldErrors accumulates per-field format failures.
type fieldErrors struct {
	msg    string
	fields map[string]string
}

func newFieldErrors(msg string) *fieldErrors {
	return &fieldErrors{msg: msg, fields: map[string]string{}}
}

func (v *fieldErrors) add(field, msg string) {
	if _, ok := v.fields[field]; !ok {
		v.fields[field] = msg
	}
}

// err returns a validation error whose message is the single failing field's
// message, or the generic message when several fields failed.
func (v *fieldErrors) err() error {
	if len(v.fields) == 0 {
		return nil
	}
	msg := v.msg
	if len(v.fields) == 1 {
		for _, m := range v.fields {
			msg = m
		}
	}
	e := dErrors.New(dErrors.CodeValidation, msg)
	for f, m := range v.fields {
		e.WithField(f, m)
	}
	return e
}

func (v *fieldErrors) capture(field string, err error) {
	if err == nil {
		return
	}
	if de, ok := dErrors.As(err); ok {
		v.add(field, de.Message)
		return
	}
	v.add(field, err.Error())
}

func (v *fieldErrors) email(field, s string) string {
	e, err := NormalizeEmail(s)
	v.capture(field, err)
	return e
}

func (v *fieldErrors) password(field, s string) {
	if err := ValidatePassword(s); err != nil {
		v.add(field, MsgPasswordPolicy)
	}
}

func (v *fieldErrors) phone(field, s string) id.Phone {
	p, err := id.ParsePhone(s)
	v.capture(field, err)
	return p
}

func (v *fieldErrors) dpi(field, s string) id.DPI {
	d, err := id.ParseDPI(s)
	v.capture(field, err)
	return d
}

func (v *fieldErrors) birthDate(field, s string, today time.Time) time.Time {
	d, err := ParseBirthDate(s, today)
	v.capture(field, err)
	return d
}

func (v *fieldErrors) sex(field, s string) Sex {
	x, err := ParseSex(s)
	v.capture(field, err)
	return x
}

func (v *fieldErrors) roleID(field, s string) id.RoleID {
	r, err := id.ParseRoleID(s)
	if err != nil {
		v.add(field, MsgInvalidRole)
	}
	return r
}

func (v *fieldErrors) placeID(field, s string) id.PlaceID {
	p, err := id.ParsePlaceID(s)
	if err != nil {
		v.add(field, MsgInvalidPlace)
	}
	return p
}
