package identity

import (
	"errors"
	"fmt"
)

// Provider error codes. Messages mirror what hosted providers return so the
// caller's translation table can key on them.
const (
	CodeEmailExists        = "email_exists"
	CodeInvalidCredentials = "invalid_credentials"
	CodeEmailNotConfirmed  = "email_not_confirmed"
	CodeUserBanned         = "user_banned"
	CodeWeakPassword       = "weak_password"
	CodeUserNotFound       = "user_not_found"
	CodeUnexpected         = "unexpected_failure"
)

var messages = map[string]string{
	CodeEmailExists:        "A user with this email address has already been registered",
	CodeInvalidCredentials: "Invalid login credentials",
	CodeEmailNotConfirmed:  "Email not confirmed",
	CodeUserBanned:         "User is banned",
	CodeWeakPassword:       "Password should be at least 8 characters",
	CodeUserNotFound:       "User not found",
	CodeUnexpected:         "Unexpected failure",
}

// Error is a provider failure with a stable code and the provider's message.
type Error struct {
	Code    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("identity: %s: %v", e.Code, e.Err)
	}
	return "identity: " + e.Code
}

func (e *Error) Unwrap() error { return e.Err }

func newError(code string) *Error {
	return &Error{Code: code, Message: messages[code]}
}

func wrapError(err error) *Error {
	return &Error{Code: CodeUnexpected, Message: messages[CodeUnexpected], Err: err}
}

// HasCode reports whether err is a provider error with the given code.
func HasCode(err error, code string) bool {
	var pe *Error
	return errors.As(err, &pe) && pe.Code == code
}

// MessageOf returns the provider message carried by err, or err's text for
// foreign errors.
func MessageOf(err error) string {
	var pe *Error
	if errors.As(err, &pe) && pe.Message != "" {
		return pe.Message
	}
	return err.Error()
}

// userMessages translates provider messages for end users. Anything not
// listed is shown as the provider wrote it.
var userMessages = map[string]string{
	messages[CodeEmailExists]:        "Ya existe un usuario registrado con este correo.",
	messages[CodeInvalidCredentials]: "Correo o contraseña incorrectos.",
	messages[CodeEmailNotConfirmed]:  "Debe confirmar su correo antes de iniciar sesión.",
	messages[CodeUserBanned]:         "Este usuario ha sido suspendido.",
	messages[CodeWeakPassword]:       "La contraseña debe tener al menos 8 caracteres.",
	messages[CodeUserNotFound]:       "Usuario no encontrado.",
	messages[CodeUnexpected]:         "El proveedor de identidad no respondió correctamente.",
}

// UserMessage returns the translated provider message carried by err. Errors
// that did not come from the provider yield "" so callers pick their own text.
func UserMessage(err error) string {
	var pe *Error
	if !errors.As(err, &pe) || pe.Message == "" {
		return ""
	}
	if t, ok := userMessages[pe.Message]; ok {
		return t
	}
	return pe.Message
}
