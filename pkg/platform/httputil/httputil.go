// Package httputil holds the JSON request/response helpers shared by handlers.
package httputil

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	dErrors "roster/pkg/domain-errors"
)

// MaxBodyBytes caps request bodies read by DecodeJSON.
const MaxBodyBytes = 1 << 20

// ErrorResponse is the JSON error envelope.
type ErrorResponse struct {
	Error       string            `json:"error"`
	Description string            `json:"error_description,omitempty"`
	Reason      string            `json:"reason,omitempty"`
	Fields      map[string]string `json:"fields,omitempty"`
	Partial     bool              `json:"partial,omitempty"`
	Redirect    string            `json:"redirect,omitempty"`
	Stage       string            `json:"stage,omitempty"`
	Form        any               `json:"form,omitempty"`
}

// StatusFor maps a domain error code to an HTTP status.
func StatusFor(code dErrors.Code) int {
	switch code {
	case dErrors.CodeValidation, dErrors.CodeInvalidInput, dErrors.CodeBadRequest:
		return http.StatusBadRequest
	case dErrors.CodeConflict, dErrors.CodeDependency:
		return http.StatusConflict
	case dErrors.CodeNotFound:
		return http.StatusNotFound
	case dErrors.CodeUnauthorized:
		return http.StatusUnauthorized
	case dErrors.CodeForbidden:
		return http.StatusForbidden
	case dErrors.CodeRateLimited:
		return http.StatusTooManyRequests
	case dErrors.CodeProvider:
		return http.StatusBadGateway
	case dErrors.CodeTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// NewErrorResponse builds the envelope for err. Internal errors never expose
// their description.
func NewErrorResponse(err error) (int, ErrorResponse) {
	de, ok := dErrors.As(err)
	if !ok {
		return http.StatusInternalServerError, ErrorResponse{Error: string(dErrors.CodeInternal)}
	}
	status := StatusFor(de.Code)
	resp := ErrorResponse{Error: string(de.Code)}
	if status == http.StatusInternalServerError {
		resp.Error = string(dErrors.CodeInternal)
		return status, resp
	}
	resp.Description = de.Message
	resp.Reason = de.Reason
	resp.Fields = de.Fields
	resp.Partial = de.Partial
	switch de.Code {
	case dErrors.CodeUnauthorized:
		resp.Redirect = "/"
	case dErrors.CodeForbidden:
		resp.Redirect = "/unauthorized"
	}
	return status, resp
}

// WriteError writes the JSON envelope for err.
func WriteError(w http.ResponseWriter, err error) {
	status, resp := NewErrorResponse(err)
	WriteJSON(w, status, resp)
}

// WriteJSON writes v as JSON with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(v)
}

// Preparable requests normalize themselves after decoding.
type Preparable interface {
	Normalize()
}

// DecodeJSON decodes a bounded JSON body into dst.
func DecodeJSON(r *http.Request, dst any) error {
	if r.Body == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	dec := json.NewDecoder(io.LimitReader(r.Body, MaxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return dErrors.New(dErrors.CodeBadRequest, "request body is required")
		}
		return dErrors.Wrap(err, dErrors.CodeBadRequest, "invalid JSON body")
	}
	return nil
}

// DecodeAndPrepare decodes dst and calls Normalize when dst implements Preparable.
func DecodeAndPrepare(r *http.Request, dst any) error {
	if err := DecodeJSON(r, dst); err != nil {
		return err
	}
	if p, ok := dst.(Preparable); ok {
		p.Normalize()
	}
	return nil
}

// BearerToken extracts the token from an Authorization: Bearer header.
func BearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	const prefix = "bearer "
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return "", false
	}
	token := strings.TrimSpace(header[len(prefix):])
	return token, token != ""
}
