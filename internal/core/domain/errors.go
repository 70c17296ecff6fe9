package domain

import (
	"errors"
	"strings"
)

var (
	ErrDuplicateEmail     = errors.New("user with this email already exists")
	ErrExpiredLicense     = errors.New("license has expired")
	ErrExpiredInsurance   = errors.New("insurance has expired")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrNotFound           = errors.New("user not found")
	ErrAccessDenied       = errors.New("access denied")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrStore              = errors.New("identity store unavailable")
)

// FieldError is a single violated rule on one payload field. Field is the
// dotted JSON path, e.g. "vehicleDetails.year"; it is empty for errors that
// concern the payload as a whole.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError collects every rule a payload violated.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	msgs := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		msgs = append(msgs, f.Message)
	}
	return strings.Join(msgs, "; ")
}

// First returns the message callers show when a single line is needed.
func (e *ValidationError) First() string {
	if len(e.Fields) == 0 {
		return "validation failed"
	}
	return e.Fields[0].Message
}

// NewValidationError is a shorthand for a single-field failure.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Fields: []FieldError{{Field: field, Message: message}}}
}
