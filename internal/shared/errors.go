package shared

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	// ErrNotFound indicates resource not found.
	ErrNotFound = errors.New("not found")
	// ErrInvalidCredentials indicates login failure. It never reveals
	// whether the email or the password was wrong.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrAccountDisabled indicates valid credentials on an inactive account.
	ErrAccountDisabled = errors.New("account disabled")
	// ErrAuthenticationFailed covers missing, malformed, expired or
	// tampered tokens. All token failures collapse to this one kind.
	ErrAuthenticationFailed = errors.New("authentication failed")
	// ErrAuthorizationDenied indicates the caller lacks a permission or
	// record-level access.
	ErrAuthorizationDenied = errors.New("authorization denied")
	// ErrVersionConflict indicates a lost update caught by the row
	// version check.
	ErrVersionConflict = errors.New("version conflict")
)

// ValidationError carries a field to message map for malformed input.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "validation failed"
	}
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, e.Fields[k]))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// NewValidationError builds a ValidationError for a single field.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: message}}
}

// AsValidationError unwraps a ValidationError if err carries one.
func AsValidationError(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}
