package api

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrAuthRequired reports a privileged call attempted without a usable
	// credential, or a credential the server rejected.
	ErrAuthRequired = errors.New("authentication required")
	// ErrNotFound reports an identifier absent on the server.
	ErrNotFound = errors.New("not found")
	// ErrConflict reports a registration identity that is already taken.
	ErrConflict = errors.New("identity already taken")
)

// ValidationError reports malformed local input. Calls rejected with a
// ValidationError never reach the network.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e == nil {
		return "validation failed"
	}
	if strings.TrimSpace(e.Field) == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// NewValidationError builds a field-level validation failure.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// IsValidation reports whether err is a local-input validation failure.
func IsValidation(err error) bool {
	var verr *ValidationError
	return errors.As(err, &verr)
}

// StatusError reports a request that completed with a non-success status not
// otherwise classified, carrying the server-provided detail when present.
type StatusError struct {
	Status int
	Detail string
}

func (e *StatusError) Error() string {
	if e == nil {
		return "request failed"
	}
	if strings.TrimSpace(e.Detail) == "" {
		return fmt.Sprintf("request failed with status %d", e.Status)
	}
	return fmt.Sprintf("request failed with status %d: %s", e.Status, e.Detail)
}
