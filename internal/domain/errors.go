package domain

import "errors"

var (
	// ErrUnauthenticated is returned for a missing, malformed or rejected credential
	ErrUnauthenticated = errors.New("invalid or expired token")
	// ErrNotFound is returned when no transaction has the requested id
	ErrNotFound = errors.New("transaction not found")
	// ErrForbidden is returned when the caller does not own the transaction
	ErrForbidden = errors.New("you can only delete your own transactions")
)

// ValidationError describes a rejected create request.
// Title is a short category, Message names the violated constraint.
type ValidationError struct {
	Title   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Title + ": " + e.Message
}

// NewValidationError builds a ValidationError
func NewValidationError(title, message string) *ValidationError {
	return &ValidationError{Title: title, Message: message}
}
