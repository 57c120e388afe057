package domain

import "errors"

// ErrShippingNotFound is returned by store lookups and updates for unknown
// ids. During batch processing it signals queue/store divergence, which is a
// consistency fault rather than a recoverable condition.
var ErrShippingNotFound = errors.New("shipping not found")

// ValidationError rejects a creation request before anything is persisted.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

func NewValidationError(reason string) *ValidationError {
	return &ValidationError{Reason: reason}
}
