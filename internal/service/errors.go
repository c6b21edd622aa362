package service

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound wraps record lookups that must surface as a hard failure
	// of the single operation that needed them.
	ErrNotFound = errors.New("record not found")

	// ErrNotParticipant rejects actors operating on conversations they do
	// not belong to.
	ErrNotParticipant = errors.New("not a participant of this conversation")

	// ErrAlertLimitReached is the distinguished outcome of the alert gate
	// denying a send. No delivery is attempted when it is returned.
	ErrAlertLimitReached = errors.New("daily alert limit reached")
)

// ValidationError reports a missing or malformed field in an inbound event.
// Nothing is mutated when one is returned.
type ValidationError struct {
	Field string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid or missing field: %s", e.Field)
}

func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
