package store

import "fmt"

// PersistenceError reports that the collection could not be written durably.
// The in-memory collection still holds the change that triggered the write.
type PersistenceError struct {
	Key   string
	Cause error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("failed to persist %s: %v", e.Key, e.Cause)
}

func (e *PersistenceError) Unwrap() error {
	return e.Cause
}

// ValidationError reports an insight that cannot be appended.
type ValidationError struct {
	Field   string
	Message string
	Cause   error
}

func (e *ValidationError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("invalid insight: %s: %s: %v", e.Field, e.Message, e.Cause)
	}
	return fmt.Sprintf("invalid insight: %s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error {
	return e.Cause
}
