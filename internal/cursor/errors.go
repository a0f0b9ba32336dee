package cursor

import (
	"errors"
	"fmt"
)

var (
	// ErrMalformedCursor is returned when a cursor cannot be decoded or has the wrong arity
	ErrMalformedCursor = errors.New("malformed cursor")

	// ErrUnsupportedValue is returned when a key value has no cursor encoding
	ErrUnsupportedValue = errors.New("unsupported cursor value")

	// ErrMissingKeyField is returned when a record lacks a key field
	ErrMissingKeyField = errors.New("missing cursor key field")

	// ErrInvalidCursorField is returned when a cursor is requested for a field that cannot carry one
	ErrInvalidCursorField = errors.New("invalid cursor field")
)

// MalformedError describes why a cursor was rejected
type MalformedError struct {
	Cursor string
	Reason string
}

func (e *MalformedError) Error() string {
	return fmt.Sprintf("malformed cursor %q: %s", e.Cursor, e.Reason)
}

// Is matches ErrMalformedCursor
func (e *MalformedError) Is(target error) bool {
	return target == ErrMalformedCursor
}

func malformed(cursor, format string, args ...interface{}) error {
	return &MalformedError{Cursor: cursor, Reason: fmt.Sprintf(format, args...)}
}
