package catalog

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrModelNotFound is returned when a model name has no catalog entry
	ErrModelNotFound = errors.New("model not found")

	// ErrFieldNotFound is returned when a field does not exist on a model
	ErrFieldNotFound = errors.New("field not found")

	// ErrDuplicateModel is returned when two models share a name
	ErrDuplicateModel = errors.New("duplicate model")

	// ErrDuplicateField is returned when two fields of a model share a name
	ErrDuplicateField = errors.New("duplicate field")

	// ErrInvalidModel is returned for models without a name
	ErrInvalidModel = errors.New("invalid model")
)

// ModelNotFoundError reports a failed model lookup
type ModelNotFoundError struct {
	Name        string
	Suggestions []string
}

func (e *ModelNotFoundError) Error() string {
	msg := fmt.Sprintf("model '%s' not found in catalog", e.Name)
	if len(e.Suggestions) > 0 {
		msg += fmt.Sprintf(" (did you mean %s?)", strings.Join(e.Suggestions, ", "))
	}
	return msg
}

// Is matches ErrModelNotFound
func (e *ModelNotFoundError) Is(target error) bool {
	return target == ErrModelNotFound
}

// FieldNotFoundError reports a failed field lookup
type FieldNotFoundError struct {
	Model       string
	Field       string
	Suggestions []string
}

func (e *FieldNotFoundError) Error() string {
	msg := fmt.Sprintf("field '%s' not found in model '%s'", e.Field, e.Model)
	if len(e.Suggestions) > 0 {
		msg += fmt.Sprintf(" (did you mean %s?)", strings.Join(e.Suggestions, ", "))
	}
	return msg
}

// Is matches ErrFieldNotFound
func (e *FieldNotFoundError) Is(target error) bool {
	return target == ErrFieldNotFound
}
