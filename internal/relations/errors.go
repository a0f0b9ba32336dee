package relations

import (
	"errors"
	"fmt"

	"github.com/conduit-lang/modelref/internal/catalog"
)

var (
	// ErrNotARelation is returned when a field exists but does not link to another model
	ErrNotARelation = errors.New("field is not a relation")

	// ErrDelegateNotFound is returned when no data delegate is registered for a model
	ErrDelegateNotFound = errors.New("delegate not found")
)

// NotARelationError carries the actual kind of the offending field
type NotARelationError struct {
	Model string
	Field string
	Kind  catalog.FieldKind
}

func (e *NotARelationError) Error() string {
	return fmt.Sprintf("field %s of model '%s' is not a relation (%s)", e.Field, e.Model, e.Kind)
}

// Is matches ErrNotARelation
func (e *NotARelationError) Is(target error) bool {
	return target == ErrNotARelation
}
