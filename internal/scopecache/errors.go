package scopecache

import (
	"errors"
	"fmt"
)

var (
	// ErrCyclicDependency is returned when a key is requested while its own value is still being created
	ErrCyclicDependency = errors.New("cyclic dependency")

	// ErrScopeReleased is returned when a released scope is used
	ErrScopeReleased = errors.New("scope released")
)

// CycleError reports a request for a key that is still being created, either
// from inside its own factory or from another goroutine sharing the scope.
type CycleError struct {
	Table string
	Key   string
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("cyclic dependency: %s[%s] requested while it is being created", e.Table, e.Key)
}

// Is matches ErrCyclicDependency
func (e *CycleError) Is(target error) bool {
	return target == ErrCyclicDependency
}
