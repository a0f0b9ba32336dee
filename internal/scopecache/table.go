package scopecache

import (
	"fmt"

	"go.uber.org/zap"
)

// entry is a cached value; ready is false while its factory runs
type entry[V any] struct {
	value V
	ready bool
}

type entries[K comparable, V any] map[K]*entry[V]

func (e entries[K, V]) size() int {
	n := 0
	for _, v := range e {
		if v.ready {
			n++
		}
	}
	return n
}

// Table is a typed, named cache whose storage lives in each Scope.
// Keys compare with Go equality: pointer keys by identity, strings by value.
// A stored zero value (for example a nil function) is a memoized result and
// is distinct from a missing entry.
type Table[K comparable, V any] struct {
	name string
}

// NewTable creates a table. Every call returns a distinct table, even for
// equal names.
func NewTable[K comparable, V any](name string) *Table[K, V] {
	return &Table[K, V]{name: name}
}

// Name returns the table name
func (t *Table[K, V]) Name() string {
	return t.name
}

// lookup returns the scope's storage for this table. Caller holds s.mu.
func (t *Table[K, V]) lookup(s *Scope, create bool) entries[K, V] {
	if s.released {
		return nil
	}
	if m, ok := s.tables[t]; ok {
		return m.(entries[K, V])
	}
	if !create {
		return nil
	}
	m := make(entries[K, V])
	s.tables[t] = m
	return m
}

// GetOrCreate returns the value stored for key in scope s, calling factory
// to create it on the first request. The factory runs at most once per
// (scope, key) on success and runs without the scope lock held, so it may
// look up other keys. Requesting key again from inside its own factory
// fails with a *CycleError. Factory errors and panics leave no entry behind.
//
// A scope does not tell reentrant requests apart from concurrent ones: a
// second goroutine asking for a key whose factory is running in another
// goroutine also gets a *CycleError and is not made to wait. Callers that
// share a scope across goroutines must serialize creation of the same key.
func (t *Table[K, V]) GetOrCreate(s *Scope, key K, factory func() (V, error)) (V, error) {
	var zero V

	s.mu.Lock()
	m := t.lookup(s, true)
	if m == nil {
		s.mu.Unlock()
		return zero, fmt.Errorf("%s: %w", t.name, ErrScopeReleased)
	}
	if e, ok := m[key]; ok {
		s.mu.Unlock()
		if !e.ready {
			return zero, &CycleError{Table: t.name, Key: fmt.Sprint(key)}
		}
		return e.value, nil
	}
	pending := &entry[V]{}
	m[key] = pending
	s.mu.Unlock()

	done := false
	defer func() {
		if done {
			return
		}
		s.mu.Lock()
		if m[key] == pending {
			delete(m, key)
		}
		s.mu.Unlock()
	}()

	value, err := factory()
	if err != nil {
		return zero, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.released {
		return zero, fmt.Errorf("%s: %w", t.name, ErrScopeReleased)
	}
	pending.value = value
	pending.ready = true
	done = true

	s.logger.Debug("artifact created",
		zap.String("scope", s.id),
		zap.String("table", t.name),
		zap.String("key", fmt.Sprint(key)),
	)
	return value, nil
}

// Get returns the value stored for key without creating it
func (t *Table[K, V]) Get(s *Scope, key K) (V, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var zero V
	m := t.lookup(s, false)
	if m == nil {
		return zero, false
	}
	e, ok := m[key]
	if !ok || !e.ready {
		return zero, false
	}
	return e.value, true
}

// Set stores value for key, replacing any completed entry. Setting a key
// whose value is still being created fails with a *CycleError.
func (t *Table[K, V]) Set(s *Scope, key K, value V) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	m := t.lookup(s, true)
	if m == nil {
		return fmt.Errorf("%s: %w", t.name, ErrScopeReleased)
	}
	if e, ok := m[key]; ok && !e.ready {
		return &CycleError{Table: t.name, Key: fmt.Sprint(key)}
	}
	m[key] = &entry[V]{value: value, ready: true}
	return nil
}

// Delete removes a completed entry and reports whether one was removed
func (t *Table[K, V]) Delete(s *Scope, key K) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	m := t.lookup(s, false)
	if m == nil {
		return false
	}
	e, ok := m[key]
	if !ok || !e.ready {
		return false
	}
	delete(m, key)
	return true
}

// Len returns the number of completed entries in scope s
func (t *Table[K, V]) Len(s *Scope) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	m := t.lookup(s, false)
	if m == nil {
		return 0
	}
	return m.size()
}
