// Package scopecache memoizes derived artifacts per construction scope.
//
// A Scope stands for one schema construction pass and owns every table of
// cached values created under it. A Table is a typed view into those
// tables: the same Table used with two scopes never shares entries, and
// releasing a scope drops everything cached under it.
package scopecache

import (
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Scope owns the cache tables of one construction pass
type Scope struct {
	id     string
	logger *zap.Logger

	mu       sync.Mutex
	tables   map[any]sizer
	released bool
}

// sizer is implemented by every per-scope table
type sizer interface {
	size() int
}

// Option configures a Scope
type Option func(*Scope)

// WithLogger sets the logger used for cache events
func WithLogger(logger *zap.Logger) Option {
	return func(s *Scope) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithID overrides the generated scope ID
func WithID(id string) Option {
	return func(s *Scope) {
		s.id = id
	}
}

// NewScope creates an empty scope
func NewScope(opts ...Option) *Scope {
	s := &Scope{
		id:     uuid.NewString(),
		logger: zap.NewNop(),
		tables: make(map[any]sizer),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ID returns the scope identifier
func (s *Scope) ID() string {
	return s.id
}

// Len returns the number of completed entries across all tables
func (s *Scope) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for _, t := range s.tables {
		n += t.size()
	}
	return n
}

// Release drops every table owned by the scope. Later lookups miss and
// creation fails with ErrScopeReleased.
func (s *Scope) Release() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.released {
		return
	}

	n := 0
	for _, t := range s.tables {
		n += t.size()
	}
	s.tables = nil
	s.released = true

	s.logger.Debug("scope released", zap.String("scope", s.id), zap.Int("entries", n))
}

// Released reports whether Release has been called
func (s *Scope) Released() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.released
}
