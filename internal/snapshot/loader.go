package snapshot

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/conduit-lang/modelref/internal/catalog"
)

// Source produces a catalog from its origin (a file, a database, ...)
type Source func(ctx context.Context) (*catalog.Catalog, error)

// Loader serves catalogs from a Store, falling back to a Source on a miss.
// Concurrent loads of the same key share one Source call.
type Loader struct {
	store  Store
	ttl    time.Duration
	logger *zap.Logger
	group  singleflight.Group
}

// LoaderOption configures a Loader
type LoaderOption func(*Loader)

// WithTTL sets the TTL of snapshots written by the loader
func WithTTL(ttl time.Duration) LoaderOption {
	return func(l *Loader) {
		l.ttl = ttl
	}
}

// WithLogger sets the loader logger
func WithLogger(logger *zap.Logger) LoaderOption {
	return func(l *Loader) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// NewLoader creates a loader over store
func NewLoader(store Store, opts ...LoaderOption) *Loader {
	l := &Loader{
		store:  store,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load returns the catalog stored under key, or builds it with source and
// stores the snapshot. Store failures are logged and never fail the load.
func (l *Loader) Load(ctx context.Context, key string, source Source) (*catalog.Catalog, error) {
	if c, ok := l.fromStore(ctx, key); ok {
		return c, nil
	}

	v, err, shared := l.group.Do(key, func() (interface{}, error) {
		start := time.Now()
		c, err := source(ctx)
		if err != nil {
			return nil, err
		}
		l.logger.Info("catalog loaded from source",
			zap.String("key", key),
			zap.Int("models", c.Len()),
			zap.Duration("duration", time.Since(start)),
		)

		data, err := c.MarshalSnapshot()
		if err != nil {
			return nil, err
		}
		if err := l.store.Set(ctx, key, data, l.ttl); err != nil {
			l.logger.Warn("failed to store catalog snapshot", zap.String("key", key), zap.Error(err))
		}
		return c, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog %s: %w", key, err)
	}
	if shared {
		l.logger.Debug("catalog load shared", zap.String("key", key))
	}
	return v.(*catalog.Catalog), nil
}

// Invalidate removes the snapshot stored under key
func (l *Loader) Invalidate(ctx context.Context, key string) error {
	return l.store.Delete(ctx, key)
}

func (l *Loader) fromStore(ctx context.Context, key string) (*catalog.Catalog, bool) {
	data, err := l.store.Get(ctx, key)
	if err != nil {
		switch {
		case IsMiss(err):
		case errors.Is(err, ErrCorrupt):
			l.logger.Warn("discarding corrupt snapshot", zap.String("key", key), zap.Error(err))
		default:
			l.logger.Warn("snapshot store unavailable", zap.String("key", key), zap.Error(err))
		}
		return nil, false
	}

	c, err := catalog.UnmarshalSnapshot(data)
	if err != nil {
		l.logger.Warn("discarding unreadable snapshot", zap.String("key", key), zap.Error(err))
		return nil, false
	}

	// A snapshot that no longer re-encodes to the same bytes was written by
	// a build whose catalog encoding differs from this one.
	fingerprint, err := c.Fingerprint()
	if err != nil || fingerprint != Checksum(data) {
		l.logger.Warn("discarding stale snapshot",
			zap.String("key", key),
			zap.String("stored", Checksum(data)),
			zap.String("fingerprint", fingerprint),
		)
		if err := l.store.Delete(ctx, key); err != nil {
			l.logger.Warn("failed to delete stale snapshot", zap.String("key", key), zap.Error(err))
		}
		return nil, false
	}

	l.logger.Debug("catalog loaded from snapshot",
		zap.String("key", key),
		zap.Int("models", c.Len()),
		zap.String("fingerprint", fingerprint),
	)
	return c, true
}
