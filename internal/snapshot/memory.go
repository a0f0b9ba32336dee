package snapshot

import (
	"context"
	"sync"
	"time"
)

// MemoryStore is an in-process Store with TTL support
type MemoryStore struct {
	data   sync.Map
	config Config
	cancel context.CancelFunc
}

type item struct {
	value      []byte
	expiration time.Time
}

func (i item) expired(now time.Time) bool {
	return !i.expiration.IsZero() && now.After(i.expiration)
}

// NewMemoryStore creates a memory store with the default configuration
func NewMemoryStore() *MemoryStore {
	return NewMemoryStoreWithConfig(DefaultConfig())
}

// NewMemoryStoreWithConfig creates a memory store. A background goroutine
// evicts expired snapshots until Close is called.
func NewMemoryStoreWithConfig(config Config) *MemoryStore {
	ctx, cancel := context.WithCancel(context.Background())
	m := &MemoryStore{
		config: config,
		cancel: cancel,
	}

	go m.cleanupExpired(ctx)

	return m
}

// Get retrieves a snapshot
func (m *MemoryStore) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	fullKey := m.config.Prefix + key
	value, ok := m.data.Load(fullKey)
	if !ok {
		return nil, &MissError{Key: key}
	}

	it := value.(item)
	if it.expired(time.Now()) {
		m.data.Delete(fullKey)
		return nil, &MissError{Key: key}
	}

	out := make([]byte, len(it.value))
	copy(out, it.value)
	return out, nil
}

// Set stores a snapshot
func (m *MemoryStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if ttl == 0 {
		ttl = m.config.DefaultTTL
	}

	it := item{value: make([]byte, len(value))}
	copy(it.value, value)
	if ttl > 0 {
		it.expiration = time.Now().Add(ttl)
	}

	m.data.Store(m.config.Prefix+key, it)
	return nil
}

// Delete removes a snapshot
func (m *MemoryStore) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.data.Delete(m.config.Prefix + key)
	return nil
}

// Clear removes all snapshots
func (m *MemoryStore) Clear(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.data.Range(func(key, _ interface{}) bool {
		m.data.Delete(key)
		return true
	})
	return nil
}

// Exists checks whether a live snapshot is stored under key
func (m *MemoryStore) Exists(ctx context.Context, key string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	value, ok := m.data.Load(m.config.Prefix + key)
	if !ok {
		return false, nil
	}
	return !value.(item).expired(time.Now()), nil
}

// Close stops the background cleanup goroutine
func (m *MemoryStore) Close() error {
	if m.cancel != nil {
		m.cancel()
	}
	return nil
}

func (m *MemoryStore) cleanupExpired(ctx context.Context) {
	ticker := time.NewTicker(1 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			now := time.Now()
			m.data.Range(func(key, value interface{}) bool {
				if value.(item).expired(now) {
					m.data.Delete(key)
				}
				return true
			})
		}
	}
}
