// Package snapshot persists serialized catalogs so that expensive catalog
// sources (database introspection) run once per TTL instead of once per
// process.
package snapshot

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"
)

// Store is implemented by every snapshot backend
type Store interface {
	// Get retrieves a snapshot; a missing key returns an error matching ErrMiss
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores a snapshot with a TTL; zero uses the store default, negative never expires
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes a snapshot
	Delete(ctx context.Context, key string) error

	// Clear removes every snapshot under the store prefix
	Clear(ctx context.Context) error

	// Exists checks whether a snapshot is present
	Exists(ctx context.Context, key string) (bool, error)

	// Close releases backend resources
	Close() error
}

// Config holds options shared by all backends
type Config struct {
	// DefaultTTL applies when Set is called with a zero TTL
	DefaultTTL time.Duration
	// Prefix is prepended to all keys
	Prefix string
}

// DefaultConfig returns the default store configuration
func DefaultConfig() Config {
	return Config{
		DefaultTTL: 10 * time.Minute,
		Prefix:     "modelref:catalog:",
	}
}

// ErrMiss is returned when a key has no snapshot
var ErrMiss = errors.New("snapshot miss")

// MissError names the key that missed
type MissError struct {
	Key string
}

func (e *MissError) Error() string {
	return "snapshot miss: " + e.Key
}

// Is matches ErrMiss
func (e *MissError) Is(target error) bool {
	return target == ErrMiss
}

// IsMiss checks if an error is a snapshot miss
func IsMiss(err error) bool {
	return errors.Is(err, ErrMiss)
}

// ErrCorrupt is returned when a stored snapshot fails its integrity check
var ErrCorrupt = errors.New("corrupt snapshot")

// CorruptError names the key whose snapshot was discarded
type CorruptError struct {
	Key    string
	Reason string
}

func (e *CorruptError) Error() string {
	return "corrupt snapshot " + e.Key + ": " + e.Reason
}

// Is matches ErrCorrupt
func (e *CorruptError) Is(target error) bool {
	return target == ErrCorrupt
}

// Checksum returns the hash stored next to a snapshot payload. For catalog
// snapshots it equals the catalog's Fingerprint.
func Checksum(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:16])
}
