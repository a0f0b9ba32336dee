package snapshot

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/conduit-lang/modelref/internal/catalog"
)

// Hash fields of a stored snapshot
const (
	fieldCatalog  = "catalog"
	fieldChecksum = "checksum"
	fieldStoredAt = "stored_at"
)

// RedisStore shares catalog snapshots between processes. Each snapshot is a
// hash holding the encoded catalog next to its checksum, under a key scoped
// to catalog.SnapshotVersion so that builds with a different encoding never
// read each other's entries.
type RedisStore struct {
	client *redis.Client
	config Config
}

// RedisConfig holds the connection settings of a RedisStore
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	Config   Config
}

// DefaultRedisConfig returns a configuration for a local Redis server
func DefaultRedisConfig() RedisConfig {
	return RedisConfig{
		Addr:   "localhost:6379",
		Config: DefaultConfig(),
	}
}

// NewRedisStore connects to Redis and pings it before returning
func NewRedisStore(ctx context.Context, config RedisConfig) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     config.Addr,
		Password: config.Password,
		DB:       config.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}
	return NewRedisStoreWithClient(client, config.Config), nil
}

// NewRedisStoreWithClient wraps an existing client
func NewRedisStoreWithClient(client *redis.Client, config Config) *RedisStore {
	return &RedisStore{client: client, config: config}
}

// versionPrefix is the part of every key shared by snapshots of this build
func (r *RedisStore) versionPrefix() string {
	return r.config.Prefix + "v" + strconv.Itoa(catalog.SnapshotVersion) + ":"
}

func (r *RedisStore) redisKey(key string) string {
	return r.versionPrefix() + key
}

// Get returns the stored catalog bytes. An entry whose checksum does not
// match its payload is deleted and reported as a *CorruptError.
func (r *RedisStore) Get(ctx context.Context, key string) ([]byte, error) {
	fields, err := r.client.HGetAll(ctx, r.redisKey(key)).Result()
	if err != nil {
		return nil, err
	}
	if len(fields) == 0 {
		return nil, &MissError{Key: key}
	}

	data, ok := fields[fieldCatalog]
	if !ok {
		return nil, r.discard(ctx, key, "no catalog payload")
	}
	if Checksum([]byte(data)) != fields[fieldChecksum] {
		return nil, r.discard(ctx, key, "checksum mismatch")
	}
	return []byte(data), nil
}

func (r *RedisStore) discard(ctx context.Context, key, reason string) error {
	_ = r.client.Del(ctx, r.redisKey(key)).Err()
	return &CorruptError{Key: key, Reason: reason}
}

// Set stores value with its checksum. A zero ttl uses the store default and
// a negative ttl keeps the snapshot until it is deleted.
func (r *RedisStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl == 0 {
		ttl = r.config.DefaultTTL
	}
	rk := r.redisKey(key)

	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, rk)
		pipe.HSet(ctx, rk,
			fieldCatalog, value,
			fieldChecksum, Checksum(value),
			fieldStoredAt, time.Now().UTC().Format(time.RFC3339),
		)
		if ttl > 0 {
			pipe.Expire(ctx, rk, ttl)
		}
		return nil
	})
	return err
}

// Delete removes the snapshot stored under key
func (r *RedisStore) Delete(ctx context.Context, key string) error {
	return r.client.Del(ctx, r.redisKey(key)).Err()
}

// Clear removes the snapshots of every version under the store prefix
func (r *RedisStore) Clear(ctx context.Context) error {
	iter := r.client.Scan(ctx, 0, r.config.Prefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		if err := r.client.Del(ctx, iter.Val()).Err(); err != nil {
			return err
		}
	}
	return iter.Err()
}

// Exists reports whether a snapshot of the current version is stored under key
func (r *RedisStore) Exists(ctx context.Context, key string) (bool, error) {
	n, err := r.client.Exists(ctx, r.redisKey(key)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// StoredAt returns when the snapshot under key was written
func (r *RedisStore) StoredAt(ctx context.Context, key string) (time.Time, error) {
	v, err := r.client.HGet(ctx, r.redisKey(key), fieldStoredAt).Result()
	if errors.Is(err, redis.Nil) {
		return time.Time{}, &MissError{Key: key}
	}
	if err != nil {
		return time.Time{}, err
	}
	return time.Parse(time.RFC3339, v)
}

// Close closes the Redis connection
func (r *RedisStore) Close() error {
	return r.client.Close()
}
