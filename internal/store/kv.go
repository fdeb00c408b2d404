package store

import (
	"context"
	"errors"
	"sync"

	"github.com/redis/go-redis/v9"
)

// ErrKeyNotFound is returned by KV.Get when the key has never been written.
var ErrKeyNotFound = errors.New("store: key not found")

// KV is the persistent key-value backend the portal stores its collections
// in. The production implementation is Redis; tests inject MemoryKV.
// Publish carries the live results feed and is best-effort on all
// implementations.
type KV interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Del(ctx context.Context, key string) error
	Publish(ctx context.Context, channel, payload string) error
}

// ─── Redis implementation ───────────────────────────────────────────

// RedisKV adapts a redis client to the KV interface. Values are plain
// strings with no TTL: the store owns key lifecycle explicitly.
type RedisKV struct {
	rdb *redis.Client
}

// NewRedisKV wraps an existing redis client.
func NewRedisKV(rdb *redis.Client) *RedisKV {
	return &RedisKV{rdb: rdb}
}

func (k *RedisKV) Get(ctx context.Context, key string) (string, error) {
	val, err := k.rdb.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrKeyNotFound
	}
	return val, err
}

func (k *RedisKV) Set(ctx context.Context, key, value string) error {
	return k.rdb.Set(ctx, key, value, 0).Err()
}

func (k *RedisKV) Del(ctx context.Context, key string) error {
	return k.rdb.Del(ctx, key).Err()
}

func (k *RedisKV) Publish(ctx context.Context, channel, payload string) error {
	return k.rdb.Publish(ctx, channel, payload).Err()
}

// ─── In-memory implementation ───────────────────────────────────────

// MemoryKV is a map-backed KV for tests and ephemeral runs. Published
// payloads are retained per channel so tests can assert on the feed.
type MemoryKV struct {
	mu        sync.RWMutex
	data      map[string]string
	published map[string][]string
}

// NewMemoryKV creates an empty in-memory KV.
func NewMemoryKV() *MemoryKV {
	return &MemoryKV{
		data:      make(map[string]string),
		published: make(map[string][]string),
	}
}

func (k *MemoryKV) Get(_ context.Context, key string) (string, error) {
	k.mu.RLock()
	defer k.mu.RUnlock()
	val, ok := k.data[key]
	if !ok {
		return "", ErrKeyNotFound
	}
	return val, nil
}

func (k *MemoryKV) Set(_ context.Context, key, value string) error {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.data[key] = value
	return nil
}

func (k *MemoryKV) Del(_ context.Context, key string) error {
	k.mu.Lock()
	defer k.mu.Unlock()
	delete(k.data, key)
	return nil
}

func (k *MemoryKV) Publish(_ context.Context, channel, payload string) error {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.published[channel] = append(k.published[channel], payload)
	return nil
}

// Published returns the payloads published on a channel, in order.
func (k *MemoryKV) Published(channel string) []string {
	k.mu.RLock()
	defer k.mu.RUnlock()
	return append([]string(nil), k.published[channel]...)
}
