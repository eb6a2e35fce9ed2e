package cache

import (
	"bytes"
	"context"
	"encoding/json"
	"time"

	"github.com/jellydator/ttlcache/v3"
)

// Store is a byte-oriented key/value cache with per-entry TTLs.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

// Memory is an in-process Store backed by ttlcache. Reads never return an
// expired entry; Run evicts them in the background.
type Memory struct {
	items *ttlcache.Cache[string, []byte]
}

// NewMemory builds an in-memory store. Hits do not extend an entry's TTL.
func NewMemory() *Memory {
	return &Memory{items: ttlcache.New[string, []byte](
		ttlcache.WithDisableTouchOnHit[string, []byte](),
	)}
}

func (m *Memory) Get(_ context.Context, key string) ([]byte, bool, error) {
	item := m.items.Get(key)
	if item == nil || item.IsExpired() {
		return nil, false, nil
	}
	return bytes.Clone(item.Value()), true, nil
}

// Set stores value under key. A non-positive ttl never expires.
func (m *Memory) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = ttlcache.NoTTL
	}
	m.items.Set(key, bytes.Clone(value), ttl)
	return nil
}

func (m *Memory) Delete(_ context.Context, keys ...string) error {
	for _, key := range keys {
		m.items.Delete(key)
	}
	return nil
}

// Run evicts expired entries until ctx is done.
func (m *Memory) Run(ctx context.Context) {
	stop := context.AfterFunc(ctx, m.items.Stop)
	defer stop()
	m.items.Start()
}

// Len reports the number of stored entries, including expired ones not yet evicted.
func (m *Memory) Len() int {
	return m.items.Len()
}

// JSON wraps a Store with JSON encoding and a fixed TTL.
type JSON struct {
	store Store
	ttl   time.Duration
}

// NewJSON constructs a JSON helper over store.
func NewJSON(store Store, ttl time.Duration) *JSON {
	return &JSON{store: store, ttl: ttl}
}

// GetJSON unmarshals a cached payload into dst. It reports whether the key existed.
func (c *JSON) GetJSON(ctx context.Context, key string, dst any) (bool, error) {
	if c == nil || c.store == nil || key == "" {
		return false, nil
	}
	data, ok, err := c.store.Get(ctx, key)
	if err != nil || !ok {
		return false, err
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return false, err
	}
	return true, nil
}

// SetJSON serialises v and stores it with the configured TTL.
func (c *JSON) SetJSON(ctx context.Context, key string, v any) error {
	if c == nil || c.store == nil || key == "" {
		return nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return c.store.Set(ctx, key, data, c.ttl)
}

// Delete drops keys from the underlying store.
func (c *JSON) Delete(ctx context.Context, keys ...string) error {
	if c == nil || c.store == nil || len(keys) == 0 {
		return nil
	}
	return c.store.Delete(ctx, keys...)
}
