// ABOUTME: Short-lived cache for backend responses shared across requests
// ABOUTME: Store interface with an in-memory sync.Map implementation and TTL cleanup

package cache

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"
)

// Store holds opaque values with a per-entry TTL. Implementations are
// best-effort: a failing backend behaves like a miss.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration)
	Delete(ctx context.Context, keys ...string)
}

type entry struct {
	data      []byte
	expiresAt time.Time
}

// Memory is a process-local Store.
type Memory struct {
	store sync.Map
	done  chan struct{}
	once  sync.Once
}

// NewMemory starts a Memory store that sweeps expired entries every interval.
func NewMemory(interval time.Duration) *Memory {
	c := &Memory{done: make(chan struct{})}
	go c.startCleanup(interval)
	return c
}

func (c *Memory) Get(_ context.Context, key string) ([]byte, bool) {
	val, ok := c.store.Load(key)
	if !ok {
		slog.Debug("Cache miss", "key", key)
		return nil, false
	}

	e := val.(entry)
	if time.Now().After(e.expiresAt) {
		c.store.Delete(key)
		slog.Debug("Cache expired", "key", key)
		return nil, false
	}

	slog.Debug("Cache hit", "key", key)
	return e.data, true
}

func (c *Memory) Set(_ context.Context, key string, value []byte, ttl time.Duration) {
	if ttl <= 0 {
		return
	}
	c.store.Store(key, entry{data: value, expiresAt: time.Now().Add(ttl)})
	slog.Debug("Cache set", "key", key, "ttl", ttl)
}

func (c *Memory) Delete(_ context.Context, keys ...string) {
	for _, key := range keys {
		c.store.Delete(key)
	}
}

// Close stops the cleanup goroutine.
func (c *Memory) Close() error {
	c.once.Do(func() { close(c.done) })
	return nil
}

func (c *Memory) startCleanup(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-c.done:
			return
		case <-ticker.C:
			now := time.Now()
			c.store.Range(func(key, val any) bool {
				if now.After(val.(entry).expiresAt) {
					c.store.Delete(key)
				}
				return true
			})
		}
	}
}

// GetJSON decodes a cached JSON value into T.
func GetJSON[T any](ctx context.Context, s Store, key string) (T, bool) {
	var v T
	data, ok := s.Get(ctx, key)
	if !ok {
		return v, false
	}
	if err := json.Unmarshal(data, &v); err != nil {
		slog.Warn("Dropping undecodable cache entry", "key", key, "error", err)
		s.Delete(ctx, key)
		return v, false
	}
	return v, true
}

// SetJSON stores v encoded as JSON.
func SetJSON(ctx context.Context, s Store, key string, v any, ttl time.Duration) {
	data, err := json.Marshal(v)
	if err != nil {
		slog.Warn("Cache encode failed", "key", key, "error", err)
		return
	}
	s.Set(ctx, key, data, ttl)
}
