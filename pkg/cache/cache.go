package cache

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// Cacher defines the caching interface used by the request client.
type Cacher interface {
	GetCache(ctx context.Context, key string) ([]byte, bool)
	SetCache(ctx context.Context, key string, val []byte) error
}

// Memory implements Cacher with an in-process TTL cache. Nothing is
// persisted: entries live for the configured TTL or until the process exits.
type Memory struct {
	c *gocache.Cache
}

// NewMemory creates a Memory cache whose entries expire after ttl.
func NewMemory(ttl time.Duration) *Memory {
	return &Memory{
		c: gocache.New(ttl, 2*ttl),
	}
}

func (m *Memory) GetCache(_ context.Context, key string) ([]byte, bool) {
	v, ok := m.c.Get(key)
	if !ok {
		return nil, false
	}
	b, ok := v.([]byte)
	return b, ok
}

func (m *Memory) SetCache(_ context.Context, key string, val []byte) error {
	m.c.Set(key, val, gocache.DefaultExpiration)
	return nil
}

// Flush removes all entries.
func (m *Memory) Flush() {
	m.c.Flush()
}
