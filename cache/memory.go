package cache

import (
	"context"
	"sync"
	"time"

	"github.com/Velocidex/ttlcache/v2"
)

// MemoryCache is a process-local ContentCache with a fixed TTL
type MemoryCache struct {
	lru *ttlcache.Cache

	mu   sync.Mutex
	tags map[string]map[string]struct{}
}

// NewMemoryCache creates an in-memory cache whose entries expire after ttl
func NewMemoryCache(ttl time.Duration) *MemoryCache {
	c := &MemoryCache{
		lru:  ttlcache.NewCache(),
		tags: make(map[string]map[string]struct{}),
	}
	_ = c.lru.SetTTL(ttl)
	c.lru.SkipTTLExtensionOnHit(true)
	return c
}

func (c *MemoryCache) Get(ctx context.Context, path string) ([]byte, bool, error) {
	// the lru reports both misses and expiry as an error
	v, err := c.lru.Get(path)
	if err != nil {
		return nil, false, nil
	}
	data, ok := v.([]byte)
	return data, ok, nil
}

func (c *MemoryCache) Set(ctx context.Context, path string, value []byte, tags ...string) error {
	if err := c.lru.Set(path, value); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	for _, tag := range tags {
		paths, ok := c.tags[tag]
		if !ok {
			paths = make(map[string]struct{})
			c.tags[tag] = paths
		}
		paths[path] = struct{}{}
	}
	return nil
}

func (c *MemoryCache) InvalidatePath(ctx context.Context, path string) error {
	c.remove(path)
	return nil
}

func (c *MemoryCache) InvalidateTag(ctx context.Context, tag string) error {
	c.mu.Lock()
	paths := c.tags[tag]
	delete(c.tags, tag)
	c.mu.Unlock()

	for path := range paths {
		c.remove(path)
	}
	return nil
}

// remove drops path; an absent key is not an error
func (c *MemoryCache) remove(path string) {
	_ = c.lru.Remove(path)
}

func (c *MemoryCache) Close() error {
	return c.lru.Close()
}
