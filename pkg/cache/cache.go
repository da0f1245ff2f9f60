// Package cache provides the shared result cache handed to every tool
// execution. Entries carry their write timestamp; freshness is decided by
// the caller against the configured TTL, the janitor only evicts entries
// that are already stale.
package cache

import (
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultSize is the entry cap applied when New receives a non-positive size.
const DefaultSize = 512

// DefaultTTL is the freshness horizon applied when New receives a
// non-positive TTL.
const DefaultTTL = 5 * time.Minute

// Entry is a cached value with the time it was written.
type Entry struct {
	Data      interface{}
	Timestamp time.Time
}

// Cache is a TTL-annotated LRU keyed by semantic operation identity, for
// example a hash of a query plus its parameters.
type Cache struct {
	lru *lru.Cache[string, Entry]
	ttl time.Duration
}

// New creates a cache holding at most size entries with the given TTL.
func New(size int, ttl time.Duration) (*Cache, error) {
	if size <= 0 {
		size = DefaultSize
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	inner, err := lru.New[string, Entry](size)
	if err != nil {
		return nil, err
	}
	return &Cache{lru: inner, ttl: ttl}, nil
}

// Set stores data under key with the current timestamp.
func (c *Cache) Set(key string, data interface{}) {
	c.lru.Add(key, Entry{Data: data, Timestamp: time.Now()})
}

// Get returns the raw entry regardless of age. Callers comparing
// timestamps themselves use this.
func (c *Cache) Get(key string) (Entry, bool) {
	return c.lru.Get(key)
}

// GetFresh returns the cached data only if the entry is younger than the
// cache TTL.
func (c *Cache) GetFresh(key string) (interface{}, bool) {
	entry, ok := c.lru.Get(key)
	if !ok {
		return nil, false
	}
	if time.Since(entry.Timestamp) > c.ttl {
		return nil, false
	}
	return entry.Data, true
}

// Prune evicts entries older than the TTL and returns how many were removed.
func (c *Cache) Prune() int {
	removed := 0
	cutoff := time.Now().Add(-c.ttl)
	for _, key := range c.lru.Keys() {
		if entry, ok := c.lru.Peek(key); ok && entry.Timestamp.Before(cutoff) {
			c.lru.Remove(key)
			removed++
		}
	}
	return removed
}

// Len returns the number of entries currently held.
func (c *Cache) Len() int {
	return c.lru.Len()
}

// TTL returns the configured freshness horizon.
func (c *Cache) TTL() time.Duration {
	return c.ttl
}
