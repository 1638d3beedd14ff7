package cache

import (
	"container/list"
	"context"
	"slices"
	"sync"
	"time"
)

// DefaultMemoryEntries is the entry limit of NewMemoryCache.
const DefaultMemoryEntries = 10000

// MemoryCache is an in-process Cache safe for concurrent use.
//
// It holds at most a fixed number of entries. When a new key would exceed
// the limit, expired entries are swept first and then the oldest entries
// are evicted. Expired entries are also dropped lazily on Get.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]*memoryEntry
	order   *list.List // keys, least recently set first
	limit   int
	now     func() time.Time
}

type memoryEntry struct {
	data      []byte
	expiresAt time.Time
	elem      *list.Element
}

// NewMemoryCache creates an empty cache holding up to DefaultMemoryEntries.
func NewMemoryCache() *MemoryCache {
	return NewMemoryCacheWithLimit(DefaultMemoryEntries)
}

// NewMemoryCacheWithLimit creates an empty cache holding up to limit entries.
// A limit of zero or less uses DefaultMemoryEntries.
func NewMemoryCacheWithLimit(limit int) *MemoryCache {
	if limit <= 0 {
		limit = DefaultMemoryEntries
	}
	return &MemoryCache{
		entries: make(map[string]*memoryEntry),
		order:   list.New(),
		limit:   limit,
		now:     time.Now,
	}
}

// Get returns a copy of the stored value.
func (c *MemoryCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	c.mu.RLock()
	e, ok := c.entries[key]
	var (
		data      []byte
		expiresAt time.Time
	)
	if ok {
		data, expiresAt = e.data, e.expiresAt
	}
	c.mu.RUnlock()
	if !ok {
		return nil, false, nil
	}
	if !expiresAt.IsZero() && c.now().After(expiresAt) {
		c.mu.Lock()
		if cur, ok := c.entries[key]; ok && cur.expiresAt.Equal(expiresAt) {
			c.remove(key, cur)
		}
		c.mu.Unlock()
		return nil, false, nil
	}
	return slices.Clone(data), true, nil
}

// Set stores a copy of data, evicting old entries when the cache is full.
func (c *MemoryCache) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	now := c.now()
	var expiresAt time.Time
	if ttl > 0 {
		expiresAt = now.Add(ttl)
	}
	data = slices.Clone(data)

	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.entries[key]; ok {
		e.data, e.expiresAt = data, expiresAt
		c.order.MoveToBack(e.elem)
		return nil
	}
	if len(c.entries) >= c.limit {
		c.evict(now)
	}
	e := &memoryEntry{data: data, expiresAt: expiresAt}
	e.elem = c.order.PushBack(key)
	c.entries[key] = e
	return nil
}

// evict makes room for one entry. Caller holds c.mu.
func (c *MemoryCache) evict(now time.Time) {
	for key, e := range c.entries {
		if !e.expiresAt.IsZero() && now.After(e.expiresAt) {
			c.remove(key, e)
		}
	}
	for len(c.entries) >= c.limit {
		front := c.order.Front()
		key := front.Value.(string)
		c.remove(key, c.entries[key])
	}
}

func (c *MemoryCache) remove(key string, e *memoryEntry) {
	c.order.Remove(e.elem)
	delete(c.entries, key)
}

// Delete removes a value.
func (c *MemoryCache) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	if e, ok := c.entries[key]; ok {
		c.remove(key, e)
	}
	c.mu.Unlock()
	return nil
}

// Len returns the number of stored entries, including expired ones not yet
// collected.
func (c *MemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Close drops all entries.
func (c *MemoryCache) Close() error {
	c.mu.Lock()
	clear(c.entries)
	c.order.Init()
	c.mu.Unlock()
	return nil
}

// Ensure MemoryCache implements Cache.
var _ Cache = (*MemoryCache)(nil)
