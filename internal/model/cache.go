package model

import "sync"

type pairKey struct {
	Source string
	Target string
}

// Cache holds resolved strategies per ordered language pair. It is shared
// across concurrent pipeline runs and lives for the process lifetime; there
// is no eviction. Population races resolve first-writer-wins so duplicate
// loads never corrupt an entry.
type Cache struct {
	mu      sync.RWMutex
	entries map[pairKey]Strategy
}

func NewCache() *Cache {
	return &Cache{entries: make(map[pairKey]Strategy)}
}

func (c *Cache) Get(source, target string) (Strategy, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	s, ok := c.entries[pairKey{source, target}]
	return s, ok
}

// Put stores the strategy unless another writer got there first, and returns
// the entry that ended up in the cache.
func (c *Cache) Put(source, target string, s Strategy) Strategy {
	c.mu.Lock()
	defer c.mu.Unlock()
	key := pairKey{source, target}
	if existing, ok := c.entries[key]; ok {
		return existing
	}
	c.entries[key] = s
	return s
}

// Len reports the number of cached pairs.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
