// Package resource holds shared handles (textures, decoded images) that
// several scene components may use at once.
package resource

import (
	"fmt"
	"sync"
)

type entry[V any] struct {
	value V
	refs  int
}

// Cache maps a key to a loaded value and its reference count. The value is
// loaded on the first Acquire and freed when the last holder releases it.
type Cache[K comparable, V any] struct {
	mu      sync.Mutex
	entries map[K]*entry[V]
	free    func(K, V)
}

// NewCache returns a cache that calls free (if not nil) when a value's last
// reference is released.
func NewCache[K comparable, V any](free func(K, V)) *Cache[K, V] {
	return &Cache[K, V]{
		entries: make(map[K]*entry[V]),
		free:    free,
	}
}

// Acquire returns the value for key, loading it if no one holds it yet.
// A failed load is not cached.
func (c *Cache[K, V]) Acquire(key K, load func() (V, error)) (V, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.entries[key]; ok {
		e.refs++
		return e.value, nil
	}

	v, err := load()
	if err != nil {
		var zero V
		return zero, fmt.Errorf("load %v: %w", key, err)
	}
	c.entries[key] = &entry[V]{value: v, refs: 1}
	return v, nil
}

// Release drops one reference. It reports whether the value was freed.
func (c *Cache[K, V]) Release(key K) bool {
	c.mu.Lock()
	e, ok := c.entries[key]
	if !ok {
		c.mu.Unlock()
		return false
	}
	e.refs--
	if e.refs > 0 {
		c.mu.Unlock()
		return false
	}
	delete(c.entries, key)
	c.mu.Unlock()

	if c.free != nil {
		c.free(key, e.value)
	}
	return true
}

// Refs returns how many holders key has.
func (c *Cache[K, V]) Refs(key K) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.entries[key]; ok {
		return e.refs
	}
	return 0
}

func (c *Cache[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Clear frees every value regardless of its count. It is meant for process
// shutdown.
func (c *Cache[K, V]) Clear() {
	c.mu.Lock()
	entries := c.entries
	c.entries = make(map[K]*entry[V])
	c.mu.Unlock()

	if c.free == nil {
		return
	}
	for k, e := range entries {
		c.free(k, e.value)
	}
}
