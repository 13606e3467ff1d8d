package utils

import (
	"sync"
	"time"
)

// Cache holds one value with a TTL, safe for concurrent use.
type Cache[T any] struct {
	mu         sync.RWMutex
	value      T
	validUntil time.Time
}

func NewCache[T any]() *Cache[T] {
	return &Cache[T]{}
}

// Set replaces the value and restarts its TTL.
func (c *Cache[T]) Set(value T, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.value = value
	c.validUntil = time.Now().Add(ttl)
}

// Get returns the value while its TTL has not run out. A cache that was
// never set reports a miss.
func (c *Cache[T]) Get() (T, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if time.Now().After(c.validUntil) {
		var zero T
		return zero, false
	}
	return c.value, true
}

// Clear drops the value immediately.
func (c *Cache[T]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	var zero T
	c.value = zero
	c.validUntil = time.Time{}
}
