// Package cache is a small TTL cache whose keys are grouped by tenant so that
// a write to one store drops only that store's entries.
package cache

import (
	"strings"
	"sync"
	"time"
)

type item[V any] struct {
	value   V
	expires time.Time
}

// TenantCache caches values per tenant with a fixed time to live.
type TenantCache[V any] struct {
	ttl time.Duration
	now func() time.Time

	mu    sync.RWMutex
	items map[string]item[V]
}

// NewTenantCache creates a cache whose entries live for ttl. A zero ttl disables caching.
func NewTenantCache[V any](ttl time.Duration) *TenantCache[V] {
	return &TenantCache[V]{ttl: ttl, now: time.Now, items: map[string]item[V]{}}
}

// SetClock replaces the time source.
func (c *TenantCache[V]) SetClock(now func() time.Time) {
	c.mu.Lock()
	c.now = now
	c.mu.Unlock()
}

func key(tenantID, k string) string {
	return tenantID + "|" + k
}

// Get returns the live value cached for a tenant key.
func (c *TenantCache[V]) Get(tenantID, k string) (V, bool) {
	c.mu.RLock()
	it, ok := c.items[key(tenantID, k)]
	now := c.now()
	c.mu.RUnlock()
	if !ok || !now.Before(it.expires) {
		var zero V
		return zero, false
	}
	return it.value, true
}

// Set caches a value for a tenant key.
func (c *TenantCache[V]) Set(tenantID, k string, v V) {
	if c.ttl <= 0 {
		return
	}
	c.mu.Lock()
	c.items[key(tenantID, k)] = item[V]{value: v, expires: c.now().Add(c.ttl)}
	c.mu.Unlock()
}

// Invalidate drops every entry of a tenant.
func (c *TenantCache[V]) Invalidate(tenantID string) {
	if tenantID == "" {
		return
	}
	prefix := tenantID + "|"
	c.mu.Lock()
	for k := range c.items {
		if strings.HasPrefix(k, prefix) {
			delete(c.items, k)
		}
	}
	c.mu.Unlock()
}
