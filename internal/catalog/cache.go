package catalog

import (
	"sync"
	"time"

	"github.com/crazycars/storefront/internal/models"
)

// Cache is a small TTL cache for catalog snapshots, keyed by request
// signature. It is deliberately decoupled from the fetch call so it can be
// tested without any network involved.
type Cache struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[string]cacheEntry
	now     func() time.Time // swapped in tests
}

type cacheEntry struct {
	products  []models.Product
	expiresAt time.Time
}

// NewCache builds a cache with the given TTL. A TTL of 0 disables caching
// entirely (every Get misses).
func NewCache(ttl time.Duration) *Cache {
	return &Cache{
		ttl:     ttl,
		entries: make(map[string]cacheEntry),
		now:     time.Now,
	}
}

// Get returns the cached snapshot for key if it has not expired.
func (c *Cache) Get(key string) ([]models.Product, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok || c.ttl == 0 {
		return nil, false
	}
	if c.now().After(e.expiresAt) {
		delete(c.entries, key)
		return nil, false
	}
	return e.products, true
}

// Set stores a snapshot under key with a fresh expiry.
func (c *Cache) Set(key string, products []models.Product) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = cacheEntry{
		products:  products,
		expiresAt: c.now().Add(c.ttl),
	}
}

// Invalidate drops the entry for key, forcing the next fetch to go remote.
func (c *Cache) Invalidate(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
}
