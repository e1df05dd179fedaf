package cache

import (
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// MemoryCache keeps feed bodies for the life of the process
type MemoryCache struct {
	ttl   time.Duration
	items *gocache.Cache
}

// NewMemoryCache creates a memory layer whose entries live for ttl
func NewMemoryCache(ttl time.Duration) *MemoryCache {
	return &MemoryCache{
		ttl:   ttl,
		items: gocache.New(ttl, sweepInterval(ttl)),
	}
}

func (c *MemoryCache) Lookup(feedURL string) ([]byte, bool) {
	val, found := c.items.Get(Key(feedURL))
	if !found {
		return nil, false
	}
	body, ok := val.([]byte)
	return body, ok
}

func (c *MemoryCache) Store(feedURL string, body []byte) error {
	c.items.Set(Key(feedURL), body, gocache.DefaultExpiration)
	return nil
}

func (c *MemoryCache) Evict(feedURL string) error {
	c.items.Delete(Key(feedURL))
	return nil
}

// expiresAt reports when the entry for feedURL leaves memory
func (c *MemoryCache) expiresAt(feedURL string) (time.Time, bool) {
	_, exp, found := c.items.GetWithExpiration(Key(feedURL))
	return exp, found
}
