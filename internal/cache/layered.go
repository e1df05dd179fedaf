package cache

import "errors"

// Layered answers from memory first and falls back to disk. Disk hits are
// copied into memory, where they live for the memory layer's own ttl.
type Layered struct {
	memory *MemoryCache
	disk   *DiskCache
}

// NewLayered stacks memory over disk
func NewLayered(memory *MemoryCache, disk *DiskCache) *Layered {
	return &Layered{memory: memory, disk: disk}
}

func (c *Layered) Lookup(feedURL string) ([]byte, bool) {
	if body, ok := c.memory.Lookup(feedURL); ok {
		return body, true
	}

	body, ok := c.disk.Lookup(feedURL)
	if !ok {
		return nil, false
	}
	_ = c.memory.Store(feedURL, body)
	return body, true
}

func (c *Layered) Store(feedURL string, body []byte) error {
	_ = c.memory.Store(feedURL, body)
	return c.disk.Store(feedURL, body)
}

func (c *Layered) Evict(feedURL string) error {
	return errors.Join(c.memory.Evict(feedURL), c.disk.Evict(feedURL))
}
