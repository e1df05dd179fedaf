package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/ppiankov/dealscan/internal/model"
)

// FeedCache holds raw feed bodies by search URL. Each implementation applies
// its own TTL; callers never pick one per entry.
type FeedCache interface {
	Lookup(feedURL string) ([]byte, bool)
	Store(feedURL string, body []byte) error
	Evict(feedURL string) error
}

// Key derives the storage key for a feed URL
func Key(feedURL string) string {
	hash := sha256.Sum256([]byte(feedURL))
	return "dealscan:v2:" + hex.EncodeToString(hash[:])
}

// FromConfig builds the feed cache, or returns nil when caching is disabled.
// Without a directory only the memory layer is used.
func FromConfig(cfg model.CacheConfig) FeedCache {
	if !cfg.Enabled {
		return nil
	}
	memory := NewMemoryCache(cfg.MemoryTTL)
	if cfg.Dir == "" {
		return memory
	}
	return NewLayered(memory, NewDiskCache(cfg.Dir, cfg.DiskTTL))
}

func sweepInterval(ttl time.Duration) time.Duration {
	if ttl <= 0 {
		return 10 * time.Minute
	}
	return 2 * ttl
}
