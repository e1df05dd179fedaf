package cache

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// DiskCache persists feed bodies under dir so repeated runs within ttl
// skip the network
type DiskCache struct {
	dir string
	ttl time.Duration
	now func() time.Time
}

// NewDiskCache creates a disk layer whose entries live for ttl
func NewDiskCache(dir string, ttl time.Duration) *DiskCache {
	return &DiskCache{
		dir: dir,
		ttl: ttl,
		now: time.Now,
	}
}

// feedEntry records when a body was fetched; age is checked against the
// current ttl on read, so changing disk_ttl applies to existing entries
type feedEntry struct {
	URL       string    `json:"url"`
	FetchedAt time.Time `json:"fetched_at"`
	Body      []byte    `json:"body"`
}

func (c *DiskCache) Lookup(feedURL string) ([]byte, bool) {
	path := c.path(feedURL)

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, false
	}

	var entry feedEntry
	if err := json.Unmarshal(data, &entry); err != nil || entry.URL != feedURL {
		_ = os.Remove(path)
		return nil, false
	}

	if c.now().Sub(entry.FetchedAt) > c.ttl {
		_ = os.Remove(path)
		return nil, false
	}

	return entry.Body, true
}

// Store writes the entry to a temp file and renames it into place, so a
// concurrent reader never sees a partial entry
func (c *DiskCache) Store(feedURL string, body []byte) error {
	data, err := json.Marshal(feedEntry{
		URL:       feedURL,
		FetchedAt: c.now(),
		Body:      body,
	})
	if err != nil {
		return fmt.Errorf("marshal feed entry: %w", err)
	}

	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		return fmt.Errorf("create cache dir: %w", err)
	}

	tmp, err := os.CreateTemp(c.dir, "feed-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp entry: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write temp entry: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("close temp entry: %w", err)
	}

	if err := os.Rename(tmp.Name(), c.path(feedURL)); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("commit feed entry: %w", err)
	}
	return nil
}

// Evict removes the entry; a missing entry is not an error
func (c *DiskCache) Evict(feedURL string) error {
	if err := os.Remove(c.path(feedURL)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("evict feed entry: %w", err)
	}
	return nil
}

func (c *DiskCache) path(feedURL string) string {
	return filepath.Join(c.dir, Key(feedURL)+".json")
}
