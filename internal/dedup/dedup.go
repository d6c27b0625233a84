// Package dedup guards against duplicate delivery of the same inbound
// event. The window is best-effort: entries expire after a fixed TTL, the
// set is capacity-bounded, and nothing survives a process restart.
package dedup

import (
	"fmt"
	"strings"
	"sync"
	"time"
)

type CacheOptions struct {
	TTL      time.Duration
	Capacity int
	Now      func() time.Time
}

type Cache struct {
	mu       sync.Mutex
	seen     map[string]time.Time
	ttl      time.Duration
	capacity int
	nowFn    func() time.Time
}

func NewCache(opts CacheOptions) (*Cache, error) {
	if opts.TTL <= 0 {
		return nil, fmt.Errorf("ttl must be positive")
	}
	capacity := opts.Capacity
	if capacity <= 0 {
		capacity = 4096
	}
	nowFn := opts.Now
	if nowFn == nil {
		nowFn = time.Now
	}
	return &Cache{
		seen:     make(map[string]time.Time),
		ttl:      opts.TTL,
		capacity: capacity,
		nowFn:    nowFn,
	}, nil
}

// Observe records the event id and reports whether it was already seen
// within the TTL window. First sight returns false.
func (c *Cache) Observe(id string) (bool, error) {
	if c == nil {
		return false, fmt.Errorf("dedup cache is not initialized")
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return false, fmt.Errorf("event id is required")
	}
	now := c.nowFn()

	c.mu.Lock()
	defer c.mu.Unlock()
	c.pruneLocked(now)
	if at, ok := c.seen[id]; ok && now.Sub(at) < c.ttl {
		return true, nil
	}
	if len(c.seen) >= c.capacity {
		c.evictOldestLocked()
	}
	c.seen[id] = now
	return false, nil
}

func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.seen)
}

func (c *Cache) pruneLocked(now time.Time) {
	for id, at := range c.seen {
		if now.Sub(at) >= c.ttl {
			delete(c.seen, id)
		}
	}
}

func (c *Cache) evictOldestLocked() {
	var (
		oldestID string
		oldestAt time.Time
	)
	for id, at := range c.seen {
		if oldestID == "" || at.Before(oldestAt) {
			oldestID = id
			oldestAt = at
		}
	}
	if oldestID != "" {
		delete(c.seen, oldestID)
	}
}
