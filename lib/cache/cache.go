// Package cache is the in-memory expiring store shared by the
// platform sessions and the aggregation service.
package cache

import (
	"strings"
	"sync"
	"time"
)

type entry[T any] struct {
	value     T
	createdAt time.Time
	expiresAt time.Time
}

type Options struct {
	// defaults to 10 minutes
	DefaultTTL time.Duration
	// defaults to 1000
	MaxEntries int
	// defaults to 5 minutes
	SweepInterval time.Duration
}

func (o Options) withDefaults() Options {
	if o.DefaultTTL <= 0 {
		o.DefaultTTL = time.Minute * 10
	}
	if o.MaxEntries <= 0 {
		o.MaxEntries = 1000
	}
	if o.SweepInterval <= 0 {
		o.SweepInterval = time.Minute * 5
	}
	return o
}

// Cache is safe for concurrent use. Close must be called on teardown
// to stop the background sweep.
type Cache[T any] struct {
	mu      sync.Mutex
	entries map[string]entry[T]
	opts    Options

	done      chan struct{}
	closeOnce sync.Once

	// overridable for tests
	now func() time.Time
}

func New[T any](opts Options) *Cache[T] {
	c := &Cache[T]{
		entries: map[string]entry[T]{},
		opts:    opts.withDefaults(),
		done:    make(chan struct{}),
		now:     time.Now,
	}
	go c.sweepLoop()
	return c
}

func (c *Cache[T]) sweepLoop() {
	ticker := time.NewTicker(c.opts.SweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-c.done:
			return
		case <-ticker.C:
			c.sweep()
		}
	}
}

// sweep deletes every expired entry so memory stays bounded even when
// keys are never read again.
func (c *Cache[T]) sweep() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	for key, e := range c.entries {
		if now.After(e.expiresAt) {
			delete(c.entries, key)
		}
	}
}

// Set inserts or overwrites under the default ttl.
func (c *Cache[T]) Set(key string, value T) {
	c.SetTTL(key, value, c.opts.DefaultTTL)
}

// SetTTL inserts or overwrites with an explicit ttl. At capacity the
// entry with the oldest creation time is evicted first.
func (c *Cache[T]) SetTTL(key string, value T, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	_, overwrite := c.entries[key]
	if !overwrite && len(c.entries) >= c.opts.MaxEntries {
		c.evictOldestLocked()
	}

	now := c.now()
	c.entries[key] = entry[T]{
		value:     value,
		createdAt: now,
		expiresAt: now.Add(ttl),
	}
}

func (c *Cache[T]) evictOldestLocked() {
	var oldestKey string
	var oldest time.Time
	first := true
	for key, e := range c.entries {
		if first || e.createdAt.Before(oldest) {
			oldestKey = key
			oldest = e.createdAt
			first = false
		}
	}
	if !first {
		delete(c.entries, oldestKey)
	}
}

// Get returns the live value for key. An entry past its expiry is
// deleted on read and reported as a miss.
func (c *Cache[T]) Get(key string) (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero T
	e, ok := c.entries[key]
	if !ok {
		return zero, false
	}
	if c.now().After(e.expiresAt) {
		delete(c.entries, key)
		return zero, false
	}
	return e.value, true
}

func (c *Cache[T]) Has(key string) bool {
	_, ok := c.Get(key)
	return ok
}

func (c *Cache[T]) Delete(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	_, ok := c.entries[key]
	delete(c.entries, key)
	return ok
}

// DeletePrefix removes every entry whose key starts with prefix and
// reports how many were removed.
func (c *Cache[T]) DeletePrefix(prefix string) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	for key := range c.entries {
		if strings.HasPrefix(key, prefix) {
			delete(c.entries, key)
			removed++
		}
	}
	return removed
}

func (c *Cache[T]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = map[string]entry[T]{}
}

func (c *Cache[T]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Close stops the background sweep and clears all entries.
func (c *Cache[T]) Close() {
	c.closeOnce.Do(func() {
		close(c.done)
	})
	c.Clear()
}
