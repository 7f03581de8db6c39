package store

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// Collection freshness windows.
const (
	AppointmentsTTL = time.Minute
	PatientsTTL     = 2 * time.Minute
	ServicesTTL     = 5 * time.Minute
	DoctorsTTL      = 5 * time.Minute
)

type FetchFunc[T any] func(ctx context.Context) ([]T, error)

// Collection keeps the last fetched list of one resource and when it was fetched.
// Fetch goes to the network only when the list is stale or empty.
type Collection[T any] struct {
	mu        sync.RWMutex
	items     []T
	fetchedAt time.Time
	version   uint64

	ttl   time.Duration
	now   func() time.Time
	fetch FetchFunc[T]
	key   func(T) string
	group singleflight.Group
}

func NewCollection[T any](ttl time.Duration, fetch FetchFunc[T], key func(T) string, now func() time.Time) *Collection[T] {
	if now == nil {
		now = time.Now
	}
	return &Collection[T]{
		ttl:   ttl,
		now:   now,
		fetch: fetch,
		key:   key,
	}
}

// IsStale reports whether the list was never fetched, was invalidated, or is older than the TTL.
func (c *Collection[T]) IsStale() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.staleLocked()
}

func (c *Collection[T]) staleLocked() bool {
	return c.fetchedAt.IsZero() || c.now().Sub(c.fetchedAt) > c.ttl
}

// Fetch returns the cached list when fresh and non-empty unless force is set.
// Otherwise it always calls fetch; concurrent fetches share one request.
func (c *Collection[T]) Fetch(ctx context.Context, force bool) ([]T, error) {
	c.mu.RLock()
	if !force && !c.staleLocked() && len(c.items) > 0 {
		items := c.copyLocked()
		c.mu.RUnlock()
		return items, nil
	}
	c.mu.RUnlock()

	_, err, _ := c.group.Do("fetch", func() (interface{}, error) {
		items, err := c.fetch(ctx)
		if err != nil {
			return nil, err
		}

		c.mu.Lock()
		c.items = items
		c.fetchedAt = c.now()
		c.version++
		c.mu.Unlock()
		return nil, nil
	})
	if err != nil {
		return nil, err
	}

	return c.Items(), nil
}

func (c *Collection[T]) Items() []T {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.copyLocked()
}

func (c *Collection[T]) copyLocked() []T {
	items := make([]T, len(c.items))
	copy(items, c.items)
	return items
}

func (c *Collection[T]) Get(key string) (T, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, item := range c.items {
		if c.key(item) == key {
			return item, true
		}
	}
	var zero T
	return zero, false
}

func (c *Collection[T]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// Add puts a newly created item first.
func (c *Collection[T]) Add(item T) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = append([]T{item}, c.items...)
	c.version++
}

// Replace swaps the item with the same key and reports whether it was present.
func (c *Collection[T]) Replace(item T) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	key := c.key(item)
	for i := range c.items {
		if c.key(c.items[i]) == key {
			c.items[i] = item
			c.version++
			return true
		}
	}
	return false
}

func (c *Collection[T]) Remove(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i := range c.items {
		if c.key(c.items[i]) == key {
			c.items = append(c.items[:i:i], c.items[i+1:]...)
			c.version++
			return true
		}
	}
	return false
}

// Invalidate keeps the items but forces the next Fetch to hit the network.
func (c *Collection[T]) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fetchedAt = time.Time{}
	c.version++
}

// Version changes on every fetch and mutation.
func (c *Collection[T]) Version() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.version
}
