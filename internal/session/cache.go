// Package session keeps the server-held live view of mutable entities and
// coordinates optimistic mutations against it. Reads are served from the
// cache; writes are applied to the cache first and persisted in the
// background, with rollback to the pre-mutation snapshot on failure.
package session

import (
	"sync"

	"github.com/google/uuid"
)

// Cache is a mutex-guarded in-memory view of entities keyed by ID.
type Cache[T any] struct {
	mu    sync.RWMutex
	items map[uuid.UUID]T
}

func NewCache[T any]() *Cache[T] {
	return &Cache[T]{items: make(map[uuid.UUID]T)}
}

func (c *Cache[T]) Get(id uuid.UUID) (T, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.items[id]
	return v, ok
}

func (c *Cache[T]) Put(id uuid.UUID, v T) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[id] = v
}

// PutIfAbsent stores v only when nothing is cached for id and returns
// whichever value ends up cached. Re-caching after a DB read must not
// clobber an optimistic value a concurrent mutation just installed.
func (c *Cache[T]) PutIfAbsent(id uuid.UUID, v T) T {
	c.mu.Lock()
	defer c.mu.Unlock()
	if cur, ok := c.items[id]; ok {
		return cur
	}
	c.items[id] = v
	return v
}

func (c *Cache[T]) Delete(id uuid.UUID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.items, id)
}

func (c *Cache[T]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// All returns a copy of every cached entity, in no particular order.
// Callers sort as needed.
func (c *Cache[T]) All() []T {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]T, 0, len(c.items))
	for _, v := range c.items {
		out = append(out, v)
	}
	return out
}

// Reset replaces the whole cache contents. Used to rehydrate from the
// database at startup or after reconnect.
func (c *Cache[T]) Reset(items map[uuid.UUID]T) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = make(map[uuid.UUID]T, len(items))
	for id, v := range items {
		c.items[id] = v
	}
}
