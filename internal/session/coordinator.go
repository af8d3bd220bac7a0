package session

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNotCached = errors.New("entity not in session cache")
	// ErrSuperseded marks a queued mutation dropped because an earlier
	// mutation on the same entity failed and the cache was rolled back.
	ErrSuperseded = errors.New("mutation superseded by rollback")
)

// A Notifier is told the outcome of every mutation exactly once.
type Notifier[T any] interface {
	MutationCommitted(id uuid.UUID, v T)
	MutationFailed(id uuid.UUID, rolledBack T, err error)
}

// CommitFunc persists a mutation and returns the authoritative value.
type CommitFunc[T any] func(ctx context.Context) (T, error)

type job[T any] struct {
	snapshot T // cache value before this mutation's optimistic apply
	commit   CommitFunc[T]
}

// Coordinator applies mutations optimistically to a Cache and persists
// them in the background. Mutations on the same entity run in FIFO
// order, one at a time; mutations on different entities run
// concurrently. If a commit fails, the cache entry is restored to the
// snapshot taken before that mutation and any mutations queued behind
// it are dropped.
type Coordinator[T any] struct {
	cache    *Cache[T]
	notifier Notifier[T]
	timeout  time.Duration

	mu     sync.Mutex
	queues map[uuid.UUID][]job[T]

	wg sync.WaitGroup
}

func NewCoordinator[T any](cache *Cache[T], notifier Notifier[T], timeout time.Duration) *Coordinator[T] {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Coordinator[T]{
		cache:    cache,
		notifier: notifier,
		timeout:  timeout,
		queues:   make(map[uuid.UUID][]job[T]),
	}
}

// Mutate applies fn to the cached entity immediately and schedules
// commit to run in the background. It returns the optimistic value; the
// caller can hand it to the client before the write lands. The entity
// must already be cached.
func (c *Coordinator[T]) Mutate(id uuid.UUID, fn func(T) T, commit CommitFunc[T]) (T, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	current, ok := c.cache.Get(id)
	if !ok {
		var zero T
		return zero, ErrNotCached
	}

	optimistic := fn(current)
	c.cache.Put(id, optimistic)

	c.queues[id] = append(c.queues[id], job[T]{snapshot: current, commit: commit})
	if len(c.queues[id]) == 1 {
		c.wg.Add(1)
		go c.drain(id)
	}
	return optimistic, nil
}

// drain processes one entity's queue until it is empty, then exits.
func (c *Coordinator[T]) drain(id uuid.UUID) {
	defer c.wg.Done()
	for {
		c.mu.Lock()
		queue := c.queues[id]
		if len(queue) == 0 {
			delete(c.queues, id)
			c.mu.Unlock()
			return
		}
		j := queue[0]
		c.mu.Unlock()

		authoritative, err := c.run(j)

		c.mu.Lock()
		if err != nil {
			// Roll back to the pre-mutation snapshot and drop
			// everything queued behind the failed mutation.
			c.cache.Put(id, j.snapshot)
			dropped := c.queues[id][1:]
			delete(c.queues, id)
			c.mu.Unlock()

			c.notifier.MutationFailed(id, j.snapshot, err)
			for range dropped {
				c.notifier.MutationFailed(id, j.snapshot, ErrSuperseded)
			}
			return
		}
		c.queues[id] = c.queues[id][1:]
		// Only install the authoritative row if nothing newer has been
		// applied optimistically on top of it in the meantime.
		if len(c.queues[id]) == 0 {
			c.cache.Put(id, authoritative)
		}
		c.mu.Unlock()
		c.notifier.MutationCommitted(id, authoritative)
	}
}

func (c *Coordinator[T]) run(j job[T]) (T, error) {
	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()

	authoritative, err := j.commit(ctx)
	if err != nil {
		var zero T
		log.Printf("ERROR: committing mutation: %v", err)
		return zero, fmt.Errorf("committing mutation: %w", err)
	}
	return authoritative, nil
}

// Wait blocks until every in-flight mutation has settled. Test and
// shutdown hook.
func (c *Coordinator[T]) Wait() {
	c.wg.Wait()
}
