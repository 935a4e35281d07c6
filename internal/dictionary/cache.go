package dictionary

import (
	"context"
	"sync"

	"golang.org/x/sync/singleflight"
)

// BuildFunc materializes the snapshot of a dictionary, or returns nil when it does not exist.
type BuildFunc func(ctx context.Context, name string) (*Snapshot, error)

// Cache holds one complete snapshot per dictionary name until it is invalidated.
//
// Concurrent misses for the same name share a single build. Every Invalidate
// bumps a per-name generation; a build that started before the bump still
// answers its waiting callers but is not stored.
type Cache struct {
	mu          sync.RWMutex
	snapshots   map[string]*Snapshot
	generations map[string]uint64
	epoch       uint64
	group       singleflight.Group
}

func NewCache() *Cache {
	return &Cache{
		snapshots:   make(map[string]*Snapshot),
		generations: make(map[string]uint64),
	}
}

// Get returns the cached snapshot for name.
func (c *Cache) Get(name string) (*Snapshot, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	s, ok := c.snapshots[name]
	return s, ok
}

// GetOrBuild returns the cached snapshot or builds it. A nil snapshot from
// build is returned as-is and never cached.
//
// The build runs detached from the caller's cancellation so that one caller
// giving up does not fail the others waiting on the same build.
func (c *Cache) GetOrBuild(ctx context.Context, name string, build BuildFunc) (*Snapshot, error) {
	if s, ok := c.Get(name); ok {
		return s, nil
	}

	ch := c.group.DoChan(name, func() (interface{}, error) {
		c.mu.RLock()
		s, ok := c.snapshots[name]
		epoch, gen := c.epoch, c.generations[name]
		c.mu.RUnlock()
		if ok {
			return s, nil
		}

		s, err := build(context.WithoutCancel(ctx), name)
		if err != nil || s == nil {
			return s, err
		}

		c.mu.Lock()
		if c.epoch == epoch && c.generations[name] == gen {
			c.snapshots[name] = s
		}
		c.mu.Unlock()
		return s, nil
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		s, _ := res.Val.(*Snapshot)
		return s, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Invalidate removes the snapshot for name. Builds already in flight for
// name will not be stored, and later callers start a fresh build.
func (c *Cache) Invalidate(name string) {
	c.mu.Lock()
	delete(c.snapshots, name)
	c.generations[name]++
	c.mu.Unlock()

	c.group.Forget(name)
}

// Clear removes every snapshot.
func (c *Cache) Clear() {
	c.mu.Lock()
	names := make([]string, 0, len(c.snapshots)+len(c.generations))
	for name := range c.snapshots {
		names = append(names, name)
	}
	for name := range c.generations {
		names = append(names, name)
	}
	c.snapshots = make(map[string]*Snapshot)
	c.epoch++
	c.mu.Unlock()

	for _, name := range names {
		c.group.Forget(name)
	}
}

// Len returns the number of cached snapshots.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.snapshots)
}
