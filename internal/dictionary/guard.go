package dictionary

import (
	"context"
	"fmt"

	"golang.org/x/sync/semaphore"
)

// Guard serializes every mutation of the dictionary catalog. It is one lock for
// all dictionaries; readers never take it.
type Guard struct {
	sem *semaphore.Weighted
}

func NewGuard() *Guard {
	return &Guard{sem: semaphore.NewWeighted(1)}
}

// Exclusive runs fn while holding the catalog lock. Waiting for the lock
// stops when ctx is done.
func (g *Guard) Exclusive(ctx context.Context, fn func(ctx context.Context) error) error {
	if err := g.sem.Acquire(ctx, 1); err != nil {
		return fmt.Errorf("acquire dictionary catalog lock: %w", err)
	}
	defer g.sem.Release(1)

	return fn(ctx)
}
