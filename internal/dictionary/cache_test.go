package dictionary

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func snapshotBuilder(builds *int32) BuildFunc {
	return func(ctx context.Context, name string) (*Snapshot, error) {
		atomic.AddInt32(builds, 1)
		return NewSnapshot(NewDictionary(name)), nil
	}
}

func TestCache_GetOrBuild(t *testing.T) {
	ctx := context.Background()
	c := NewCache()
	var builds int32

	first, err := c.GetOrBuild(ctx, "web", snapshotBuilder(&builds))
	require.NoError(t, err)
	second, err := c.GetOrBuild(ctx, "web", snapshotBuilder(&builds))
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Equal(t, int32(1), atomic.LoadInt32(&builds))
	assert.Equal(t, 1, c.Len())
}

func TestCache_GetOrBuild_SingleBuildUnderConcurrency(t *testing.T) {
	ctx := context.Background()
	c := NewCache()
	var builds int32
	release := make(chan struct{})

	build := func(ctx context.Context, name string) (*Snapshot, error) {
		atomic.AddInt32(&builds, 1)
		<-release
		return NewSnapshot(NewDictionary(name)), nil
	}

	const readers = 20
	results := make([]*Snapshot, readers)
	var wg sync.WaitGroup
	for i := 0; i < readers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			s, err := c.GetOrBuild(ctx, "web", build)
			assert.NoError(t, err)
			results[i] = s
		}(i)
	}
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), atomic.LoadInt32(&builds))
	for _, s := range results {
		assert.Same(t, results[0], s)
	}
}

func TestCache_NilAndErrorsAreNotCached(t *testing.T) {
	ctx := context.Background()
	c := NewCache()
	var builds int32

	missing := func(ctx context.Context, name string) (*Snapshot, error) {
		atomic.AddInt32(&builds, 1)
		return nil, nil
	}
	s, err := c.GetOrBuild(ctx, "web", missing)
	require.NoError(t, err)
	assert.Nil(t, s)
	_, err = c.GetOrBuild(ctx, "web", missing)
	require.NoError(t, err)
	assert.Equal(t, int32(2), atomic.LoadInt32(&builds))

	wantErr := errors.New("store is down")
	_, err = c.GetOrBuild(ctx, "web", func(ctx context.Context, name string) (*Snapshot, error) {
		return nil, wantErr
	})
	assert.ErrorIs(t, err, wantErr)
	assert.Equal(t, 0, c.Len())
}

func TestCache_InvalidateDuringBuild(t *testing.T) {
	ctx := context.Background()
	c := NewCache()
	started := make(chan struct{})
	release := make(chan struct{})

	build := func(ctx context.Context, name string) (*Snapshot, error) {
		close(started)
		<-release
		return NewSnapshot(NewDictionary(name)), nil
	}

	done := make(chan *Snapshot)
	go func() {
		s, err := c.GetOrBuild(ctx, "web", build)
		assert.NoError(t, err)
		done <- s
	}()

	<-started
	c.Invalidate("web")
	close(release)

	assert.NotNil(t, <-done)
	_, ok := c.Get("web")
	assert.False(t, ok, "a build that raced an invalidation must not be stored")

	var builds int32
	_, err := c.GetOrBuild(ctx, "web", snapshotBuilder(&builds))
	require.NoError(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&builds))
	_, ok = c.Get("web")
	assert.True(t, ok)
}

func TestCache_ClearDuringBuild(t *testing.T) {
	ctx := context.Background()
	c := NewCache()
	started := make(chan struct{})
	release := make(chan struct{})

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, err := c.GetOrBuild(ctx, "web", func(ctx context.Context, name string) (*Snapshot, error) {
			close(started)
			<-release
			return NewSnapshot(NewDictionary(name)), nil
		})
		assert.NoError(t, err)
	}()

	<-started
	c.Clear()
	close(release)
	<-done

	assert.Equal(t, 0, c.Len())
}

func TestCache_GetOrBuild_CallerCanceled(t *testing.T) {
	c := NewCache()
	started := make(chan struct{})
	release := make(chan struct{})
	built := make(chan struct{})

	build := func(ctx context.Context, name string) (*Snapshot, error) {
		defer close(built)
		close(started)
		<-release
		assert.NoError(t, ctx.Err())
		return NewSnapshot(NewDictionary(name)), nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error)
	go func() {
		_, err := c.GetOrBuild(ctx, "web", build)
		errCh <- err
	}()

	<-started
	cancel()
	assert.ErrorIs(t, <-errCh, context.Canceled)

	close(release)
	<-built
	assert.Eventually(t, func() bool {
		_, ok := c.Get("web")
		return ok
	}, time.Second, 10*time.Millisecond)
}
