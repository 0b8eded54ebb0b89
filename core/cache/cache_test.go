package cache

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

func TestGet_CachesWithinTTL(t *testing.T) {
	c := New[int](time.Minute)
	var loads int

	load := func(context.Context) (int, error) {
		loads++
		return 42, nil
	}

	for i := 0; i < 3; i++ {
		v, err := c.Get(context.Background(), "all", load)
		require.NoError(t, err)
		assert.Equal(t, 42, v)
	}
	assert.Equal(t, 1, loads)
}

func TestGet_ReloadsAfterExpiry(t *testing.T) {
	c := New[int](time.Minute)
	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	var loads int
	load := func(context.Context) (int, error) {
		loads++
		return loads, nil
	}

	v, _ := c.Get(context.Background(), "all", load)
	assert.Equal(t, 1, v)

	now = now.Add(2 * time.Minute)
	v, _ = c.Get(context.Background(), "all", load)
	assert.Equal(t, 2, v)
}

func TestGet_ZeroTTLAlwaysLoads(t *testing.T) {
	c := New[string](0)
	var loads int
	load := func(context.Context) (string, error) {
		loads++
		return "x", nil
	}

	_, _ = c.Get(context.Background(), "k", load)
	_, _ = c.Get(context.Background(), "k", load)
	assert.Equal(t, 2, loads)
}

func TestGet_ErrorsAreNotCached(t *testing.T) {
	c := New[int](time.Minute)
	boom := errors.New("region down")

	_, err := c.Get(context.Background(), "k", func(context.Context) (int, error) {
		return 0, boom
	})
	assert.ErrorIs(t, err, boom)

	v, err := c.Get(context.Background(), "k", func(context.Context) (int, error) {
		return 7, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 7, v)
}

func TestInvalidateAndPurge(t *testing.T) {
	c := New[int](time.Minute)
	var loads int
	load := func(context.Context) (int, error) {
		loads++
		return loads, nil
	}

	_, _ = c.Get(context.Background(), "a", load)
	_, _ = c.Get(context.Background(), "b", load)
	assert.Equal(t, 2, loads)

	c.Invalidate("a")
	v, _ := c.Get(context.Background(), "a", load)
	assert.Equal(t, 3, v)
	v, _ = c.Get(context.Background(), "b", load)
	assert.Equal(t, 2, v)

	c.Purge()
	v, _ = c.Get(context.Background(), "b", load)
	assert.Equal(t, 4, v)
}

func TestGet_ConcurrentMissesShareLoad(t *testing.T) {
	c := New[int](time.Minute)
	var loads atomic.Int32
	release := make(chan struct{})

	load := func(context.Context) (int, error) {
		loads.Add(1)
		<-release
		return 1, nil
	}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v, err := c.Get(context.Background(), "all", load)
			assert.NoError(t, err)
			assert.Equal(t, 1, v)
		}()
	}

	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), loads.Load())
}

func TestInvalidate_DuringLoadDiscardsStaleResult(t *testing.T) {
	c := New[int](time.Minute)

	var version atomic.Int32
	version.Store(1)
	started := make(chan struct{}, 1)
	release := make(chan struct{})

	slow := func(context.Context) (int, error) {
		v := int(version.Load())
		started <- struct{}{}
		<-release
		return v, nil
	}

	stale := make(chan int, 1)
	go func() {
		v, err := c.Get(context.Background(), "all", slow)
		assert.NoError(t, err)
		stale <- v
	}()

	// The load has read version 1 when a write lands and invalidates the key.
	<-started
	version.Store(2)
	c.Invalidate("all")
	close(release)
	assert.Equal(t, 1, <-stale, "the in-flight caller still gets what it read")

	var loads int
	v, err := c.Get(context.Background(), "all", func(context.Context) (int, error) {
		loads++
		return int(version.Load()), nil
	})
	require.NoError(t, err)
	assert.Equal(t, 2, v)
	assert.Equal(t, 1, loads, "the stale result was not stored")
}

func TestInvalidate_NewCallsDoNotJoinStaleLoad(t *testing.T) {
	c := New[int](time.Minute)
	started := make(chan struct{})
	release := make(chan struct{})
	defer close(release)

	go func() {
		_, _ = c.Get(context.Background(), "all", func(context.Context) (int, error) {
			close(started)
			<-release
			return 1, nil
		})
	}()

	<-started
	c.Invalidate("all")

	v, err := c.Get(context.Background(), "all", func(context.Context) (int, error) {
		return 2, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 2, v)
}

func TestPurge_DuringLoadDiscardsStaleResult(t *testing.T) {
	c := New[int](time.Minute)
	started := make(chan struct{})
	release := make(chan struct{})

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = c.Get(context.Background(), "all", func(context.Context) (int, error) {
			close(started)
			<-release
			return 1, nil
		})
	}()

	<-started
	c.Purge()
	close(release)
	<-done

	_, ok := c.fresh("all")
	assert.False(t, ok)
}
