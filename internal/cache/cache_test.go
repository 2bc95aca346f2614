package cache

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	// go-cache's janitor goroutine is stopped by a finalizer, not by us
	goleak.VerifyTestMain(m,
		goleak.IgnoreTopFunction("github.com/patrickmn/go-cache.(*janitor).Run"),
	)
}

func TestFetchCachesValue(t *testing.T) {
	t.Parallel()

	s := New(time.Minute, time.Minute)
	calls := 0

	for i := 0; i < 3; i++ {
		v, err := s.Fetch("k", time.Minute, func() (any, error) {
			calls++
			return 42, nil
		})
		require.NoError(t, err)
		assert.Equal(t, 42, v)
	}
	assert.Equal(t, 1, calls)
}

func TestFetchSingleFlight(t *testing.T) {
	t.Parallel()

	s := New(time.Minute, time.Minute)
	var calls atomic.Int32
	var wg sync.WaitGroup

	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v, err := s.Fetch("shared", time.Minute, func() (any, error) {
				calls.Add(1)
				time.Sleep(10 * time.Millisecond)
				return "payload", nil
			})
			require.NoError(t, err)
			assert.Equal(t, "payload", v)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), calls.Load())
}

func TestFetchErrorNotCached(t *testing.T) {
	t.Parallel()

	s := New(time.Minute, time.Minute)
	calls := 0

	_, err := s.Fetch("k", time.Minute, func() (any, error) {
		calls++
		return nil, assert.AnError
	})
	require.Error(t, err)

	v, err := s.Fetch("k", time.Minute, func() (any, error) {
		calls++
		return "recovered", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "recovered", v)
	assert.Equal(t, 2, calls)
}

func TestFetchWithFallbackServesStale(t *testing.T) {
	t.Parallel()

	s := New(time.Minute, time.Minute)
	s.Retain("k", "old", time.Millisecond, time.Hour)
	time.Sleep(5 * time.Millisecond)

	v, stale, err := s.FetchWithFallback("k", time.Minute, func() (any, error) {
		return nil, assert.AnError
	})
	require.NoError(t, err)
	assert.True(t, stale)
	assert.Equal(t, "old", v)
}

func TestFetchWithFallbackNoStaleValue(t *testing.T) {
	t.Parallel()

	s := New(time.Minute, time.Minute)
	_, stale, err := s.FetchWithFallback("missing", time.Minute, func() (any, error) {
		return nil, assert.AnError
	})
	require.Error(t, err)
	assert.False(t, stale)
}

func TestSetGetDelete(t *testing.T) {
	t.Parallel()

	s := New(time.Minute, time.Minute)
	s.Set("k", 1, time.Minute)
	v, ok := s.Get("k")
	require.True(t, ok)
	assert.Equal(t, 1, v)

	s.Delete("k")
	_, ok = s.Get("k")
	assert.False(t, ok)
}
