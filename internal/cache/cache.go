// Package cache wraps an in-memory TTL store with per-key fetch locking so
// concurrent requests for the same upstream resource result in one call.
package cache

import (
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	gocache "github.com/patrickmn/go-cache"
)

// Store is a TTL cache with single-flight fetch semantics.
type Store struct {
	data  *gocache.Cache
	clock clockwork.Clock

	mu    sync.Mutex
	locks map[string]*keyLock
}

type keyLock struct {
	sync.Mutex
	refs int
}

// New creates a Store with the given default TTL and cleanup interval.
func New(defaultTTL, cleanupInterval time.Duration) *Store {
	return newStore(defaultTTL, cleanupInterval, clockwork.NewRealClock())
}

// NewWithClock creates a Store driven by the supplied clock. Used in tests.
func NewWithClock(defaultTTL, cleanupInterval time.Duration, clock clockwork.Clock) *Store {
	return newStore(defaultTTL, cleanupInterval, clock)
}

func newStore(defaultTTL, cleanupInterval time.Duration, clock clockwork.Clock) *Store {
	return &Store{
		data:  gocache.New(defaultTTL, cleanupInterval),
		clock: clock,
		locks: make(map[string]*keyLock),
	}
}

// Get returns the cached value for key if present and fresh.
func (s *Store) Get(key string) (any, bool) {
	return s.data.Get(key)
}

// Set stores value under key with the given TTL.
func (s *Store) Set(key string, value any, ttl time.Duration) {
	s.data.Set(key, value, ttl)
}

// Delete removes key from the cache.
func (s *Store) Delete(key string) {
	s.data.Delete(key)
}

// Fetch returns the cached value for key, or calls fn to produce it. At most
// one fn runs per key at a time; other callers block and then read the value
// fn stored. A failed fn caches nothing, so the next caller retries.
func (s *Store) Fetch(key string, ttl time.Duration, fn func() (any, error)) (any, error) {
	if v, ok := s.data.Get(key); ok {
		return v, nil
	}

	lock := s.acquire(key)
	defer s.release(key, lock)

	lock.Lock()
	defer lock.Unlock()

	// Another caller may have populated the key while we waited.
	if v, ok := s.data.Get(key); ok {
		return v, nil
	}

	v, err := fn()
	if err != nil {
		return nil, err
	}
	s.data.Set(key, v, ttl)
	return v, nil
}

// FetchWithFallback behaves like Fetch but on fn failure returns the most
// recent expired value if one is still held, flagging it as stale.
func (s *Store) FetchWithFallback(key string, ttl time.Duration, fn func() (any, error)) (v any, stale bool, err error) {
	v, err = s.Fetch(key, ttl, fn)
	if err == nil {
		return v, false, nil
	}
	if prev, ok := s.data.Get(staleKey(key)); ok {
		return prev, true, nil
	}
	return nil, false, err
}

// Retain stores value both under key (with ttl) and under a long-lived stale
// slot consulted by FetchWithFallback.
func (s *Store) Retain(key string, value any, ttl, staleTTL time.Duration) {
	s.data.Set(key, value, ttl)
	s.data.Set(staleKey(key), value, staleTTL)
}

func staleKey(key string) string { return key + "\x00stale" }

// Now returns the store's clock time.
func (s *Store) Now() time.Time {
	return s.clock.Now()
}

func (s *Store) acquire(key string) *keyLock {
	s.mu.Lock()
	defer s.mu.Unlock()
	lock, ok := s.locks[key]
	if !ok {
		lock = &keyLock{}
		s.locks[key] = lock
	}
	lock.refs++
	return lock
}

func (s *Store) release(key string, lock *keyLock) {
	s.mu.Lock()
	defer s.mu.Unlock()
	lock.refs--
	if lock.refs == 0 {
		delete(s.locks, key)
	}
}
