package cache

import (
	"context"
	"sync"
	"time"

	"mindmate-chat/backend/pkg/config"
)

// Store is the caching contract used for generated suggestion lists.
// Implementations must be safe for concurrent use.
type Store interface {
	Get(ctx context.Context, key string) ([]string, bool)
	Set(ctx context.Context, key string, values []string)
}

// New returns a redis-backed store when a redis URL is configured,
// otherwise an in-memory store.
func New() Store {
	cfg := config.Get()
	if cfg.Cache.RedisURL != "" {
		return NewRedisStore(cfg.Cache.RedisURL, cfg.Cache.TTL)
	}
	return NewMemoryStore()
}

// item represents a cached entry with expiration
type item struct {
	values     []string
	expiration int64
}

func (it item) expired() bool {
	if it.expiration == 0 {
		return false
	}
	return time.Now().UnixNano() > it.expiration
}

// MemoryStore is a thread-safe in-memory cache with expiration
type MemoryStore struct {
	items             map[string]item
	mu                sync.RWMutex
	defaultExpiration time.Duration
	maxItems          int
}

// NewMemoryStore creates a new in-memory store using the configured TTL,
// size bound and cleanup interval.
func NewMemoryStore() *MemoryStore {
	cfg := config.Get()

	store := &MemoryStore{
		items:             make(map[string]item),
		defaultExpiration: cfg.Cache.TTL,
		maxItems:          cfg.Cache.MaxSize,
	}

	if cfg.Cache.PurgeWindow > 0 {
		go store.startCleanupTimer(cfg.Cache.PurgeWindow)
	}

	return store
}

// Get retrieves an entry from the cache
func (s *MemoryStore) Get(_ context.Context, key string) ([]string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	it, found := s.items[key]
	if !found || it.expired() {
		return nil, false
	}
	return it.values, true
}

// Set adds an entry to the cache with the default expiration
func (s *MemoryStore) Set(_ context.Context, key string, values []string) {
	var exp int64
	if s.defaultExpiration > 0 {
		exp = time.Now().Add(s.defaultExpiration).UnixNano()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.maxItems > 0 && len(s.items) >= s.maxItems {
		if _, exists := s.items[key]; !exists {
			s.evictOldest()
		}
	}

	s.items[key] = item{values: values, expiration: exp}
}

// Count returns the number of entries in the cache (including expired ones)
func (s *MemoryStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

func (s *MemoryStore) startCleanupTimer(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for range ticker.C {
		s.deleteExpired()
	}
}

func (s *MemoryStore) deleteExpired() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UnixNano()
	for k, v := range s.items {
		if v.expiration > 0 && now > v.expiration {
			delete(s.items, k)
		}
	}
}

// evictOldest removes the entry closest to expiry. Callers must hold the lock.
func (s *MemoryStore) evictOldest() {
	var oldestKey string
	var oldestTime int64

	firstRun := true
	for k, v := range s.items {
		if firstRun || v.expiration < oldestTime {
			oldestKey = k
			oldestTime = v.expiration
			firstRun = false
		}
	}

	if oldestKey != "" {
		delete(s.items, oldestKey)
	}
}
