package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore caches suggestion lists in redis so replicas share one cache
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore creates a redis-backed store
func NewRedisStore(addr string, ttl time.Duration) *RedisStore {
	client := redis.NewClient(&redis.Options{
		Addr: addr,
	})
	return &RedisStore{client: client, ttl: ttl}
}

// Get retrieves an entry from redis. A miss and a broken connection look the
// same to callers; the cache is best-effort.
func (s *RedisStore) Get(ctx context.Context, key string) ([]string, bool) {
	raw, err := s.client.Get(ctx, key).Result()
	if err != nil {
		return nil, false
	}

	var values []string
	if err := json.Unmarshal([]byte(raw), &values); err != nil {
		return nil, false
	}
	return values, true
}

// Set stores an entry in redis with the configured TTL
func (s *RedisStore) Set(ctx context.Context, key string, values []string) {
	raw, err := json.Marshal(values)
	if err != nil {
		return
	}
	s.client.Set(ctx, key, raw, s.ttl)
}

// Ping checks connectivity, used by the health checker
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}
