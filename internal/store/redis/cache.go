package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// envelope wraps a cached value with the time it was written so readers can
// report its age.
type envelope struct {
	StoredAt int64           `json:"stored_at"`
	Value    json.RawMessage `json:"value"`
}

// CacheSet stores a JSON value under key with ttl. A ttl <= 0 uses
// DefaultCacheTTL.
func (s *Store) CacheSet(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if !json.Valid(value) {
		return fmt.Errorf("cache value for %s is not valid JSON", key)
	}
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}

	data, err := json.Marshal(envelope{StoredAt: s.now().UnixMilli(), Value: value})
	if err != nil {
		return fmt.Errorf("failed to marshal cache entry: %w", err)
	}
	if err := s.client.Set(ctx, CacheKey(key), data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to set cache entry: %w", err)
	}
	return nil
}

// CacheGet retrieves a cached value and its age. ok is false on a miss.
// An unreadable entry is treated as a miss.
func (s *Store) CacheGet(ctx context.Context, key string) ([]byte, time.Duration, bool, error) {
	data, err := s.client.Get(ctx, CacheKey(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, 0, false, nil // Cache miss
		}
		return nil, 0, false, fmt.Errorf("failed to get cache entry: %w", err)
	}

	var env envelope
	if err := json.Unmarshal(data, &env); err != nil || len(env.Value) == 0 {
		return nil, 0, false, nil
	}

	age := max(s.now().Sub(time.UnixMilli(env.StoredAt)), 0)
	return env.Value, age, true, nil
}

// InvalidateCache removes a cache entry
func (s *Store) InvalidateCache(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, CacheKey(key)).Err(); err != nil {
		return fmt.Errorf("failed to invalidate cache: %w", err)
	}
	return nil
}

// FlushCache removes all cache entries and returns how many were deleted
func (s *Store) FlushCache(ctx context.Context) (int, error) {
	deleted := 0
	iter := s.client.Scan(ctx, 0, KeyPrefixCache+"*", 0).Iterator()
	for iter.Next(ctx) {
		if err := s.client.Del(ctx, iter.Val()).Err(); err != nil {
			return deleted, fmt.Errorf("failed to delete cache key: %w", err)
		}
		deleted++
	}
	if err := iter.Err(); err != nil {
		return deleted, fmt.Errorf("failed to flush cache: %w", err)
	}
	return deleted, nil
}
