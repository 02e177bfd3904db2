package redis

import (
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// DefaultSnapshotTTL is the default TTL for the contest snapshot (48 hours)
	DefaultSnapshotTTL = 48 * time.Hour
	// DefaultCacheTTL is the default TTL for cache entries (24 hours)
	DefaultCacheTTL = 24 * time.Hour
)

// Store handles Redis operations for bookmarks, cache and snapshots
type Store struct {
	client *redis.Client
	now    func() time.Time
}

// NewStore creates a new Redis store
func NewStore(client *redis.Client) *Store {
	return &Store{
		client: client,
		now:    time.Now,
	}
}
