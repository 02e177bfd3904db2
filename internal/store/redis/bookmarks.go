package redis

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// GetBlob returns the stored bookmark blob for owner, or nil when absent
func (s *Store) GetBlob(ctx context.Context, owner string) ([]byte, error) {
	data, err := s.client.Get(ctx, BookmarksKey(owner)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get bookmarks: %w", err)
	}
	return data, nil
}

// SetBlob replaces the bookmark blob for owner. Bookmarks never expire.
func (s *Store) SetBlob(ctx context.Context, owner string, blob []byte) error {
	if err := s.client.Set(ctx, BookmarksKey(owner), blob, 0).Err(); err != nil {
		return fmt.Errorf("failed to save bookmarks: %w", err)
	}
	return nil
}
