package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/MrSnakeDoc/contesthub/internal/domain"
)

// SaveSnapshot stores the aggregated contests and the run report in one
// pipeline. A ttl <= 0 uses DefaultSnapshotTTL.
func (s *Store) SaveSnapshot(ctx context.Context, contests []domain.Contest, report any, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = DefaultSnapshotTTL
	}

	data, err := json.Marshal(contests)
	if err != nil {
		return fmt.Errorf("failed to marshal contests: %w", err)
	}
	reportData, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}

	pipe := s.client.Pipeline()
	pipe.Set(ctx, KeySnapshotContests, data, ttl)
	pipe.Set(ctx, KeySnapshotReport, reportData, ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save snapshot: %w", err)
	}
	return nil
}

// LoadSnapshot retrieves the stored contests. It returns (nil, nil) when no
// snapshot exists.
func (s *Store) LoadSnapshot(ctx context.Context) ([]domain.Contest, error) {
	data, err := s.client.Get(ctx, KeySnapshotContests).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get snapshot: %w", err)
	}

	var contests []domain.Contest
	if err := json.Unmarshal(data, &contests); err != nil {
		return nil, fmt.Errorf("failed to unmarshal snapshot: %w", err)
	}
	return contests, nil
}

// LoadSnapshotReport decodes the stored report into dst. found is false when
// no report exists.
func (s *Store) LoadSnapshotReport(ctx context.Context, dst any) (bool, error) {
	data, err := s.client.Get(ctx, KeySnapshotReport).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, fmt.Errorf("failed to get snapshot report: %w", err)
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return false, fmt.Errorf("failed to unmarshal snapshot report: %w", err)
	}
	return true, nil
}

// Ping reports whether Redis is reachable
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}
