package scheduler

import (
	"context"
	"time"

	"github.com/MrSnakeDoc/contesthub/internal/aggregator"
	"github.com/MrSnakeDoc/contesthub/internal/domain"
	"github.com/MrSnakeDoc/contesthub/internal/index"
	"github.com/MrSnakeDoc/contesthub/internal/logger"
)

// SnapshotLoader reads a persisted aggregation.
type SnapshotLoader interface {
	LoadSnapshot(ctx context.Context) ([]domain.Contest, error)
	LoadSnapshotReport(ctx context.Context, dst any) (bool, error)
}

// SnapshotSyncer seeds the memory index from Redis on startup
type SnapshotSyncer struct {
	store  SnapshotLoader
	index  *index.MemoryIndex
	logger logger.Logger
	now    func() time.Time
}

// NewSnapshotSyncer creates a new snapshot syncer
func NewSnapshotSyncer(store SnapshotLoader, idx *index.MemoryIndex, log logger.Logger) *SnapshotSyncer {
	return &SnapshotSyncer{
		store:  store,
		index:  idx,
		logger: log,
		now:    time.Now,
	}
}

// Sync loads the last snapshot and updates the memory index
func (ss *SnapshotSyncer) Sync(ctx context.Context) error {
	ss.logger.Info("syncing contest snapshot from redis to memory")

	contests, err := ss.store.LoadSnapshot(ctx)
	if err != nil {
		return err
	}

	if len(contests) == 0 {
		ss.logger.Info("no contest snapshot found in redis")
		return nil
	}

	ss.index.Update(domain.Reclassify(contests, ss.now()))

	var report aggregator.Report
	if found, err := ss.store.LoadSnapshotReport(ctx, &report); err != nil {
		ss.logger.Warn("failed to read snapshot report", logger.Error(err))
	} else if found {
		ss.index.SetReport(report)
	}

	ss.logger.Info("synced contests from redis",
		logger.Int("count", len(contests)))

	return nil
}
