package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/MrSnakeDoc/contesthub/internal/aggregator"
	"github.com/MrSnakeDoc/contesthub/internal/domain"
	"github.com/MrSnakeDoc/contesthub/internal/index"
	"github.com/MrSnakeDoc/contesthub/internal/logger"
)

// SourceProvider returns the sources to aggregate. It is called on every
// reload so edits to the sources file are picked up without a restart.
type SourceProvider func() ([]domain.ContestSource, error)

// Aggregator runs one aggregation.
type Aggregator interface {
	AggregateWithReport(ctx context.Context, srcs []domain.ContestSource, now time.Time) ([]domain.Contest, aggregator.Report, error)
}

// SnapshotSaver persists the latest aggregation.
type SnapshotSaver interface {
	SaveSnapshot(ctx context.Context, contests []domain.Contest, report any, ttl time.Duration) error
}

// ContestReloader handles periodic re-aggregation of contests
type ContestReloader struct {
	sources       SourceProvider
	aggregator    Aggregator
	store         SnapshotSaver
	index         *index.MemoryIndex
	logger        logger.Logger
	interval      time.Duration
	timeout       time.Duration
	snapshotTTL   time.Duration
	now           func() time.Time
	stopCh        chan struct{}
	manualTrigger chan struct{}
}

// ReloaderOptions holds the timing knobs of a ContestReloader.
type ReloaderOptions struct {
	Interval    time.Duration
	Timeout     time.Duration // per aggregation; <= 0 means none
	SnapshotTTL time.Duration
}

// NewContestReloader creates a new contest reloader. store may be nil.
func NewContestReloader(
	sources SourceProvider,
	agg Aggregator,
	store SnapshotSaver,
	idx *index.MemoryIndex,
	log logger.Logger,
	opts ReloaderOptions,
	manualTrigger chan struct{},
) *ContestReloader {
	return &ContestReloader{
		sources:       sources,
		aggregator:    agg,
		store:         store,
		index:         idx,
		logger:        log,
		interval:      opts.Interval,
		timeout:       opts.Timeout,
		snapshotTTL:   opts.SnapshotTTL,
		now:           time.Now,
		stopCh:        make(chan struct{}),
		manualTrigger: manualTrigger,
	}
}

// Start runs a first reload, then keeps reloading on every tick and manual
// trigger. Only a broken sources configuration fails Start; upstream
// outages are logged and retried on the next tick.
func (cr *ContestReloader) Start(ctx context.Context) error {
	if err := cr.Reload(ctx); err != nil {
		if !errors.Is(err, aggregator.ErrNoContests) {
			return fmt.Errorf("initial reload failed: %w", err)
		}
		cr.logger.Error("initial aggregation failed, serving snapshot if any",
			logger.Error(err))
	}

	ticker := time.NewTicker(cr.interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				cr.reloadAndLog(ctx)
			case <-cr.manualTrigger:
				cr.logger.Info("manual reload triggered")
				cr.reloadAndLog(ctx)
			case <-cr.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()

	return nil
}

// Stop stops the reloader
func (cr *ContestReloader) Stop() {
	close(cr.stopCh)
}

func (cr *ContestReloader) reloadAndLog(ctx context.Context) {
	if err := cr.Reload(ctx); err != nil {
		cr.logger.Error("failed to reload contests", logger.Error(err))
	}
}

// Reload aggregates every source and updates the index and snapshot. On
// total failure the index keeps its previous contents.
func (cr *ContestReloader) Reload(ctx context.Context) error {
	srcs, err := cr.sources()
	if err != nil {
		return fmt.Errorf("failed to load sources: %w", err)
	}

	runCtx := ctx
	if cr.timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, cr.timeout)
		defer cancel()
	}

	cr.logger.Info("reloading contests", logger.Int("sources", len(srcs)))
	contests, report, err := cr.aggregator.AggregateWithReport(runCtx, srcs, cr.now())
	cr.index.SetReport(report)
	if err != nil {
		return err
	}

	cr.index.Update(contests)
	cr.logger.Info("contest index updated",
		logger.Int("count", len(contests)),
		logger.String("result", string(report.Result)))

	// Best effort: the memory index is the primary source.
	if cr.store != nil {
		if err := cr.store.SaveSnapshot(ctx, contests, report, cr.snapshotTTL); err != nil {
			cr.logger.Warn("failed to save snapshot to redis", logger.Error(err))
		}
	}

	return nil
}
