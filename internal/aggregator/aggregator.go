// Package aggregator merges contests from every configured source into one
// chronologically ordered list.
package aggregator

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/MrSnakeDoc/contesthub/internal/domain"
	"github.com/MrSnakeDoc/contesthub/internal/fetch"
	"github.com/MrSnakeDoc/contesthub/internal/logger"
	"github.com/MrSnakeDoc/contesthub/internal/metrics"
	"github.com/MrSnakeDoc/contesthub/internal/sources"
)

// ErrNoContests is returned when every attempted source came back empty.
var ErrNoContests = errors.New("no contests could be aggregated")

// Fetcher retrieves the raw payloads of one source.
type Fetcher interface {
	FetchSource(ctx context.Context, src domain.ContestSource) []fetch.Result
}

// Aggregator drives fetching, adapting and classification.
type Aggregator struct {
	fetcher  Fetcher
	registry *sources.Registry
	log      logger.Logger
}

// New creates an Aggregator.
func New(fetcher Fetcher, registry *sources.Registry, log logger.Logger) *Aggregator {
	if registry == nil {
		registry = sources.DefaultRegistry()
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Aggregator{
		fetcher:  fetcher,
		registry: registry,
		log:      log,
	}
}

// Aggregate returns every contest of every source, classified against now
// and sorted by start time. Partial coverage is a success.
func (a *Aggregator) Aggregate(ctx context.Context, srcs []domain.ContestSource, now time.Time) ([]domain.Contest, error) {
	contests, _, err := a.AggregateWithReport(ctx, srcs, now)
	return contests, err
}

// AggregateWithReport is Aggregate plus a per-source breakdown of the run.
func (a *Aggregator) AggregateWithReport(ctx context.Context, srcs []domain.ContestSource, now time.Time) ([]domain.Contest, Report, error) {
	started := time.Now()
	report := Report{
		StartedAt: now,
		Sources:   make([]SourceReport, len(srcs)),
	}
	perSource := make([][]domain.Contest, len(srcs))
	failures := make([][]error, len(srcs))

	var wg sync.WaitGroup
	for i, src := range srcs {
		wg.Add(1)
		go func(i int, src domain.ContestSource) {
			defer wg.Done()
			perSource[i], report.Sources[i], failures[i] = a.collect(ctx, src, now)
		}(i, src)
	}
	wg.Wait()

	var merged []domain.Contest
	for _, batch := range perSource {
		merged = append(merged, batch...)
	}
	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].StartTimeSeconds < merged[j].StartTimeSeconds
	})

	report.Duration = time.Since(started)
	report.Total = len(merged)

	if len(srcs) > 0 && len(merged) == 0 {
		var errs []error
		for _, f := range failures {
			errs = append(errs, f...)
		}
		report.Result = ResultFailed
		metrics.ObserveAggregation(string(report.Result), report.Duration)
		a.log.Error("aggregation produced no contests",
			logger.Int("sources", len(srcs)),
			logger.Duration("elapsed", report.Duration))
		if joined := errors.Join(errs...); joined != nil {
			return nil, report, fmt.Errorf("%w: %w", ErrNoContests, joined)
		}
		return nil, report, ErrNoContests
	}

	report.Result = ResultComplete
	for _, s := range report.Sources {
		if s.EndpointsFailed > 0 || s.Unknown {
			report.Result = ResultPartial
			break
		}
	}
	metrics.ObserveAggregation(string(report.Result), report.Duration)
	for _, s := range report.Sources {
		metrics.SetContests(string(s.Name), s.Records)
	}

	a.log.Info("aggregation finished",
		logger.String("result", string(report.Result)),
		logger.Int("sources", len(srcs)),
		logger.Int("contests", report.Total),
		logger.Duration("elapsed", report.Duration))

	if merged == nil {
		merged = []domain.Contest{}
	}
	return merged, report, nil
}

// collect fetches and adapts a single source.
func (a *Aggregator) collect(ctx context.Context, src domain.ContestSource, now time.Time) ([]domain.Contest, SourceReport, []error) {
	sr := SourceReport{Name: src.Name, Endpoints: len(src.Endpoints)}

	adapter, ok := a.registry.Lookup(src.Name)
	if !ok {
		sr.Unknown = true
		a.log.Warn("no adapter for source, skipping", logger.String("source", string(src.Name)))
		return nil, sr, []error{fmt.Errorf("source %s: no adapter registered", src.Name)}
	}

	var (
		contests []domain.Contest
		errs     []error
	)
	for _, res := range a.fetcher.FetchSource(ctx, src) {
		if !res.OK() {
			sr.EndpointsFailed++
			errs = append(errs, fmt.Errorf("source %s: %w", src.Name, res.Err))
			continue
		}
		sr.EndpointsOK++

		adapted := adapter.Adapt(res.Body)
		if len(adapted) == 0 {
			a.log.Debug("payload yielded no contests",
				logger.String("source", string(src.Name)),
				logger.String("url", res.Endpoint.URL))
		}
		for i := range adapted {
			adapted[i].Status = domain.Classify(adapted[i].StartTimeSeconds, adapted[i].DurationSeconds, now.Unix())
		}
		contests = append(contests, adapted...)
	}

	sr.Records = len(contests)
	a.log.Debug("source collected",
		logger.String("source", string(src.Name)),
		logger.Int("endpoints_ok", sr.EndpointsOK),
		logger.Int("endpoints_failed", sr.EndpointsFailed),
		logger.Int("contests", sr.Records))

	return contests, sr, errs
}
