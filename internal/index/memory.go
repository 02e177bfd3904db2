package index

import (
	"strings"
	"sync"
	"time"

	"github.com/MrSnakeDoc/contesthub/internal/aggregator"
	"github.com/MrSnakeDoc/contesthub/internal/domain"
)

// MemoryIndex holds the latest aggregated contest list for request handlers.
// Redis keeps a snapshot of it so a restart can serve before the first run.
type MemoryIndex struct {
	mu         sync.RWMutex
	contests   []domain.Contest          // sorted by start time
	byKey      map[string]domain.Contest // source:id -> contest
	report     aggregator.Report
	hasReport  bool
	lastReload time.Time // Timestamp of last successful update
}

// Filter narrows a query. Zero values match everything.
type Filter struct {
	Status domain.Status
	Source domain.SourceName
	Text   string // matched against the normalized name
}

// NewMemoryIndex creates a new memory index
func NewMemoryIndex() *MemoryIndex {
	return &MemoryIndex{
		byKey: make(map[string]domain.Contest),
	}
}

// Update replaces all contests in the index
func (idx *MemoryIndex) Update(contests []domain.Contest) {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	// Clear and rebuild
	idx.contests = append([]domain.Contest(nil), contests...)
	idx.byKey = make(map[string]domain.Contest, len(contests))
	for _, c := range contests {
		idx.byKey[c.Key()] = c
	}
	idx.lastReload = time.Now()
}

// SetReport records the report of the latest aggregation run, successful
// or not.
func (idx *MemoryIndex) SetReport(r aggregator.Report) {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	idx.report = r
	idx.hasReport = true
}

// Report returns the latest aggregation report, if any
func (idx *MemoryIndex) Report() (aggregator.Report, bool) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	return idx.report, idx.hasReport
}

// Get retrieves a contest by its source:id key
func (idx *MemoryIndex) Get(key string) (domain.Contest, bool) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	c, ok := idx.byKey[key]
	return c, ok
}

// All returns a copy of every contest in start-time order
func (idx *MemoryIndex) All() []domain.Contest {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	return append([]domain.Contest(nil), idx.contests...)
}

// Query returns the contests matching f with status recomputed against now.
func (idx *MemoryIndex) Query(f Filter, now time.Time) []domain.Contest {
	text := domain.Normalize(f.Text)
	out := make([]domain.Contest, 0)
	for _, c := range domain.Reclassify(idx.All(), now) {
		if f.Status != "" && c.Status != f.Status {
			continue
		}
		if f.Source != "" && c.Source != f.Source {
			continue
		}
		if text != "" && !strings.Contains(domain.Normalize(c.Name), text) {
			continue
		}
		out = append(out, c)
	}
	return out
}

// Count returns the number of contests in the index
func (idx *MemoryIndex) Count() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	return len(idx.contests)
}

// GetLastReload returns the timestamp of the last update
func (idx *MemoryIndex) GetLastReload() time.Time {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	return idx.lastReload
}
