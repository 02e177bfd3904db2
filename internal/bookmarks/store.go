// Package bookmarks keeps per-owner sets of bookmarked contest keys.
package bookmarks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/MrSnakeDoc/contesthub/internal/domain"
	"github.com/MrSnakeDoc/contesthub/internal/logger"
	"github.com/MrSnakeDoc/contesthub/internal/metrics"
)

// ErrEmptyKey is returned when toggling a blank key.
var ErrEmptyKey = errors.New("bookmark key must not be empty")

// DefaultOwner is used when a caller does not name an owner.
const DefaultOwner = "default"

// KV persists one opaque blob per owner. GetBlob returns (nil, nil) when
// nothing is stored.
type KV interface {
	GetBlob(ctx context.Context, owner string) ([]byte, error)
	SetBlob(ctx context.Context, owner string, blob []byte) error
}

// Set is a set of contest keys.
type Set map[string]struct{}

// Has reports whether key is in the set.
func (s Set) Has(key string) bool {
	_, ok := s[key]
	return ok
}

// Keys returns the members in sorted order.
func (s Set) Keys() []string {
	keys := make([]string, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Store is a single-writer bookmark store.
type Store struct {
	mu  sync.Mutex
	kv  KV
	log logger.Logger
}

// NewStore creates a Store backed by kv.
func NewStore(kv KV, log logger.Logger) *Store {
	if log == nil {
		log = logger.Nop()
	}
	return &Store{kv: kv, log: log}
}

// Load returns the persisted set for owner. Missing, unreadable or corrupt
// data yields an empty set.
func (s *Store) Load(ctx context.Context, owner string) Set {
	owner = normalizeOwner(owner)

	blob, err := s.kv.GetBlob(ctx, owner)
	if err != nil {
		s.log.Warn("failed to read bookmarks, using empty set",
			logger.String("owner", owner),
			logger.Error(err))
		return Set{}
	}
	return s.decode(owner, blob)
}

// Toggle adds key when absent and removes it when present, then persists the
// whole set. It returns the new set and whether key is now bookmarked.
func (s *Store) Toggle(ctx context.Context, owner, key string) (Set, bool, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return nil, false, ErrEmptyKey
	}
	owner = normalizeOwner(owner)

	s.mu.Lock()
	defer s.mu.Unlock()

	// A failed read must not fall back to an empty set like Load does.
	blob, err := s.kv.GetBlob(ctx, owner)
	if err != nil {
		return nil, false, fmt.Errorf("read bookmarks for %s: %w", owner, err)
	}
	set := s.decode(owner, blob)
	added := !set.Has(key)
	if added {
		set[key] = struct{}{}
	} else {
		delete(set, key)
	}

	blob, err = json.Marshal(set.Keys())
	if err != nil {
		return nil, false, fmt.Errorf("encode bookmarks: %w", err)
	}
	if err := s.kv.SetBlob(ctx, owner, blob); err != nil {
		return nil, false, fmt.Errorf("persist bookmarks for %s: %w", owner, err)
	}

	metrics.ObserveBookmarkToggle(added)
	s.log.Debug("bookmark toggled",
		logger.String("owner", owner),
		logger.String("key", key),
		logger.Bool("added", added))

	return set, added, nil
}

// Resolve returns the contests whose key is in set, in the order of contests.
func Resolve(set Set, contests []domain.Contest) []domain.Contest {
	out := make([]domain.Contest, 0, len(set))
	for _, c := range contests {
		if set.Has(c.Key()) {
			out = append(out, c)
		}
	}
	return out
}

func (s *Store) decode(owner string, blob []byte) Set {
	set := Set{}
	if len(blob) == 0 {
		return set
	}

	var keys []string
	if err := json.Unmarshal(blob, &keys); err != nil {
		s.log.Warn("corrupt bookmark data, using empty set",
			logger.String("owner", owner),
			logger.Error(err))
		return set
	}
	for _, k := range keys {
		if k = strings.TrimSpace(k); k != "" {
			set[k] = struct{}{}
		}
	}
	return set
}

func normalizeOwner(owner string) string {
	owner = strings.TrimSpace(owner)
	if owner == "" {
		return DefaultOwner
	}
	return owner
}
