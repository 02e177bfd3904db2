package video

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/MrSnakeDoc/contesthub/internal/domain"
	"github.com/MrSnakeDoc/contesthub/internal/logger"
	"github.com/MrSnakeDoc/contesthub/internal/metrics"
	"github.com/MrSnakeDoc/contesthub/internal/utils"
)

const (
	DefaultSearchURL   = "https://www.youtube.com/results"
	DefaultQuerySuffix = "solutions"
	DefaultTimeout     = 8 * time.Second
	DefaultHitTTL      = 24 * time.Hour
	DefaultMissTTL     = time.Hour

	maxPageBytes = 4 * 1024 * 1024

	outcomeCacheHit   = "cache_hit"
	outcomeNotFound   = "not_found"
	outcomeFetchError = "fetch_error"
)

// Cache stores resolved URLs by key. CacheGet reports ok=false on a miss.
type Cache interface {
	CacheGet(ctx context.Context, key string) (value []byte, age time.Duration, ok bool, err error)
	CacheSet(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// ResolverOptions configures a Resolver. Zero values take the defaults.
type ResolverOptions struct {
	Client      *http.Client
	SearchURL   string
	QuerySuffix string
	UserAgent   string
	Timeout     time.Duration
	HitTTL      time.Duration
	MissTTL     time.Duration
	Policy      *Policy
	Cache       Cache
}

// Resolver looks up the explanation video for a contest name.
type Resolver struct {
	client      *http.Client
	searchURL   string
	querySuffix string
	userAgent   string
	timeout     time.Duration
	hitTTL      time.Duration
	missTTL     time.Duration
	policy      Policy
	cache       Cache
	log         logger.Logger
}

// cachedResult is the cache encoding; an empty URL records a miss.
type cachedResult struct {
	URL string `json:"url"`
}

// NewResolver creates a Resolver.
func NewResolver(opts ResolverOptions, log logger.Logger) *Resolver {
	r := &Resolver{
		client:      opts.Client,
		searchURL:   opts.SearchURL,
		querySuffix: opts.QuerySuffix,
		userAgent:   opts.UserAgent,
		timeout:     opts.Timeout,
		hitTTL:      opts.HitTTL,
		missTTL:     opts.MissTTL,
		policy:      DefaultPolicy(),
		cache:       opts.Cache,
		log:         log,
	}
	if r.client == nil {
		r.client = &http.Client{}
	}
	if r.searchURL == "" {
		r.searchURL = DefaultSearchURL
	}
	if r.timeout <= 0 {
		r.timeout = DefaultTimeout
	}
	if r.hitTTL <= 0 {
		r.hitTTL = DefaultHitTTL
	}
	if r.missTTL <= 0 {
		r.missTTL = DefaultMissTTL
	}
	if opts.Policy != nil {
		r.policy = *opts.Policy
	}
	if r.log == nil {
		r.log = logger.Nop()
	}
	return r
}

// Resolve returns the watch URL for contestName, or false when nothing
// matches. Transport failures and timeouts count as no match.
func (r *Resolver) Resolve(ctx context.Context, contestName string) (string, bool) {
	contestName = strings.TrimSpace(contestName)
	if contestName == "" {
		return "", false
	}
	key := cacheKey(contestName)

	if u, ok := r.cached(ctx, key); ok {
		metrics.ObserveVideoResolution(outcomeCacheHit)
		return u, u != ""
	}

	page, err := r.search(ctx, contestName)
	if err != nil {
		metrics.ObserveVideoResolution(outcomeFetchError)
		r.log.Warn("video search failed",
			logger.String("contest", contestName),
			logger.Error(err))
		return "", false
	}

	payload, ok := Extract(page)
	if !ok {
		metrics.ObserveVideoResolution(outcomeNotFound)
		r.log.Debug("no results payload on search page", logger.String("contest", contestName))
		r.store(ctx, key, "", r.missTTL)
		return "", false
	}

	c, tier, ok := r.policy.Match(contestName, Candidates(payload))
	metrics.ObserveVideoResolution(tier.String())
	if !ok {
		r.store(ctx, key, "", r.missTTL)
		return "", false
	}

	r.log.Debug("video resolved",
		logger.String("contest", contestName),
		logger.String("tier", tier.String()),
		logger.String("video_id", c.VideoID))
	r.store(ctx, key, c.WatchURL(), r.hitTTL)
	return c.WatchURL(), true
}

func (r *Resolver) search(ctx context.Context, contestName string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	query := contestName
	if r.querySuffix != "" {
		query += " " + r.querySuffix
	}
	searchURL := r.searchURL + "?search_query=" + url.QueryEscape(query)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, searchURL, nil)
	if err != nil {
		return "", fmt.Errorf("build search request: %w", err)
	}
	req.Header.Set("Accept", "text/html,application/xhtml+xml")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	if r.userAgent != "" {
		req.Header.Set("User-Agent", r.userAgent)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("search request: %w", err)
	}
	defer utils.Close(resp.Body)

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("search page returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPageBytes))
	if err != nil {
		return "", fmt.Errorf("read search page: %w", err)
	}
	return string(body), nil
}

func (r *Resolver) cached(ctx context.Context, key string) (string, bool) {
	if r.cache == nil {
		return "", false
	}

	raw, age, ok, err := r.cache.CacheGet(ctx, key)
	if err != nil {
		r.log.Warn("video cache read failed", logger.String("key", key), logger.Error(err))
		return "", false
	}
	if !ok {
		return "", false
	}

	var res cachedResult
	if err := json.Unmarshal(raw, &res); err != nil {
		return "", false
	}
	r.log.Debug("video cache hit", logger.String("key", key), logger.Duration("age", age))
	return res.URL, true
}

func (r *Resolver) store(ctx context.Context, key, watchURL string, ttl time.Duration) {
	if r.cache == nil {
		return
	}
	raw, err := json.Marshal(cachedResult{URL: watchURL})
	if err != nil {
		return
	}
	if err := r.cache.CacheSet(ctx, key, raw, ttl); err != nil {
		r.log.Warn("video cache write failed", logger.String("key", key), logger.Error(err))
	}
}

func cacheKey(contestName string) string {
	return "video:" + domain.Normalize(contestName)
}
