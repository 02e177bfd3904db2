package video

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryCache struct {
	mu   sync.Mutex
	data map[string][]byte
	ttls map[string]time.Duration
}

func newMemoryCache() *memoryCache {
	return &memoryCache{data: map[string][]byte{}, ttls: map[string]time.Duration{}}
}

func (m *memoryCache) CacheGet(_ context.Context, key string) ([]byte, time.Duration, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	return v, time.Second, ok, nil
}

func (m *memoryCache) CacheSet(_ context.Context, key string, value []byte, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	m.ttls[key] = ttl
	return nil
}

func TestResolverResolvesAndCaches(t *testing.T) {
	var hits atomic.Int32
	var gotQuery string
	page := searchPage(t, fixture{id: "xyz789", title: "Weekly Contest 400 | TLE Eliminators", channel: "TLE Eliminators - by Priyansh"})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		gotQuery = r.URL.Query().Get("search_query")
		_, _ = io.WriteString(w, page)
	}))
	defer srv.Close()

	cache := newMemoryCache()
	r := NewResolver(ResolverOptions{SearchURL: srv.URL, QuerySuffix: "solutions", Cache: cache}, nil)

	u, ok := r.Resolve(context.Background(), "Weekly Contest 400 (Rated for Div 2)")
	require.True(t, ok)
	assert.Equal(t, "https://www.youtube.com/watch?v=xyz789", u)
	assert.Equal(t, "Weekly Contest 400 (Rated for Div 2) solutions", gotQuery)

	u, ok = r.Resolve(context.Background(), "Weekly Contest 400 (Rated for Div 2)")
	require.True(t, ok)
	assert.Equal(t, "https://www.youtube.com/watch?v=xyz789", u)
	assert.Equal(t, int32(1), hits.Load(), "second lookup should be served from cache")
	assert.Equal(t, DefaultHitTTL, cache.ttls["video:weekly contest 400 (rated for div 2)"])
}

func TestResolverCachesMisses(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		_, _ = io.WriteString(w, "<html>nothing here</html>")
	}))
	defer srv.Close()

	cache := newMemoryCache()
	r := NewResolver(ResolverOptions{SearchURL: srv.URL, Cache: cache, MissTTL: 10 * time.Minute}, nil)

	for range 2 {
		u, ok := r.Resolve(context.Background(), "Starters 140")
		assert.False(t, ok)
		assert.Empty(t, u)
	}
	assert.Equal(t, int32(1), hits.Load())
	assert.Equal(t, 10*time.Minute, cache.ttls["video:starters 140"])
}

func TestResolverTimeoutIsNoMatch(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	r := NewResolver(ResolverOptions{SearchURL: srv.URL, Timeout: 50 * time.Millisecond}, nil)

	start := time.Now()
	u, ok := r.Resolve(context.Background(), "Weekly Contest 400")
	assert.False(t, ok)
	assert.Empty(t, u)
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestResolverUpstreamErrorIsNotCached(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	cache := newMemoryCache()
	r := NewResolver(ResolverOptions{SearchURL: srv.URL, Cache: cache}, nil)

	_, ok := r.Resolve(context.Background(), "Weekly Contest 400")
	assert.False(t, ok)
	assert.Empty(t, cache.data)
}

func TestResolverBlankName(t *testing.T) {
	r := NewResolver(ResolverOptions{SearchURL: "http://127.0.0.1:1"}, nil)
	_, ok := r.Resolve(context.Background(), "   ")
	assert.False(t, ok)
}
