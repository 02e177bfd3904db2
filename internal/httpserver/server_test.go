package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrSnakeDoc/contesthub/internal/aggregator"
	"github.com/MrSnakeDoc/contesthub/internal/bookmarks"
	"github.com/MrSnakeDoc/contesthub/internal/config"
	"github.com/MrSnakeDoc/contesthub/internal/domain"
	"github.com/MrSnakeDoc/contesthub/internal/httpserver/deps"
	"github.com/MrSnakeDoc/contesthub/internal/httpserver/mw"
	"github.com/MrSnakeDoc/contesthub/internal/index"
	"github.com/MrSnakeDoc/contesthub/internal/logger"
)

var testNow = time.Unix(1_700_000_000, 0)

type memoryKV struct {
	mu     sync.Mutex
	blobs  map[string][]byte
	getErr error
}

func (m *memoryKV) GetBlob(_ context.Context, owner string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return nil, m.getErr
	}
	return m.blobs[owner], nil
}

func (m *memoryKV) SetBlob(_ context.Context, owner string, blob []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.blobs[owner] = blob
	return nil
}

type stubVideos map[string]string

func (s stubVideos) Resolve(_ context.Context, name string) (string, bool) {
	u, ok := s[name]
	return u, ok
}

type stubPinger struct{ err error }

func (p stubPinger) Ping(context.Context) error { return p.err }

func testContests() []domain.Contest {
	now := testNow.Unix()
	return []domain.Contest{
		{ID: "1", Source: domain.SourceCodeforces, Name: "Codeforces Round 900 (Div. 2)", StartTimeSeconds: now - 10_000, DurationSeconds: 7200},
		{ID: "2", Source: domain.SourceCodeforces, Name: "Codeforces Round 901 (Div. 1)", StartTimeSeconds: now - 600, DurationSeconds: 7200},
		{ID: "START100", Source: domain.SourceCodeChef, Name: "Starters 100", StartTimeSeconds: now + 3600, DurationSeconds: 7200},
	}
}

type fixture struct {
	router http.Handler
	deps   deps.Deps
}

func newFixture(t *testing.T, mutate func(*deps.Deps, *config.Config)) fixture {
	t.Helper()

	idx := index.NewMemoryIndex()
	idx.Update(testContests())

	cfg := &config.Config{
		ListenPort:     ":0",
		RequestTimeout: 5 * time.Second,
		CORSOrigins:    []string{"https://app.example.com"},
	}
	d := deps.Deps{
		Logger:        logger.Nop(),
		StartTime:     testNow.Add(-time.Minute),
		Version:       "test",
		TimeNow:       func() time.Time { return testNow },
		AllowedCIDRS:  []string{"192.0.2.0/24"},
		RateLimit:     mw.RateLimitConfig{Burst: 100, RefillPerIPPerMin: 60},
		Redis:         stubPinger{},
		MemoryIndex:   idx,
		Bookmarks:     bookmarks.NewStore(&memoryKV{blobs: map[string][]byte{}}, logger.Nop()),
		Videos:        stubVideos{"Starters 100": "https://www.youtube.com/watch?v=abc"},
		ReloadTrigger: make(chan struct{}, 1),
	}
	if mutate != nil {
		mutate(&d, cfg)
	}
	return fixture{router: NewRouter(cfg, logger.Nop(), d), deps: d}
}

func (f fixture) do(t *testing.T, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestHealthz(t *testing.T) {
	f := newFixture(t, nil)
	rec := f.do(t, http.MethodGet, "/healthz", "")

	require.Equal(t, http.StatusOK, rec.Code)
	body := decode[map[string]any](t, rec)
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "test", body["version"])
	assert.InDelta(t, 60, body["uptime_seconds"], 0.001)
}

func TestContestsReclassifiesAndFilters(t *testing.T) {
	f := newFixture(t, nil)

	rec := f.do(t, http.MethodGet, "/api/contests", "")
	require.Equal(t, http.StatusOK, rec.Code)
	all := decode[struct {
		Count    int              `json:"count"`
		Contests []domain.Contest `json:"contests"`
	}](t, rec)
	require.Equal(t, 3, all.Count)
	assert.Equal(t, domain.StatusPast, all.Contests[0].Status)
	assert.Equal(t, domain.StatusRunning, all.Contests[1].Status)
	assert.Equal(t, domain.StatusUpcoming, all.Contests[2].Status)

	rec = f.do(t, http.MethodGet, "/api/contests?status=running", "")
	running := decode[struct {
		Contests []domain.Contest `json:"contests"`
	}](t, rec)
	require.Len(t, running.Contests, 1)
	assert.Equal(t, "2", running.Contests[0].ID)

	rec = f.do(t, http.MethodGet, "/api/contests?source=CodeChef", "")
	chef := decode[struct {
		Contests []domain.Contest `json:"contests"`
	}](t, rec)
	require.Len(t, chef.Contests, 1)
	assert.Equal(t, "START100", chef.Contests[0].ID)

	rec = f.do(t, http.MethodGet, "/api/contests?q=round+901", "")
	text := decode[struct {
		Contests []domain.Contest `json:"contests"`
	}](t, rec)
	require.Len(t, text.Contests, 1)
	assert.Equal(t, "2", text.Contests[0].ID)
}

func TestContestsRejectsUnknownStatus(t *testing.T) {
	f := newFixture(t, nil)
	rec := f.do(t, http.MethodGet, "/api/contests?status=later", "")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid status")
}

func TestContestsEmptyIndexReturnsEmptyList(t *testing.T) {
	f := newFixture(t, func(d *deps.Deps, _ *config.Config) {
		d.MemoryIndex = index.NewMemoryIndex()
	})
	rec := f.do(t, http.MethodGet, "/api/contests", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"contests":[]`)
	assert.Contains(t, rec.Body.String(), `"last_reload":null`)
}

func TestVideo(t *testing.T) {
	f := newFixture(t, nil)

	rec := f.do(t, http.MethodGet, "/api/video?contest=Starters+100", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"contest":"Starters 100","url":"https://www.youtube.com/watch?v=abc"}`, rec.Body.String())

	rec = f.do(t, http.MethodGet, "/api/video?contest=Unknown+Cup", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"contest":"Unknown Cup","url":null}`, rec.Body.String())

	rec = f.do(t, http.MethodGet, "/api/video", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestBookmarkToggleAndList(t *testing.T) {
	f := newFixture(t, nil)

	rec := f.do(t, http.MethodPost, "/api/bookmarks/toggle?owner=alice", `{"key":"codechef:START100"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	toggled := decode[map[string]any](t, rec)
	assert.Equal(t, true, toggled["bookmarked"])

	// A key for a contest no longer listed is kept but resolves to nothing.
	rec = f.do(t, http.MethodPost, "/api/bookmarks/toggle?owner=alice", `{"key":"leetcode:gone"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = f.do(t, http.MethodGet, "/api/bookmarks?owner=alice", "")
	require.Equal(t, http.StatusOK, rec.Code)
	list := decode[struct {
		Owner    string           `json:"owner"`
		Keys     []string         `json:"keys"`
		Contests []domain.Contest `json:"contests"`
	}](t, rec)
	assert.Equal(t, "alice", list.Owner)
	assert.Equal(t, []string{"codechef:START100", "leetcode:gone"}, list.Keys)
	require.Len(t, list.Contests, 1)
	assert.Equal(t, domain.StatusUpcoming, list.Contests[0].Status)

	rec = f.do(t, http.MethodPost, "/api/bookmarks/toggle?owner=alice", `{"key":"codechef:START100"}`)
	toggled = decode[map[string]any](t, rec)
	assert.Equal(t, false, toggled["bookmarked"])

	rec = f.do(t, http.MethodGet, "/api/bookmarks", "")
	assert.Contains(t, rec.Body.String(), `"owner":"default"`)
	assert.Contains(t, rec.Body.String(), `"keys":[]`)
}

func TestBookmarkToggleRejectsBadInput(t *testing.T) {
	f := newFixture(t, nil)

	rec := f.do(t, http.MethodPost, "/api/bookmarks/toggle", `{"key":"   "}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(t, http.MethodPost, "/api/bookmarks/toggle", `{not json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestBookmarkToggleReadFailureIsServerError(t *testing.T) {
	kv := &memoryKV{
		blobs:  map[string][]byte{"alice": []byte(`["codeforces:1"]`)},
		getErr: errors.New("i/o timeout"),
	}
	f := newFixture(t, func(d *deps.Deps, _ *config.Config) {
		d.Bookmarks = bookmarks.NewStore(kv, logger.Nop())
	})

	rec := f.do(t, http.MethodPost, "/api/bookmarks/toggle?owner=alice", `{"key":"codechef:START100"}`)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, `["codeforces:1"]`, string(kv.blobs["alice"]))
}

func TestStatusIncludesReportAndComponents(t *testing.T) {
	f := newFixture(t, func(d *deps.Deps, _ *config.Config) {
		d.Redis = stubPinger{err: errors.New("connection refused")}
	})
	f.deps.MemoryIndex.SetReport(aggregator.Report{Result: aggregator.ResultPartial, Total: 3})

	rec := f.do(t, http.MethodGet, "/api/status", "")
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode[map[string]any](t, rec)
	assert.EqualValues(t, 3, body["contests"])
	assert.Equal(t, "partial", body["report"].(map[string]any)["result"])
	redis := body["components"].(map[string]any)["redis"].(map[string]any)
	assert.Equal(t, "down", redis["status"])
}

func TestReadyz(t *testing.T) {
	f := newFixture(t, nil)
	rec := f.do(t, http.MethodGet, "/readyz", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	empty := newFixture(t, func(d *deps.Deps, _ *config.Config) {
		d.MemoryIndex = index.NewMemoryIndex()
	})
	rec = empty.do(t, http.MethodGet, "/readyz", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	// A failed first run still counts as loaded: the report explains it.
	empty.deps.MemoryIndex.SetReport(aggregator.Report{Result: aggregator.ResultFailed})
	rec = empty.do(t, http.MethodGet, "/readyz", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	down := newFixture(t, func(d *deps.Deps, _ *config.Config) {
		d.Redis = stubPinger{err: errors.New("down")}
	})
	rec = down.do(t, http.MethodGet, "/readyz", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestReloadIsCIDRRestrictedAndCoalesced(t *testing.T) {
	f := newFixture(t, nil)

	rec := f.do(t, http.MethodPost, "/reload", "")
	assert.Equal(t, http.StatusAccepted, rec.Code)

	rec = f.do(t, http.MethodPost, "/reload", "")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)

	blocked := newFixture(t, func(d *deps.Deps, _ *config.Config) {
		d.AllowedCIDRS = []string{"10.0.0.0/8"}
	})
	rec = blocked.do(t, http.MethodPost, "/reload", "")
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestMetricsVisibility(t *testing.T) {
	private := newFixture(t, func(d *deps.Deps, _ *config.Config) {
		d.AllowedCIDRS = []string{"10.0.0.0/8"}
	})
	rec := private.do(t, http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusForbidden, rec.Code)

	public := newFixture(t, func(d *deps.Deps, _ *config.Config) {
		d.AllowedCIDRS = []string{"10.0.0.0/8"}
		d.MetricsPublic = true
	})
	public.do(t, http.MethodGet, "/api/contests", "")
	rec = public.do(t, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `contesthub_http_request_duration_seconds_count{method="GET",route="/api/contests"}`)
}

func TestAPIRateLimit(t *testing.T) {
	f := newFixture(t, func(d *deps.Deps, _ *config.Config) {
		d.RateLimit = mw.RateLimitConfig{Burst: 2, RefillPerIPPerMin: 1}
	})

	for i := 0; i < 2; i++ {
		rec := f.do(t, http.MethodGet, "/api/contests", "")
		require.Equal(t, http.StatusOK, rec.Code)
	}
	rec := f.do(t, http.MethodGet, "/api/contests", "")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))

	// Probes are outside the API group.
	rec = f.do(t, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestCORSPreflight(t *testing.T) {
	f := newFixture(t, nil)

	req := httptest.NewRequest(http.MethodOptions, "/api/bookmarks/toggle", nil)
	req.Header.Set("Origin", "https://app.example.com")
	req.Header.Set("Access-Control-Request-Method", "POST")
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "https://app.example.com", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, rec.Header().Get("Access-Control-Allow-Methods"), "POST")
}
