package deps

import (
	"context"
	"time"

	"github.com/MrSnakeDoc/contesthub/internal/bookmarks"
	"github.com/MrSnakeDoc/contesthub/internal/httpserver/mw"
	"github.com/MrSnakeDoc/contesthub/internal/index"
	"github.com/MrSnakeDoc/contesthub/internal/logger"
)

// VideoResolver finds the explanation video of a contest.
type VideoResolver interface {
	Resolve(ctx context.Context, contestName string) (string, bool)
}

// Pinger checks a backing service.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Deps struct {
	Logger        logger.Logger
	StartTime     time.Time
	Version       string
	Commit        string
	BuildDate     string
	GoVersion     string
	TimeNow       func() time.Time   // for testing, defaults to time.Now
	AllowedHosts  []string           // Host headers allowed to call /reload
	AllowedCIDRS  []string           // IPs allowed to access /reload, /readyz and private /metrics
	TrustProxy    bool               // true if running behind a trusted reverse proxy (e.g., cloudflared)
	MetricsPublic bool               // expose /metrics without the CIDR restriction
	RateLimit     mw.RateLimitConfig // per-IP limits of /api routes
	Redis         Pinger             // Redis health, nil when not configured
	MemoryIndex   *index.MemoryIndex // In-memory contest index
	Bookmarks     *bookmarks.Store   // Per-owner bookmark sets
	Videos        VideoResolver      // Video link resolution
	ReloadTrigger chan struct{}      // Channel to trigger manual re-aggregation
}

// Now returns the current time through TimeNow when set.
func (d Deps) Now() time.Time {
	if d.TimeNow != nil {
		return d.TimeNow()
	}
	return time.Now()
}
