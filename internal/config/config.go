package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	ListenPort      string        // ex: ":8080"
	ShutdownTimeout time.Duration // ex: 5s
	RequestTimeout  time.Duration // per-request timeout of API routes

	LogLevel  string // "debug" | "info" | "warn" | "error"
	PrettyLog bool   // true => zap dev (color), false => zap prod (JSON)

	// Aggregation
	SourcesFile      string        // path to sources.yaml (empty = built-in sources)
	ReloadInterval   time.Duration // interval between aggregations (default: 15m)
	AggregateTimeout time.Duration // deadline of one aggregation (default: 45s)
	UserAgent        string        // User-Agent sent upstream
	FetchMaxBytes    int64         // response body cap per endpoint
	FetchRPS         float64       // per-host request rate (<= 0 = unlimited)
	FetchBurst       int           // per-host burst

	// Video resolution
	VideoTimeout     time.Duration // timeout of the search request (default: 8s)
	VideoQuerySuffix string        // appended to the contest name in the search query
	VideoCacheTTL    time.Duration // TTL of resolved links
	VideoMissTTL     time.Duration // TTL of "no match" results
	SnapshotTTL      time.Duration // TTL of the contest snapshot in redis

	// Redis
	RedisAddr             string        // ex: "localhost:6379"
	RedisUser             string        // optional
	RedisPassword         string        // optional
	RedisPasswordRequired bool          // true => require password, false => allow empty password
	RedisDB               int           // Redis DB number
	RedisDT               time.Duration // Redis dial timeout (ex: 5s)
	RedisRT               time.Duration // Redis read timeout (ex: 3s)
	RedisWT               time.Duration // Redis write timeout (ex: 3s)
	RedisMaxWait          time.Duration // max wait between retries (ex: 10s)
	RedisPingTimeout      time.Duration // timeout for each ping attempt (ex: 5s)
	RedisPoolSize         int           // Redis connection pool size
	RedisConnectTimeout   time.Duration // Total time to retry connecting (ex: 30s)
	RedisRetryInterval    time.Duration // Initial wait between retries (ex: 2s, grows exponentially)
	RedisWarnThreshold    int           // warn after this many attempts

	// API protection
	RateBurst     int      // token bucket size per client IP
	RatePerMin    int      // refill per client IP per minute
	CORSOrigins   []string // allowed origins ("*" = any)
	AllowedHosts  []string // optional, restrict /reload to specific Host headers
	AllowedCIDRS  []string // optional, restrict /reload and /readyz to specific IPs/CIDRs
	TrustProxy    bool     // true => trust X-Forwarded-For headers (e.g. cloudflared)
	MetricsPublic bool     // false => /metrics is CIDR-restricted like /reload
}

func Load() *Config {
	cfg := &Config{
		// Server settings
		ListenPort:      getenv("CONTESTHUB_LISTEN_PORT", ":8080"),
		ShutdownTimeout: mustDuration("CONTESTHUB_SHUTDOWN_TIMEOUT", 5*time.Second),
		RequestTimeout:  mustDuration("CONTESTHUB_REQUEST_TIMEOUT", 15*time.Second),

		// Logging
		LogLevel:  getenv("CONTESTHUB_LOG_LEVEL", "info"),
		PrettyLog: mustBool("CONTESTHUB_PRETTY_LOG", true),

		// Aggregation
		SourcesFile:      getenv("CONTESTHUB_SOURCES_FILE", ""),
		ReloadInterval:   mustDuration("CONTESTHUB_RELOAD_INTERVAL", 15*time.Minute),
		AggregateTimeout: mustDuration("CONTESTHUB_AGGREGATE_TIMEOUT", 45*time.Second),
		UserAgent:        getenv("CONTESTHUB_USER_AGENT", ""),
		FetchMaxBytes:    getenvInt64("CONTESTHUB_FETCH_MAX_BYTES", 4*1024*1024),
		FetchRPS:         getenvFloat("CONTESTHUB_FETCH_RPS", 2),
		FetchBurst:       getenvInt("CONTESTHUB_FETCH_BURST", 4),

		// Video resolution
		VideoTimeout:     mustDuration("CONTESTHUB_VIDEO_TIMEOUT", 8*time.Second),
		VideoQuerySuffix: getenv("CONTESTHUB_VIDEO_QUERY_SUFFIX", "solutions"),
		VideoCacheTTL:    mustDuration("CONTESTHUB_VIDEO_CACHE_TTL", 24*time.Hour),
		VideoMissTTL:     mustDuration("CONTESTHUB_VIDEO_MISS_TTL", time.Hour),
		SnapshotTTL:      mustDuration("CONTESTHUB_SNAPSHOT_TTL", 48*time.Hour),

		// Redis settings
		RedisAddr:             requireEnv("CONTESTHUB_REDIS_ADDR"),
		RedisUser:             getenv("CONTESTHUB_REDIS_USERNAME", "default"),
		RedisPasswordRequired: mustBool("CONTESTHUB_REDIS_PASSWORD_REQUIRED", true),
		RedisPassword:         getenv("CONTESTHUB_REDIS_PASSWORD", ""),
		RedisDB:               requireEnvInt("CONTESTHUB_REDIS_DB"),
		RedisDT:               mustDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
		RedisRT:               mustDuration("REDIS_READ_TIMEOUT", 3*time.Second),
		RedisWT:               mustDuration("REDIS_WRITE_TIMEOUT", 3*time.Second),
		RedisMaxWait:          mustDuration("REDIS_MAX_WAIT", 10*time.Second),
		RedisPingTimeout:      mustDuration("REDIS_PING_TIMEOUT", 5*time.Second),
		RedisPoolSize:         getenvInt("REDIS_POOL_SIZE", 10),
		RedisConnectTimeout:   mustDuration("REDIS_CONNECT_TIMEOUT", 30*time.Second),
		RedisRetryInterval:    mustDuration("REDIS_RETRY_INTERVAL", 2*time.Second),
		RedisWarnThreshold:    getenvInt("REDIS_WARN_THRESHOLD", 3),

		// API protection
		RateBurst:     getenvInt("CONTESTHUB_RATE_BURST", 30),
		RatePerMin:    getenvInt("CONTESTHUB_RATE_PER_MIN", 60),
		CORSOrigins:   splitAndTrim(getenv("CONTESTHUB_CORS_ORIGINS", "*")),
		AllowedHosts:  splitAndTrim(getenv("CONTESTHUB_ALLOWED_HOSTS", "")),
		AllowedCIDRS:  parseAllowedIPs(getenv("CONTESTHUB_ALLOWED_CIDRS", "")),
		TrustProxy:    mustBool("CONTESTHUB_TRUST_PROXY", true),
		MetricsPublic: mustBool("CONTESTHUB_METRICS_PUBLIC", false),
	}

	// Validate Redis password configuration
	if cfg.RedisPasswordRequired && cfg.RedisPassword == "" {
		panic("❌ FATAL: CONTESTHUB_REDIS_PASSWORD is required when CONTESTHUB_REDIS_PASSWORD_REQUIRED=true")
	}
	if cfg.ReloadInterval <= 0 {
		panic(fmt.Sprintf("❌ FATAL: CONTESTHUB_RELOAD_INTERVAL must be > 0, got %v", cfg.ReloadInterval))
	}

	// Log config only in debug mode with redacted sensitive fields
	if cfg.LogLevel == "debug" {
		log.Printf("[DEBUG] cfg: %+v\n", cfg.Redacted())
	}

	return cfg
}

// Redacted returns a copy safe to print.
func (c Config) Redacted() Config {
	c.RedisPassword = "***REDACTED***"
	if c.RedisUser != "" {
		c.RedisUser = "***REDACTED***"
	}
	return c
}

// helpers
func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func requireEnv(key string) string {
	v := os.Getenv(key)
	if v == "" {
		panic(fmt.Sprintf("❌ FATAL: Required environment variable %s is not set", key))
	}
	return v
}

func requireEnvInt(key string) int {
	v := os.Getenv(key)
	if v == "" {
		panic(fmt.Sprintf("❌ FATAL: Required environment variable %s is not set", key))
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		panic(fmt.Sprintf("❌ FATAL: Invalid integer value for %s: %s", key, v))
	}
	return i
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func getenvInt64(key string, def int64) int64 {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.ParseInt(v, 10, 64); err == nil {
			return i
		}
	}
	return def
}

func getenvFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

func mustBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func mustDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func parseAllowedIPs(allowed string) []string {
	if allowed == "" {
		return nil
	}
	ips := make([]string, 0, 4)
	for _, ip := range splitAndTrim(allowed) {
		if ip != "" {
			ips = append(ips, ip)
		}
	}
	return ips
}

func splitAndTrim(s string) []string {
	if s == "" {
		return nil
	}
	raw := strings.Split(s, ",")
	parts := make([]string, 0, len(raw))
	for _, part := range raw {
		trimmed := strings.TrimSpace(part)
		// Remove surrounding quotes if present
		trimmed = strings.Trim(trimmed, `"'`)
		if trimmed != "" {
			parts = append(parts, trimmed)
		}
	}
	return parts
}
