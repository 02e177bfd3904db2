package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/MrSnakeDoc/contesthub/internal/aggregator"
	"github.com/MrSnakeDoc/contesthub/internal/bookmarks"
	"github.com/MrSnakeDoc/contesthub/internal/config"
	"github.com/MrSnakeDoc/contesthub/internal/domain"
	"github.com/MrSnakeDoc/contesthub/internal/fetch"
	"github.com/MrSnakeDoc/contesthub/internal/httpserver"
	"github.com/MrSnakeDoc/contesthub/internal/httpserver/deps"
	"github.com/MrSnakeDoc/contesthub/internal/httpserver/mw"
	"github.com/MrSnakeDoc/contesthub/internal/index"
	"github.com/MrSnakeDoc/contesthub/internal/logger"
	"github.com/MrSnakeDoc/contesthub/internal/metrics"
	"github.com/MrSnakeDoc/contesthub/internal/redis"
	"github.com/MrSnakeDoc/contesthub/internal/scheduler"
	"github.com/MrSnakeDoc/contesthub/internal/sources"
	redisstore "github.com/MrSnakeDoc/contesthub/internal/store/redis"
	"github.com/MrSnakeDoc/contesthub/internal/utils"
	"github.com/MrSnakeDoc/contesthub/internal/version"
	"github.com/MrSnakeDoc/contesthub/internal/video"
)

type App struct {
	cfg         *config.Config
	logger      logger.Logger
	server      *httpserver.Server
	redisClient *goredis.Client
	memIndex    *index.MemoryIndex
	reloader    *scheduler.ContestReloader
}

func New() *App {
	cfg := config.Load()

	loggerClient := logger.New(cfg.LogLevel, cfg.PrettyLog)

	metrics.Init()

	// Initialize Redis early - fail fast if unavailable
	redisClient, err := redis.Connect(context.Background(), redis.ConnectOptions{
		Addr:           cfg.RedisAddr,
		User:           cfg.RedisUser,
		Password:       cfg.RedisPassword,
		DB:             cfg.RedisDB,
		DialTimeout:    cfg.RedisDT,
		ReadTimeout:    cfg.RedisRT,
		WriteTimeout:   cfg.RedisWT,
		PoolSize:       cfg.RedisPoolSize,
		ConnectTimeout: cfg.RedisConnectTimeout,
		RetryInterval:  cfg.RedisRetryInterval,
		MaxWait:        cfg.RedisMaxWait,
		PingTimeout:    cfg.RedisPingTimeout,
		WarnThreshold:  cfg.RedisWarnThreshold,
	}, loggerClient)
	if err != nil {
		loggerClient.Errorf("Failed to connect to Redis: %v", err)
		os.Exit(1)
	}

	memIndex := index.NewMemoryIndex()
	store := redisstore.NewStore(redisClient)

	// Serve the last snapshot until the first aggregation lands
	syncer := scheduler.NewSnapshotSyncer(store, memIndex, loggerClient)
	if err := syncer.Sync(context.Background()); err != nil {
		loggerClient.Warn("failed to restore contest snapshot, waiting for first aggregation",
			logger.Error(err))
	}

	userAgent := cfg.UserAgent
	if userAgent == "" {
		userAgent = version.UserAgent()
	}

	fetcher := fetch.New(fetch.Options{
		UserAgent: userAgent,
		MaxBytes:  cfg.FetchMaxBytes,
		RPS:       cfg.FetchRPS,
		Burst:     cfg.FetchBurst,
	}, loggerClient.With(logger.String("component", "fetch")))

	agg := aggregator.New(fetcher, sources.DefaultRegistry(), loggerClient.With(logger.String("component", "aggregator")))

	reloadTrigger := make(chan struct{}, 1)
	reloader := scheduler.NewContestReloader(
		sourceProvider(cfg, loggerClient),
		agg,
		store,
		memIndex,
		loggerClient,
		scheduler.ReloaderOptions{
			Interval:    cfg.ReloadInterval,
			Timeout:     cfg.AggregateTimeout,
			SnapshotTTL: cfg.SnapshotTTL,
		},
		reloadTrigger,
	)

	videos := video.NewResolver(video.ResolverOptions{
		QuerySuffix: cfg.VideoQuerySuffix,
		UserAgent:   userAgent,
		Timeout:     cfg.VideoTimeout,
		HitTTL:      cfg.VideoCacheTTL,
		MissTTL:     cfg.VideoMissTTL,
		Cache:       store,
	}, loggerClient.With(logger.String("component", "video")))

	d := deps.Deps{
		Logger:        loggerClient,
		StartTime:     time.Now(),
		Version:       version.Version,
		Commit:        version.Commit,
		BuildDate:     version.BuildDate,
		GoVersion:     version.GoVersion,
		TimeNow:       time.Now,
		AllowedHosts:  cfg.AllowedHosts,
		AllowedCIDRS:  cfg.AllowedCIDRS,
		TrustProxy:    cfg.TrustProxy,
		MetricsPublic: cfg.MetricsPublic,
		RateLimit: mw.RateLimitConfig{
			Burst:             cfg.RateBurst,
			RefillPerIPPerMin: cfg.RatePerMin,
			MaxEntries:        10_000,
			TrustProxy:        cfg.TrustProxy,
		},
		Redis:         store,
		MemoryIndex:   memIndex,
		Bookmarks:     bookmarks.NewStore(store, loggerClient.With(logger.String("component", "bookmarks"))),
		Videos:        videos,
		ReloadTrigger: reloadTrigger,
	}

	server := httpserver.New(cfg, loggerClient, d)

	return &App{
		cfg:         cfg,
		logger:      loggerClient,
		server:      server,
		redisClient: redisClient,
		memIndex:    memIndex,
		reloader:    reloader,
	}
}

// sourceProvider reads the sources file on every run so edits apply
// without a restart. Without a file the built-in sources are used.
func sourceProvider(cfg *config.Config, log logger.Logger) scheduler.SourceProvider {
	if cfg.SourcesFile == "" {
		log.Info("no sources file configured, using built-in sources")
		return func() ([]domain.ContestSource, error) {
			return sources.Defaults(), nil
		}
	}

	log.Info("sources file configured", logger.String("file", cfg.SourcesFile))
	return sources.NewLoader(cfg.SourcesFile).Load
}

func (a *App) Run() error {
	a.logger.Infof("🚀 Starting contesthub v%s on %s", version.Version, a.cfg.ListenPort)
	a.logger.Infof("contesthub %s (commit=%s, built=%s, go=%s)",
		version.Version, version.Commit, version.BuildDate, version.GoVersion)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// First aggregation, then periodic refresh
	if err := a.reloader.Start(ctx); err != nil {
		return fmt.Errorf("failed to start contest reloader: %w", err)
	}
	a.logger.Info("contest reloader started",
		logger.Duration("interval", a.cfg.ReloadInterval),
		logger.Int("contests", a.memIndex.Count()))

	errCh := make(chan error, 1)
	go func() {
		if err := a.server.Start(); err != nil {
			errCh <- fmt.Errorf("http server error: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("⏳ Shutting down gracefully...")
	case err := <-errCh:
		return err
	}

	a.reloader.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()
	if err := a.server.Stop(shutdownCtx); err != nil {
		return fmt.Errorf("failed to stop server: %w", err)
	}

	utils.CloseLogged(a.redisClient, "redis", a.logger)

	a.logger.Info("✅ contesthub stopped cleanly")
	_ = a.logger.Sync()
	return nil
}
