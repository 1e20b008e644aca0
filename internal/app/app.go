package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/dmconta/portal/internal/config"
	"github.com/dmconta/portal/internal/httpserver"
	"github.com/dmconta/portal/internal/httpserver/deps"
	"github.com/dmconta/portal/internal/logger"
	"github.com/dmconta/portal/internal/portal"
	"github.com/dmconta/portal/internal/redis"
	"github.com/dmconta/portal/internal/scheduler"
	"github.com/dmconta/portal/internal/sources/seed"
	"github.com/dmconta/portal/internal/store"
	"github.com/dmconta/portal/internal/store/file"
	"github.com/dmconta/portal/internal/store/memory"
	redisstore "github.com/dmconta/portal/internal/store/redis"
	"github.com/dmconta/portal/internal/store/remote"
	"github.com/dmconta/portal/internal/version"
)

type App struct {
	cfg         *config.Config
	logger      logger.Logger
	server      *httpserver.Server
	redisClient *goredis.Client
	coordinator *portal.Coordinator
	bootstrap   *portal.Bootstrap
	sweeper     *scheduler.RetentionSweeper
}

func New() *App {
	cfg := config.Load()

	loggerClient := logger.New(cfg.LogLevel, cfg.PrettyLog)

	// File-backed collection tier, served at /api/toggles.
	files := file.NewStore(cfg.DataDir, loggerClient)

	// The collection tier can live behind another portal instance. When no
	// remote URL is configured the local file store plays that role directly.
	var collections store.Remote = files
	if cfg.RemoteURL != "" {
		loggerClient.Info("using remote collection tier",
			logger.String("url", cfg.RemoteURL))
		collections = remote.NewClient(cfg.RemoteURL, cfg.RemoteTimeout)
	}

	// Key/value tier: Redis when an address is configured, otherwise an
	// in-process store with the same semantics. Fail fast if Redis is
	// configured but unreachable.
	var durable store.Durable
	var redisClient *goredis.Client
	if cfg.RedisAddr != "" {
		loggerClient.Infof("Connecting to Redis at %s", cfg.RedisAddr)
		client, err := redis.New(redis.ConnectOptions{
			Addr:           cfg.RedisAddr,
			User:           cfg.RedisUser,
			Password:       cfg.RedisPassword,
			RedisDB:        cfg.RedisDB,
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
		loggerClient.Info("Redis initialized successfully")
		redisClient = client
		durable = redisstore.NewStore(client, collections, loggerClient)
	} else {
		loggerClient.Warn("no redis address configured, key/value tier runs in process memory")
		durable = memory.NewStore(collections, loggerClient)
	}

	coordinator := portal.NewCoordinator(durable, loggerClient, cfg.Actor)

	var seedLoader *seed.Loader
	if cfg.SeedFile != "" {
		loggerClient.Info("seed file configured",
			logger.String("file", cfg.SeedFile))
		seedLoader = seed.NewLoader(cfg.SeedFile)
	}
	bootstrap := portal.NewBootstrap(durable, collections, seedLoader, loggerClient)

	sweeper := scheduler.NewRetentionSweeper(durable, collections, loggerClient, cfg.SweepInterval)

	// Dependencies passed to routes (extend as needed).
	d := deps.Deps{
		Logger:       loggerClient,
		StartTime:    time.Now(),
		Version:      version.Version,
		Commit:       version.Commit,
		BuildDate:    version.BuildDate,
		GoVersion:    version.GoVersion,
		TimeNow:      time.Now,
		AllowedHosts: cfg.AllowedHosts,
		AllowedCIDRS: cfg.AllowedCIDRS,
		TrustProxy:   cfg.TrustProxy,
		Coordinator:  coordinator,
		Files:        files,
		Durable:      durable,
		RedisClient:  redisClient,
		DataDir:      cfg.DataDir,
	}

	server := httpserver.New(cfg, loggerClient, d)

	return &App{
		cfg:         cfg,
		logger:      loggerClient,
		server:      server,
		redisClient: redisClient,
		coordinator: coordinator,
		bootstrap:   bootstrap,
		sweeper:     sweeper,
	}
}

func (a *App) Run() error {
	a.logger.Infof("🚀 Starting Portal v%s on %s", version.Version, a.cfg.ListenPort)
	a.logger.Infof("Portal %s (commit=%s, built=%s, go=%s)",
		version.Version, version.Commit, version.BuildDate, version.GoVersion)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load state before serving: key/value tier first, then the collection
	// tier, then the seed file.
	if err := a.bootstrap.Run(ctx, a.coordinator); err != nil {
		return fmt.Errorf("failed to bootstrap state: %w", err)
	}
	a.logger.Info("state bootstrapped")

	// Start the audit retention sweeper
	if err := a.sweeper.Start(ctx); err != nil {
		return fmt.Errorf("failed to start retention sweeper: %w", err)
	}
	a.logger.Info("retention sweeper started",
		logger.Duration("interval", a.cfg.SweepInterval))

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

	// Stop the sweeper
	a.sweeper.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()
	if err := a.server.Stop(shutdownCtx); err != nil {
		return fmt.Errorf("failed to stop server: %w", err)
	}

	// Drain in-flight persistence before closing the stores.
	a.coordinator.Wait()

	if a.redisClient != nil {
		if err := a.redisClient.Close(); err != nil {
			a.logger.Warnf("failed to close redis: %v", err)
		} else {
			a.logger.Info("✅ Redis closed cleanly")
		}
	}

	a.logger.Info("✅ Portal stopped cleanly")
	return nil
}
