package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/flownet/internal/config"
	"github.com/matzehuels/flownet/pkg/cache"
	"github.com/matzehuels/flownet/pkg/lifecycle"
	"github.com/matzehuels/flownet/pkg/observability"
	"github.com/matzehuels/flownet/pkg/pipeline"
	"github.com/matzehuels/flownet/pkg/server"
	"github.com/matzehuels/flownet/pkg/storage"
)

// backendTimeout bounds connecting to Redis or MongoDB at startup.
const backendTimeout = 10 * time.Second

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Long: `Run the flownet HTTP API until interrupted.

The [server], [cache] and [storage] sections of the config file choose the
listen address, the result cache backend (file, memory, redis, none) and
where saved graphs live (memory, file, mongo). FLOWNET_* environment
variables override the file.`,
		Example: `  flownet serve
  flownet serve --addr :9090
  FLOWNET_CACHE_BACKEND=redis FLOWNET_REDIS_ADDR=localhost:6379 flownet serve`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Server.Addr = addr
			}
			if c.noCache {
				cfg.Cache.Backend = config.CacheNone
			}
			return c.runServe(cmdContext(cmd), cfg)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, :8080)")

	return cmd
}

func (c *CLI) runServe(ctx context.Context, cfg config.Config) error {
	logger := c.Logger
	core := lifecycle.New(cfg.Server.Workers, logger)

	resultCache, err := newServerCache(ctx, cfg, core, logger)
	if err != nil {
		return err
	}

	var keyer cache.Keyer
	if cfg.Cache.Prefix != "" && cfg.Cache.Backend != config.CacheRedis {
		keyer = cache.NewScopedKeyer(cache.NewDefaultKeyer(), cfg.Cache.Prefix)
	}
	runner := pipeline.NewRunner(resultCache, keyer, logger)
	defer runner.Close()

	store, err := newStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	var metrics *observability.PrometheusHooks
	if cfg.Server.Metrics {
		metrics = observability.NewPrometheusHooks(appName)
		observability.Install(metrics)
		defer observability.Reset()
	}

	logger.Info("backends", "cache", cfg.Cache.Backend, "storage", cfg.Storage.Backend, "metrics", cfg.Server.Metrics)

	srv := server.New(server.Options{
		Addr:            cfg.Server.Addr,
		AllowedOrigins:  cfg.Server.AllowedOrigins,
		ShutdownTimeout: cfg.Server.ShutdownTimeout.Duration,
		Core:            core,
		Runner:          runner,
		Store:           store,
		Metrics:         metrics,
		Logger:          logger,
	})
	return srv.Run(ctx)
}

// newServerCache builds the configured result cache. An unreachable Redis
// is logged, not fatal.
func newServerCache(ctx context.Context, cfg config.Config, core *lifecycle.Core, logger *log.Logger) (cache.Cache, error) {
	switch cfg.Cache.Backend {
	case config.CacheNone:
		return cache.NewNullCache(), nil
	case config.CacheMemory:
		return core.Cache(), nil
	case config.CacheRedis:
		rc := cache.NewRedisCache(cache.RedisOptions{
			Addr:     cfg.Cache.RedisAddr,
			Password: cfg.Cache.RedisPassword,
			DB:       cfg.Cache.RedisDB,
			Prefix:   cfg.Cache.Prefix,
			Logger:   logger,
		})
		pingCtx, cancel := context.WithTimeout(ctx, backendTimeout)
		defer cancel()
		if err := rc.Ping(pingCtx); err != nil {
			logger.Warn("redis unavailable", "addr", cfg.Cache.RedisAddr, "err", err)
		}
		return rc, nil
	default:
		dir, err := cfg.CacheDir()
		if err != nil {
			return nil, fmt.Errorf("cache dir: %w", err)
		}
		return cache.NewFileCache(dir)
	}
}

func newStore(ctx context.Context, cfg config.Config) (storage.Store, error) {
	switch cfg.Storage.Backend {
	case config.StorageFile:
		return storage.NewFileStore(cfg.Storage.Dir)
	case config.StorageMongo:
		connectCtx, cancel := context.WithTimeout(ctx, backendTimeout)
		defer cancel()
		return storage.NewMongoStore(connectCtx, storage.MongoOptions{
			URI:      cfg.Storage.MongoURI,
			Database: cfg.Storage.MongoDatabase,
			Timeout:  backendTimeout,
		})
	default:
		return storage.NewMemoryStore(), nil
	}
}
