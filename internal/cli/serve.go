package cli

import (
	"context"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/matzehuels/sankey/internal/server"
	"github.com/matzehuels/sankey/pkg/cache"
	"github.com/matzehuels/sankey/pkg/observability/prom"
	"github.com/matzehuels/sankey/pkg/pipeline"
)

type serveFlags struct {
	addr        string
	redis       string // redis address; empty uses the file cache
	redisPrefix string
	scope       string // keyer namespace shared by all cache kinds
	noCache     bool
	noMetrics   bool
	maxBody     int64
}

// serveCommand creates the serve command, which runs the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	f := serveFlags{redis: os.Getenv(envRedisAddr)}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the rendering API over HTTP",
		Long: `Serve the rendering API over HTTP.

  POST /v1/render?format=svg   render the table in the request body
  POST /v1/inspect             aggregate the table, return JSON
  GET  /healthz                liveness and build info
  GET  /metrics                Prometheus metrics

Rendered artifacts are cached in redis when --redis (or ` + envRedisAddr + `)
is set, in the local file cache otherwise.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd.Context(), f)
		},
	}

	cmd.Flags().StringVar(&f.addr, "addr", ":8080", "listen address")
	cmd.Flags().StringVar(&f.redis, "redis", f.redis, "redis address for the shared cache (env "+envRedisAddr+")")
	cmd.Flags().StringVar(&f.redisPrefix, "redis-prefix", "", "redis key prefix (default \"sankey:\")")
	cmd.Flags().StringVar(&f.scope, "cache-scope", "", "namespace for cache keys, e.g. \"staging:\"")
	cmd.Flags().BoolVar(&f.noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&f.noMetrics, "no-metrics", false, "do not collect Prometheus metrics")
	cmd.Flags().Int64Var(&f.maxBody, "max-body", server.DefaultMaxBodyBytes, "maximum request body in bytes")

	return cmd
}

func (c *CLI) runServe(ctx context.Context, f serveFlags) error {
	logger := loggerFromContext(ctx)

	store, err := c.serveCache(ctx, f)
	if err != nil {
		return err
	}
	runner := pipeline.NewRunner(store, serveKeyer(f.scope), logger)
	defer runner.Close()

	if !f.noMetrics {
		prom.New(prometheus.DefaultRegisterer).Register()
	}

	srv := server.New(runner,
		server.WithLogger(logger),
		server.WithMaxBodyBytes(f.maxBody),
	)
	return srv.ListenAndServe(ctx, f.addr)
}

// serveKeyer returns the keyer for scope, or nil for the default keyer.
func serveKeyer(scope string) cache.Keyer {
	if scope == "" {
		return nil
	}
	return cache.NewScopedKeyer(cache.NewDefaultKeyer(), scope)
}

// serveCache picks the server's cache: redis when configured and
// reachable, the file cache otherwise.
func (c *CLI) serveCache(ctx context.Context, f serveFlags) (cache.Cache, error) {
	logger := loggerFromContext(ctx)
	if f.noCache {
		return cache.NewNullCache(), nil
	}
	if f.redis != "" {
		var opts []cache.RedisOption
		if f.redisPrefix != "" {
			opts = append(opts, cache.WithRedisPrefix(f.redisPrefix))
		}
		rc, err := cache.NewRedisCache(ctx, f.redis, opts...)
		if err == nil {
			logger.Info("using redis cache", "addr", f.redis)
			return rc, nil
		}
		logger.Warn("redis unavailable, falling back to file cache", "addr", f.redis, "err", err)
	}
	return newCache(false)
}
