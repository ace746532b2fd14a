package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/redis/go-redis/v9"

	"retail-dashboard/internal/analytics"
	"retail-dashboard/internal/config"
	"retail-dashboard/internal/dashboard"
	"retail-dashboard/internal/middleware"
	"retail-dashboard/internal/observability"
	"retail-dashboard/internal/server"
	"retail-dashboard/internal/store"
	"retail-dashboard/internal/ui/templates"
)

const (
	renderTimeout  = 10 * time.Second
	startupTimeout = 30 * time.Second
	cacheMaxAge    = "public, max-age=300"
)

func handleDashboard(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), renderTimeout)
	defer cancel()

	w.Header().Set("Cache-Control", cacheMaxAge)
	if err := templates.Dashboard().Render(ctx, w); err != nil {
		http.Error(w, "render error", http.StatusInternalServerError)
	}
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.Logger)
	slog.SetDefault(logger)

	logger.Info("starting application",
		"addr", cfg.Address(),
		"upstream", cfg.Upstream.BaseURL,
		"store", cfg.Database.PostgresDSN,
	)

	ctx, cancel := context.WithTimeout(context.Background(), startupTimeout)
	defer cancel()

	var (
		txStore store.TransactionStore
		pg      *store.Postgres
	)
	if cfg.MemoryStore() {
		logger.Warn("running with in-memory store, data will not persist")
		txStore = store.NewMemory()
	} else {
		pg, err = store.NewPostgres(ctx, cfg.Database.PostgresDSN)
		if err != nil {
			logger.Error("failed to connect to postgres", "error", err)
			os.Exit(1)
		}
		if err := pg.EnsureSchema(ctx); err != nil {
			logger.Error("failed to ensure schema", "error", err)
			os.Exit(1)
		}
		txStore = pg
	}

	var cache *analytics.Cache
	var redisClient *redis.Client
	if cfg.Database.RedisAddr != "" {
		redisClient = redis.NewClient(&redis.Options{Addr: cfg.Database.RedisAddr})
		if err := redisClient.Ping(ctx).Err(); err != nil {
			logger.Warn("redis unreachable, rollup caching disabled", "error", err)
			redisClient = nil
		} else {
			cache = analytics.NewCache(redisClient, cfg.Database.CacheTTL)
		}
	}

	svc := analytics.NewService(txStore, cache, logger)
	client := dashboard.NewClient(cfg.Upstream.BaseURL, cfg.Upstream.Timeout, logger)

	templateHandlers := &server.TemplateHandlers{
		Dashboard: handleDashboard,
	}

	srv := server.NewServer(svc, client, logger, templateHandlers)

	rateLimiter := middleware.NewRateLimiter(cfg.Security)

	middlewareChain := middleware.Chain(
		middleware.Recovery(logger),
		middleware.RequestID(),
		middleware.Logger(logger),
		middleware.Tracing(),
		middleware.SecurityHeaders(),
		middleware.CORS(cfg.Security),
		middleware.RateLimit(rateLimiter, logger),
	)

	handler := middlewareChain(srv)

	httpServer := &http.Server{
		Addr:         cfg.Address(),
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	gracefulServer := server.NewGracefulServer(httpServer, logger, cfg)

	if pg != nil {
		gracefulServer.RegisterShutdownHook(func(ctx context.Context) error {
			logger.Info("closing postgres pool")
			pg.Close()
			return nil
		})
	}
	if redisClient != nil {
		gracefulServer.RegisterShutdownHook(func(ctx context.Context) error {
			logger.Info("closing redis client")
			return redisClient.Close()
		})
	}

	if err := gracefulServer.ListenAndServe(); err != nil {
		logger.Error("server failed", "error", err)
		os.Exit(1)
	}

	logger.Info("application stopped gracefully")
}
