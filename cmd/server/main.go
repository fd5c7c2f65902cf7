package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	_ "github.com/pnlboard/leaderboard-api/docs"
	"github.com/pnlboard/leaderboard-api/internal/config"
	"github.com/pnlboard/leaderboard-api/internal/database"
	"github.com/pnlboard/leaderboard-api/internal/handlers"
	"github.com/pnlboard/leaderboard-api/internal/logging"
	"github.com/pnlboard/leaderboard-api/internal/logic"
	"github.com/pnlboard/leaderboard-api/internal/ranking"
	"github.com/pnlboard/leaderboard-api/internal/store"
	"github.com/pnlboard/leaderboard-api/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Could not load config: %v\n", err)
		os.Exit(1)
	}

	logger, err := logging.New(cfg.Log, cfg.IsProduction())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Could not build logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if err := run(cfg, logger); err != nil {
		logger.Sugar().Errorw("Server exited with error", "error", err)
		logger.Sync()
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *zap.Logger) error {
	sugar := logger.Sugar()
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// User store
	var (
		userStore store.UserStore
		pg        *pgxpool.Pool
	)
	switch cfg.StoreDriver {
	case config.StoreDriverMemory:
		sugar.Warnw("Using in-memory user store; records are lost on restart")
		userStore = store.NewMemoryStore()
	default:
		conn, err := database.ConnectPostgres(ctx, cfg.PostgresURL)
		if err != nil {
			return err
		}
		defer conn.Close()
		pg = conn
		userStore = store.NewPostgresStore(conn)
		sugar.Infow("Connected to PostgreSQL")
	}

	// Redis: events and write rate limiting. Both degrade to no-ops without it.
	var (
		rdb     *redis.Client
		rclient logic.RedisClient
	)
	if cfg.RedisURL != "" {
		client, err := database.ConnectRedis(ctx, cfg.RedisURL)
		if err != nil {
			return err
		}
		defer client.Close()
		rdb, rclient = client, client
		sugar.Infow("Connected to Redis")
	}

	// ClickHouse: leaderboard snapshots.
	var (
		ch       driver.Conn
		recorder logic.SnapshotRecorder = worker.NopRecorder{}
		queue    handlers.SnapshotQueue
		pool     *worker.Pool
	)
	if cfg.ClickHouseURL != "" {
		conn, err := database.ConnectClickHouse(ctx, cfg.ClickHouseURL)
		if err != nil {
			return err
		}
		defer conn.Close()
		ch = conn

		pool = worker.NewPool(worker.PoolConfig{
			QueueSize:     cfg.SnapshotQueueSize,
			BatchSize:     cfg.SnapshotBatchSize,
			FlushInterval: cfg.SnapshotFlushInterval,
			ClickHouse:    conn,
			Logger:        logger,
		})
		pool.Start(context.Background())
		recorder, queue = pool, pool
		sugar.Infow("Connected to ClickHouse")
	}

	var source ranking.PerformanceSource = ranking.NewRandomSource()
	if cfg.HasLeaderboardSeed {
		source = ranking.NewSeededSource(cfg.LeaderboardSeed)
	}

	var events logic.EventSink
	if rclient != nil {
		events = logic.NewRedisEventPublisher(rclient, logger)
	}

	var limiter handlers.WriteLimiter
	if rclient != nil {
		limiter = logic.NewRateLimiter(rclient, cfg.RateLimitPerMinute)
	}

	h := handlers.New(handlers.Config{
		Users:       logic.NewUserService(userStore, events, logger),
		Leaderboard: logic.NewLeaderboardService(userStore, ranking.NewEngine(source), recorder, logger),
		Limiter:     limiter,
		Snapshots:   queue,
		Postgres:    pg,
		ClickHouse:  ch,
		Redis:       rdb,
		AdminToken:  cfg.AdminToken,
		Logger:      logger,
	})

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(h.AccessLog)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "Authorization", "X-Admin-Token"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/health", h.Health)
	r.Get("/ready", h.Ready)
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/swagger/doc.json", h.SwaggerDoc)
	r.Mount("/api/v1", h.Routes())

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		sugar.Infow("Server starting", "port", cfg.Port, "env", cfg.Env, "store", cfg.StoreDriver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("listen: %w", err)
		}
	case <-ctx.Done():
	}

	sugar.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		sugar.Errorw("Graceful shutdown failed", "error", err)
	}

	// Flush pending snapshots before the ClickHouse connection closes.
	if pool != nil {
		pool.Stop()
	}
	sugar.Info("Server stopped")
	return nil
}
