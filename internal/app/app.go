package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/utafrali/MiniShopGo/internal/catalog"
	"github.com/utafrali/MiniShopGo/internal/config"
	"github.com/utafrali/MiniShopGo/internal/event"
	handler "github.com/utafrali/MiniShopGo/internal/handler/http"
	"github.com/utafrali/MiniShopGo/internal/repository"
	"github.com/utafrali/MiniShopGo/internal/repository/fallback"
	"github.com/utafrali/MiniShopGo/internal/repository/memory"
	"github.com/utafrali/MiniShopGo/internal/repository/postgres"
	redisrepo "github.com/utafrali/MiniShopGo/internal/repository/redis"
	"github.com/utafrali/MiniShopGo/internal/service"
	"github.com/utafrali/MiniShopGo/pkg/health"
	pkgkafka "github.com/utafrali/MiniShopGo/pkg/kafka"
)

// App wires together all dependencies and runs the shop service.
type App struct {
	cfg        *config.Config
	logger     *slog.Logger
	rdb        *redis.Client
	pool       *pgxpool.Pool
	producer   *pkgkafka.Producer
	httpServer *http.Server
}

// NewApp creates a new application instance, initializing all dependencies.
//
// Backend selection happens here, once: if Redis is configured and answers a
// ping the cart store is Redis with a per-call in-memory standby; otherwise
// the service runs entirely on the in-memory store. The process never refuses
// to start because a backend is down.
func NewApp(cfg *config.Config, logger *slog.Logger) (*App, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	app := &App{cfg: cfg, logger: logger}

	cartRepo := app.selectCartStore(ctx)
	receiptRepo, err := app.selectReceiptStore(ctx)
	if err != nil {
		return nil, err
	}

	// Kafka producer.
	kafkaCfg := pkgkafka.DefaultProducerConfig(cfg.KafkaBrokers)
	app.producer = pkgkafka.NewProducer(kafkaCfg, logger)
	logger.Info("kafka producer initialized", slog.Any("brokers", cfg.KafkaBrokers))

	// Build the dependency graph.
	cat := catalog.NewMemory(catalog.DefaultProducts())
	eventProducer := event.NewProducer(app.producer, logger)
	cartService := service.NewCartService(cartRepo, cat, eventProducer, logger)
	checkoutService := service.NewCheckoutService(cartRepo, receiptRepo, cat, eventProducer, logger)

	// Health checks.
	healthHandler := health.NewHandler()
	healthHandler.Register("cart_store", func(ctx context.Context) error {
		return cartRepo.Ping(ctx)
	})
	if app.pool != nil {
		healthHandler.Register("postgres", func(ctx context.Context) error {
			return app.pool.Ping(ctx)
		})
	}

	router := handler.NewRouter(cartService, checkoutService, cat, healthHandler, logger)

	app.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return app, nil
}

// selectCartStore picks the cart-line backend at startup.
func (a *App) selectCartStore(ctx context.Context) repository.CartLines {
	if a.cfg.RedisAddr == "" {
		a.logger.Info("redis not configured, using in-memory cart store")
		return memory.NewCartLines()
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     a.cfg.RedisAddr,
		Password: a.cfg.RedisPass,
		DB:       a.cfg.RedisDB,
	})

	if err := rdb.Ping(ctx).Err(); err != nil {
		a.logger.Warn("redis unreachable, using in-memory cart store",
			slog.String("addr", a.cfg.RedisAddr),
			slog.String("error", err.Error()),
		)
		_ = rdb.Close()
		return memory.NewCartLines()
	}

	a.rdb = rdb
	a.logger.Info("connected to Redis",
		slog.String("addr", a.cfg.RedisAddr),
		slog.Int("db", a.cfg.RedisDB),
	)

	return fallback.NewCartLines(redisrepo.NewCartLines(rdb), memory.NewCartLines(), a.logger)
}

// selectReceiptStore picks the receipt backend at startup.
func (a *App) selectReceiptStore(ctx context.Context) (repository.Receipts, error) {
	if a.cfg.PostgresDSN == "" {
		a.logger.Info("postgres not configured, using in-memory receipt store")
		return memory.NewReceipts(), nil
	}

	pool, err := pgxpool.New(ctx, a.cfg.PostgresDSN)
	if err != nil {
		return nil, fmt.Errorf("create postgres pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		a.logger.Warn("postgres unreachable, using in-memory receipt store",
			slog.String("error", err.Error()),
		)
		pool.Close()
		return memory.NewReceipts(), nil
	}

	a.pool = pool
	a.logger.Info("connected to PostgreSQL")
	return postgres.NewReceipts(pool), nil
}

// Run starts the HTTP server and blocks until the context is canceled.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		a.logger.Info("starting HTTP server",
			slog.String("addr", a.httpServer.Addr),
		)
		if err := a.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("shutdown signal received")
	case err := <-errCh:
		return err
	}

	return a.Shutdown()
}

// Shutdown gracefully stops all components.
func (a *App) Shutdown() error {
	a.logger.Info("shutting down application...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := a.httpServer.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("http server shutdown error", slog.String("error", err.Error()))
	}

	if err := a.producer.Close(); err != nil {
		a.logger.Error("kafka producer close error", slog.String("error", err.Error()))
	}

	if a.rdb != nil {
		if err := a.rdb.Close(); err != nil {
			a.logger.Error("redis close error", slog.String("error", err.Error()))
		}
	}
	if a.pool != nil {
		a.pool.Close()
	}

	a.logger.Info("application shutdown complete")
	return nil
}
