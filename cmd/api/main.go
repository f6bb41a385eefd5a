package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/CodeX93/freshbox-backend/api/routes"
	"github.com/CodeX93/freshbox-backend/internal/accounts"
	"github.com/CodeX93/freshbox-backend/internal/cart"
	"github.com/CodeX93/freshbox-backend/internal/checkout"
	"github.com/CodeX93/freshbox-backend/internal/checkout/session"
	"github.com/CodeX93/freshbox-backend/internal/coverage"
	"github.com/CodeX93/freshbox-backend/internal/orders"
	"github.com/CodeX93/freshbox-backend/internal/schedule"
	"github.com/CodeX93/freshbox-backend/internal/submission"
	"github.com/CodeX93/freshbox-backend/pkg/config"
	"github.com/CodeX93/freshbox-backend/pkg/db"
	"github.com/CodeX93/freshbox-backend/pkg/logger"
	"github.com/CodeX93/freshbox-backend/pkg/metrics"
	"github.com/CodeX93/freshbox-backend/pkg/migrate"
	"github.com/CodeX93/freshbox-backend/pkg/redis"
	"github.com/CodeX93/freshbox-backend/pkg/square"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	squareClient, err := square.NewClient(context.Background(), cfg.Square, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create square client", err)
		os.Exit(1)
	}

	matcher := coverage.NewMatcher(cfg.Coverage.Areas)
	catalog := cart.NewCatalog()
	allocator := schedule.NewAllocator(cfg.Schedule.CollectionOffsetDays, cfg.Schedule.DeliveryOffsetDays)

	draftStore := session.NewStore(redisClient, cfg.Checkout.SessionTTL)
	checkoutService := checkout.NewService(
		cfg.Checkout,
		redisClient,
		draftStore,
		checkout.NewSequencer(matcher),
		catalog,
		squareClient,
		logg,
	)

	ordersService := orders.NewService(dbClient.DB(), orders.NewRepository(dbClient.DB()), logg)
	accountsService := accounts.NewService(dbClient.DB(), cfg.Password, logg)

	registry := prometheus.NewRegistry()
	coordinator := submission.NewCoordinator(
		draftStore,
		ordersService,
		accountsService,
		checkoutService,
		metrics.NewCheckoutMetrics(registry),
		logg,
	)

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	id := os.Getenv("DYNO")
	if id == "" {
		id = "local"
	}
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":      cfg.App.Env,
		"addr":     addr,
		"instance": id,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(
			cfg,
			logg,
			dbClient,
			redisClient,
			matcher,
			catalog,
			allocator,
			checkoutService,
			coordinator,
			ordersService,
			registry,
		),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
