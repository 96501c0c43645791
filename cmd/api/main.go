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

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/cableflow/cableflow-backend/api/routes"
	"github.com/cableflow/cableflow-backend/internal/cables"
	"github.com/cableflow/cableflow-backend/internal/cart"
	"github.com/cableflow/cableflow-backend/internal/checkout"
	"github.com/cableflow/cableflow-backend/internal/files"
	"github.com/cableflow/cableflow-backend/internal/notifications"
	"github.com/cableflow/cableflow-backend/internal/orders"
	"github.com/cableflow/cableflow-backend/internal/projects"
	"github.com/cableflow/cableflow-backend/internal/users"
	"github.com/cableflow/cableflow-backend/pkg/config"
	"github.com/cableflow/cableflow-backend/pkg/db"
	"github.com/cableflow/cableflow-backend/pkg/instance"
	"github.com/cableflow/cableflow-backend/pkg/logger"
	"github.com/cableflow/cableflow-backend/pkg/metrics"
	"github.com/cableflow/cableflow-backend/pkg/migrate"
	"github.com/cableflow/cableflow-backend/pkg/pubsub"
	"github.com/cableflow/cableflow-backend/pkg/redis"
	"github.com/cableflow/cableflow-backend/pkg/storage"
	"github.com/cableflow/cableflow-backend/pkg/storage/gcs"
	"github.com/cableflow/cableflow-backend/pkg/storage/memory"
	"github.com/cableflow/cableflow-backend/pkg/stripe"
)

const shutdownTimeout = 15 * time.Second

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	requireResource(context.Background(), logg, "config", err)

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		Format:      cfg.App.LogFormat,
		WarnStack:   cfg.App.LogWarnStack,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbClient, err := db.Open(ctx, cfg, logg)
	requireResource(ctx, logg, "database", err)
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	err = migrate.MaybeRunDev(ctx, cfg, logg, dbClient)
	requireResource(ctx, logg, "dev migrations", err)

	redisClient, err := redis.New(ctx, cfg.Redis, logg)
	requireResource(ctx, logg, "redis", err)
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	store, err := openObjectStore(ctx, cfg, logg)
	requireResource(ctx, logg, "object storage", err)

	publisher, closePublisher, err := openPublisher(ctx, cfg, logg)
	requireResource(ctx, logg, "notifications", err)
	defer closePublisher()

	payments, err := stripe.NewClient(ctx, cfg.Stripe, logg)
	requireResource(ctx, logg, "stripe", err)

	usersSvc, err := users.NewService(users.NewRepository(dbClient.DB()), redisClient)
	requireResource(ctx, logg, "users service", err)

	projectRepo := projects.NewRepository(dbClient.DB())
	projectsSvc, err := projects.NewService(projectRepo)
	requireResource(ctx, logg, "projects service", err)

	fileSvc, err := files.NewService(store, cfg.GCS.Prefix, cfg.Files.MaxUploadBytes())
	requireResource(ctx, logg, "files service", err)

	cableRepo := cables.NewRepository(dbClient.DB())
	cablesSvc, err := cables.NewService(cables.ServiceParams{
		Repo:          cableRepo,
		Projects:      projectRepo,
		Files:         fileSvc,
		Publisher:     publisher,
		Logger:        logg,
		QuoteValidity: cfg.Quotes.DefaultValidity,
	})
	requireResource(ctx, logg, "cables service", err)

	cartRepo := cart.NewRepository(dbClient.DB())
	cartSvc, err := cart.NewService(cartRepo, cableRepo, nil)
	requireResource(ctx, logg, "cart service", err)

	ordersRepo := orders.NewRepository(dbClient.DB())
	ordersSvc, err := orders.NewService(ordersRepo)
	requireResource(ctx, logg, "orders service", err)

	checkoutSvc, err := checkout.NewService(dbClient, cartRepo, ordersRepo, cableRepo, payments, logg, nil)
	requireResource(ctx, logg, "checkout service", err)

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	handler := routes.NewRouter(cfg, logg, routes.Dependencies{
		DB:          dbClient,
		Redis:       redisClient,
		Storage:     store,
		Revocations: redisClient,
		Idempotency: redisClient,
		RateLimiter: redisClient,
		Users:       usersSvc,
		Cables:      cablesSvc,
		Cart:        cartSvc,
		Checkout:    checkoutSvc,
		Orders:      ordersSvc,
		Projects:    projectsSvc,
		Metrics:     metrics.NewHTTPMetrics(registry),
		Gatherer:    registry,
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx = logg.WithFields(ctx, map[string]any{
		"env":      cfg.App.Env,
		"addr":     addr,
		"instance": instance.ID("api"),
	})

	server := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logg.Info(ctx, "starting api server")
		serveErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-ctx.Done():
		logg.Info(ctx, "shutting down api server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(shutdownCtx, "api server shutdown failed", err)
		}
	}
}

func openObjectStore(ctx context.Context, cfg *config.Config, logg *logger.Logger) (storage.ObjectStore, error) {
	switch cfg.FeatureFlags.StorageDriver {
	case "memory":
		logg.Warn(ctx, "using in-memory object storage; attachments are lost on restart")
		return memory.New(), nil
	case "gcs", "":
		client, err := gcs.NewClient(ctx, cfg.GCS, cfg.GCP, logg)
		if err != nil {
			return nil, err
		}
		return client, nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.FeatureFlags.StorageDriver)
	}
}

func openPublisher(ctx context.Context, cfg *config.Config, logg *logger.Logger) (notifications.Publisher, func(), error) {
	if !cfg.FeatureFlags.Notifications {
		return notifications.NewLogPublisher(logg), func() {}, nil
	}
	client, err := pubsub.NewClient(ctx, cfg.GCP, cfg.PubSub, logg)
	if err != nil {
		return nil, nil, err
	}
	publisher, err := notifications.NewPubSubPublisher(client.QuotePublisher(), logg)
	if err != nil {
		_ = client.Close()
		return nil, nil, err
	}
	return publisher, func() {
		if err := client.Close(); err != nil {
			logg.Error(context.Background(), "error closing pubsub", err)
		}
	}, nil
}

func requireResource(ctx context.Context, logg *logger.Logger, resource string, err error) {
	if err == nil {
		return
	}
	logg.Error(ctx, fmt.Sprintf("resource not working: %s", resource), err)
	os.Exit(1)
}
