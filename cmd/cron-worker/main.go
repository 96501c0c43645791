package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/cableflow/cableflow-backend/internal/cables"
	"github.com/cableflow/cableflow-backend/internal/cron"
	"github.com/cableflow/cableflow-backend/internal/files"
	"github.com/cableflow/cableflow-backend/internal/notifications"
	"github.com/cableflow/cableflow-backend/internal/projects"
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
)

const lockKeyFormat = "cableflow:cron-worker:lock:%s"

func main() {
	once := flag.Bool("once", false, "run a single cycle and exit")
	flag.Parse()

	logg := logger.New(logger.Options{ServiceName: "cron-worker"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	requireResource(context.Background(), logg, "config", err)

	logg = logger.New(logger.Options{
		ServiceName: "cron-worker",
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

	fileSvc, err := files.NewService(store, cfg.GCS.Prefix, cfg.Files.MaxUploadBytes())
	requireResource(ctx, logg, "files service", err)

	cablesSvc, err := cables.NewService(cables.ServiceParams{
		Repo:          cables.NewRepository(dbClient.DB()),
		Projects:      projects.NewRepository(dbClient.DB()),
		Files:         fileSvc,
		Publisher:     publisher,
		Logger:        logg,
		QuoteValidity: cfg.Quotes.DefaultValidity,
	})
	requireResource(ctx, logg, "cables service", err)

	registry := prometheus.NewRegistry()
	collector := metrics.NewCronJobMetrics(registry)

	quoteExpiry, err := cron.NewQuoteExpiryJob(cron.QuoteExpiryJobParams{
		Logger:  logg,
		Cables:  cablesSvc,
		Metrics: collector,
	})
	requireResource(ctx, logg, "quote expiry job", err)

	id := instance.ID("cron-worker")
	lockKey := cfg.Cron.LockKey
	if lockKey == "" {
		lockKey = fmt.Sprintf(lockKeyFormat, envOrLocal(cfg.App.Env))
	}
	lock, err := cron.NewRedisLock(redisClient, lockKey, cfg.Cron.LockTTL, id)
	requireResource(ctx, logg, "cron lock", err)

	service, err := cron.NewService(cron.ServiceParams{
		Logger:   logg,
		Registry: cron.NewRegistry(quoteExpiry),
		Lock:     lock,
		Metrics:  collector,
		Interval: cfg.Cron.Interval,
	})
	requireResource(ctx, logg, "cron service", err)

	ctx = logg.WithFields(ctx, map[string]any{
		"env":      cfg.App.Env,
		"instance": id,
	})

	if *once {
		if err := service.RunOnce(ctx); err != nil {
			logg.Error(ctx, "cron cycle failed", err)
			os.Exit(1)
		}
		return
	}

	metricsServer := &http.Server{
		Addr:              cfg.Cron.MetricsAddr,
		Handler:           promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(ctx, "metrics server stopped", err)
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = metricsServer.Shutdown(shutdownCtx)
	}()

	logg.Info(ctx, "starting cron worker")
	if err := service.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logg.Error(ctx, "cron worker stopped unexpectedly", err)
		os.Exit(1)
	}

	logg.Info(ctx, "cron worker shutting down gracefully")
}

func envOrLocal(env string) string {
	if env == "" {
		return "local"
	}
	return env
}

func openObjectStore(ctx context.Context, cfg *config.Config, logg *logger.Logger) (storage.ObjectStore, error) {
	switch cfg.FeatureFlags.StorageDriver {
	case "memory":
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
