package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"adfleet/db/migrations"
	"adfleet/internal/adapter/exif"
	"adfleet/internal/adapter/http"
	"adfleet/internal/adapter/memory"
	"adfleet/internal/adapter/metrics"
	"adfleet/internal/adapter/postgres"
	"adfleet/internal/adapter/redislock"
	"adfleet/internal/adapter/s3"
	"adfleet/internal/adapter/usecase"
	"adfleet/internal/config"
	"adfleet/internal/core/domain"
	"adfleet/internal/core/port"
	"adfleet/internal/db"
)

// main is the entry point of the adfleet service. It loads configuration,
// wires the inventory store, photo storage and banner locks, then starts the
// HTTP server. On receiving a termination signal it gracefully shuts down
// the server.
func main() {
	exitCode := 1
	defer func() {
		if r := recover(); r != nil {
			panic(r)
		} else {
			os.Exit(exitCode)
		}
	}()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", slog.Any("error", err))
		return
	}

	logger := slog.New(cfg.Log.Handler(os.Stdout)).With(slog.String("env", cfg.Env))

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	repo, closeRepo, err := openInventory(ctx, cfg, logger)
	if err != nil {
		logger.Error("inventory store error", slog.Any("error", err))
		return
	}
	defer closeRepo()

	photos, err := openPhotoStore(ctx, cfg, logger)
	if err != nil {
		logger.Error("photo storage error", slog.Any("error", err))
		return
	}

	locker, closeLocker, err := openLocker(ctx, cfg, logger)
	if err != nil {
		logger.Error("redis connection error", slog.Any("error", err))
		return
	}
	defer closeLocker()

	loc, _ := cfg.Verification.Location()
	recorder := metrics.NewRecorder(prometheus.DefaultRegisterer)
	tariffs := cfg.Tariffs()

	inventory := usecase.NewInventoryUseCase(repo, usecase.InventoryOptions{
		MaxActive:    cfg.Inventory.MaxActiveBanners,
		PerCampaign:  cfg.Inventory.AvailablePerCampaign,
		CancelPolicy: domain.ParseCancelPolicy(cfg.Inventory.CancelPolicy),
		Tariffs:      tariffs,
	}, recorder, logger)
	verification := usecase.NewVerificationUseCase(repo, photos, exif.Decoder{}, locker, usecase.VerificationOptions{
		Location:      loc,
		MaxPhotoBytes: int(cfg.HTTP.UploadLimitBytes),
	}, recorder, logger)
	earnings := usecase.NewEarningsUseCase(repo, tariffs, logger)

	auth := httpadapter.NewAuthenticator(cfg.Auth.JWTSecret, cfg.Auth.Issuer, cfg.Auth.Leeway)
	handler := httpadapter.NewHandler(inventory, verification, earnings, auth, httpadapter.Options{
		UploadLimitBytes: cfg.HTTP.UploadLimitBytes,
		Uploads:          httpadapter.NewRateLimiter(cfg.HTTP.UploadRPS, cfg.HTTP.UploadBurst),
		Instrument:       recorder.Middleware,
		Metrics:          promhttp.Handler(),
	}, logger)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.HTTP.Port),
		Handler:      handler.Router(),
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("server listening", slog.Int("port", int(cfg.HTTP.Port)), slog.String("store", cfg.Store.Driver))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	select {
	case <-ctx.Done():
		exitCode = 0
	case err = <-serveErr:
		logger.Error("server error", slog.Any("error", err))
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err = srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", slog.Any("error", err))
		exitCode = 1
	} else {
		logger.Info("server gracefully stopped")
	}
}

// openInventory returns the configured inventory repository. The postgres
// store optionally migrates and seeds the schema first.
func openInventory(ctx context.Context, cfg config.Config, logger *slog.Logger) (port.InventoryRepository, func(), error) {
	if cfg.Store.Memory() {
		logger.Warn("using in-memory inventory, data is lost on restart")
		return memory.NewRepository(), func() {}, nil
	}

	if cfg.Psql.RunMigrations {
		from, err := db.Migrate(cfg.Psql.Addr.String())
		if err != nil {
			return nil, nil, fmt.Errorf("migrate: %w", err)
		}
		logger.Info("migrations applied successfully", slog.Uint64("from", uint64(from)), slog.Uint64("to", migrations.Version))
	}

	pool, err := db.NewPostgresPool(ctx, cfg.Psql)
	if err != nil {
		return nil, nil, err
	}

	if cfg.Psql.Seed {
		if err = db.Seed(ctx, pool, cfg.Tariffs()); err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("seed: %w", err)
		}
		logger.Info("demo data seeded")
	}
	return postgres.NewRepository(pool), pool.Close, nil
}

func openPhotoStore(ctx context.Context, cfg config.Config, logger *slog.Logger) (port.PhotoStore, error) {
	if cfg.Storage.Bucket == "" {
		logger.Warn("no photo bucket configured, keeping photos in memory")
		return memory.NewPhotoStore(), nil
	}
	return s3.NewPhotoStore(ctx, s3.Config{
		Bucket:   cfg.Storage.Bucket,
		Region:   cfg.Storage.Region,
		Endpoint: cfg.Storage.Endpoint,
		Prefix:   cfg.Storage.Prefix,
	})
}

func openLocker(ctx context.Context, cfg config.Config, logger *slog.Logger) (port.Locker, func(), error) {
	if cfg.Redis.Address == "" {
		logger.Warn("no redis configured, banner locks are process local")
		return memory.NewLocker(), func() {}, nil
	}
	client, err := redislock.Connect(ctx, cfg.Redis.Address)
	if err != nil {
		return nil, nil, err
	}
	return redislock.NewLocker(client, cfg.Redis.LockTTL), func() { _ = client.Close() }, nil
}
