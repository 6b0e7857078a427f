package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"golang.org/x/sync/errgroup"

	"github.com/gatekeep/gatekeep/internal/app"
	"github.com/gatekeep/gatekeep/internal/auth"
	"github.com/gatekeep/gatekeep/internal/observability"
	"github.com/gatekeep/gatekeep/internal/platform/cache"
	"github.com/gatekeep/gatekeep/internal/platform/db"
	"github.com/gatekeep/gatekeep/internal/platform/storage"
	"github.com/gatekeep/gatekeep/internal/users"
	"github.com/gatekeep/gatekeep/internal/verification"
	"github.com/gatekeep/gatekeep/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}
	logger := app.NewLogger(cfg)

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("gatekeep exited", slog.Any("error", err))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *app.Config, logger *slog.Logger) error {
	dbpool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		return err
	}
	defer dbpool.Close()
	if err := db.Migrate(ctx, dbpool); err != nil {
		return err
	}

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		return err
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	documents, err := openDocumentStore(ctx, cfg)
	if err != nil {
		return err
	}

	redisOpts := asynq.RedisClientOpt{Addr: cfg.RedisAddr}
	jobClient, err := jobs.NewClient(redisOpts)
	if err != nil {
		return err
	}
	defer jobClient.Close()
	inspector := asynq.NewInspector(redisOpts)
	defer inspector.Close()

	metrics := observability.NewMetrics()

	userRepo := users.NewRepository(dbpool)
	userService := users.NewService(userRepo, documents, users.ServiceConfig{DocumentUploads: cfg.Brand.DocumentUploads}, logger)

	tokens, err := auth.NewTokenIssuer(cfg.JWTSecret, cfg.JWTIssuer, cfg.TokenTTL)
	if err != nil {
		return err
	}
	authService := auth.NewService(userService, tokens, cache.NewDenylist(redisClient, "gatekeep:revoked"), metrics, logger)
	guard := auth.Middleware{Service: authService, Logger: logger}

	verificationService := verification.NewService(userRepo, jobClient, verification.Config{
		BrandName: cfg.Brand.Name,
		Generate:  verification.PrefixedCredentials(cfg.Brand.CredentialPrefix),
	}, metrics, logger)

	usersHandler := users.NewHandler(logger, userService, guard, users.HandlerConfig{
		DocumentField:    cfg.Brand.DocumentField,
		DocumentMaxBytes: cfg.Brand.DocumentMaxBytes,
	})
	router := app.NewRouter(app.RouterParams{
		Logger:              logger,
		Config:              cfg,
		Metrics:             metrics,
		AuthHandler:         auth.NewHandler(logger, authService, app.LoginRateLimit(cfg.LoginRateLimit)),
		UsersHandler:        usersHandler,
		VerificationHandler: verification.NewHandler(logger, verificationService, guard),
		JobHandler:          jobs.NewHandler(inspector, logger),
		Documents:           documents,
	})

	server := &http.Server{
		Addr:              cfg.AppAddr,
		Handler:           router,
		ReadTimeout:       cfg.AppReadTimeout,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      cfg.AppWriteTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("http server listening", slog.String("addr", cfg.AppAddr), slog.String("brand", cfg.Brand.Name))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown", slog.Any("error", err))
			return err
		}
		return nil
	})
	return g.Wait()
}

func openDocumentStore(ctx context.Context, cfg *app.Config) (storage.Store, error) {
	if cfg.StorageBackend == "s3" {
		return storage.NewS3Store(ctx, storage.S3Config{
			Bucket:    cfg.S3Bucket,
			Region:    cfg.S3Region,
			Endpoint:  cfg.S3Endpoint,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
		})
	}
	return storage.NewDiskStore(cfg.UploadDir)
}
