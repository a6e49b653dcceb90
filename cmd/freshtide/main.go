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

	"github.com/go-playground/validator/v10"
	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"

	"github.com/freshtide/freshtide/internal/admin"
	"github.com/freshtide/freshtide/internal/app"
	"github.com/freshtide/freshtide/internal/auth"
	"github.com/freshtide/freshtide/internal/catalog/categories"
	"github.com/freshtide/freshtide/internal/catalog/products"
	"github.com/freshtide/freshtide/internal/contact"
	"github.com/freshtide/freshtide/internal/observability"
	"github.com/freshtide/freshtide/internal/orders"
	"github.com/freshtide/freshtide/internal/platform/cache"
	"github.com/freshtide/freshtide/internal/platform/db"
	"github.com/freshtide/freshtide/internal/platform/httpx"
	"github.com/freshtide/freshtide/internal/upload"
	"github.com/freshtide/freshtide/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)
	httpx.SetDebug(!cfg.IsProduction())

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	// A dead Redis only costs caching; the catalog cache degrades to a
	// pass-through on a nil client.
	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Warn("redis unavailable, catalog cache disabled", slog.Any("error", err))
		redisClient = nil
	}
	defer func() {
		if redisClient == nil {
			return
		}
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	queue, err := jobs.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	if err != nil {
		logger.Error("init job queue", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := queue.Close(); err != nil {
			logger.Warn("job queue close", slog.Any("error", err))
		}
	}()

	validate := validator.New()
	metrics := observability.NewMetrics()

	tokens := auth.NewTokens(cfg.JWTSecret, cfg.JWTTTL)
	authRepo := auth.NewRepository(pool)
	authService := auth.NewService(authRepo, tokens, queue, auth.ServiceConfig{
		ResetBaseURL: cfg.ClientOrigin + "/reset-password",
	}, logger)
	authHandler := auth.NewHandler(logger, authService, validate)
	authMW := auth.Middleware{Tokens: tokens, Repo: authRepo, Logger: logger}

	catalogCache := products.NewCache(redisClient, cfg.CatalogCacheTTL)
	productRepo := products.NewRepository(pool)
	productService := products.NewService(productRepo, catalogCache, logger)
	productHandler := products.NewHandler(logger, productService, validate)

	categoryRepo := categories.NewRepository(pool)
	categoryService := categories.NewService(categoryRepo, productService, catalogCache, logger)
	categoryHandler := categories.NewHandler(logger, categoryService, validate)

	orderStore := orders.NewStore(pool)
	orderService := orders.NewService(orderStore, queue, logger)
	orderHandler := orders.NewHandler(logger, orderService, validate)

	contactHandler := contact.NewHandler(logger, queue, cfg.NotificationEmail, validate)

	uploadClient := upload.NewClient(cfg.ImageHostURL, cfg.ImageHostKey, cfg.ImageHostSecret, cfg.ImageFolder)
	uploadHandler := upload.NewHandler(logger, uploadClient)

	statsRepo := admin.NewStatsRepository(pool, orderStore)
	adminHandler := admin.NewHandler(logger, admin.NewService(statsRepo), authService)

	router := app.NewRouter(app.RouterParams{
		Logger:     logger,
		Config:     cfg,
		Metrics:    metrics,
		AuthMW:     authMW,
		Auth:       authHandler,
		Products:   productHandler,
		Categories: categoryHandler,
		Orders:     orderHandler,
		Contact:    contactHandler,
		Upload:     uploadHandler,
		Admin:      adminHandler,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server listening", slog.String("addr", cfg.AppAddr))
		errCh <- server.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("server shutdown", slog.Any("error", err))
		}
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server", slog.Any("error", err))
			os.Exit(1)
		}
	}
	logger.Info("server stopped")
}
