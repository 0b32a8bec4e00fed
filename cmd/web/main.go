package main

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"superstore-dashboard/internal/config"
	"superstore-dashboard/internal/middleware"
	"superstore-dashboard/internal/observability"
	"superstore-dashboard/internal/server"
	"superstore-dashboard/internal/services"
	"superstore-dashboard/internal/storage"
)

type uploadStore interface {
	services.UploadRepository
	io.Closer
}

func openUploadStore(cfg config.DatasetConfig, logger *slog.Logger) (uploadStore, error) {
	if cfg.UploadDBPath == "" {
		logger.Info("upload store in memory")
		return storage.NewMemoryUploadStore(), nil
	}
	store, err := storage.NewUploadStore(cfg.UploadDBPath)
	if err != nil {
		return nil, err
	}
	logger.Info("upload store opened", "path", cfg.UploadDBPath)
	return store, nil
}

// newHandler wires the routes behind the middleware chain.
func newHandler(cfg *config.Config, analytics *services.Analytics, logger *slog.Logger, metrics *observability.Metrics) http.Handler {
	srv := server.NewServer(analytics, logger, server.Options{
		MaxUploadBytes: cfg.Dataset.MaxUploadBytes,
		Metrics:        metrics,
	})

	rateLimiter := middleware.NewRateLimiter(cfg.Security)

	middlewareChain := middleware.Chain(
		middleware.Recovery(logger),
		middleware.RequestID(),
		middleware.Logger(logger),
		middleware.Metrics(metrics),
		middleware.Tracing(logger),
		middleware.SecurityHeaders(),
		middleware.CORS(cfg.Security),
		middleware.TrustedProxy(cfg.Security),
		middleware.RateLimit(rateLimiter, logger),
	)

	return middlewareChain(srv)
}

func main() {
	// A missing .env is fine; the environment may already be set.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.Logger)
	slog.SetDefault(logger)

	logger.Info("starting application",
		"version", "1.0.0",
		"csv_file", cfg.Dataset.CSVFile,
		"upload_db", cfg.Dataset.UploadDBPath,
		"metrics", cfg.Metrics.Enabled,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := openUploadStore(cfg.Dataset, logger)
	if err != nil {
		logger.Error("failed to open upload store", "error", err)
		os.Exit(1)
	}

	source := services.NewFileSource(cfg.Dataset.CSVFile, store, logger)
	if cfg.Dataset.Watch {
		if err := source.Watch(ctx); err != nil {
			// Without the watcher the cache still refreshes on size or mtime changes.
			logger.Warn("dataset watcher unavailable", "error", err)
		}
	}

	var metrics *observability.Metrics
	if cfg.Metrics.Enabled {
		metrics = observability.NewMetrics()
	}

	analytics := services.NewAnalytics(source, logger, metrics)

	// The dataset is re-read on every run; a failure here is only reported.
	if opts, ds, err := analytics.Options(ctx); err != nil {
		logger.Warn("default dataset not loadable yet", "error", err)
	} else {
		logger.Info("dataset ready",
			"dataset", ds.Name,
			"records", ds.Len(),
			"regions", len(opts.Regions),
			"categories", len(opts.Categories))
	}

	httpServer := &http.Server{
		Addr:         cfg.Address(),
		Handler:      newHandler(cfg, analytics, logger, metrics),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	gracefulServer := server.NewGracefulServer(httpServer, logger, cfg)

	gracefulServer.RegisterShutdownHook(func(ctx context.Context) error {
		logger.Info("closing upload store")
		return store.Close()
	})
	gracefulServer.RegisterShutdownHook(func(ctx context.Context) error {
		logger.Info("stopping dataset watcher")
		return source.Close()
	})

	logger.Info("starting graceful server")
	if err := gracefulServer.Run(ctx); err != nil {
		logger.Error("server failed", "error", err)
		os.Exit(1)
	}

	logger.Info("application stopped gracefully")
}
