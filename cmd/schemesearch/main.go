package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/schemesearch/internal/catalog"
	"github.com/kailas-cloud/schemesearch/internal/config"
	"github.com/kailas-cloud/schemesearch/internal/dataset"
	"github.com/kailas-cloud/schemesearch/internal/db"
	"github.com/kailas-cloud/schemesearch/internal/db/memory"
	dbRedis "github.com/kailas-cloud/schemesearch/internal/db/redis"
	"github.com/kailas-cloud/schemesearch/internal/encoder"
	logpkg "github.com/kailas-cloud/schemesearch/internal/logger"
	"github.com/kailas-cloud/schemesearch/internal/metrics"
	chiTransport "github.com/kailas-cloud/schemesearch/internal/transport/chi"
	healthuc "github.com/kailas-cloud/schemesearch/internal/usecase/health"
	searchuc "github.com/kailas-cloud/schemesearch/internal/usecase/search"
	"github.com/kailas-cloud/schemesearch/internal/version"
)

func main() {
	// Load configuration based on ENV
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to load config:", err)
		os.Exit(1)
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to create logger:", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting schemesearch API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("index_path", cfg.Catalog.IndexPath),
		zap.String("metadata_path", cfg.Catalog.MetadataPath),
		zap.String("cache_driver", cfg.Cache.Driver),
	)

	ctx := context.Background()
	metrics.Register()

	// Index and table are loaded once and never mutated
	format, _ := catalog.ParseFormat(cfg.Catalog.Format) // validated by config.Load
	ds, err := dataset.Load(ctx, cfg.Catalog.IndexPath, cfg.Catalog.MetadataPath, format)
	if err != nil {
		logger.Fatal("Failed to load dataset", zap.Error(err))
	}
	stats := ds.Stats()
	logger.Info("Dataset loaded",
		zap.Int("dimension", stats.Dimension),
		zap.Int("vectors", stats.Vectors),
		zap.String("metric", stats.Metric),
		zap.Int("rows", stats.Rows),
	)
	if len(stats.Ignored) > 0 {
		logger.Info("Ignoring unknown catalog columns", zap.Strings("columns", stats.Ignored))
	}
	if !stats.Aligned {
		logger.Warn("Index and catalog sizes differ; out-of-range positions will be dropped",
			zap.Int("vectors", stats.Vectors),
			zap.Int("rows", stats.Rows),
		)
	}

	store, err := buildCache(ctx, cfg.Cache)
	if err != nil {
		logger.Fatal("Failed to create embedding cache", zap.Error(err))
	}
	if store != nil {
		defer store.Close()
	}

	dims := cfg.Embedding.Dimensions
	if dims == 0 {
		dims = stats.Dimension
	}
	if dims != stats.Dimension {
		logger.Fatal("embedding.dimensions does not match the index",
			zap.Int("configured", dims),
			zap.Int("index", stats.Dimension),
		)
	}
	encCfg := encoder.Config{
		Provider:         cfg.Embedding.Provider,
		BaseURL:          cfg.Embedding.BaseURL,
		APIKey:           cfg.Embedding.APIKey,
		Model:            cfg.Embedding.Model,
		Dimensions:       dims,
		QueryInstruction: cfg.Embedding.QueryInstruction,
		Timeout:          time.Duration(cfg.Embedding.TimeoutSec) * time.Second,
		CacheKeyPrefix:   cfg.Cache.KeyPrefix,
		Logger:           logger,
	}
	// Pass nil interface (not typed nil pointer!) when no cache is configured.
	if store != nil {
		encCfg.Cache = store
	}
	enc, err := encoder.Build(encCfg)
	if err != nil {
		logger.Fatal("Failed to create encoder", zap.Error(err))
	}
	logger.Info("Encoder created",
		zap.String("provider", cfg.Embedding.Provider),
		zap.String("model", cfg.Embedding.Model),
		zap.Int("dimensions", dims),
	)

	if cfg.Embedding.WarmupEnabled() {
		warmCtx, cancel := context.WithTimeout(ctx, time.Duration(cfg.Embedding.TimeoutSec)*time.Second)
		got, err := encoder.Warmup(warmCtx, enc, stats.Dimension)
		cancel()
		if err != nil {
			logger.Fatal("Encoder warm-up failed", zap.Error(err))
		}
		logger.Info("Encoder ready", zap.Int("dimensions", got))
	}

	searchSvc := searchuc.New(enc, ds.Index, ds.Table,
		searchuc.WithTopK(cfg.Search.TopK),
		searchuc.WithTimeout(time.Duration(cfg.Search.TimeoutSec)*time.Second),
	)

	// Pass nil interface (not typed nil pointer!) when no cache is configured.
	var cachePinger healthuc.CachePinger
	if store != nil {
		cachePinger = store
	}
	healthSvc := healthuc.New(ds.Index, ds.Table, enc, cachePinger)

	server := chiTransport.NewServer(searchSvc, healthSvc, logger)
	r := chiTransport.NewRouter(server, chiTransport.RouterConfig{
		AllowedOrigins:   cfg.CORS.AllowedOrigins,
		AllowCredentials: cfg.CORS.Credentials(),
		MaxBodyBytes:     cfg.HTTP.MaxBodyBytes,
	})

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadTimeout:       time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		ReadHeaderTimeout: time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout:      time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}

// buildCache creates the embedding cache store for the configured driver. Returns nil for "none".
func buildCache(ctx context.Context, cfg config.CacheConfig) (db.Store, error) {
	ttl := time.Duration(cfg.TTLSec) * time.Second

	switch cfg.Driver {
	case "none":
		return nil, nil
	case "memory":
		s, err := memory.NewStore(cfg.Size, ttl)
		if err != nil {
			return nil, fmt.Errorf("memory cache: %w", err)
		}
		return s, nil
	case "redis", "valkey":
		s, err := dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.Addrs,
			Password: cfg.Password,
			TTL:      ttl,
		})
		if err != nil {
			return nil, fmt.Errorf("redis cache: %w", err)
		}
		if err := s.WaitForReady(ctx, time.Duration(cfg.ReadinessTimeout)*time.Second); err != nil {
			s.Close()
			return nil, fmt.Errorf("redis cache not ready: %w", err)
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unknown cache driver %q", cfg.Driver)
	}
}
