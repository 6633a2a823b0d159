package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/cors"
	redis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/local/docorchestrator/internal/analysis"
	"github.com/local/docorchestrator/internal/chunker"
	cfgpkg "github.com/local/docorchestrator/internal/config"
	"github.com/local/docorchestrator/internal/doclingcore"
	logpkg "github.com/local/docorchestrator/internal/logger"
	"github.com/local/docorchestrator/internal/metrics"
	"github.com/local/docorchestrator/internal/orchestrator"
	"github.com/local/docorchestrator/internal/router"
	"github.com/local/docorchestrator/internal/statuscheck"
	"github.com/local/docorchestrator/internal/storage"
	"github.com/local/docorchestrator/internal/store"
)

func main() {
	cfg := cfgpkg.Load()

	if err := logpkg.Init(logpkg.OptionsFromConfig(cfg)); err != nil {
		log.Warn().Err(err).Msg("logger init degraded")
	}
	defer logpkg.Close()

	metrics.Init()

	ctx := context.Background()
	var redisPing, s3Ping statuscheck.Pinger
	deps := orchestrator.Dependencies{
		Analyzer:      analysis.New(analysis.WithThresholds(cfg.Analysis.Thresholds())),
		ResultsPrefix: cfg.Storage.ResultsPrefix,
		MaxBodyBytes:  cfg.Server.MaxBodyBytes,
	}

	// Status tracking and the duplicate guard need Redis; without it both are off.
	if cfg.Cache.RedisURL != "" {
		rdb, err := store.Connect(ctx, cfg.Cache.RedisURL)
		if err != nil {
			log.Warn().Err(err).Msg("redis unavailable, status tracking and result cache disabled")
		} else {
			defer func(c *redis.Client) { _ = c.Close() }(rdb)
			deps.Status = store.NewRedisStatus(rdb, cfg.Cache.StatusTTL)
			deps.Cache = store.NewResultCache(rdb, cfg.Cache.ResultTTL)
			redisPing = statuscheck.PingFunc(func(ctx context.Context) error { return rdb.Ping(ctx).Err() })
		}
	}

	if cfg.Storage.Bucket != "" {
		s3c, err := storage.NewS3Client(ctx, storage.Options{
			Bucket:          cfg.Storage.Bucket,
			Region:          cfg.Storage.Region,
			Endpoint:        cfg.Storage.Endpoint,
			AccessKeyID:     cfg.Storage.AccessKeyID,
			SecretAccessKey: cfg.Storage.SecretAccessKey,
			PresignTTL:      cfg.Storage.PresignTTL,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("failed to init S3 client")
		}
		deps.Storage = s3c
		s3Ping = s3c
	}

	rt := router.New(router.Config{
		CoreURL:         cfg.Services.CoreURL,
		FullURL:         cfg.Services.FullURL,
		Timeout:         cfg.Services.Timeout,
		BreakerFailures: cfg.Services.BreakerFailures,
		BreakerCooldown: cfg.Services.BreakerCooldown,
		BreakerHalfOpen: cfg.Services.BreakerHalfOpen,
		BreakerInterval: cfg.Services.BreakerInterval,
	}, nil)
	deps.Router = rt

	mux := http.NewServeMux()
	orchestrator.New(deps).RegisterRoutes(mux)
	mux.Handle("GET /metrics", metrics.Handler())
	mux.Handle("GET /ready", statuscheck.New(statuscheck.Options{
		Redis:   redisPing,
		Storage: s3Ping,
		Tiers:   rt,
	}).Handler())

	// Local docling-core tier (optional)
	if cfg.Server.RunDoclingCore {
		core := doclingcore.New(nil, chunker.New(chunker.Config{
			Size:    cfg.Chunking.Size,
			Overlap: cfg.Chunking.Overlap,
		}))
		mux.Handle("/docling-core", core.Handler())
		log.Info().Msg("local docling-core service mounted at /docling-core")
	}

	handler := cors.Handler(cors.Options{
		AllowedOrigins: cfg.Server.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:         300,
	})(mux)

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().
			Str("port", cfg.Server.Port).
			Str("core_url", cfg.Services.CoreURL).
			Str("full_url", cfg.Services.FullURL).
			Msg("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("http server error")
		}
	}()

	// Graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
	log.Info().Msg("shutdown complete")
}
