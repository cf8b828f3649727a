package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/wadjakorntonsri/go-video-share/pkg/adapters/handler"
	"github.com/wadjakorntonsri/go-video-share/pkg/adapters/media/ffmpeg"
	"github.com/wadjakorntonsri/go-video-share/pkg/adapters/repository/sqlite"
	"github.com/wadjakorntonsri/go-video-share/pkg/adapters/ttl/etcd"
	"github.com/wadjakorntonsri/go-video-share/pkg/adapters/ttl/memory"
	"github.com/wadjakorntonsri/go-video-share/pkg/adapters/ttl/redis"
	"github.com/wadjakorntonsri/go-video-share/pkg/auth"
	"github.com/wadjakorntonsri/go-video-share/pkg/config"
	"github.com/wadjakorntonsri/go-video-share/pkg/core/services"
	"github.com/wadjakorntonsri/go-video-share/pkg/core/validation"
	"github.com/wadjakorntonsri/go-video-share/pkg/logging"
	"github.com/wadjakorntonsri/go-video-share/pkg/ports"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := logging.New(cfg.AppEnv)
	if err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}
	defer logger.Sync()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}

func run(cfg *config.Config, logger *zap.Logger) error {
	for _, dir := range []string{cfg.UploadDir, cfg.OutputDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create %s: %w", dir, err)
		}
	}

	// Initialize Repository
	repo, err := sqlite.NewSQLiteRepository(cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer repo.Close()

	ttl, err := newTTLStore(cfg, logger)
	if err != nil {
		return err
	}
	defer ttl.Close()

	issuer, err := auth.NewIssuer(cfg.JWTSecret, cfg.JWTAlgorithm)
	if err != nil {
		return err
	}

	// Initialize Service
	service := services.NewVideoService(repo, ttl, ffmpeg.NewProcessor(cfg.FFmpegPath, cfg.FFprobePath), services.Options{
		Limits: validation.Limits{
			MaxFileSize: cfg.MaxFileSize,
			MinDuration: cfg.MinDuration,
			MaxDuration: cfg.MaxDuration,
		},
		ShareTTL:             cfg.ShareLinkTTL,
		BaseURL:              cfg.BaseURL,
		OutputDir:            cfg.OutputDir,
		LimitDerivedDuration: cfg.LimitDerivedDuration,
	}, logger)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler.NewRouter(cfg, service, issuer, logger),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting", zap.String("port", cfg.Port), zap.String("ttl_backend", cfg.TTLBackend))
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

func newTTLStore(cfg *config.Config, logger *zap.Logger) (ports.TTLStore, error) {
	switch cfg.TTLBackend {
	case "redis":
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		store, err := redis.New(ctx, cfg.RedisAddr(), cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			return nil, fmt.Errorf("connect to redis: %w", err)
		}
		return store, nil
	case "etcd":
		store, err := etcd.New(cfg.EtcdEndpoints, logger)
		if err != nil {
			return nil, fmt.Errorf("connect to etcd: %w", err)
		}
		return store, nil
	default:
		logger.Warn("using in-process TTL store; share links do not survive restarts")
		return memory.New(), nil
	}
}
