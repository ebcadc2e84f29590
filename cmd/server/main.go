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

	"go.uber.org/zap"

	"github.com/skystoreemd-lab/Monte-ai/internal/adapters/gemini"
	"github.com/skystoreemd-lab/Monte-ai/internal/adapters/http/handlers"
	memorystorage "github.com/skystoreemd-lab/Monte-ai/internal/adapters/storage/memory"
	redisstorage "github.com/skystoreemd-lab/Monte-ai/internal/adapters/storage/redis"
	"github.com/skystoreemd-lab/Monte-ai/internal/config"
	"github.com/skystoreemd-lab/Monte-ai/internal/core/domain"
	"github.com/skystoreemd-lab/Monte-ai/internal/core/ports"
	"github.com/skystoreemd-lab/Monte-ai/internal/core/services"
	"github.com/skystoreemd-lab/Monte-ai/internal/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	lg, err := logger.New(cfg.LogLevel)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer func() { _ = lg.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	storage, closeFn, err := initStorage(ctx, cfg, lg)
	if err != nil {
		lg.Fatal("failed to init storage", zap.Error(err))
	}
	defer closeFn()

	limiter, err := services.NewRateLimiterService(storage, cfg.RateLimiter.Rule)
	if err != nil {
		lg.Fatal("failed to create limiter", zap.Error(err))
	}

	relay := gemini.NewClient(gemini.Config{
		APIKey:  cfg.Gemini.APIKey,
		Model:   cfg.Gemini.Model,
		BaseURL: cfg.Gemini.BaseURL,
		Timeout: cfg.Gemini.Timeout,
	})
	if !relay.Configured() {
		lg.Warn("GEMINI_API_KEY is not set; chat requests will fail with MISSING_API_KEY")
	}

	chat, err := services.NewChatService(services.NewContentFilter(domain.DefaultWordLists()), relay, lg)
	if err != nil {
		lg.Fatal("failed to create chat service", zap.Error(err))
	}

	srv := &http.Server{
		Addr: fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: handlers.NewRouter(handlers.RouterConfig{
			Limiter:        limiter,
			Chat:           chat,
			Log:            lg,
			StaticDir:      cfg.Server.StaticDir,
			AllowedOrigins: cfg.Server.AllowedOrigins,
			TrustProxy:     cfg.Server.TrustProxy,
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		err := srv.ListenAndServe()
		if err != nil {
			errCh <- err
		}
	}()

	lg.Info("server listening",
		zap.String("url", fmt.Sprintf("http://localhost:%d", cfg.Server.Port)),
		zap.String("api", fmt.Sprintf("http://localhost:%d/api/chat", cfg.Server.Port)),
		zap.String("storage", cfg.Storage.Type),
	)

	select {
	case <-ctx.Done():
		lg.Info("shutdown signal received")
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			lg.Fatal("server error", zap.Error(err))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		lg.Error("graceful shutdown failed", zap.Error(err))
	}
}

func initStorage(ctx context.Context, cfg config.Config, lg *zap.Logger) (ports.WindowStore, func(), error) {
	switch cfg.Storage.Type {
	case "memory":
		storage := memorystorage.New(
			memorystorage.WithIdleTTL(cfg.RateLimiter.IdleTTL),
			memorystorage.WithCleanupEvery(cfg.RateLimiter.CleanupEvery),
		)
		storage.StartJanitor(ctx)
		return storage, func() {}, nil
	case "redis":
		redisCfg := redisstorage.Config{
			Addr:     fmt.Sprintf("%s:%d", cfg.Storage.Redis.Host, cfg.Storage.Redis.Port),
			Password: cfg.Storage.Redis.Password,
			DB:       cfg.Storage.Redis.DB,
		}
		storage, err := redisstorage.New(redisCfg)
		if err != nil {
			return nil, nil, err
		}
		return storage, func() {
			if err := storage.Close(); err != nil {
				lg.Error("failed to close redis storage", zap.Error(err))
			}
		}, nil
	default:
		return nil, nil, fmt.Errorf("unsupported storage type: %s", cfg.Storage.Type)
	}
}
