// ABOUTME: Entry point for the LMS web front-end
// ABOUTME: Serves server-rendered pages backed by the LMS REST API

package main

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/MohamedIjlal27/LMS/cache"
	"github.com/MohamedIjlal27/LMS/config"
	"github.com/MohamedIjlal27/LMS/handlers"
	"github.com/MohamedIjlal27/LMS/logger"
)

const shutdownTimeout = 15 * time.Second

func main() {
	// Initialize structured logging
	logger.Init()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	slog.Info("Starting LMS web front-end", "env", cfg.Env)
	slog.Info("Backend API configured", "url", cfg.APIURL)
	if !cfg.CookieSecure {
		slog.Warn("Cookies are not marked Secure; use only behind plain HTTP in development")
	}
	if cfg.UploadConfigured() {
		slog.Info("Course image uploads enabled", "bucket", cfg.UploadBucket, "region", cfg.UploadRegion)
	} else {
		slog.Info("Course image uploads disabled")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := newCache(ctx, cfg)
	if err != nil {
		slog.Error("Failed to initialize cache", "error", err)
		os.Exit(1)
	}
	if c, ok := store.(io.Closer); ok {
		defer c.Close()
	}

	h, err := handlers.NewHandler(cfg, store)
	if err != nil {
		slog.Error("Failed to initialize handlers", "error", err)
		os.Exit(1)
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           h.Router(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	metricsSrv := &http.Server{
		Addr:              cfg.MetricsAddr,
		Handler:           h.MetricsHandler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 2)
	go func() {
		slog.Info("Server listening", "addr", srv.Addr)
		errCh <- srv.ListenAndServe()
	}()
	go func() {
		slog.Info("Metrics listening", "addr", metricsSrv.Addr)
		errCh <- metricsSrv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server failed", "error", err)
			os.Exit(1)
		}
	case <-ctx.Done():
		slog.Info("Shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("Graceful shutdown failed", "error", err)
		}
		metricsSrv.Shutdown(shutdownCtx)
	}
}

// newCache picks Redis when REDIS_URL is set so several instances share the
// catalog cache; otherwise a per-process memory cache.
func newCache(ctx context.Context, cfg *config.Config) (cache.Store, error) {
	if cfg.RedisURL == "" {
		slog.Info("Cache initialized", "type", "memory", "ttl", cfg.CatalogTTL())
		return cache.NewMemory(time.Minute), nil
	}
	r, err := cache.NewRedis(ctx, cfg.RedisURL)
	if err != nil {
		return nil, err
	}
	slog.Info("Cache initialized", "type", "redis", "ttl", cfg.CatalogTTL())
	return r, nil
}
