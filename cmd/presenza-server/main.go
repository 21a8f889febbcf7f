// Package main provides the entry point for the Presenza attendance server.
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

	"github.com/prometheus/client_golang/prometheus"

	"github.com/presenzahq/presenza/internal/api"
	"github.com/presenzahq/presenza/internal/auth"
	"github.com/presenzahq/presenza/internal/config"
	"github.com/presenzahq/presenza/internal/metrics"
	"github.com/presenzahq/presenza/internal/storage"
)

const version = "1.0.0"

const serverShutdownTimeout = 10 * time.Second

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "presenza-server: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	logLevel := new(slog.LevelVar)
	logLevel.Set(parseLogLevel(cfg.LogLevel))
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))
	slog.SetDefault(logger)

	store, err := storage.New(cfg.DatabasePath)
	if err != nil {
		return fmt.Errorf("opening storage: %w", err)
	}
	defer store.Close() //nolint:errcheck

	registry := prometheus.NewRegistry()
	if err := metrics.Init(registry); err != nil {
		return fmt.Errorf("registering metrics: %w", err)
	}
	go serveMetrics(logger, cfg.MetricsListenAddr, registry)

	authSvc := auth.NewService([]byte(cfg.JWTSecret), cfg.BcryptCost)
	if err := bootstrapAdmin(logger, store, authSvc, cfg); err != nil {
		return fmt.Errorf("bootstrapping admin account: %w", err)
	}
	handler := api.NewHandler(store, authSvc, logLevel, logger)

	server := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           handler.NewRouter(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Info("server starting",
		"version", version,
		"addr", cfg.ListenAddr,
		"database", cfg.DatabasePath,
		"log_level", cfg.LogLevel)

	return startServerAndWaitForShutdown(logger, server)
}

// bootstrapAdmin creates the initial admin account when ADMIN_USERNAME is
// configured. An existing account with that username is left untouched.
func bootstrapAdmin(logger *slog.Logger, store *storage.SQLiteStorage, authSvc *auth.Service, cfg *config.Config) error {
	if cfg.AdminUsername == "" {
		return nil
	}

	hash, err := authSvc.HashPassword(cfg.AdminPassword)
	if err != nil {
		return fmt.Errorf("hashing admin password: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	user, err := store.CreateUser(ctx, cfg.AdminUsername, hash, "Administrator", "admin")
	if err != nil {
		if errors.Is(err, storage.ErrDuplicate) {
			return nil
		}
		return err
	}
	logger.Info("admin account created", "user_id", user.ID, "username", user.Username)
	return nil
}

// startServerAndWaitForShutdown runs the server until it fails or the
// process receives SIGINT or SIGTERM, then drains in-flight requests.
func startServerAndWaitForShutdown(logger *slog.Logger, server *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case sig := <-sigCh:
		logger.Info("shutting down", "signal", sig.String())
	}

	ctx, cancel := context.WithTimeout(context.Background(), serverShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	logger.Info("server stopped")
	return nil
}

// serveMetrics exposes Prometheus metrics on a separate listener so the
// metrics port is never reachable through the public address.
func serveMetrics(logger *slog.Logger, addr string, registry *prometheus.Registry) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler(registry))

	server := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	logger.Info("metrics listener starting", "addr", addr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("metrics listener failed", "error", err)
	}
}

func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
