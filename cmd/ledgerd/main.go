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

	"github.com/joho/godotenv"

	"github.com/paystream/ledger/internal/config"
	"github.com/paystream/ledger/internal/handlers"
	"github.com/paystream/ledger/internal/host"
	"github.com/paystream/ledger/internal/models"
	"github.com/paystream/ledger/internal/service"
	"github.com/paystream/ledger/internal/storage"
)

func main() {
	// Load .env file (ignore error if not found - prod uses real env vars)
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := cfg.Logger.NewLogger()
	slog.SetDefault(logger)

	logger.Info("starting payment ledger",
		"port", cfg.Server.Port,
		"driver", cfg.Database.Driver,
		"log_level", cfg.Logger.Level,
	)

	ctx := context.Background()
	store, err := storage.Open(ctx, &cfg.Database, logger)
	if err != nil {
		logger.Error("failed to open ledger store", "error", err)
		os.Exit(1)
	}
	defer func() {
		if closer, ok := store.(*storage.SQLStore); ok {
			_ = closer.Close() //nolint:errcheck // nothing useful to do on shutdown
		}
	}()

	clock := host.SystemClock{}
	auth := host.ContextAuth{}
	events := host.NewLogPublisher(logger)

	var token host.TokenClient = host.NoopTokenClient{}
	if cfg.App.TokenServiceURL != "" {
		token = host.NewHTTPTokenClient(cfg.App.TokenServiceURL, cfg.App.TokenTimeout, logger)
	} else {
		logger.Warn("no token service configured; transfers always succeed")
	}

	if cfg.App.AdminAddress != "" {
		refunds := service.NewRefundService(store, clock, auth, events, token, logger)
		if err := refunds.Initialize(ctx, models.Address(cfg.App.AdminAddress)); err != nil {
			var svcErr *service.ServiceError
			if errors.As(err, &svcErr) && svcErr.Code == service.ErrCodeAlreadyInitialized {
				logger.Info("refund ledger already initialized")
			} else {
				logger.Error("failed to initialize refund ledger", "error", err)
				os.Exit(1)
			}
		}
	}

	router := handlers.NewRouter(store, clock, auth, events, token, cfg, logger)

	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		logger.Info("server listening", "address", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server failed", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
	}

	logger.Info("server stopped")
}
