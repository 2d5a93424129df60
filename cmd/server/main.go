package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	stdhttp "net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/vncsmyrnk/accounts/internal/adapters/crypto/argon2id"
	"github.com/vncsmyrnk/accounts/internal/adapters/handler/http"
	"github.com/vncsmyrnk/accounts/internal/adapters/repository/postgres"
	"github.com/vncsmyrnk/accounts/internal/adapters/secrets"
	"github.com/vncsmyrnk/accounts/internal/config"
	"github.com/vncsmyrnk/accounts/internal/core/ports"
	"github.com/vncsmyrnk/accounts/internal/core/services"
	"github.com/vncsmyrnk/accounts/internal/logging"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	log := logging.New(os.Stdout, cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := postgres.Open(ctx, cfg.DSN(), cfg.DBMaxOpenConns, cfg.DBMaxIdleConns)
	if err != nil {
		return err
	}
	defer db.Close()

	if cfg.MigrateOnStart {
		if err := postgres.Migrate(ctx, db); err != nil {
			return err
		}
		log.Info("migrations applied")
	}

	secretProvider, err := newSecretProvider(ctx, cfg)
	if err != nil {
		return err
	}

	userRepo := postgres.NewUserRepository(db)
	hasher := argon2id.NewHasher()
	tokenService := services.NewTokenService(userRepo, secretProvider, cfg.BearerTokenTTL, cfg.RefreshTokenTTL)
	authService := services.NewAuthService(userRepo, hasher, tokenService)
	userService := services.NewUserService(userRepo, hasher, authService)

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collectors.NewDBStatsCollector(db, "accounts"),
	)

	handler := http.NewHandler(authService, userService, db, reg)
	server := &stdhttp.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info("listening", "addr", cfg.HTTPAddr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, stdhttp.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		return err
	case <-ctx.Done():
	}
	log.Info("gracefully shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	return server.Shutdown(shutdownCtx)
}

func newSecretProvider(ctx context.Context, cfg *config.Config) (ports.SecretProvider, error) {
	if cfg.SecretSource == config.SecretSourceAWS {
		provider, err := secrets.NewAWS(ctx, cfg.AWSRegion, cfg.AWSSecretID, cfg.AuthSecretID)
		if err != nil {
			return nil, err
		}
		return secrets.NewCached(provider), nil
	}
	return secrets.NewCached(secrets.NewLocal(cfg.AuthSecretID)), nil
}
