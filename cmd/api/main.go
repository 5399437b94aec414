package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/pratik-mahalle/mediremind/internal/api/handlers"
	"github.com/pratik-mahalle/mediremind/internal/api/middleware"
	"github.com/pratik-mahalle/mediremind/internal/api/router"
	"github.com/pratik-mahalle/mediremind/internal/auth"
	"github.com/pratik-mahalle/mediremind/internal/cache"
	"github.com/pratik-mahalle/mediremind/internal/config"
	"github.com/pratik-mahalle/mediremind/internal/pkg/logger"
	"github.com/pratik-mahalle/mediremind/internal/pkg/validator"
	"github.com/pratik-mahalle/mediremind/internal/repository/postgres"
	"github.com/pratik-mahalle/mediremind/internal/services"
	"github.com/pratik-mahalle/mediremind/internal/worker"
	"github.com/pratik-mahalle/mediremind/migrations"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.Init(logger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.ErrorWithErr(err, "Server exited with error")
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, log *logger.Logger) error {
	db, err := postgres.New(cfg.Database)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := postgres.RunMigrations(ctx, db, migrations.GetFS(), log); err != nil {
		return err
	}
	log.With("driver", db.Driver).Info("Database ready")

	userRepo := postgres.NewUserRepository(db)
	userService := services.NewUserService(userRepo, log, cfg.Auth.BCryptCost)

	// Revoked tokens live in redis when configured, otherwise in SQL where
	// the worker purges them
	var revoker auth.Revoker
	var purger worker.TokenPurger
	switch cfg.Auth.Revocation {
	case "redis":
		c, err := cache.NewRedisCache(ctx, cfg.Redis)
		if err != nil {
			return fmt.Errorf("failed to connect to redis: %w", err)
		}
		defer c.Close()
		revoker = auth.NewCacheRevoker(c)
		log.With("addr", cfg.Redis.Addr()).Info("Using redis token revocation")
	default:
		repo := postgres.NewRevokedTokenRepository(db)
		revoker, purger = repo, repo
	}

	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.TokenExpiry)
	authService := services.NewAuthService(userService, tokens, revoker, log)

	var limiter *middleware.RateLimiter
	if cfg.RateLimit.Enabled {
		limiter = middleware.NewRateLimiter(cfg.RateLimit.Rate, cfg.RateLimit.Burst)
	}

	h := &router.Handlers{
		Health: handlers.NewHealthHandler(db, log),
		Auth:   handlers.NewAuthHandler(userService, authService, log, validator.New()),
	}
	handler := router.New(cfg, log, router.Deps{Verifier: authService, Limiter: limiter}, h)

	opts := worker.Options{
		PurgeSchedule: cfg.Worker.PurgeSchedule,
		Purger:        purger,
		Users:         userRepo,
	}
	if limiter != nil {
		opts.Limiter = limiter
	}
	maintenance, err := worker.NewMaintenance(opts, log)
	if err != nil {
		return err
	}

	workerCtx, cancelWorker := context.WithCancel(ctx)
	workerDone := make(chan struct{})
	go func() {
		defer close(workerDone)
		if err := maintenance.Start(workerCtx); err != nil {
			log.ErrorWithErr(err, "Maintenance worker failed")
		}
	}()
	defer func() {
		cancelWorker()
		<-workerDone
	}()

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.With("addr", srv.Addr).Info("API server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("Shutting down API server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	return nil
}
