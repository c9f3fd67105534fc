package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"skillforge/api/internal/cache"
	"skillforge/api/internal/config"
	"skillforge/api/internal/database"
	"skillforge/api/internal/handlers"
	"skillforge/api/internal/jobs"
	"skillforge/api/internal/log"
	"skillforge/api/internal/mail"
	"skillforge/api/internal/repository"
	"skillforge/api/internal/security"
	"skillforge/api/internal/server"
	"skillforge/api/internal/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger := log.New(cfg.Environment)

	if cfg.Environment == "production" {
		if cfg.Security.SessionSecret == "dev-session-secret-change-me" {
			logger.Warn().Msg("running production with the development session secret")
		}
		if cfg.Security.AdminPasswordHash == "" && cfg.Security.AdminPassword == "skillforge-admin" {
			logger.Warn().Msg("running production with the default admin password")
		}
	}

	ctx := context.Background()

	var dbPool *pgxpool.Pool
	if cfg.Postgres.DSN != "" {
		dbPool, err = database.NewPostgresPool(ctx, cfg.Postgres)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect postgres")
		}
	} else {
		logger.Warn().Msg("no database DSN configured; lead storage disabled")
	}

	redisClient, err := cache.NewRedisClient(ctx, cfg.Redis)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect redis")
	}
	if redisClient == nil {
		logger.Warn().Msg("no redis configured; login throttling disabled")
	}

	snapshotStore, err := storage.NewSnapshotStore(cfg.Snapshot)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to init snapshot store")
	}
	if snapshotStore != nil {
		if err := snapshotStore.EnsureBucket(ctx); err != nil {
			logger.Warn().Err(err).Msg("ensure snapshot bucket failed")
		}
	}

	leadRepo := repository.NewLeadRepository(dbPool)
	if leadRepo.Configured() {
		if err := leadRepo.EnsureSchema(ctx); err != nil {
			logger.Fatal().Err(err).Msg("lead schema provisioning failed")
		}
	}

	limiter := security.NewLoginLimiter(redisClient, cfg.Security.LoginMaxAttempts, cfg.Security.LoginWindow)
	mailer := mail.NewSender(cfg.Mail)

	handlerSet := handlers.NewHandlerSet(logger, cfg, leadRepo, limiter, mailer, dbPool, redisClient)
	httpServer := server.NewHTTPServer(cfg, logger, handlerSet)

	scheduler := jobs.NewScheduler(leadRepo, snapshotStore, logger)
	if err := scheduler.Start(); err != nil {
		logger.Error().Err(err).Msg("scheduler start failed")
	}

	go func() {
		if err := httpServer.Start(); err != nil {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	waitForShutdown(logger, httpServer, scheduler, dbPool, redisClient)
}

func waitForShutdown(logger zerolog.Logger, srv *server.HTTPServer, scheduler *jobs.Scheduler, db *pgxpool.Pool, redisClient *redis.Client) {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()
	logger.Info().Msg("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
	}

	scheduler.Stop()

	if db != nil {
		db.Close()
	}
	if redisClient != nil {
		if err := redisClient.Close(); err != nil {
			logger.Error().Err(err).Msg("redis close error")
		}
	}

	logger.Info().Msg("server exited cleanly")
}
