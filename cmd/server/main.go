package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/stemsi/school-directory/internal/config"
	"github.com/stemsi/school-directory/internal/database"
	"github.com/stemsi/school-directory/internal/handler"
	"github.com/stemsi/school-directory/internal/logger"
	"github.com/stemsi/school-directory/internal/middleware"
	"github.com/stemsi/school-directory/internal/repository"
	"github.com/stemsi/school-directory/internal/router"
	"github.com/stemsi/school-directory/internal/service"
	"github.com/stemsi/school-directory/internal/validator"
)

func main() {
	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}
	log.Info().
		Str("port", cfg.ServerPort).
		Str("mode", cfg.GinMode).
		Str("driver", cfg.DatabaseDriver).
		Str("log_level", cfg.LogLevel).
		Msg("Starting School Directory API")

	// ─── Initialize Validator ──────────────────────────────────────────
	validator.Setup()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ─── Apply Migrations ──────────────────────────────────────────────
	if cfg.AutoMigrate {
		if err := database.MigrateUp(cfg.DatabaseDriver, cfg.DatabaseURL); err != nil {
			log.Fatal().Err(err).Msg("Failed to apply migrations")
		}
		log.Info().Msg("Migrations applied")
	}

	// ─── Connect to Relational Store ───────────────────────────────────
	schoolRepo, err := repository.Open(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.DatabaseDriver).Msg("Failed to connect to database")
	}
	defer schoolRepo.Close()

	// ─── Idempotency Store ─────────────────────────────────────────────
	// Redis when configured, otherwise process memory.
	var idem service.IdempotencyStore
	rdb, err := database.NewRedisClient(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	if rdb != nil {
		defer rdb.Close()
		idem = service.NewRedisIdempotencyStore(rdb, cfg.IdempotencyTTL)
	} else {
		idem = service.NewMemoryIdempotencyStore(cfg.IdempotencyTTL)
	}

	// ─── Initialize Services ──────────────────────────────────────────
	mediaService := service.NewMediaService(cfg)
	schoolService := service.NewSchoolService(schoolRepo, mediaService, idem, log)

	// ─── Initialize Handlers ──────────────────────────────────────────
	handlers := &router.Handlers{
		School: handler.NewSchoolHandler(schoolService),
		Health: handler.NewHealthHandler(schoolService),
	}

	// ─── Start Background Workers ─────────────────────────────────────
	var createLimiter *middleware.RateLimiter
	if cfg.CreateRatePerMinute > 0 {
		createLimiter = middleware.NewRateLimiter(cfg.CreateRatePerMinute, time.Minute)
		go createLimiter.Run(ctx)
	}

	// ─── Setup Router ──────────────────────────────────────────────────
	r := router.SetupRouter(handlers, cfg, createLimiter, log)

	// ─── Create HTTP Server ────────────────────────────────────────────
	srv := &http.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: r,
	}

	// ─── Start Server in Goroutine ─────────────────────────────────────
	go func() {
		log.Info().Str("addr", ":"+cfg.ServerPort).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server error")
		}
	}()

	// ─── Graceful Shutdown ─────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	log.Info().Str("signal", sig.String()).Msg("Shutting down gracefully...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}
	cancel()

	log.Info().Msg("Shutdown complete")
}

// init sets zerolog global defaults before main runs.
func init() {
	zerolog.TimeFieldFormat = time.RFC3339
}
