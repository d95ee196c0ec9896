package main

import (
	"context"
	"errors"
	stdlog "log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/stemsi/course-registry/internal/config"
	"github.com/stemsi/course-registry/internal/database"
	"github.com/stemsi/course-registry/internal/handler"
	"github.com/stemsi/course-registry/internal/logger"
	"github.com/stemsi/course-registry/internal/middleware"
	"github.com/stemsi/course-registry/internal/repository"
	"github.com/stemsi/course-registry/internal/router"
	"github.com/stemsi/course-registry/internal/service"
	"github.com/stemsi/course-registry/internal/validator"
)

func main() {
	// ─── Load Configuration ────────────────────────────────────────────
	cfg, err := config.Load()
	if err != nil {
		stdlog.Fatalf("Invalid configuration:\n%v", err)
	}

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	log.Info().
		Int("port", cfg.ServerPort).
		Str("env", cfg.AppEnv).
		Str("mode", cfg.GinMode).
		Str("log_level", cfg.LogLevel).
		Msg("Starting course registry")

	// ─── Initialize Validator ──────────────────────────────────────────
	validator.Setup()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ─── Connect to PostgreSQL ─────────────────────────────────────────
	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	db, err := database.NewGorm(pool, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize ORM")
	}

	// ─── Rate Limit Store ──────────────────────────────────────────────
	// Redis shares counters across instances; without it each process
	// counts on its own.
	var limitStore middleware.Store
	if cfg.RedisURL != "" {
		rdb, err := database.NewRedisClient(ctx, cfg.RedisURL, log)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to Redis")
		}
		defer rdb.Close()
		limitStore = middleware.NewRedisStore(rdb)
	} else {
		memStore := middleware.NewMemoryStore()
		defer memStore.Close()
		limitStore = memStore
		log.Info().Msg("REDIS_URL not set, rate limits are per instance")
	}

	// ─── Initialize Repositories ───────────────────────────────────────
	studentRepo := repository.NewStudentRepository(db)
	courseRepo := repository.NewCourseRepository(db)
	enrollmentRepo := repository.NewEnrollmentRepository(db)

	// ─── Initialize Services ──────────────────────────────────────────
	paging := service.Paging{DefaultLimit: cfg.DefaultPageSize, MaxLimit: cfg.MaxPageSize}
	studentService := service.NewStudentService(studentRepo, paging)
	courseService := service.NewCourseService(courseRepo, paging)
	enrollmentService := service.NewEnrollmentService(enrollmentRepo, studentRepo, courseRepo, paging)

	// ─── Initialize Handlers ──────────────────────────────────────────
	handlers := &router.Handlers{
		Student:    handler.NewStudentHandler(studentService),
		Course:     handler.NewCourseHandler(courseService),
		Enrollment: handler.NewEnrollmentHandler(enrollmentService),
		Health:     handler.NewHealthHandler(pool, log),
	}

	// ─── Setup Router ──────────────────────────────────────────────────
	r := router.SetupRouter(handlers, limitStore, cfg, log)

	// ─── Create HTTP Server ────────────────────────────────────────────
	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// ─── Start Server in Goroutine ─────────────────────────────────────
	go func() {
		log.Info().Str("addr", cfg.Addr()).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
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

	log.Info().Msg("Shutdown complete")
}

// init sets zerolog global defaults before main runs.
func init() {
	zerolog.TimeFieldFormat = time.RFC3339
}
