package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stemsi/polly-backend/internal/broker"
	"github.com/stemsi/polly-backend/internal/config"
	"github.com/stemsi/polly-backend/internal/database"
	"github.com/stemsi/polly-backend/internal/handler"
	"github.com/stemsi/polly-backend/internal/logger"
	"github.com/stemsi/polly-backend/internal/repository"
	"github.com/stemsi/polly-backend/internal/router"
	"github.com/stemsi/polly-backend/internal/service"
	"github.com/stemsi/polly-backend/internal/validator"
	"github.com/stemsi/polly-backend/internal/worker"
)

func main() {
	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	log.Info().
		Str("port", cfg.ServerPort).
		Str("mode", cfg.GinMode).
		Str("log_level", cfg.LogLevel).
		Str("base_url", cfg.BaseURL).
		Msg("Starting Polly survey backend")

	// ─── Initialize Validator ──────────────────────────────────────────
	validator.Setup()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ─── Event Broker ──────────────────────────────────────────────────
	// Redis lets several instances share live updates; without it events
	// stay in this process.
	var (
		rdb *redis.Client
		bus broker.Broker
	)
	if cfg.RedisURL != "" {
		var err error
		rdb, err = database.NewRedisClient(ctx, cfg, log)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to Redis")
		}
		defer rdb.Close()
		bus = broker.NewRedisBroker(rdb, log)
	} else {
		mem := broker.NewMemoryBroker(log)
		defer mem.Close()
		bus = mem
		log.Info().Msg("REDIS_URL not set, using in-process broker")
	}

	// ─── Store & Services ──────────────────────────────────────────────
	store := repository.NewSurveyStore()
	surveyService := service.NewSurveyService(store, bus, service.SurveyConfig{
		BaseURL:      cfg.BaseURL,
		MaxQuestions: cfg.MaxQuestions,
		MaxOptions:   cfg.MaxOptions,
	}, log)

	// ─── Initialize Handlers ──────────────────────────────────────────
	handlers := &router.Handlers{
		Survey: handler.NewSurveyHandler(surveyService, log),
		Health: handler.NewHealthHandler(surveyService, rdb),
		WS:     handler.NewWSHandler(surveyService, bus, cfg.StatsPushInterval, log, cfg.AllowedOrigins),
	}

	// ─── Start Background Workers ─────────────────────────────────────
	workerCtx, workerCancel := context.WithCancel(context.Background())
	var workers sync.WaitGroup

	reporter, err := worker.NewStoreReporter(surveyService, cfg.StoreReportSchedule, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid STORE_REPORT_SCHEDULE")
	}
	workers.Add(1)
	go func() {
		defer workers.Done()
		reporter.Start(workerCtx)
	}()

	// ─── Setup Router ──────────────────────────────────────────────────
	r := router.SetupRouter(handlers, cfg, log)

	// ─── Create HTTP Server ────────────────────────────────────────────
	srv := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// ─── Start Server in Goroutine ─────────────────────────────────────
	go func() {
		log.Info().Str("addr", srv.Addr).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Server error")
		}
	}()

	// ─── Graceful Shutdown ─────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	log.Info().Str("signal", sig.String()).Msg("Shutting down gracefully...")

	// 1. Stop accepting new HTTP requests (5s timeout). Hijacked WebSocket
	// connections end when the broker closes on return.
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}

	// 2. Stop background workers.
	workerCancel()
	workers.Wait()

	summary := store.Summary()
	log.Info().
		Int("surveys", summary.TotalSurveys).
		Int("responses", summary.TotalResponses).
		Msg("Shutdown complete, in-memory data discarded")
}

// init sets zerolog global defaults before main runs.
func init() {
	zerolog.TimeFieldFormat = time.RFC3339
}
