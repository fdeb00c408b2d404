package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/quizbd/exam-portal/internal/config"
	"github.com/quizbd/exam-portal/internal/database"
	"github.com/quizbd/exam-portal/internal/handler"
	"github.com/quizbd/exam-portal/internal/logger"
	"github.com/quizbd/exam-portal/internal/router"
	"github.com/quizbd/exam-portal/internal/service"
	"github.com/quizbd/exam-portal/internal/session"
	"github.com/quizbd/exam-portal/internal/sheet"
	"github.com/quizbd/exam-portal/internal/store"
	"github.com/quizbd/exam-portal/internal/validator"
	"github.com/quizbd/exam-portal/internal/worker"
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
		Msg("Starting Exam Portal Backend")

	// ─── Initialize Validator ──────────────────────────────────────────
	validator.Setup()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ─── Connect to Redis ──────────────────────────────────────────────
	rdb, err := database.NewRedisClient(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer rdb.Close()

	// ─── Initialize Store ──────────────────────────────────────────────
	st := store.New(store.NewRedisKV(rdb), log)

	// ─── Initialize Services ──────────────────────────────────────────
	queue := sheet.NewQueue(rdb, log)
	manager := session.NewManager(cfg.SessionIdleTTL, log)

	authService := service.NewAuthService(cfg, st)
	examService := service.NewExamService(st, log)
	resultService := service.NewResultService(st, log)
	sessionService := service.NewSessionService(st, manager, queue, log)

	// ─── Initialize Handlers ──────────────────────────────────────────
	handlers := &router.Handlers{
		Auth:     handler.NewAuthHandler(authService),
		Portal:   handler.NewPortalHandler(examService, sessionService),
		Exam:     handler.NewExamHandler(examService),
		Question: handler.NewQuestionHandler(examService),
		Result:   handler.NewResultHandler(resultService),
		WS:       handler.NewWSHandler(rdb, log, cfg.AllowedOrigins),
	}

	// ─── Start Background Workers ─────────────────────────────────────
	workerCtx, workerCancel := context.WithCancel(context.Background())

	sheetClient := sheet.NewClient(cfg.WebhookURL, cfg.WebhookTimeout, log)
	syncWorker := worker.NewSyncWorker(rdb, sheetClient, log)

	go syncWorker.Start(workerCtx)
	go manager.Start(workerCtx)

	// ─── Setup Router ──────────────────────────────────────────────────
	r := router.SetupRouter(authService, handlers, cfg)

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

	// 1. Stop accepting new HTTP requests (5s timeout).
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}

	// 2. Stop background workers and let the sync queue drain.
	workerCancel()
	time.Sleep(2 * time.Second)

	log.Info().Msg("Shutdown complete")
}

// init sets zerolog global defaults before main runs.
func init() {
	zerolog.TimeFieldFormat = time.RFC3339
}
