package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/quizdesk/testplayer/internal/config"
	"github.com/quizdesk/testplayer/internal/database"
	"github.com/quizdesk/testplayer/internal/gateway"
	"github.com/quizdesk/testplayer/internal/handler"
	"github.com/quizdesk/testplayer/internal/logger"
	"github.com/quizdesk/testplayer/internal/mirror"
	"github.com/quizdesk/testplayer/internal/router"
	"github.com/quizdesk/testplayer/internal/service"
	"github.com/quizdesk/testplayer/internal/validator"
	"github.com/quizdesk/testplayer/internal/worker"
)

func main() {
	cfg := config.Load()
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)

	validator.Setup()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store, err := buildMirror(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open mirror store")
	}
	defer store.Close()

	gw := gateway.NewClient(cfg.ScoringAPIURL, cfg.ScoringAPITimeout, cfg.FinalResultRetries, log)

	attempts := service.NewAttemptService(gw, store, log)
	tokens := service.NewTokenService(cfg)

	handlers := router.Handlers{
		Attempt: handler.NewAttemptHandler(attempts, tokens),
		WS:      handler.NewWSHandler(attempts, cfg.AllowedOrigins, log),
	}

	r := router.Setup(cfg, handlers, attempts, tokens)

	reaper := worker.NewReaper(attempts, cfg.ReapInterval, cfg.AttemptGrace, log)
	go reaper.Start(ctx)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.ServerPort),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.ServerPort).Msg("Test player listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Forced shutdown")
	}

	log.Info().Msg("Server exited")
}

// buildMirror opens the configured answer-mirror backend. Redis is the
// default; sqlite serves single-box deployments without one.
func buildMirror(ctx context.Context, cfg *config.Config, log zerolog.Logger) (mirror.Store, error) {
	switch cfg.MirrorBackend {
	case "redis":
		rdb, err := database.NewRedisClient(ctx, cfg, log)
		if err != nil {
			return nil, err
		}
		return mirror.NewRedisStore(rdb), nil
	case "sqlite":
		store, err := mirror.NewSQLiteStore(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		log.Info().Str("path", cfg.SQLitePath).Msg("SQLite mirror opened")
		return store, nil
	default:
		return nil, fmt.Errorf("unknown mirror backend %q", cfg.MirrorBackend)
	}
}
