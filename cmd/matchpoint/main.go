package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/matchpoint-app/matchpoint/internal/api"
	"github.com/matchpoint-app/matchpoint/internal/assistant/gemini"
	"github.com/matchpoint-app/matchpoint/internal/config"
	"github.com/matchpoint-app/matchpoint/internal/factory"
	"github.com/matchpoint-app/matchpoint/internal/logger"
)

func main() {
	log := logger.New("matchpoint")

	cfg, err := config.New()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	log.Info().
		Str("db_driver", cfg.DBDriver).
		Int("http_port", cfg.HTTPPort).
		Msg("matchpoint service starting")

	// -------- Storage layer -----------------
	store, err := factory.NewStorage(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Storage adapter unavailable")
	}
	defer func() { _ = store.Close() }()

	// -------- Completion service ------------
	completer := gemini.New(cfg.GeminiBaseURL, cfg.GeminiModel, cfg.GeminiAPIKey)
	if cfg.GeminiAPIKey == "" {
		log.Warn().Msg("MATCHPOINT_GEMINI_API_KEY is not set; assistant calls will fail until configured")
	}

	// -------- Router & Server --------------
	router := api.NewRouter(store, completer)
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Int("port", cfg.HTTPPort).Msg("HTTP server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server")
	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctxShutdown); err != nil {
		log.Error().Err(err).Msg("Server shutdown failed")
	}
	log.Info().Msg("Server stopped")
}
