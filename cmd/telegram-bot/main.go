package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"meal-prep-planner/internal/app"
	"meal-prep-planner/internal/config"
	"meal-prep-planner/internal/database"
	"meal-prep-planner/internal/ghost"
	"meal-prep-planner/internal/logging"
	"meal-prep-planner/internal/storage"
	"meal-prep-planner/internal/telegram"
)

func main() {
	// 1. Load Configuration
	if err := config.LoadDotEnv(); err != nil {
		logging.Fatal().Err(err).Msg("failed to load .env")
	}
	cfg, err := config.NewFromEnv()
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to load config")
	}
	logging.Init(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})

	// 2. Storage
	db, err := database.NewDB(cfg.DatabasePath)
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to initialize database")
	}
	defer db.Close()

	// 3. Optional Ghost integration
	var ghostClient ghost.Client
	if err := cfg.RequireGhost(); err == nil {
		ghostClient = ghost.NewClient(cfg)
	} else {
		logging.Info().Str("reason", err.Error()).Msg("ghost integration disabled")
	}

	application := app.NewApp(cfg, db, storage.NewCatalogStore(cfg.CatalogPath), ghostClient)

	// 4. Initialize Telegram Bot
	bot, err := telegram.NewBot(cfg, application)
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to initialize telegram bot")
	}

	// 5. Start Server with Graceful Shutdown
	mux := http.NewServeMux()
	bot.RegisterHandlers(mux)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logging.Info().Str("port", cfg.Port).Msg("telegram bot server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Fatal().Err(err).Msg("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logging.Info().Msg("shutting down server")

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctxShutdown); err != nil {
		logging.Error().Err(err).Msg("server forced to shutdown")
	}
	bot.Wait()

	logging.Info().Msg("server exiting")
}
