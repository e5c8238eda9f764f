// Command braiinspool-bot runs the Braiins Pool Matrix bot: it opens the
// local store, starts the admin HTTP surface, establishes (or resumes) the
// Matrix session, and then relays pool commands until terminated.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/yukibtc/braiinspool-matrix-bot/internal/bot"
	"github.com/yukibtc/braiinspool-matrix-bot/internal/config"
	httpapi "github.com/yukibtc/braiinspool-matrix-bot/internal/http"
	"github.com/yukibtc/braiinspool-matrix-bot/internal/repo"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}

	setupLogging(cfg)

	db, err := repo.OpenSQLite(cfg.DBPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.DBPath).Msg("failed to open database")
	}
	if err := repo.AutoMigrate(db); err != nil {
		log.Fatal().Err(err).Msg("failed to migrate database")
	}

	admin := httpapi.NewServer(cfg, db)
	go func() {
		log.Info().Str("addr", cfg.AdminAddr).Msg("admin server listening")
		if err := admin.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("admin server failed")
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	b, err := bot.New(cfg, db)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to build bot")
	}
	if err := b.Run(ctx); err != nil {
		log.Fatal().Err(err).Msg("bot terminated")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := admin.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("admin server shutdown failed")
	}

	log.Info().Msg("bye")
}

// setupLogging configures the global zerolog logger from config.
func setupLogging(cfg config.Config) {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	zerolog.TimeFieldFormat = time.RFC3339

	if cfg.LogPretty {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}
}
