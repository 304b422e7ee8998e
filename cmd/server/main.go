package main // Entry point package

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"

	"github.com/iliyamo/theater-service/internal/config" // Internal config loader
	"github.com/iliyamo/theater-service/internal/logger"
	"github.com/iliyamo/theater-service/internal/server"
)

func main() {
	cfg, err := config.Load() // Load environment config
	if err != nil {
		boot := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
		boot.Fatal().Err(err).Msg("could not load config")
	}
	log := logger.New(cfg.App.Env, cfg.App.LogLevel)

	srv, err := server.New(cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("could not initialize server")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := srv.Start(); err != nil { // Start HTTP server
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.App.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("shutdown incomplete")
		os.Exit(1)
	}
}
