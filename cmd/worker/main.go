// Command worker consumes booking events from the configured broker.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"tablebook/config"
	"tablebook/infras/broker"
	"tablebook/infras/otel"
	"tablebook/internal/handlers/event"
	"tablebook/shared/logger"

	"github.com/rs/zerolog/log"
)

func main() {
	cfg := config.Get()

	logger.InitLogger()
	logger.Configure(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	tracer := otel.New(cfg)
	events := broker.New(cfg)
	handler := event.New(tracer)

	log.Info().Str("driver", cfg.Broker.Driver).Str("topic", cfg.Broker.Topic).Msg("Starting booking event worker.")

	if err := events.Subscribe(ctx, handler.Handle); err != nil {
		log.Error().Err(err).Msg("Booking event worker stopped")
	}

	if err := events.Close(); err != nil {
		log.Error().Err(err).Msg("Failed to close broker")
	}

	if err := tracer.Shutdown(context.Background()); err != nil {
		log.Error().Err(err).Msg("Failed to shut down tracer")
	}

	log.Info().Msg("Booking event worker exited.")
}
