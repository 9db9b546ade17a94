package http

import (
	"context"

	"tablebook/infras/broker"
	"tablebook/infras/otel"
	"tablebook/infras/postgres"

	goRedis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// Cleanup releases one resource on shutdown.
type Cleanup struct {
	Name string
	Fn   func(ctx context.Context) error
}

type Cleanups []Cleanup

// NewCleanups orders the closes: broker, stores, then the tracer.
func NewCleanups(db *postgres.Connection, redis *goRedis.Client, b broker.Broker, o otel.Otel) Cleanups {
	return Cleanups{
		{Name: "broker", Fn: func(context.Context) error { return b.Close() }},
		{Name: "postgres", Fn: func(context.Context) error { return db.Close() }},
		{Name: "redis", Fn: func(context.Context) error { return redis.Close() }},
		{Name: "otel", Fn: o.Shutdown},
	}
}

// Run calls every cleanup in order. Failures are logged and do not stop the rest.
func (c Cleanups) Run(ctx context.Context) {
	for _, cleanup := range c {
		if err := cleanup.Fn(ctx); err != nil {
			log.Error().Err(err).Str("resource", cleanup.Name).Msg("failed to clean up")

			continue
		}

		log.Info().Str("resource", cleanup.Name).Msg("cleaned up")
	}
}
