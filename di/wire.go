//go:build wireinject
// +build wireinject

package di

import (
	"tablebook/config"
	"tablebook/infras/broker"
	"tablebook/infras/facebook"
	"tablebook/infras/jwt"
	"tablebook/infras/otel"
	"tablebook/infras/postgres"
	"tablebook/infras/redis"
	"tablebook/permissions"
	"tablebook/shared/cache"
	"tablebook/transport/http"
	"tablebook/transport/http/middleware"
	"tablebook/transport/http/router"

	authService "tablebook/internal/domains/auth/service"
	bookingRepository "tablebook/internal/domains/booking/repository"
	bookingService "tablebook/internal/domains/booking/service"
	userRepository "tablebook/internal/domains/user/repository"
	authHandler "tablebook/internal/handlers/auth"
	availabilityHandler "tablebook/internal/handlers/availability"
	bookingHandler "tablebook/internal/handlers/booking"

	"github.com/google/wire"
)

var configurations = wire.NewSet(
	config.Get,
	permissions.Get,
)

var infrastructures = wire.NewSet(
	postgres.New,
	otel.New,
	redis.New,
	jwt.New,
	facebook.New,
	broker.New,
)

var middlewares = wire.NewSet(
	middleware.NewAppMiddleware,
	middleware.NewAuthRoleMiddleware,
	wire.Bind(new(middleware.TokenRevocation), new(authService.Auth)),
)

var sharedHelpers = wire.NewSet(
	cache.NewRedisCache,
)

var bookingDomain = wire.NewSet(
	bookingRepository.New,
	bookingService.New,
)

var authDomain = wire.NewSet(
	userRepository.New,
	authService.New,
)

var domains = wire.NewSet(
	bookingDomain,
	authDomain,
)

var routing = wire.NewSet(
	wire.Struct(new(router.DomainHandlers), "*"),
	authHandler.New,
	availabilityHandler.New,
	bookingHandler.New,
	router.New,
)

func InitializeService() *http.HTTP {
	wire.Build(
		configurations,
		infrastructures,
		middlewares,
		sharedHelpers,
		domains,
		routing,
		http.NewCleanups,
		http.New,
	)

	return &http.HTTP{}
}
