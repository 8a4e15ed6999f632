package di

import (
	"go.uber.org/fx"

	"github.com/polkiloo/fueldelivery/internal/app"
	"github.com/polkiloo/fueldelivery/internal/config"
	"github.com/polkiloo/fueldelivery/internal/logger"
	"github.com/polkiloo/fueldelivery/internal/metrics"
	"github.com/polkiloo/fueldelivery/internal/pkg/auth"
	"github.com/polkiloo/fueldelivery/internal/server/http/handlers"
	"github.com/polkiloo/fueldelivery/internal/server/http/router"
	"github.com/polkiloo/fueldelivery/internal/storage/postgres"
	"github.com/polkiloo/fueldelivery/internal/usecase"
)

func Module(opts ...fx.Option) fx.Option {
	modules := []fx.Option{
		config.Module,
		logger.Module,
		metrics.Module,
		auth.Module,
		postgres.Module,
		usecase.Module,
		fx.Provide(
			func(s *postgres.Storage) app.HealthChecker { return s },
			func(f *app.DeliveryFacade) handlers.DeliveryFacade { return f },
		),
		router.Module,
		app.Module,
	}
	modules = append(modules, opts...)
	return fx.Options(modules...)
}
