package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/fx"

	"github.com/polkiloo/fueldelivery/internal/config"
	"github.com/polkiloo/fueldelivery/internal/usecase"
)

// Module wires the facade, the HTTP server and lifecycle hooks.
var Module = fx.Options(
	fx.Provide(
		NewDeliveryFacade,
		newHTTPServer,
	),
	fx.Invoke(registerLifecycle),
)

// AdminSeeder creates the first admin account.
type AdminSeeder interface {
	EnsureAdmin(ctx context.Context, phone, password string) (bool, error)
}

type serverParams struct {
	fx.In

	Config *config.Config
	Router *gin.Engine
}

func newHTTPServer(p serverParams) *http.Server {
	return &http.Server{
		Addr:    p.Config.RunAddress,
		Handler: p.Router,
	}
}

type lifecycleParams struct {
	fx.In

	Lifecycle  fx.Lifecycle
	Shutdowner fx.Shutdowner
	Logger     *slog.Logger
	Server     *http.Server
	Users      *usecase.UserUseCase
	Config     *config.Config
}

func registerLifecycle(p lifecycleParams) {
	registerHooks(p.Lifecycle, p.Shutdowner, p.Logger, p.Server, p.Users, p.Config)
}

func registerHooks(lc fx.Lifecycle, shutdowner fx.Shutdowner, logger *slog.Logger, server *http.Server, seeder AdminSeeder, cfg *config.Config) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := seedAdmin(ctx, seeder, cfg, logger); err != nil {
				return err
			}

			logger.Info("starting fueldelivery", slog.String("addr", server.Addr))
			go func() {
				if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					logger.Error("http server terminated", slog.String("error", err.Error()))
					_ = shutdowner.Shutdown()
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx := ctx
			cancel := func() {}
			if _, ok := ctx.Deadline(); !ok {
				shutdownCtx, cancel = context.WithTimeout(ctx, cfg.ShutdownTimeout)
			}
			defer cancel()

			if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			logger.Info("fueldelivery stopped")
			return nil
		},
	})
}

func seedAdmin(ctx context.Context, seeder AdminSeeder, cfg *config.Config, logger *slog.Logger) error {
	if cfg.BootstrapAdminPhone == "" {
		return nil
	}
	created, err := seeder.EnsureAdmin(ctx, cfg.BootstrapAdminPhone, cfg.BootstrapAdminPassword)
	if err != nil {
		return fmt.Errorf("seed bootstrap admin: %w", err)
	}
	if created {
		logger.Info("bootstrap admin created", slog.String("phone", cfg.BootstrapAdminPhone))
	}
	return nil
}
