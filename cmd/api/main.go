package main

import (
	"context"

	"github.com/dikabo/taxi-money-driver/internal/api"
	apivalidator "github.com/dikabo/taxi-money-driver/internal/api/validator"
	v1 "github.com/dikabo/taxi-money-driver/internal/api/v1"
	"github.com/dikabo/taxi-money-driver/internal/config"
	apierrors "github.com/dikabo/taxi-money-driver/internal/errors"
	"github.com/dikabo/taxi-money-driver/internal/metrics"
	"github.com/dikabo/taxi-money-driver/internal/repository"
	"github.com/dikabo/taxi-money-driver/internal/service"
	"github.com/dikabo/taxi-money-driver/pkg/httpclient"
	"github.com/dikabo/taxi-money-driver/pkg/momo"
	"github.com/dikabo/taxi-money-driver/pkg/mysql"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func main() {
	fx.New(
		fx.Provide(
			config.Load,
			zap.NewProduction,
			metrics.NewMetrics,

			NewConnectionDB,
			NewFiberApp,
			NewXValidator,
			NewGateway,

			repository.NewAccountRepository,
			repository.NewTransactionRepository,
			repository.NewTransactionManager,

			service.NewWithdrawalService,
			service.NewReconcileService,

			v1.NewHandler,
		),
		fx.Invoke(startServer),
	).Run()
}

func startServer(app *fiber.App, handler *v1.Handler, cfg *config.Config, m *metrics.Metrics,
	logger *zap.Logger, lc fx.Lifecycle) {
	app.Use(metrics.HTTPMetricsMiddleware(m, logger))
	api.SetupRoutes(app, handler, cfg, logger)

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go app.Listen(cfg.API.Port)
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return app.ShutdownWithContext(ctx)
		},
	})
}

func NewFiberApp() *fiber.App {
	return fiber.New(fiber.Config{
		ErrorHandler: apierrors.ErrorHandler(),
	})
}

func NewConnectionDB(cfg *config.Config, logger *zap.Logger) (*gorm.DB, error) {
	ctx := context.Background()
	return mysql.NewConnection(ctx, cfg.Database, logger)
}

func NewXValidator(m *metrics.Metrics) apivalidator.IXValidator {
	return apivalidator.NewXValidator(validator.New(), m)
}

func NewGateway(cfg *config.Config) momo.Gateway {
	client := httpclient.NewHTTPClient(cfg.Gateway.Timeout)
	return momo.NewGateway(cfg.Gateway, client)
}
