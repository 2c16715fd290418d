package main

import (
	"context"
	"time"

	"github.com/dikabo/taxi-money-driver/internal/config"
	"github.com/dikabo/taxi-money-driver/internal/metrics"
	"github.com/dikabo/taxi-money-driver/internal/publishers"
	"github.com/dikabo/taxi-money-driver/internal/repository"
	"github.com/dikabo/taxi-money-driver/internal/service"
	"github.com/dikabo/taxi-money-driver/pkg/httpclient"
	"github.com/dikabo/taxi-money-driver/pkg/momo"
	"github.com/dikabo/taxi-money-driver/pkg/mq"
	"github.com/dikabo/taxi-money-driver/pkg/mysql"
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
			NewMQConnection,
			NewMQPublisher,
			NewGateway,

			repository.NewAccountRepository,
			repository.NewTransactionRepository,
			repository.NewTransactionManager,

			service.NewReconcileService,
			service.NewSweepService,

			NewSweepPublisher,
		),
		fx.Invoke(runSweepPublisher),
	).Run()
}

func runSweepPublisher(cfg *config.Config, publisher publishers.SweepPublisher, logger *zap.Logger,
	rabbit *mq.RabbitMQ, lc fx.Lifecycle) {
	appCtx, cancel := context.WithCancel(context.Background())
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := rabbit.DeclareTopology([]string{publishers.SweepQueue}); err != nil {
				logger.Error("declare topology failed", zap.Error(err))
				return err
			}

			logger.Info("queue declared", zap.String("queue", publishers.SweepQueue))

			go func() {
				ticker := time.NewTicker(cfg.Sweep.Interval)
				defer ticker.Stop()

				for {
					select {
					case <-ticker.C:
						if err := publisher.Publish(appCtx); err != nil {
							logger.Error("failed to publish stale withdrawals", zap.Error(err))
						}
					case <-appCtx.Done():
						logger.Info("publisher context cancelled")
						return
					}
				}
			}()

			logger.Info("sweep publisher started")
			return nil
		},
		OnStop: func(ctx context.Context) error {
			logger.Info("stopping sweep publisher")
			cancel()
			return rabbit.Close()
		},
	})
}

func NewConnectionDB(cfg *config.Config, logger *zap.Logger) (*gorm.DB, error) {
	ctx := context.Background()
	return mysql.NewConnection(ctx, cfg.Database, logger)
}

func NewMQConnection(cfg *config.Config, logger *zap.Logger) (*mq.RabbitMQ, error) {
	return mq.NewConnection(cfg.RabbitMQ, logger)
}

func NewMQPublisher(rabbitMQ *mq.RabbitMQ) (mq.Publisher, error) {
	return rabbitMQ.CreatePublisher()
}

func NewGateway(cfg *config.Config) momo.Gateway {
	client := httpclient.NewHTTPClient(cfg.Gateway.Timeout)
	return momo.NewGateway(cfg.Gateway, client)
}

func NewSweepPublisher(svc service.SweepService, publisher mq.Publisher, cfg *config.Config,
	logger *zap.Logger) publishers.SweepPublisher {
	return publishers.NewSweepPublisher(svc, publisher, cfg.Sweep.BatchSize, logger)
}
