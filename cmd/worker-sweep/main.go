package main

import (
	"context"

	"github.com/dikabo/taxi-money-driver/internal/config"
	"github.com/dikabo/taxi-money-driver/internal/consumers"
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
			NewMQConsumer,
			NewGateway,

			repository.NewAccountRepository,
			repository.NewTransactionRepository,
			repository.NewTransactionManager,

			service.NewReconcileService,
			service.NewSweepService,

			consumers.NewSweepConsumer,
		),
		fx.Invoke(runSweepConsumer),
	).Run()
}

func runSweepConsumer(cfg *config.Config, sweepConsumer consumers.SweepConsumer, logger *zap.Logger,
	rabbit *mq.RabbitMQ, lc fx.Lifecycle,
) {
	appCtx, cancel := context.WithCancel(context.Background())
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := rabbit.DeclareTopology([]string{publishers.SweepQueue}); err != nil {
				logger.Error("declare topology failed", zap.Error(err))
				return err
			}
			logger.Info("queue declared", zap.String("queue", publishers.SweepQueue))

			go func() {
				if err := sweepConsumer.Consume(appCtx); err != nil {
					logger.Error("consumer exited", zap.Error(err))
				}
			}()

			logger.Info("sweep consumer started")
			return nil
		},
		OnStop: func(ctx context.Context) error {
			logger.Info("stopping sweep consumer")
			cancel()
			return rabbit.Close()
		},
	})
}

func NewConnectionDB(cfg *config.Config, logger *zap.Logger) (*gorm.DB, error) {
	ctx := context.Background()
	return mysql.NewConnection(ctx, cfg.Database, logger)
}

func NewGateway(cfg *config.Config) momo.Gateway {
	client := httpclient.NewHTTPClient(cfg.Gateway.Timeout)
	return momo.NewGateway(cfg.Gateway, client)
}

func NewMQConnection(cfg *config.Config, logger *zap.Logger) (*mq.RabbitMQ, error) {
	return mq.NewConnection(cfg.RabbitMQ, logger)
}

func NewMQConsumer(rabbitMQ *mq.RabbitMQ) (mq.Consumer, error) {
	return rabbitMQ.CreateConsumer()
}
