package consumers

import (
	"context"
	"encoding/json"

	"github.com/dikabo/taxi-money-driver/internal/publishers"
	"github.com/dikabo/taxi-money-driver/internal/service"
	"github.com/dikabo/taxi-money-driver/pkg/mq"
	"go.uber.org/zap"
)

type SweepConsumer interface {
	Consume(ctx context.Context) error
}

type sweepConsumer struct {
	service  service.SweepService
	consumer mq.Consumer
	logger   *zap.Logger
}

func NewSweepConsumer(service service.SweepService, consumer mq.Consumer, logger *zap.Logger) SweepConsumer {
	return &sweepConsumer{
		service:  service,
		consumer: consumer,
		logger:   logger,
	}
}

func (s *sweepConsumer) Consume(ctx context.Context) error {
	return s.consumer.Consume(ctx, 1, publishers.SweepQueue, s.handleMessage)
}

func (s *sweepConsumer) handleMessage(ctx context.Context, body []byte) error {
	s.logger.Info("received sweep command", zap.ByteString("body", body))

	var cmd service.SweepTransactionCommand
	if err := json.Unmarshal(body, &cmd); err != nil {
		s.logger.Warn("invalid sweep command", zap.Error(err))
		return err
	}

	return s.service.Process(ctx, cmd)
}
