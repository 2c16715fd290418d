package publishers

import (
	"context"
	"encoding/json"

	"github.com/dikabo/taxi-money-driver/internal/service"
	"github.com/dikabo/taxi-money-driver/pkg/mq"
	"go.uber.org/zap"
)

const SweepQueue = "wallet.sweep"

// SweepPublisher queues withdrawals stuck PENDING past the configured age
// for a gateway status query.
type SweepPublisher interface {
	Publish(ctx context.Context) error
}

type sweepPublisher struct {
	service   service.SweepService
	publisher mq.Publisher
	batchSize int
	logger    *zap.Logger
}

func NewSweepPublisher(service service.SweepService, publisher mq.Publisher, batchSize int,
	logger *zap.Logger) SweepPublisher {
	if batchSize <= 0 {
		batchSize = 100
	}
	return &sweepPublisher{service: service, publisher: publisher, batchSize: batchSize, logger: logger}
}

func (p *sweepPublisher) Publish(ctx context.Context) error {
	commands, err := p.service.FindSweepable(ctx, p.batchSize)
	if err != nil {
		return err
	}

	if len(commands) == 0 {
		return nil
	}

	p.logger.Info("Publishing stale withdrawals for reconciliation", zap.Int("count", len(commands)))

	successCount := 0
	for _, cmd := range commands {
		body, _ := json.Marshal(cmd)
		if err := p.publisher.Publish(ctx, "", SweepQueue, body); err != nil {
			p.logger.Error("Failed to publish sweep job",
				zap.Error(err),
				zap.String("reference", cmd.Reference))
			continue
		}

		successCount++
	}

	if successCount > 0 {
		p.logger.Info("Successfully published sweep jobs",
			zap.Int("published", successCount),
			zap.Int("total", len(commands)))
	}

	return nil
}
