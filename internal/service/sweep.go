package service

import (
	"context"
	"errors"
	"time"

	"github.com/dikabo/taxi-money-driver/internal/config"
	"github.com/dikabo/taxi-money-driver/internal/metrics"
	"github.com/dikabo/taxi-money-driver/internal/repository"
	"github.com/dikabo/taxi-money-driver/pkg/momo"
	"github.com/dikabo/taxi-money-driver/pkg/mq"
	"go.uber.org/zap"
)

// SweepService is the polling fallback for withdrawals whose webhook never
// arrived: it asks the provider's status endpoint and feeds the answer
// through the same reconciliation rules as a webhook delivery.
type SweepService interface {
	Process(ctx context.Context, cmd SweepTransactionCommand) error
	FindSweepable(ctx context.Context, limit int) ([]SweepTransactionCommand, error)
}

type Sweep struct {
	transactionRepo repository.TransactionRepository
	reconcile       ReconcileService
	gateway         momo.Gateway
	pendingAge      time.Duration
	maxRetries      int
	logger          *zap.Logger
	metrics         *metrics.Metrics
}

func NewSweepService(transactionRepo repository.TransactionRepository, reconcile ReconcileService,
	gateway momo.Gateway, cfg *config.Config, logger *zap.Logger, metrics *metrics.Metrics) SweepService {
	maxRetries := cfg.Gateway.MaxRetries
	if maxRetries <= 0 {
		maxRetries = 1
	}

	return &Sweep{
		transactionRepo: transactionRepo,
		reconcile:       reconcile,
		gateway:         gateway,
		pendingAge:      cfg.Sweep.PendingAge,
		maxRetries:      maxRetries,
		logger:          logger,
		metrics:         metrics,
	}
}

func (s *Sweep) FindSweepable(ctx context.Context, limit int) ([]SweepTransactionCommand, error) {
	cutoff := time.Now().Add(-s.pendingAge)

	stale, err := s.transactionRepo.FindStalePending(ctx, cutoff, limit)
	if err != nil {
		return nil, NewServiceError(ErrCodeDatabase, err)
	}

	commands := make([]SweepTransactionCommand, 0, len(stale))
	for _, transaction := range stale {
		commands = append(commands, SweepTransactionCommand{
			Reference: transaction.Reference,
			AccountID: transaction.AccountID,
		})
	}

	return commands, nil
}

func (s *Sweep) Process(ctx context.Context, cmd SweepTransactionCommand) error {
	transaction, err := s.transactionRepo.GetByReference(ctx, cmd.Reference)
	if err != nil {
		if errors.Is(err, repository.ErrTransactionNotFound) {
			s.logger.Error("Sweep job references unknown transaction",
				zap.String("reference", cmd.Reference))
			s.metrics.RecordAnomaly("unknown_reference")
			return nil
		}

		return mq.Temporary(err)
	}

	if transaction.Status.Terminal() {
		// The webhook got there first.
		return nil
	}

	status, err := s.queryStatus(ctx, cmd.Reference)
	if err != nil {
		s.metrics.RecordSweepQuery("error")

		if momo.IsNotFound(err) {
			// The provider has no record of this reference: the order
			// never reached it, so the payout definitively did not happen.
			s.logger.Warn("Provider does not know withdrawal, failing it",
				zap.String("reference", cmd.Reference),
				zap.Error(err))
			return s.reconcile.Apply(ctx, momo.Notification{
				Reference: cmd.Reference,
				Status:    momo.NotificationFailure,
				RawStatus: "UNKNOWN_TO_PROVIDER",
			})
		}

		// Anything else says nothing about the order: a timeout, an
		// outage, or a query the provider refused to answer (expired
		// credentials, throttling). The payout may well have completed,
		// so the row stays PENDING and the job retries later.
		s.logger.Warn("Status query failed, will retry",
			zap.String("reference", cmd.Reference),
			zap.Error(err))
		return mq.Temporary(err)
	}

	notification := momo.Notification{
		Reference:     cmd.Reference,
		Status:        momo.NormalizeStatus(status.Status),
		RawStatus:     status.Status,
		TransactionID: status.TransactionID,
	}

	if notification.Status == momo.NotificationUnknown {
		// Still in flight at the provider. Leave it PENDING; the
		// publisher will queue it again after the next interval.
		s.logger.Info("Withdrawal still processing at provider",
			zap.String("reference", cmd.Reference),
			zap.String("rawStatus", status.Status))
		s.metrics.RecordSweepQuery("still_pending")
		return nil
	}

	s.metrics.RecordSweepQuery("resolved")

	if err := s.reconcile.Apply(ctx, notification); err != nil {
		return mq.Temporary(err)
	}

	return nil
}

// queryStatus retries the read-only status call inline before the job falls
// back to queue redelivery. A rejection is definitive and never retried.
func (s *Sweep) queryStatus(ctx context.Context, reference string) (momo.StatusResponse, error) {
	var lastErr error
	for attempt := 1; attempt <= s.maxRetries; attempt++ {
		status, err := s.gateway.Status(ctx, reference)
		if err == nil {
			return status, nil
		}

		if errors.Is(err, momo.ErrRejected) {
			return momo.StatusResponse{}, err
		}

		lastErr = err
	}

	return momo.StatusResponse{}, lastErr
}
