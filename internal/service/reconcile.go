package service

import (
	"context"
	"errors"

	"github.com/dikabo/taxi-money-driver/internal/metrics"
	"github.com/dikabo/taxi-money-driver/internal/model"
	"github.com/dikabo/taxi-money-driver/internal/repository"
	"github.com/dikabo/taxi-money-driver/pkg/momo"
	"go.uber.org/zap"
)

// ReconcileService finalizes withdrawals from provider delivery
// notifications. Deliveries arrive at-least-once, unordered, and possibly
// replayed; every path through Apply must be safe to repeat.
type ReconcileService interface {
	Apply(ctx context.Context, notification momo.Notification) error
}

type Reconcile struct {
	accountRepo     repository.AccountRepository
	transactionRepo repository.TransactionRepository
	txManager       repository.TxManager
	logger          *zap.Logger
	metrics         *metrics.Metrics
}

func NewReconcileService(accountRepo repository.AccountRepository, transactionRepo repository.TransactionRepository,
	txManager repository.TxManager, logger *zap.Logger, metrics *metrics.Metrics) ReconcileService {
	return &Reconcile{
		accountRepo:     accountRepo,
		transactionRepo: transactionRepo,
		txManager:       txManager,
		logger:          logger,
		metrics:         metrics,
	}
}

// Apply matches a normalized notification to its transaction and drives the
// terminal transition. A nil return means the notification was consumed and
// the sender must not retry; only genuine database failures come back as
// errors.
func (s *Reconcile) Apply(ctx context.Context, notification momo.Notification) error {
	transaction, err := s.transactionRepo.GetByReference(ctx, notification.Reference)
	if err != nil {
		if errors.Is(err, repository.ErrTransactionNotFound) {
			// Operational anomaly, not a sender error: acknowledge so the
			// provider stops retrying, and flag for the operator.
			s.logger.Error("Notification references unknown transaction",
				zap.String("reference", notification.Reference),
				zap.String("rawStatus", notification.RawStatus))
			s.metrics.RecordAnomaly("unknown_reference")
			return nil
		}

		return NewServiceError(ErrCodeDatabase, err)
	}

	// Idempotency gate: a terminal transaction absorbs any further
	// delivery without reapplying effects.
	if transaction.Status.Terminal() {
		s.logger.Info("Duplicate notification for finalized transaction",
			zap.String("reference", notification.Reference),
			zap.String("status", string(transaction.Status)))
		s.metrics.RecordWebhook("duplicate")
		return nil
	}

	switch notification.Status {
	case momo.NotificationSuccess:
		return s.settle(ctx, transaction, notification)

	case momo.NotificationFailure:
		return s.fail(ctx, transaction, notification)

	default:
		// Not a recognized terminal token. Leave the transaction PENDING
		// rather than guess; the sweep will ask the provider again.
		s.logger.Warn("Unrecognized notification status",
			zap.String("reference", notification.Reference),
			zap.String("rawStatus", notification.RawStatus))
		s.metrics.RecordWebhook("unrecognized_status")
		return nil
	}
}

// settle applies the debit and the PENDING -> SUCCESS flip as one unit:
// either both land or neither does. The debit without the flip would let a
// retry debit again; the flip without the debit would silently lose the
// funds-in-flight accounting.
func (s *Reconcile) settle(ctx context.Context, transaction *model.Transaction, notification momo.Notification) error {
	var providerTxID *string
	if notification.TransactionID != "" {
		providerTxID = &notification.TransactionID
	}

	err := s.txManager.WithTx(ctx, func(ctx context.Context) error {
		if err := s.accountRepo.DebitIfSufficient(ctx, transaction.AccountID, transaction.Amount); err != nil {
			if errors.Is(err, repository.ErrNoRowsAffected) {
				return ErrInsufficientSettlement
			}
			return err
		}

		if err := s.transactionRepo.Settle(ctx, transaction.Reference, providerTxID); err != nil {
			if errors.Is(err, repository.ErrNoRowsAffected) {
				// A concurrent delivery won the PENDING -> SUCCESS race.
				// Rolling back undoes our debit; the winner's stands.
				return ErrAlreadySettled
			}
			return err
		}

		return nil
	})

	if err == nil {
		s.logger.Info("Withdrawal settled",
			zap.String("reference", transaction.Reference),
			zap.String("accountID", transaction.AccountID),
			zap.Int64("amount", transaction.Amount))
		s.metrics.RecordWebhook("settled")
		s.metrics.RecordFinalized(string(model.TransactionStatusSuccess))
		return nil
	}

	if errors.Is(err, ErrAlreadySettled) {
		s.logger.Info("Concurrent delivery already settled transaction",
			zap.String("reference", transaction.Reference))
		s.metrics.RecordWebhook("duplicate")
		return nil
	}

	if errors.Is(err, ErrInsufficientSettlement) {
		// The provider confirmed a payout the wallet can no longer cover.
		// Both writes rolled back: the transaction stays PENDING and the
		// balance is untouched. Needs operator follow-up.
		s.logger.Error("Balance guard blocked confirmed settlement",
			zap.String("reference", transaction.Reference),
			zap.String("accountID", transaction.AccountID),
			zap.Int64("amount", transaction.Amount))
		s.metrics.RecordAnomaly("settlement_balance_guard")
		return nil
	}

	s.logger.Error("Settlement transaction failed",
		zap.String("reference", transaction.Reference),
		zap.Error(err))
	return NewServiceError(ErrCodeDatabase, err)
}

func (s *Reconcile) fail(ctx context.Context, transaction *model.Transaction, notification momo.Notification) error {
	// Failure can only be reached before any debit ever happened, so no
	// compensating refund exists anywhere in this flow.
	err := s.transactionRepo.Fail(ctx, transaction.Reference, notification.RawStatus)
	if err == nil {
		s.logger.Info("Withdrawal failed at provider",
			zap.String("reference", transaction.Reference),
			zap.String("rawStatus", notification.RawStatus))
		s.metrics.RecordWebhook("failed")
		s.metrics.RecordFinalized(string(model.TransactionStatusFailed))
		return nil
	}

	if errors.Is(err, repository.ErrNoRowsAffected) {
		s.logger.Info("Concurrent delivery already finalized transaction",
			zap.String("reference", transaction.Reference))
		s.metrics.RecordWebhook("duplicate")
		return nil
	}

	s.logger.Error("Failed to mark transaction FAILED",
		zap.String("reference", transaction.Reference),
		zap.Error(err))
	return NewServiceError(ErrCodeDatabase, err)
}
