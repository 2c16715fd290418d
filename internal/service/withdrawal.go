package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dikabo/taxi-money-driver/internal/config"
	"github.com/dikabo/taxi-money-driver/internal/constants"
	"github.com/dikabo/taxi-money-driver/internal/metrics"
	"github.com/dikabo/taxi-money-driver/internal/model"
	"github.com/dikabo/taxi-money-driver/internal/repository"
	"github.com/dikabo/taxi-money-driver/pkg/momo"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type WithdrawalService interface {
	Initiate(ctx context.Context, cmd InitiateWithdrawalCommand) (InitiateWithdrawalResult, error)
}

type Withdrawal struct {
	accountRepo     repository.AccountRepository
	transactionRepo repository.TransactionRepository
	gateway         momo.Gateway
	policy          config.Withdrawal
	payeeName       string
	logger          *zap.Logger
	metrics         *metrics.Metrics
}

func NewWithdrawalService(accountRepo repository.AccountRepository, transactionRepo repository.TransactionRepository,
	gateway momo.Gateway, cfg *config.Config, logger *zap.Logger, metrics *metrics.Metrics) WithdrawalService {
	return &Withdrawal{
		accountRepo:     accountRepo,
		transactionRepo: transactionRepo,
		gateway:         gateway,
		policy:          cfg.Withdrawal,
		payeeName:       cfg.Gateway.PayeeName,
		logger:          logger,
		metrics:         metrics,
	}
}

// Initiate runs the synchronous half of a withdrawal: policy checks, the
// PENDING ledger entry, and the payout order to the provider. The balance is
// never debited here. The PENDING row must exist before the gateway is
// called so that a crash mid-call leaves durable evidence of the
// outstanding obligation for the sweep to pick up.
func (s *Withdrawal) Initiate(ctx context.Context, cmd InitiateWithdrawalCommand) (InitiateWithdrawalResult, error) {
	if err := s.validate(cmd); err != nil {
		return InitiateWithdrawalResult{}, err
	}

	account, err := s.accountRepo.FindByID(ctx, cmd.AccountID)
	if err != nil {
		if errors.Is(err, repository.ErrAccountNotFound) {
			return InitiateWithdrawalResult{}, NewServiceError(constants.ErrCodeAccountNotFound, err)
		}

		return InitiateWithdrawalResult{}, NewServiceError(constants.ErrCodeOperationFailed, err)
	}

	// Advisory check only. The authoritative guard is the conditional
	// debit applied at settlement time.
	if account.AvailableBalance < cmd.Amount {
		s.metrics.RecordWithdrawalInitiated(cmd.Method, "insufficient_funds")
		return InitiateWithdrawalResult{}, NewServiceError(constants.ErrCodeInsufficientBalance,
			BalanceError{CurrentBalance: account.AvailableBalance, Required: cmd.Amount})
	}

	reference := uuid.NewString()

	transaction := model.Transaction{
		ID:          uuid.NewString(),
		AccountID:   account.ID,
		OwnerKind:   account.OwnerKind,
		Kind:        model.TransactionKindWithdrawal,
		Status:      model.TransactionStatusPending,
		Amount:      cmd.Amount,
		Reference:   reference,
		Method:      cmd.Method,
		PhoneNumber: cmd.PhoneNumber,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}

	if err := s.transactionRepo.Create(ctx, &transaction); err != nil {
		s.logger.Error("Failed to create withdrawal transaction",
			zap.String("accountID", cmd.AccountID),
			zap.Error(err))
		return InitiateWithdrawalResult{}, NewServiceError(constants.ErrCodeOperationFailed, err)
	}

	request := momo.DisburseRequest{
		Amount:      cmd.Amount,
		PhoneNumber: cmd.PhoneNumber,
		Method:      cmd.Method,
		Reference:   reference,
		PayeeName:   s.payeeName,
		Description: "wallet withdrawal",
	}

	response, err := s.gateway.Disburse(ctx, request)
	if err == nil {
		if err := s.transactionRepo.SetProviderTxID(ctx, reference, response.TransactionID); err != nil {
			if errors.Is(err, repository.ErrNoRowsAffected) {
				// The webhook already finalized the row and recorded the
				// provider id itself; nothing left to write.
				s.logger.Info("Transaction finalized before provider id was recorded",
					zap.String("reference", reference))
			} else {
				// The provider accepted the order; the id will be recorded
				// again at settlement, so log and keep going.
				s.logger.Error("Failed to record provider transaction id",
					zap.String("reference", reference),
					zap.Error(err))
			}
		}

		s.logger.Info("Withdrawal accepted by provider",
			zap.String("accountID", account.ID),
			zap.String("reference", reference),
			zap.String("providerTxID", response.TransactionID),
			zap.Int64("amount", cmd.Amount))
		s.metrics.RecordWithdrawalInitiated(cmd.Method, "pending")

		return InitiateWithdrawalResult{
			TransactionID:  transaction.ID,
			Reference:      reference,
			ProviderTxID:   response.TransactionID,
			Status:         model.TransactionStatusPending,
			CurrentBalance: account.AvailableBalance,
		}, nil
	}

	if errors.Is(err, momo.ErrRejected) {
		// Synchronous rejection: no money ever moved, nothing to undo.
		if failErr := s.transactionRepo.Fail(ctx, reference, err.Error()); failErr != nil &&
			!errors.Is(failErr, repository.ErrNoRowsAffected) {
			s.logger.Error("Failed to mark rejected withdrawal as FAILED",
				zap.String("reference", reference),
				zap.Error(failErr))
		}

		s.logger.Warn("Withdrawal rejected by provider",
			zap.String("accountID", account.ID),
			zap.String("reference", reference),
			zap.Error(err))
		s.metrics.RecordWithdrawalInitiated(cmd.Method, "rejected")
		s.metrics.RecordFinalized(string(model.TransactionStatusFailed))

		return InitiateWithdrawalResult{}, NewServiceError(constants.ErrCodeGatewayRejected, err)
	}

	// Ambiguous outcome: the provider may have received the order. The
	// transaction stays PENDING and the sweep resolves it; guessing either
	// way here risks a double payout or a silent loss.
	s.logger.Error("Gateway call did not complete, leaving withdrawal pending",
		zap.String("accountID", account.ID),
		zap.String("reference", reference),
		zap.Error(err))
	s.metrics.RecordWithdrawalInitiated(cmd.Method, "ambiguous")

	return InitiateWithdrawalResult{}, NewServiceError(constants.ErrCodeGatewayUnavailable, err)
}

func (s *Withdrawal) validate(cmd InitiateWithdrawalCommand) error {
	if cmd.Amount < s.policy.MinAmount {
		return NewServiceError(constants.ErrCodeValidationFailed,
			fmt.Errorf("amount %d is below the minimum payout of %d", cmd.Amount, s.policy.MinAmount))
	}

	if cmd.Amount > s.policy.MaxAmount {
		return NewServiceError(constants.ErrCodeValidationFailed,
			fmt.Errorf("amount %d is above the maximum payout of %d", cmd.Amount, s.policy.MaxAmount))
	}

	if !model.SupportedMethod(cmd.Method) {
		return NewServiceError(constants.ErrCodeValidationFailed,
			errors.New("unsupported payout method"))
	}

	return nil
}
