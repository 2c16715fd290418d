package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/dikabo/taxi-money-driver/internal/config"
	"github.com/dikabo/taxi-money-driver/internal/constants"
	"github.com/dikabo/taxi-money-driver/internal/metrics"
	"github.com/dikabo/taxi-money-driver/internal/mocks"
	"github.com/dikabo/taxi-money-driver/internal/model"
	"github.com/dikabo/taxi-money-driver/internal/repository"
	"github.com/dikabo/taxi-money-driver/internal/service"
	"github.com/dikabo/taxi-money-driver/pkg/momo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
)

var testMetrics = metrics.NewMetrics()

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Withdrawal.MinAmount = 150
	cfg.Withdrawal.MaxAmount = 500000
	cfg.Gateway.PayeeName = "Taxi Money"
	return cfg
}

func TestWithdrawal_Initiate(t *testing.T) {
	logger := zap.NewNop()

	cmd := service.InitiateWithdrawalCommand{
		AccountID:   "driver-42",
		Amount:      5000,
		Method:      model.MethodMTNMoMo,
		PhoneNumber: "650000001",
	}

	account := model.Account{
		ID:               "driver-42",
		OwnerKind:        model.OwnerKindDriver,
		AvailableBalance: 12000,
	}

	t.Run("creates pending transaction and never debits", func(t *testing.T) {
		mockAccountRepo := &mocks.AccountRepository{}
		mockTransactionRepo := &mocks.TransactionRepository{}
		mockGateway := &mocks.Gateway{}

		svc := service.NewWithdrawalService(mockAccountRepo, mockTransactionRepo, mockGateway,
			testConfig(), logger, testMetrics)

		mockAccountRepo.On("FindByID", context.Background(), "driver-42").Return(account, nil)

		mockTransactionRepo.On("Create", context.Background(),
			mock.MatchedBy(func(tx *model.Transaction) bool {
				return tx.AccountID == "driver-42" &&
					tx.Kind == model.TransactionKindWithdrawal &&
					tx.Status == model.TransactionStatusPending &&
					tx.Amount == cmd.Amount &&
					tx.Reference != ""
			})).Return(nil)

		mockGateway.On("Disburse", context.Background(),
			mock.MatchedBy(func(req momo.DisburseRequest) bool {
				return req.Amount == cmd.Amount &&
					req.PhoneNumber == cmd.PhoneNumber &&
					req.Method == cmd.Method &&
					req.Reference != ""
			})).Return(momo.DisburseResponse{TransactionID: "prov-1", Status: "PENDING"}, nil)

		mockTransactionRepo.On("SetProviderTxID", context.Background(),
			mock.AnythingOfType("string"), "prov-1").Return(nil)

		result, err := svc.Initiate(context.Background(), cmd)

		assert.NoError(t, err)
		assert.Equal(t, model.TransactionStatusPending, result.Status)
		assert.Equal(t, "prov-1", result.ProviderTxID)
		assert.Equal(t, account.AvailableBalance, result.CurrentBalance)
		assert.NotEmpty(t, result.Reference)

		mockAccountRepo.AssertExpectations(t)
		mockAccountRepo.AssertNotCalled(t, "DebitIfSufficient", mock.Anything, mock.Anything, mock.Anything)
		mockTransactionRepo.AssertExpectations(t)
		mockGateway.AssertExpectations(t)
	})

	t.Run("succeeds when webhook finalizes row before provider id is recorded", func(t *testing.T) {
		mockAccountRepo := &mocks.AccountRepository{}
		mockTransactionRepo := &mocks.TransactionRepository{}
		mockGateway := &mocks.Gateway{}

		svc := service.NewWithdrawalService(mockAccountRepo, mockTransactionRepo, mockGateway,
			testConfig(), logger, testMetrics)

		mockAccountRepo.On("FindByID", context.Background(), "driver-42").Return(account, nil)
		mockTransactionRepo.On("Create", context.Background(),
			mock.AnythingOfType("*model.Transaction")).Return(nil)

		mockGateway.On("Disburse", context.Background(),
			mock.AnythingOfType("momo.DisburseRequest")).
			Return(momo.DisburseResponse{TransactionID: "prov-1", Status: "PENDING"}, nil)

		// The webhook settled the row first; the guarded update touches
		// zero rows and the id the webhook recorded stands.
		mockTransactionRepo.On("SetProviderTxID", context.Background(),
			mock.AnythingOfType("string"), "prov-1").Return(repository.ErrNoRowsAffected)

		result, err := svc.Initiate(context.Background(), cmd)

		assert.NoError(t, err)
		assert.Equal(t, model.TransactionStatusPending, result.Status)
		mockTransactionRepo.AssertExpectations(t)
	})

	t.Run("rejects amount below minimum", func(t *testing.T) {
		mockAccountRepo := &mocks.AccountRepository{}
		mockTransactionRepo := &mocks.TransactionRepository{}
		mockGateway := &mocks.Gateway{}

		svc := service.NewWithdrawalService(mockAccountRepo, mockTransactionRepo, mockGateway,
			testConfig(), logger, testMetrics)

		small := cmd
		small.Amount = 100

		_, err := svc.Initiate(context.Background(), small)

		var svcErr service.Error
		assert.ErrorAs(t, err, &svcErr)
		assert.Equal(t, constants.ErrCodeValidationFailed, svcErr.Code)

		mockAccountRepo.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything)
	})

	t.Run("rejects amount above maximum", func(t *testing.T) {
		mockAccountRepo := &mocks.AccountRepository{}
		mockTransactionRepo := &mocks.TransactionRepository{}
		mockGateway := &mocks.Gateway{}

		svc := service.NewWithdrawalService(mockAccountRepo, mockTransactionRepo, mockGateway,
			testConfig(), logger, testMetrics)

		big := cmd
		big.Amount = 600000

		_, err := svc.Initiate(context.Background(), big)

		var svcErr service.Error
		assert.ErrorAs(t, err, &svcErr)
		assert.Equal(t, constants.ErrCodeValidationFailed, svcErr.Code)
	})

	t.Run("rejects unsupported payout method", func(t *testing.T) {
		mockAccountRepo := &mocks.AccountRepository{}
		mockTransactionRepo := &mocks.TransactionRepository{}
		mockGateway := &mocks.Gateway{}

		svc := service.NewWithdrawalService(mockAccountRepo, mockTransactionRepo, mockGateway,
			testConfig(), logger, testMetrics)

		bad := cmd
		bad.Method = "CARRIER_PIGEON"

		_, err := svc.Initiate(context.Background(), bad)

		var svcErr service.Error
		assert.ErrorAs(t, err, &svcErr)
		assert.Equal(t, constants.ErrCodeValidationFailed, svcErr.Code)
	})

	t.Run("returns not found for unknown account", func(t *testing.T) {
		mockAccountRepo := &mocks.AccountRepository{}
		mockTransactionRepo := &mocks.TransactionRepository{}
		mockGateway := &mocks.Gateway{}

		svc := service.NewWithdrawalService(mockAccountRepo, mockTransactionRepo, mockGateway,
			testConfig(), logger, testMetrics)

		mockAccountRepo.On("FindByID", context.Background(), "driver-42").
			Return(model.Account{}, repository.ErrAccountNotFound)

		_, err := svc.Initiate(context.Background(), cmd)

		var svcErr service.Error
		assert.ErrorAs(t, err, &svcErr)
		assert.Equal(t, constants.ErrCodeAccountNotFound, svcErr.Code)

		mockTransactionRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("rejects withdrawal exceeding balance", func(t *testing.T) {
		mockAccountRepo := &mocks.AccountRepository{}
		mockTransactionRepo := &mocks.TransactionRepository{}
		mockGateway := &mocks.Gateway{}

		svc := service.NewWithdrawalService(mockAccountRepo, mockTransactionRepo, mockGateway,
			testConfig(), logger, testMetrics)

		broke := model.Account{ID: "driver-42", OwnerKind: model.OwnerKindDriver, AvailableBalance: 2000}
		mockAccountRepo.On("FindByID", context.Background(), "driver-42").Return(broke, nil)

		_, err := svc.Initiate(context.Background(), cmd)

		var svcErr service.Error
		assert.ErrorAs(t, err, &svcErr)
		assert.Equal(t, constants.ErrCodeInsufficientBalance, svcErr.Code)

		var balanceErr service.BalanceError
		assert.ErrorAs(t, err, &balanceErr)
		assert.Equal(t, int64(2000), balanceErr.CurrentBalance)
		assert.Equal(t, int64(5000), balanceErr.Required)

		mockTransactionRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		mockGateway.AssertNotCalled(t, "Disburse", mock.Anything, mock.Anything)
	})

	t.Run("fails transaction when provider rejects synchronously", func(t *testing.T) {
		mockAccountRepo := &mocks.AccountRepository{}
		mockTransactionRepo := &mocks.TransactionRepository{}
		mockGateway := &mocks.Gateway{}

		svc := service.NewWithdrawalService(mockAccountRepo, mockTransactionRepo, mockGateway,
			testConfig(), logger, testMetrics)

		mockAccountRepo.On("FindByID", context.Background(), "driver-42").Return(account, nil)
		mockTransactionRepo.On("Create", context.Background(),
			mock.AnythingOfType("*model.Transaction")).Return(nil)

		rejection := &momo.RejectionError{ProviderCode: "PAYEE_NOT_FOUND", ProviderMessage: "no such subscriber"}
		mockGateway.On("Disburse", context.Background(),
			mock.AnythingOfType("momo.DisburseRequest")).Return(momo.DisburseResponse{}, rejection)

		mockTransactionRepo.On("Fail", context.Background(),
			mock.AnythingOfType("string"), rejection.Error()).Return(nil)

		_, err := svc.Initiate(context.Background(), cmd)

		var svcErr service.Error
		assert.ErrorAs(t, err, &svcErr)
		assert.Equal(t, constants.ErrCodeGatewayRejected, svcErr.Code)

		mockTransactionRepo.AssertExpectations(t)
		mockAccountRepo.AssertNotCalled(t, "DebitIfSufficient", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("leaves transaction pending on ambiguous gateway failure", func(t *testing.T) {
		mockAccountRepo := &mocks.AccountRepository{}
		mockTransactionRepo := &mocks.TransactionRepository{}
		mockGateway := &mocks.Gateway{}

		svc := service.NewWithdrawalService(mockAccountRepo, mockTransactionRepo, mockGateway,
			testConfig(), logger, testMetrics)

		mockAccountRepo.On("FindByID", context.Background(), "driver-42").Return(account, nil)
		mockTransactionRepo.On("Create", context.Background(),
			mock.AnythingOfType("*model.Transaction")).Return(nil)

		mockGateway.On("Disburse", context.Background(),
			mock.AnythingOfType("momo.DisburseRequest")).
			Return(momo.DisburseResponse{}, momo.ErrTimeout)

		_, err := svc.Initiate(context.Background(), cmd)

		var svcErr service.Error
		assert.ErrorAs(t, err, &svcErr)
		assert.Equal(t, constants.ErrCodeGatewayUnavailable, svcErr.Code)

		// The row stays PENDING for the sweep to resolve.
		mockTransactionRepo.AssertNotCalled(t, "Fail", mock.Anything, mock.Anything, mock.Anything)
		mockTransactionRepo.AssertNotCalled(t, "Settle", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("returns operation failed when transaction create fails", func(t *testing.T) {
		mockAccountRepo := &mocks.AccountRepository{}
		mockTransactionRepo := &mocks.TransactionRepository{}
		mockGateway := &mocks.Gateway{}

		svc := service.NewWithdrawalService(mockAccountRepo, mockTransactionRepo, mockGateway,
			testConfig(), logger, testMetrics)

		mockAccountRepo.On("FindByID", context.Background(), "driver-42").Return(account, nil)
		mockTransactionRepo.On("Create", context.Background(),
			mock.AnythingOfType("*model.Transaction")).Return(errors.New("connection refused"))

		_, err := svc.Initiate(context.Background(), cmd)

		var svcErr service.Error
		assert.ErrorAs(t, err, &svcErr)
		assert.Equal(t, constants.ErrCodeOperationFailed, svcErr.Code)

		mockGateway.AssertNotCalled(t, "Disburse", mock.Anything, mock.Anything)
	})
}
