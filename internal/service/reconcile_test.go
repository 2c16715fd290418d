package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/dikabo/taxi-money-driver/internal/mocks"
	"github.com/dikabo/taxi-money-driver/internal/model"
	"github.com/dikabo/taxi-money-driver/internal/repository"
	"github.com/dikabo/taxi-money-driver/internal/service"
	"github.com/dikabo/taxi-money-driver/pkg/momo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
)

func TestReconcile_Apply(t *testing.T) {
	logger := zap.NewNop()

	pending := &model.Transaction{
		ID:        "tx-1",
		AccountID: "driver-42",
		Kind:      model.TransactionKindWithdrawal,
		Status:    model.TransactionStatusPending,
		Amount:    5000,
		Reference: "ref-1",
	}

	success := momo.Notification{
		Reference:     "ref-1",
		Status:        momo.NotificationSuccess,
		RawStatus:     "SUCCESSFUL",
		TransactionID: "prov-1",
	}

	t.Run("settles and debits exactly once on confirmed success", func(t *testing.T) {
		mockAccountRepo := &mocks.AccountRepository{}
		mockTransactionRepo := &mocks.TransactionRepository{}
		mockTxManager := &mocks.TxManager{}

		svc := service.NewReconcileService(mockAccountRepo, mockTransactionRepo, mockTxManager,
			logger, testMetrics)

		mockTransactionRepo.On("GetByReference", context.Background(), "ref-1").Return(pending, nil)
		mockTxManager.On("WithTx", context.Background(),
			mock.AnythingOfType("func(context.Context) error")).Return(nil)
		mockAccountRepo.On("DebitIfSufficient", context.Background(), "driver-42", int64(5000)).Return(nil)
		mockTransactionRepo.On("Settle", context.Background(), "ref-1",
			mock.MatchedBy(func(id *string) bool { return id != nil && *id == "prov-1" })).Return(nil)

		err := svc.Apply(context.Background(), success)

		assert.NoError(t, err)
		mockAccountRepo.AssertNumberOfCalls(t, "DebitIfSufficient", 1)
		mockAccountRepo.AssertExpectations(t)
		mockTransactionRepo.AssertExpectations(t)
		mockTxManager.AssertExpectations(t)
	})

	t.Run("acknowledges unknown reference without writes", func(t *testing.T) {
		mockAccountRepo := &mocks.AccountRepository{}
		mockTransactionRepo := &mocks.TransactionRepository{}
		mockTxManager := &mocks.TxManager{}

		svc := service.NewReconcileService(mockAccountRepo, mockTransactionRepo, mockTxManager,
			logger, testMetrics)

		mockTransactionRepo.On("GetByReference", context.Background(), "ref-404").
			Return(nil, repository.ErrTransactionNotFound)

		unknown := success
		unknown.Reference = "ref-404"

		err := svc.Apply(context.Background(), unknown)

		assert.NoError(t, err)
		mockAccountRepo.AssertNotCalled(t, "DebitIfSufficient", mock.Anything, mock.Anything, mock.Anything)
		mockTransactionRepo.AssertNotCalled(t, "Settle", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("absorbs duplicate delivery for finalized transaction", func(t *testing.T) {
		mockAccountRepo := &mocks.AccountRepository{}
		mockTransactionRepo := &mocks.TransactionRepository{}
		mockTxManager := &mocks.TxManager{}

		svc := service.NewReconcileService(mockAccountRepo, mockTransactionRepo, mockTxManager,
			logger, testMetrics)

		settled := *pending
		settled.Status = model.TransactionStatusSuccess
		mockTransactionRepo.On("GetByReference", context.Background(), "ref-1").Return(&settled, nil)

		err := svc.Apply(context.Background(), success)

		assert.NoError(t, err)
		mockAccountRepo.AssertNotCalled(t, "DebitIfSufficient", mock.Anything, mock.Anything, mock.Anything)
		mockTransactionRepo.AssertNotCalled(t, "Settle", mock.Anything, mock.Anything, mock.Anything)
		mockTxManager.AssertNotCalled(t, "WithTx", mock.Anything, mock.Anything)
	})

	t.Run("absorbs concurrent settle race without double debit", func(t *testing.T) {
		mockAccountRepo := &mocks.AccountRepository{}
		mockTransactionRepo := &mocks.TransactionRepository{}
		mockTxManager := &mocks.TxManager{}

		svc := service.NewReconcileService(mockAccountRepo, mockTransactionRepo, mockTxManager,
			logger, testMetrics)

		mockTransactionRepo.On("GetByReference", context.Background(), "ref-1").Return(pending, nil)
		mockTxManager.On("WithTx", context.Background(),
			mock.AnythingOfType("func(context.Context) error")).Return(nil)
		mockAccountRepo.On("DebitIfSufficient", context.Background(), "driver-42", int64(5000)).Return(nil)

		// Another delivery flipped the row between our read and our update.
		mockTransactionRepo.On("Settle", context.Background(), "ref-1",
			mock.AnythingOfType("*string")).Return(repository.ErrNoRowsAffected)

		err := svc.Apply(context.Background(), success)

		assert.NoError(t, err)
	})

	t.Run("keeps transaction pending when balance guard fails", func(t *testing.T) {
		mockAccountRepo := &mocks.AccountRepository{}
		mockTransactionRepo := &mocks.TransactionRepository{}
		mockTxManager := &mocks.TxManager{}

		svc := service.NewReconcileService(mockAccountRepo, mockTransactionRepo, mockTxManager,
			logger, testMetrics)

		mockTransactionRepo.On("GetByReference", context.Background(), "ref-1").Return(pending, nil)
		mockTxManager.On("WithTx", context.Background(),
			mock.AnythingOfType("func(context.Context) error")).Return(nil)
		mockAccountRepo.On("DebitIfSufficient", context.Background(), "driver-42", int64(5000)).
			Return(repository.ErrNoRowsAffected)

		err := svc.Apply(context.Background(), success)

		// Acknowledged so the provider stops retrying; the row stays
		// PENDING for the operator.
		assert.NoError(t, err)
		mockTransactionRepo.AssertNotCalled(t, "Settle", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("fails transaction on failure notification without touching balance", func(t *testing.T) {
		mockAccountRepo := &mocks.AccountRepository{}
		mockTransactionRepo := &mocks.TransactionRepository{}
		mockTxManager := &mocks.TxManager{}

		svc := service.NewReconcileService(mockAccountRepo, mockTransactionRepo, mockTxManager,
			logger, testMetrics)

		mockTransactionRepo.On("GetByReference", context.Background(), "ref-1").Return(pending, nil)
		mockTransactionRepo.On("Fail", context.Background(), "ref-1", "FAILED").Return(nil)

		failure := momo.Notification{Reference: "ref-1", Status: momo.NotificationFailure, RawStatus: "FAILED"}

		err := svc.Apply(context.Background(), failure)

		assert.NoError(t, err)
		mockAccountRepo.AssertNotCalled(t, "DebitIfSufficient", mock.Anything, mock.Anything, mock.Anything)
		mockAccountRepo.AssertNotCalled(t, "Credit", mock.Anything, mock.Anything, mock.Anything)
		mockTransactionRepo.AssertExpectations(t)
	})

	t.Run("leaves transaction pending on unrecognized status", func(t *testing.T) {
		mockAccountRepo := &mocks.AccountRepository{}
		mockTransactionRepo := &mocks.TransactionRepository{}
		mockTxManager := &mocks.TxManager{}

		svc := service.NewReconcileService(mockAccountRepo, mockTransactionRepo, mockTxManager,
			logger, testMetrics)

		mockTransactionRepo.On("GetByReference", context.Background(), "ref-1").Return(pending, nil)

		odd := momo.Notification{Reference: "ref-1", Status: momo.NotificationUnknown, RawStatus: "UNDER_REVIEW"}

		err := svc.Apply(context.Background(), odd)

		assert.NoError(t, err)
		mockTransactionRepo.AssertNotCalled(t, "Settle", mock.Anything, mock.Anything, mock.Anything)
		mockTransactionRepo.AssertNotCalled(t, "Fail", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("returns database error when lookup fails", func(t *testing.T) {
		mockAccountRepo := &mocks.AccountRepository{}
		mockTransactionRepo := &mocks.TransactionRepository{}
		mockTxManager := &mocks.TxManager{}

		svc := service.NewReconcileService(mockAccountRepo, mockTransactionRepo, mockTxManager,
			logger, testMetrics)

		mockTransactionRepo.On("GetByReference", context.Background(), "ref-1").
			Return(nil, errors.New("connection refused"))

		err := svc.Apply(context.Background(), success)

		var svcErr service.Error
		assert.ErrorAs(t, err, &svcErr)
		assert.Equal(t, service.ErrCodeDatabase, svcErr.Code)
	})

	t.Run("returns database error when settle transaction fails", func(t *testing.T) {
		mockAccountRepo := &mocks.AccountRepository{}
		mockTransactionRepo := &mocks.TransactionRepository{}
		mockTxManager := &mocks.TxManager{}

		svc := service.NewReconcileService(mockAccountRepo, mockTransactionRepo, mockTxManager,
			logger, testMetrics)

		mockTransactionRepo.On("GetByReference", context.Background(), "ref-1").Return(pending, nil)
		mockTxManager.On("WithTx", context.Background(),
			mock.AnythingOfType("func(context.Context) error")).Return(nil)
		mockAccountRepo.On("DebitIfSufficient", context.Background(), "driver-42", int64(5000)).
			Return(errors.New("deadlock"))

		err := svc.Apply(context.Background(), success)

		var svcErr service.Error
		assert.ErrorAs(t, err, &svcErr)
		assert.Equal(t, service.ErrCodeDatabase, svcErr.Code)
	})
}
