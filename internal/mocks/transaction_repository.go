package mocks

import (
	"context"
	"time"

	"github.com/dikabo/taxi-money-driver/internal/model"
	"github.com/stretchr/testify/mock"
)

type TransactionRepository struct {
	mock.Mock
}

func (t *TransactionRepository) Create(ctx context.Context, tx *model.Transaction) error {
	args := t.Called(ctx, tx)
	return args.Error(0)
}

func (t *TransactionRepository) GetByReference(ctx context.Context, reference string) (*model.Transaction, error) {
	args := t.Called(ctx, reference)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Transaction), args.Error(1)
}

func (t *TransactionRepository) SetProviderTxID(ctx context.Context, reference string, providerTxID string) error {
	args := t.Called(ctx, reference, providerTxID)
	return args.Error(0)
}

func (t *TransactionRepository) Settle(ctx context.Context, reference string, providerTxID *string) error {
	args := t.Called(ctx, reference, providerTxID)
	return args.Error(0)
}

func (t *TransactionRepository) Fail(ctx context.Context, reference string, reason string) error {
	args := t.Called(ctx, reference, reason)
	return args.Error(0)
}

func (t *TransactionRepository) FindStalePending(ctx context.Context, cutoff time.Time, limit int) ([]model.Transaction, error) {
	args := t.Called(ctx, cutoff, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Transaction), args.Error(1)
}
