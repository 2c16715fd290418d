package mocks

import (
	"context"

	"github.com/dikabo/taxi-money-driver/internal/model"
	"github.com/stretchr/testify/mock"
)

type AccountRepository struct {
	mock.Mock
}

func (a *AccountRepository) Create(ctx context.Context, account *model.Account) error {
	args := a.Called(ctx, account)
	return args.Error(0)
}

func (a *AccountRepository) FindByID(ctx context.Context, id string) (model.Account, error) {
	args := a.Called(ctx, id)
	return args.Get(0).(model.Account), args.Error(1)
}

func (a *AccountRepository) DebitIfSufficient(ctx context.Context, id string, amount int64) error {
	args := a.Called(ctx, id, amount)
	return args.Error(0)
}

func (a *AccountRepository) Credit(ctx context.Context, id string, amount int64) error {
	args := a.Called(ctx, id, amount)
	return args.Error(0)
}
