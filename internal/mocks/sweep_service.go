package mocks

import (
	"context"

	"github.com/dikabo/taxi-money-driver/internal/service"
	"github.com/stretchr/testify/mock"
)

type SweepService struct {
	mock.Mock
}

func (s *SweepService) FindSweepable(ctx context.Context, limit int) ([]service.SweepTransactionCommand, error) {
	args := s.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]service.SweepTransactionCommand), args.Error(1)
}

func (s *SweepService) Process(ctx context.Context, cmd service.SweepTransactionCommand) error {
	args := s.Called(ctx, cmd)
	return args.Error(0)
}
