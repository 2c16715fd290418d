package mocks

import (
	"context"

	"github.com/dikabo/taxi-money-driver/pkg/momo"
	"github.com/stretchr/testify/mock"
)

type ReconcileService struct {
	mock.Mock
}

func (r *ReconcileService) Apply(ctx context.Context, notification momo.Notification) error {
	args := r.Called(ctx, notification)
	return args.Error(0)
}
