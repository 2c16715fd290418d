package mocks

import (
	"context"

	"github.com/dikabo/taxi-money-driver/pkg/momo"
	"github.com/stretchr/testify/mock"
)

type Gateway struct {
	mock.Mock
}

func (g *Gateway) Disburse(ctx context.Context, request momo.DisburseRequest) (momo.DisburseResponse, error) {
	args := g.Called(ctx, request)
	return args.Get(0).(momo.DisburseResponse), args.Error(1)
}

func (g *Gateway) Status(ctx context.Context, reference string) (momo.StatusResponse, error) {
	args := g.Called(ctx, reference)
	return args.Get(0).(momo.StatusResponse), args.Error(1)
}
