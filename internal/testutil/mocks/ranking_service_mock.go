package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/cardstats/cardstats/internal/models"
)

// MockRankingService is a mock implementation of services.RankingService
type MockRankingService struct {
	mock.Mock
}

func (m *MockRankingService) Submit(ctx context.Context, in models.RankingInput) (*models.Ranking, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Ranking), args.Error(1)
}

func (m *MockRankingService) List(ctx context.Context, page, limit int) (*models.RankingPage, error) {
	args := m.Called(ctx, page, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.RankingPage), args.Error(1)
}
