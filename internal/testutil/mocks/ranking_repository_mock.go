package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/cardstats/cardstats/internal/models"
)

// MockRankingRepository is a mock implementation of repository.RankingRepository
type MockRankingRepository struct {
	mock.Mock
}

func (m *MockRankingRepository) Insert(ctx context.Context, ranking models.Ranking) error {
	args := m.Called(ctx, ranking)
	return args.Error(0)
}

func (m *MockRankingRepository) InsertBatch(ctx context.Context, rankings []models.Ranking) error {
	args := m.Called(ctx, rankings)
	return args.Error(0)
}

func (m *MockRankingRepository) List(ctx context.Context, limit, offset int) ([]models.Ranking, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Ranking), args.Error(1)
}

func (m *MockRankingRepository) Count(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func (m *MockRankingRepository) All(ctx context.Context) ([]models.Ranking, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Ranking), args.Error(1)
}

func (m *MockRankingRepository) DeleteAll(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}
