package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/cardstats/cardstats/internal/models"
)

// MockStatsRepository is a mock implementation of repository.StatsRepository
type MockStatsRepository struct {
	mock.Mock
}

func (m *MockStatsRepository) IncrementFinds(ctx context.Context, first, last string) error {
	args := m.Called(ctx, first, last)
	return args.Error(0)
}

func (m *MockStatsRepository) Find(ctx context.Context, filter models.StatsFilter, sort []models.SortKey, metric models.Field, limit int) ([]models.CardCount, error) {
	args := m.Called(ctx, filter, sort, metric, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.CardCount), args.Error(1)
}

func (m *MockStatsRepository) Totals(ctx context.Context, filter models.StatsFilter) (models.Totals, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(models.Totals), args.Error(1)
}

func (m *MockStatsRepository) Get(ctx context.Context, value string) (*models.Counter, error) {
	args := m.Called(ctx, value)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Counter), args.Error(1)
}

func (m *MockStatsRepository) ReplaceAll(ctx context.Context, counters []models.Counter) error {
	args := m.Called(ctx, counters)
	return args.Error(0)
}
