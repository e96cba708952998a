package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/cardstats/cardstats/internal/models"
	"github.com/cardstats/cardstats/internal/stats"
)

// MockStatsService is a mock implementation of stats.Service
type MockStatsService struct {
	mock.Mock
}

func (m *MockStatsService) RecordGame(ctx context.Context, firstFound, lastFound string) error {
	args := m.Called(ctx, firstFound, lastFound)
	return args.Error(0)
}

func (m *MockStatsService) MostFirst(ctx context.Context, q stats.Query) ([]models.CardCount, error) {
	return m.cards(m.Called(ctx, q))
}

func (m *MockStatsService) LeastFirst(ctx context.Context, q stats.Query) ([]models.CardCount, error) {
	return m.cards(m.Called(ctx, q))
}

func (m *MockStatsService) MostLast(ctx context.Context, q stats.Query) ([]models.CardCount, error) {
	return m.cards(m.Called(ctx, q))
}

func (m *MockStatsService) LeastLast(ctx context.Context, q stats.Query) ([]models.CardCount, error) {
	return m.cards(m.Called(ctx, q))
}

func (m *MockStatsService) Overview(ctx context.Context, q stats.Query) (*models.Overview, error) {
	return m.overview(m.Called(ctx, q))
}

func (m *MockStatsService) Daily(ctx context.Context, at time.Time) (*models.Overview, error) {
	return m.overview(m.Called(ctx, at))
}

func (m *MockStatsService) Weekly(ctx context.Context, at time.Time) (*models.Overview, error) {
	return m.overview(m.Called(ctx, at))
}

func (m *MockStatsService) cards(args mock.Arguments) ([]models.CardCount, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.CardCount), args.Error(1)
}

func (m *MockStatsService) overview(args mock.Arguments) (*models.Overview, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Overview), args.Error(1)
}
