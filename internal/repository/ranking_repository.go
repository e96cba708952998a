package repository

import (
	"context"

	"github.com/cardstats/cardstats/internal/models"
)

// RankingRepository handles ranking data access
type RankingRepository interface {
	Insert(ctx context.Context, ranking models.Ranking) error
	InsertBatch(ctx context.Context, rankings []models.Ranking) error
	List(ctx context.Context, limit, offset int) ([]models.Ranking, error)
	Count(ctx context.Context) (int, error)
	All(ctx context.Context) ([]models.Ranking, error)
	DeleteAll(ctx context.Context) (int64, error)
}
