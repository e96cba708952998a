package repository

import (
	"context"

	"github.com/cardstats/cardstats/internal/models"
)

// StatsRepository persists per-card find counters.
type StatsRepository interface {
	// IncrementFinds adds one to first's first count and one to last's last
	// count, creating missing counters. Both increments apply or neither does.
	IncrementFinds(ctx context.Context, first, last string) error
	// Find returns up to limit cards matching filter, ordered by sort, each
	// paired with its metric count.
	Find(ctx context.Context, filter models.StatsFilter, sort []models.SortKey, metric models.Field, limit int) ([]models.CardCount, error)
	Totals(ctx context.Context, filter models.StatsFilter) (models.Totals, error)
	Get(ctx context.Context, value string) (*models.Counter, error)
	// ReplaceAll discards every counter and stores counters instead.
	ReplaceAll(ctx context.Context, counters []models.Counter) error
}
