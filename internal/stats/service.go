package stats

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/cardstats/cardstats/internal/logger"
	"github.com/cardstats/cardstats/internal/metrics"
	"github.com/cardstats/cardstats/internal/models"
	"github.com/cardstats/cardstats/internal/repository"
)

// Service applies finished games to card counters and answers ranked queries
// over them. Store errors are returned unchanged.
type Service interface {
	RecordGame(ctx context.Context, firstFound, lastFound string) error
	MostFirst(ctx context.Context, q Query) ([]models.CardCount, error)
	LeastFirst(ctx context.Context, q Query) ([]models.CardCount, error)
	MostLast(ctx context.Context, q Query) ([]models.CardCount, error)
	LeastLast(ctx context.Context, q Query) ([]models.CardCount, error)
	Overview(ctx context.Context, q Query) (*models.Overview, error)
	Daily(ctx context.Context, at time.Time) (*models.Overview, error)
	Weekly(ctx context.Context, at time.Time) (*models.Overview, error)
}

type Option func(*service)

// WithLimits sets the result count used when a query names none and the
// ceiling applied to every query.
func WithLimits(def, max int) Option {
	return func(s *service) {
		if max > 0 {
			s.maxLimit = max
		}
		s.defaultLimit = ClampLimit(def, DefaultLimit, s.maxLimit)
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *service) {
		s.metrics = m
	}
}

type service struct {
	repo         repository.StatsRepository
	metrics      *metrics.Metrics
	defaultLimit int
	maxLimit     int
}

// NewService creates a Service backed by repo.
func NewService(repo repository.StatsRepository, opts ...Option) Service {
	s := &service{
		repo:         repo,
		defaultLimit: DefaultLimit,
		maxLimit:     MaxLimit,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *service) RecordGame(ctx context.Context, firstFound, lastFound string) error {
	log := logger.FromContext(ctx).WithPrefix("stats")
	log.Debug("recording game: first=%s, last=%s", firstFound, lastFound)

	if err := s.repo.IncrementFinds(ctx, firstFound, lastFound); err != nil {
		log.Error("failed to record game: %v", err)
		return err
	}
	s.metrics.CounterIncremented("first_count")
	s.metrics.CounterIncremented("last_count")
	return nil
}

func (s *service) MostFirst(ctx context.Context, q Query) ([]models.CardCount, error) {
	return s.ranked(ctx, "most_first", q, ResolveSort(q, models.FieldFirstCount), models.FieldFirstCount)
}

func (s *service) LeastFirst(ctx context.Context, q Query) ([]models.CardCount, error) {
	return s.ranked(ctx, "least_first", q, ascending(models.FieldFirstCount), models.FieldFirstCount)
}

func (s *service) MostLast(ctx context.Context, q Query) ([]models.CardCount, error) {
	return s.ranked(ctx, "most_last", q, ResolveSort(q, models.FieldLastCount), models.FieldLastCount)
}

func (s *service) LeastLast(ctx context.Context, q Query) ([]models.CardCount, error) {
	return s.ranked(ctx, "least_last", q, ascending(models.FieldLastCount), models.FieldLastCount)
}

// Least lists ignore the requested ordering.
func ascending(f models.Field) []models.SortKey {
	return []models.SortKey{{Field: f, Desc: false}}
}

func (s *service) ranked(ctx context.Context, name string, q Query, sort []models.SortKey, metric models.Field) ([]models.CardCount, error) {
	log := logger.FromContext(ctx).WithPrefix("stats")
	limit := ClampLimit(q.Limit, s.defaultLimit, s.maxLimit)
	log.Debug("ranked query %s: limit=%d, sort_by=%s, sort_order=%s", name, limit, q.SortBy, q.SortOrder)

	cards, err := s.repo.Find(ctx, BuildFilter(q), sort, metric, limit)
	if err != nil {
		log.Error("ranked query %s failed: %v", name, err)
		return nil, err
	}
	if cards == nil {
		cards = []models.CardCount{}
	}
	return cards, nil
}

func (s *service) Overview(ctx context.Context, q Query) (*models.Overview, error) {
	log := logger.FromContext(ctx).WithPrefix("stats")
	log.Debug("building overview: start=%v, end=%v", q.StartDate, q.EndDate)

	var out models.Overview
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		out.MostFirstFound, err = s.MostFirst(gctx, q)
		return err
	})
	g.Go(func() (err error) {
		out.LeastFirstFound, err = s.LeastFirst(gctx, q)
		return err
	})
	g.Go(func() (err error) {
		out.MostLastFound, err = s.MostLast(gctx, q)
		return err
	})
	g.Go(func() (err error) {
		out.LeastLastFound, err = s.LeastLast(gctx, q)
		return err
	})
	g.Go(func() (err error) {
		out.Totals, err = s.repo.Totals(gctx, BuildFilter(q))
		return err
	})
	if err := g.Wait(); err != nil {
		log.Error("failed to build overview: %v", err)
		return nil, err
	}
	return &out, nil
}

func (s *service) Daily(ctx context.Context, at time.Time) (*models.Overview, error) {
	start, end := DayWindow(at)
	return s.Overview(ctx, Query{StartDate: &start, EndDate: &end})
}

func (s *service) Weekly(ctx context.Context, at time.Time) (*models.Overview, error) {
	start, end := WeekWindow(at)
	return s.Overview(ctx, Query{StartDate: &start, EndDate: &end})
}
