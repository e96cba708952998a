package services

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/cardstats/cardstats/internal/errors"
	"github.com/cardstats/cardstats/internal/logger"
	"github.com/cardstats/cardstats/internal/metrics"
	"github.com/cardstats/cardstats/internal/models"
	"github.com/cardstats/cardstats/internal/repository"
	"github.com/cardstats/cardstats/internal/stats"
)

const (
	DefaultRankingsLimit = 10
	MaxRankingsLimit     = 50
)

// RankingService handles ranking submission and listing
type RankingService interface {
	Submit(ctx context.Context, in models.RankingInput) (*models.Ranking, error)
	List(ctx context.Context, page, limit int) (*models.RankingPage, error)
}

type RankingOption func(*rankingService)

func WithRankingsMaxLimit(n int) RankingOption {
	return func(s *rankingService) {
		if n > 0 {
			s.maxLimit = n
		}
	}
}

func WithRankingClock(now func() time.Time) RankingOption {
	return func(s *rankingService) {
		s.now = now
	}
}

func WithRankingMetrics(m *metrics.Metrics) RankingOption {
	return func(s *rankingService) {
		s.metrics = m
	}
}

type rankingService struct {
	rankingRepo repository.RankingRepository
	stats       stats.Service
	metrics     *metrics.Metrics
	now         func() time.Time
	maxLimit    int
}

// NewRankingService creates a new RankingService
func NewRankingService(rankingRepo repository.RankingRepository, statsService stats.Service, opts ...RankingOption) RankingService {
	s := &rankingService{
		rankingRepo: rankingRepo,
		stats:       statsService,
		now:         time.Now,
		maxLimit:    MaxRankingsLimit,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Submit validates and stores a finished game and applies it to the card
// counters. Both writes run concurrently; the first failure is returned.
func (s *rankingService) Submit(ctx context.Context, in models.RankingInput) (*models.Ranking, error) {
	log := logger.FromContext(ctx).WithPrefix("ranking_service")
	log.Debug("submitting ranking: name=%s, score=%.2f, first=%s, last=%s", in.Name, in.Score, in.FirstFound, in.LastFound)

	if err := validateRanking(in); err != nil {
		log.Warn("invalid ranking: %v", err)
		return nil, err
	}

	ranking := models.Ranking{
		ID:         uuid.NewString(),
		Name:       strings.TrimSpace(in.Name),
		Score:      in.Score,
		FirstFound: in.FirstFound,
		LastFound:  in.LastFound,
		CreatedAt:  s.now().UTC().Truncate(time.Millisecond),
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return s.rankingRepo.Insert(gctx, ranking)
	})
	g.Go(func() error {
		return s.stats.RecordGame(gctx, ranking.FirstFound, ranking.LastFound)
	})
	if err := g.Wait(); err != nil {
		log.Error("failed to submit ranking: %v", err)
		return nil, err
	}

	s.metrics.RankingSubmitted()
	log.Info("ranking submitted: id=%s, name=%s, score=%.2f", ranking.ID, ranking.Name, ranking.Score)
	return &ranking, nil
}

func validateRanking(in models.RankingInput) error {
	if strings.TrimSpace(in.Name) == "" {
		return errors.NewValidationError("name", "must not be empty")
	}
	if !(in.Score > 0) {
		return errors.NewValidationError("score", "must be a positive number")
	}
	if in.FirstFound == "" {
		return errors.NewValidationError("firstFound", "must not be empty")
	}
	if in.LastFound == "" {
		return errors.NewValidationError("lastFound", "must not be empty")
	}
	return nil
}

// List returns one page of rankings. Out-of-range page and limit values are
// clamped rather than rejected.
func (s *rankingService) List(ctx context.Context, page, limit int) (*models.RankingPage, error) {
	log := logger.FromContext(ctx).WithPrefix("ranking_service")

	if page < 1 {
		page = 1
	}
	limit = stats.ClampLimit(limit, min(DefaultRankingsLimit, s.maxLimit), s.maxLimit)
	offset := (page - 1) * limit
	log.Debug("listing rankings: page=%d, limit=%d, offset=%d", page, limit, offset)

	var (
		rankings []models.Ranking
		total    int
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		rankings, err = s.rankingRepo.List(gctx, limit, offset)
		return err
	})
	g.Go(func() (err error) {
		total, err = s.rankingRepo.Count(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		log.Error("failed to list rankings: %v", err)
		return nil, err
	}
	if rankings == nil {
		rankings = []models.Ranking{}
	}

	return &models.RankingPage{
		Rankings: rankings,
		Pagination: models.Pagination{
			Total:   total,
			Page:    page,
			Limit:   limit,
			HasMore: page*limit < total,
		},
	}, nil
}
