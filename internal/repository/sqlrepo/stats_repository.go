package sqlrepo

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/Masterminds/squirrel"

	"github.com/cardstats/cardstats/internal/db"
	"github.com/cardstats/cardstats/internal/logger"
	"github.com/cardstats/cardstats/internal/models"
	"github.com/cardstats/cardstats/internal/repository"
)

type statsRepository struct {
	db      *sql.DB
	builder squirrel.StatementBuilderType
	options
}

// NewStatsRepository creates a new StatsRepository implementation
func NewStatsRepository(database *db.DB, opts ...Option) repository.StatsRepository {
	return &statsRepository{
		db:      database.DB,
		builder: database.Builder(),
		options: newOptions(opts),
	}
}

func (r *statsRepository) IncrementFinds(ctx context.Context, first, last string) error {
	log := logger.FromContext(ctx).WithPrefix("stats_repo")
	log.Debug("incrementing finds: first=%s, last=%s", first, last)
	defer r.metrics.ObserveQuery("increment", time.Now())

	createdAt := r.now().UnixMilli()
	// Upserts are atomic in the database, so concurrent games never lose an
	// increment even on the same card.
	firstSQL, firstArgs, err := r.builder.Insert("stats").
		Columns("value", "first_count", "last_count", "created_at").
		Values(first, 1, 0, createdAt).
		Suffix("ON CONFLICT (value) DO UPDATE SET first_count = stats.first_count + 1").
		ToSql()
	if err != nil {
		log.Error("failed to build query: %v", err)
		return err
	}
	lastSQL, lastArgs, err := r.builder.Insert("stats").
		Columns("value", "first_count", "last_count", "created_at").
		Values(last, 0, 1, createdAt).
		Suffix("ON CONFLICT (value) DO UPDATE SET last_count = stats.last_count + 1").
		ToSql()
	if err != nil {
		log.Error("failed to build query: %v", err)
		return err
	}

	err = tx(ctx, r.db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, firstSQL, firstArgs...); err != nil {
			log.Error("failed to increment first count for %s: %v", first, err)
			return err
		}
		if _, err := tx.ExecContext(ctx, lastSQL, lastArgs...); err != nil {
			log.Error("failed to increment last count for %s: %v", last, err)
			return err
		}
		return nil
	})
	if err != nil {
		return err
	}
	log.Debug("finds incremented")
	return nil
}

func (r *statsRepository) Find(ctx context.Context, filter models.StatsFilter, sort []models.SortKey, metric models.Field, limit int) ([]models.CardCount, error) {
	log := logger.FromContext(ctx).WithPrefix("stats_repo")
	log.Debug("finding cards: metric=%s, sort=%v, limit=%d", metric, sort, limit)
	defer r.metrics.ObserveQuery("find", time.Now())

	metricCol, err := column(metric)
	if err != nil {
		log.Error("invalid metric: %v", err)
		return nil, err
	}

	query := applyFilter(r.builder.Select("value", metricCol).From("stats"), filter)
	for _, key := range sort {
		col, err := column(key.Field)
		if err != nil {
			log.Error("invalid sort field: %v", err)
			return nil, err
		}
		dir := " ASC"
		if key.Desc {
			dir = " DESC"
		}
		query = query.OrderBy(col + dir)
	}
	if limit > 0 {
		query = query.Limit(uint64(limit))
	}

	stmt, args, err := query.ToSql()
	if err != nil {
		log.Error("failed to build query: %v", err)
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		log.Error("failed to find cards: %v", err)
		return nil, err
	}
	defer rows.Close()

	cards := []models.CardCount{}
	for rows.Next() {
		var c models.CardCount
		if err := rows.Scan(&c.Value, &c.Count); err != nil {
			log.Error("failed to scan card row: %v", err)
			return nil, err
		}
		cards = append(cards, c)
	}
	if err := rows.Err(); err != nil {
		log.Error("failed to iterate card rows: %v", err)
		return nil, err
	}
	log.Debug("found %d cards", len(cards))
	return cards, nil
}

func (r *statsRepository) Totals(ctx context.Context, filter models.StatsFilter) (models.Totals, error) {
	log := logger.FromContext(ctx).WithPrefix("stats_repo")
	log.Debug("computing totals")
	defer r.metrics.ObserveQuery("totals", time.Now())

	query := applyFilter(r.builder.Select(
		"COUNT(*)",
		"CAST(COALESCE(SUM(first_count), 0) AS BIGINT)",
		"CAST(COALESCE(SUM(last_count), 0) AS BIGINT)",
	).From("stats"), filter)

	stmt, args, err := query.ToSql()
	if err != nil {
		log.Error("failed to build query: %v", err)
		return models.Totals{}, err
	}

	var t models.Totals
	if err := r.db.QueryRowContext(ctx, stmt, args...).Scan(&t.Cards, &t.FirstFinds, &t.LastFinds); err != nil {
		log.Error("failed to compute totals: %v", err)
		return models.Totals{}, err
	}
	log.Debug("totals: cards=%d, first=%d, last=%d", t.Cards, t.FirstFinds, t.LastFinds)
	return t, nil
}

func (r *statsRepository) Get(ctx context.Context, value string) (*models.Counter, error) {
	log := logger.FromContext(ctx).WithPrefix("stats_repo")
	log.Debug("getting counter: value=%s", value)
	defer r.metrics.ObserveQuery("get", time.Now())

	query, args, err := r.builder.Select("value", "first_count", "last_count", "created_at").
		From("stats").
		Where(squirrel.Eq{"value": value}).
		ToSql()
	if err != nil {
		log.Error("failed to build query: %v", err)
		return nil, err
	}

	var c models.Counter
	var createdAt int64
	err = r.db.QueryRowContext(ctx, query, args...).Scan(&c.Value, &c.FirstCount, &c.LastCount, &createdAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("counter not found: value=%s", value)
		} else {
			log.Error("failed to get counter: %v", err)
		}
		return nil, err
	}
	c.CreatedAt = time.UnixMilli(createdAt)
	return &c, nil
}

func (r *statsRepository) ReplaceAll(ctx context.Context, counters []models.Counter) error {
	log := logger.FromContext(ctx).WithPrefix("stats_repo")
	log.Debug("replacing all counters with %d rows", len(counters))
	defer r.metrics.ObserveQuery("replace_all", time.Now())

	insertSQL, _, err := r.builder.Insert("stats").
		Columns("value", "first_count", "last_count", "created_at").
		Values("", 0, 0, 0).
		ToSql()
	if err != nil {
		log.Error("failed to build query: %v", err)
		return err
	}

	return tx(ctx, r.db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM stats`); err != nil {
			log.Error("failed to clear counters: %v", err)
			return err
		}
		stmt, err := tx.PrepareContext(ctx, insertSQL)
		if err != nil {
			log.Error("failed to prepare counter insert: %v", err)
			return err
		}
		defer stmt.Close()

		now := r.now()
		for _, c := range counters {
			createdAt := c.CreatedAt
			if createdAt.IsZero() {
				createdAt = now
			}
			if _, err := stmt.ExecContext(ctx, c.Value, c.FirstCount, c.LastCount, createdAt.UnixMilli()); err != nil {
				log.Error("failed to insert counter %s: %v", c.Value, err)
				return err
			}
		}
		return nil
	})
}

func applyFilter(query squirrel.SelectBuilder, f models.StatsFilter) squirrel.SelectBuilder {
	if f.CreatedFrom != nil {
		query = query.Where(squirrel.GtOrEq{"created_at": f.CreatedFrom.UnixMilli()})
	}
	if f.CreatedTo != nil {
		query = query.Where(squirrel.LtOrEq{"created_at": f.CreatedTo.UnixMilli()})
	}
	if col, err := column(f.ScoreField); err == nil {
		if f.MinScore != nil {
			query = query.Where(squirrel.GtOrEq{col: *f.MinScore})
		}
		if f.MaxScore != nil {
			query = query.Where(squirrel.LtOrEq{col: *f.MaxScore})
		}
	}
	return query
}
