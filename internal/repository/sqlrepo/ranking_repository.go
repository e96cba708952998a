package sqlrepo

import (
	"context"
	"database/sql"
	"time"

	"github.com/Masterminds/squirrel"

	"github.com/cardstats/cardstats/internal/db"
	"github.com/cardstats/cardstats/internal/logger"
	"github.com/cardstats/cardstats/internal/models"
	"github.com/cardstats/cardstats/internal/repository"
)

var rankingColumns = []string{"id", "name", "score", "first_found", "last_found", "created_at"}

type rankingRepository struct {
	db      *sql.DB
	builder squirrel.StatementBuilderType
	options
}

// NewRankingRepository creates a new RankingRepository implementation
func NewRankingRepository(database *db.DB, opts ...Option) repository.RankingRepository {
	return &rankingRepository{
		db:      database.DB,
		builder: database.Builder(),
		options: newOptions(opts),
	}
}

func (r *rankingRepository) Insert(ctx context.Context, rk models.Ranking) error {
	log := logger.FromContext(ctx).WithPrefix("ranking_repo")
	log.Debug("inserting ranking: id=%s, name=%s, score=%.2f", rk.ID, rk.Name, rk.Score)
	defer r.metrics.ObserveQuery("ranking_insert", time.Now())

	query, args, err := r.insert(rk).ToSql()
	if err != nil {
		log.Error("failed to build query: %v", err)
		return err
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		log.Error("failed to insert ranking: %v", err)
		return err
	}
	return nil
}

func (r *rankingRepository) InsertBatch(ctx context.Context, rankings []models.Ranking) error {
	log := logger.FromContext(ctx).WithPrefix("ranking_repo")
	log.Debug("batch inserting %d rankings", len(rankings))
	defer r.metrics.ObserveQuery("ranking_insert_batch", time.Now())

	if len(rankings) == 0 {
		return nil
	}

	return tx(ctx, r.db, func(tx *sql.Tx) error {
		for _, rk := range rankings {
			query, args, err := r.insert(rk).ToSql()
			if err != nil {
				log.Error("failed to build query: %v", err)
				return err
			}
			if _, err := tx.ExecContext(ctx, query, args...); err != nil {
				log.Error("failed to insert ranking id=%s: %v", rk.ID, err)
				return err
			}
		}
		return nil
	})
}

func (r *rankingRepository) insert(rk models.Ranking) squirrel.InsertBuilder {
	createdAt := rk.CreatedAt
	if createdAt.IsZero() {
		createdAt = r.now()
	}
	return r.builder.Insert("rankings").
		Columns(rankingColumns...).
		Values(rk.ID, rk.Name, rk.Score, rk.FirstFound, rk.LastFound, createdAt.UnixMilli())
}

// List returns a page of rankings, fastest score first and newest first
// among equal scores.
func (r *rankingRepository) List(ctx context.Context, limit, offset int) ([]models.Ranking, error) {
	log := logger.FromContext(ctx).WithPrefix("ranking_repo")
	log.Debug("listing rankings: limit=%d, offset=%d", limit, offset)
	defer r.metrics.ObserveQuery("ranking_list", time.Now())

	if limit <= 0 {
		limit = 10
	}
	if offset < 0 {
		offset = 0
	}
	query := r.builder.Select(rankingColumns...).
		From("rankings").
		OrderBy("score ASC", "created_at DESC").
		Limit(uint64(limit)).
		Offset(uint64(offset))
	return r.query(ctx, query)
}

func (r *rankingRepository) All(ctx context.Context) ([]models.Ranking, error) {
	log := logger.FromContext(ctx).WithPrefix("ranking_repo")
	log.Debug("listing all rankings")
	defer r.metrics.ObserveQuery("ranking_all", time.Now())

	return r.query(ctx, r.builder.Select(rankingColumns...).From("rankings").OrderBy("created_at ASC"))
}

func (r *rankingRepository) query(ctx context.Context, query squirrel.SelectBuilder) ([]models.Ranking, error) {
	log := logger.FromContext(ctx).WithPrefix("ranking_repo")

	stmt, args, err := query.ToSql()
	if err != nil {
		log.Error("failed to build query: %v", err)
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		log.Error("failed to list rankings: %v", err)
		return nil, err
	}
	defer rows.Close()

	rankings := []models.Ranking{}
	for rows.Next() {
		var rk models.Ranking
		var createdAt int64
		if err := rows.Scan(&rk.ID, &rk.Name, &rk.Score, &rk.FirstFound, &rk.LastFound, &createdAt); err != nil {
			log.Error("failed to scan ranking row: %v", err)
			return nil, err
		}
		rk.CreatedAt = time.UnixMilli(createdAt)
		rankings = append(rankings, rk)
	}
	if err := rows.Err(); err != nil {
		log.Error("failed to iterate ranking rows: %v", err)
		return nil, err
	}
	log.Debug("found %d rankings", len(rankings))
	return rankings, nil
}

func (r *rankingRepository) Count(ctx context.Context) (int, error) {
	log := logger.FromContext(ctx).WithPrefix("ranking_repo")
	log.Debug("counting rankings")
	defer r.metrics.ObserveQuery("ranking_count", time.Now())

	var count int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM rankings`).Scan(&count); err != nil {
		log.Error("failed to count rankings: %v", err)
		return 0, err
	}
	return count, nil
}

func (r *rankingRepository) DeleteAll(ctx context.Context) (int64, error) {
	log := logger.FromContext(ctx).WithPrefix("ranking_repo")
	log.Debug("deleting all rankings")
	defer r.metrics.ObserveQuery("ranking_delete_all", time.Now())

	res, err := r.db.ExecContext(ctx, `DELETE FROM rankings`)
	if err != nil {
		log.Error("failed to delete rankings: %v", err)
		return 0, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	log.Debug("deleted %d rankings", n)
	return n, nil
}
