// Package sqlrepo implements the repositories on database/sql. Statements are
// built with squirrel so the same code serves SQLite and PostgreSQL.
package sqlrepo

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/cardstats/cardstats/internal/logger"
	"github.com/cardstats/cardstats/internal/metrics"
	"github.com/cardstats/cardstats/internal/models"
)

// Option configures a repository.
type Option func(*options)

type options struct {
	now     func() time.Time
	metrics *metrics.Metrics
}

// WithClock sets the clock used to stamp new rows.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		o.now = now
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(o *options) {
		o.metrics = m
	}
}

func newOptions(opts []Option) options {
	o := options{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

var columns = map[models.Field]string{
	models.FieldFirstCount: "first_count",
	models.FieldLastCount:  "last_count",
	models.FieldCreatedAt:  "created_at",
}

// column maps a field to its column, rejecting anything unknown so callers
// can never splice arbitrary text into ORDER BY.
func column(f models.Field) (string, error) {
	c, ok := columns[f]
	if !ok {
		return "", fmt.Errorf("unknown stats field %q", f)
	}
	return c, nil
}

func tx(ctx context.Context, db *sql.DB, fn func(*sql.Tx) error) error {
	log := logger.FromContext(ctx).WithPrefix("repo")
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		log.Error("failed to begin transaction: %v", err)
		return err
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		log.Debug("transaction rolled back due to error: %v", err)
		return err
	}
	if err := tx.Commit(); err != nil {
		log.Error("failed to commit transaction: %v", err)
		return err
	}
	log.Debug("transaction committed")
	return nil
}
