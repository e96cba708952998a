package db

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"strings"

	"github.com/Masterminds/squirrel"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/mattn/go-sqlite3"

	"github.com/cardstats/cardstats/internal/logger"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Driver names accepted by Open.
const (
	DriverSQLite   = "sqlite3"
	DriverPostgres = "pgx"
)

// DB is a database handle that knows which SQL dialect it speaks.
type DB struct {
	*sql.DB
	driver string
	log    *logger.Logger
}

// Open connects to the database, tunes the pool for the driver and applies
// any pending migrations.
func Open(driver, dsn string) (*DB, error) {
	log := logger.Default().WithPrefix("db")

	switch driver {
	case DriverSQLite:
		dsn = sqliteDSN(dsn)
	case DriverPostgres:
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}
	log.Info("opening database: driver=%s", driver)

	sqlDB, err := sql.Open(driver, dsn)
	if err != nil {
		log.Error("failed to open database: %v", err)
		return nil, err
	}
	if driver == DriverSQLite {
		// One connection serializes writers and keeps :memory: databases whole.
		sqlDB.SetMaxOpenConns(1)
	}

	db := &DB{DB: sqlDB, driver: driver, log: log}

	if err := sqlDB.PingContext(context.Background()); err != nil {
		log.Error("failed to reach database: %v", err)
		_ = sqlDB.Close()
		return nil, err
	}

	log.Debug("applying migrations")
	if err := db.applyMigrations(context.Background()); err != nil {
		log.Error("failed to apply migrations: %v", err)
		_ = sqlDB.Close()
		return nil, err
	}

	log.Info("database ready")
	return db, nil
}

func sqliteDSN(dsn string) string {
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + "_busy_timeout=5000&_foreign_keys=on&_journal_mode=WAL&_synchronous=NORMAL"
}

// Driver returns the driver name the handle was opened with.
func (db *DB) Driver() string {
	return db.driver
}

// Builder returns a squirrel statement builder using the placeholder format
// of the underlying driver.
func (db *DB) Builder() squirrel.StatementBuilderType {
	return Builder(db.driver)
}

// Builder returns a squirrel statement builder for the given driver.
func Builder(driver string) squirrel.StatementBuilderType {
	if driver == DriverPostgres {
		return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	}
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Question)
}

func (db *DB) applyMigrations(ctx context.Context) error {
	if _, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS schema_migrations (version TEXT PRIMARY KEY, applied_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP)`); err != nil {
		return err
	}

	entries, err := migrationsFS.ReadDir("migrations")
	if err != nil {
		return err
	}

	for _, entry := range entries {
		version := entry.Name()
		applied, err := db.isMigrationApplied(ctx, version)
		if err != nil {
			return err
		}
		if applied {
			db.log.Debug("migration %s already applied, skipping", version)
			continue
		}
		sqlBytes, err := migrationsFS.ReadFile("migrations/" + version)
		if err != nil {
			return err
		}
		db.log.Info("applying migration: %s", version)
		if err := db.exec(ctx, string(sqlBytes)); err != nil {
			db.log.Error("migration %s failed: %v", version, err)
			return fmt.Errorf("apply migration %s: %w", version, err)
		}
		query, args, err := db.Builder().Insert("schema_migrations").Columns("version").Values(version).ToSql()
		if err != nil {
			return err
		}
		if _, err := db.ExecContext(ctx, query, args...); err != nil {
			return err
		}
		db.log.Info("migration %s applied successfully", version)
	}
	return nil
}

// exec runs a migration script one statement at a time so every driver
// accepts it regardless of multi-statement support.
func (db *DB) exec(ctx context.Context, script string) error {
	for _, stmt := range strings.Split(script, ";") {
		if strings.TrimSpace(stmt) == "" {
			continue
		}
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

func (db *DB) isMigrationApplied(ctx context.Context, version string) (bool, error) {
	query, args, err := db.Builder().Select("version").From("schema_migrations").Where(squirrel.Eq{"version": version}).ToSql()
	if err != nil {
		return false, err
	}
	var v string
	err = db.QueryRowContext(ctx, query, args...).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	return err == nil, err
}
