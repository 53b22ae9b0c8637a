package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

type Config struct {
	Driver          string
	DSN             string
	MaxConns        int32
	MinConns        int32
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
	DialTimeout     time.Duration
}

// DB is a database/sql handle plus the dialect used to rewrite placeholders.
type DB struct {
	*sql.DB
	driver string
	pool   *pgxpool.Pool
	logger *slog.Logger
}

// Open connects to sqlite (modernc, pure Go) or postgres (pgx pool exposed through database/sql).
func Open(ctx context.Context, cfg Config, logger *slog.Logger) (*DB, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.DialTimeout <= 0 {
		cfg.DialTimeout = 3 * time.Second
	}
	switch cfg.Driver {
	case DriverSQLite:
		logger.Info("opening run history", "driver", cfg.Driver, "dsn", cfg.DSN)
		db, err := sql.Open("sqlite", cfg.DSN)
		if err != nil {
			return nil, err
		}
		// One writer keeps sqlite from reporting SQLITE_BUSY under concurrent runs.
		db.SetMaxOpenConns(1)
		out := &DB{DB: db, driver: cfg.Driver, logger: logger}
		if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys = ON"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("enable foreign keys: %w", err)
		}
		return out, nil

	case DriverPostgres:
		logger.Info("connecting to database", "driver", cfg.Driver)
		pc, err := pgxpool.ParseConfig(cfg.DSN)
		if err != nil {
			logger.Error("failed to parse database dsn", "error", err)
			return nil, err
		}
		if cfg.MaxConns > 0 {
			pc.MaxConns = cfg.MaxConns
		}
		pc.MinConns = cfg.MinConns
		if cfg.MaxConnLifetime > 0 {
			pc.MaxConnLifetime = cfg.MaxConnLifetime
		}
		if cfg.MaxConnIdleTime > 0 {
			pc.MaxConnIdleTime = cfg.MaxConnIdleTime
		}
		pc.ConnConfig.RuntimeParams["application_name"] = "layout-verifier"

		dctx, cancel := context.WithTimeout(ctx, cfg.DialTimeout)
		defer cancel()
		pool, err := pgxpool.NewWithConfig(dctx, pc)
		if err != nil {
			logger.Error("failed to connect to database", "error", err)
			return nil, err
		}
		logger.Info("successfully connected to database")
		return &DB{DB: stdlib.OpenDBFromPool(pool), driver: cfg.Driver, pool: pool, logger: logger}, nil
	}
	return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
}

func (db *DB) Dialect() string { return db.driver }

// Close closes the database connections gracefully
func (db *DB) Close() error {
	db.logger.Info("closing database connections")
	err := db.DB.Close()
	if db.pool != nil {
		db.pool.Close()
	}
	return err
}

// HealthCheck pings the database to catch DSN issues early.
func (db *DB) HealthCheck(ctx context.Context, timeout time.Duration) error {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	if err := db.PingContext(ctx); err != nil {
		db.logger.Error("database ping failed", "error", err)
		return err
	}
	db.logger.Debug("database ping successful")
	return nil
}

// rebind rewrites '?' placeholders to $n for postgres.
func (db *DB) rebind(q string) string {
	if db.driver != DriverPostgres {
		return q
	}
	var b strings.Builder
	n := 0
	for _, r := range q {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS verification_run (
		id                  TEXT PRIMARY KEY,
		source              TEXT NOT NULL,
		status              TEXT NOT NULL,
		started_at          TEXT NOT NULL,
		finished_at         TEXT,
		documents_supplied  INTEGER NOT NULL DEFAULT 0,
		documents_processed INTEGER NOT NULL DEFAULT 0,
		unresolved_count    INTEGER NOT NULL DEFAULT 0,
		extraction_failed   INTEGER NOT NULL DEFAULT 0,
		complete            INTEGER NOT NULL DEFAULT 0,
		overall_success_rate DOUBLE PRECISION NOT NULL DEFAULT 0,
		error_message       TEXT
	)`,
	`CREATE TABLE IF NOT EXISTS verification_result (
		run_id         TEXT NOT NULL REFERENCES verification_run(id) ON DELETE CASCADE,
		seq            INTEGER NOT NULL,
		identifier     TEXT NOT NULL,
		document       TEXT NOT NULL,
		status         TEXT NOT NULL,
		matched_fields INTEGER NOT NULL DEFAULT 0,
		total_fields   INTEGER NOT NULL DEFAULT 0,
		success_rate   DOUBLE PRECISION,
		missing        TEXT NOT NULL DEFAULT '[]',
		PRIMARY KEY (run_id, seq)
	)`,
	`CREATE INDEX IF NOT EXISTS verification_run_started_at_idx ON verification_run (started_at)`,
}

// Migrate creates the run history tables when missing.
func (db *DB) Migrate(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}
