package database

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/adamanr/shift_console/internal/config"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Schema holds the tables the console owns itself. Everything else lives in
// the scheduling backend.
var Schema = []string{
	`CREATE TABLE IF NOT EXISTS swap_configs (
		id BIGSERIAL PRIMARY KEY,
		department_id TEXT NOT NULL UNIQUE,
		swaps_enabled BOOLEAN NOT NULL DEFAULT TRUE,
		requires_approval BOOLEAN NOT NULL DEFAULT TRUE,
		min_advance_notice BIGINT NOT NULL DEFAULT 1 CHECK (min_advance_notice >= 1),
		max_swaps_per_month BIGINT NOT NULL DEFAULT 3 CHECK (max_swaps_per_month >= 1),
		created_at TIMESTAMP NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMP NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS audit_events (
		id BIGSERIAL PRIMARY KEY,
		actor_id TEXT NOT NULL,
		action TEXT NOT NULL,
		resource TEXT NOT NULL,
		details TEXT NOT NULL DEFAULT '{}',
		created_at TIMESTAMP NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS audit_events_created_at_idx ON audit_events (created_at DESC)`,
}

type Execer interface {
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

func ConnString(cfg *config.Config) string {
	return fmt.Sprintf("postgres://%s:%s@%s/%s",
		cfg.Database.User, cfg.Database.Password, cfg.Database.Host, cfg.Database.Database)
}

func NewPool(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, ConnString(cfg))
	if err != nil {
		logger.Error("Error connecting to DB", slog.String("error", err.Error()))
		return nil, err
	}

	if err := pool.Ping(ctx); err != nil {
		logger.Error("Error pinging DB", slog.String("error", err.Error()))
		pool.Close()
		return nil, err
	}

	logger.Info("Connected to DB successfully")
	return pool, nil
}

// Migrate applies Schema in order. Every statement is idempotent.
func Migrate(ctx context.Context, db Execer, logger *slog.Logger) error {
	for i, stmt := range Schema {
		if _, err := db.Exec(ctx, stmt); err != nil {
			logger.Error("Error applying schema", slog.Int("statement", i), slog.String("error", err.Error()))
			return fmt.Errorf("schema statement %d: %w", i, err)
		}
	}

	logger.Info("Schema is up to date", slog.Int("statements", len(Schema)))
	return nil
}
