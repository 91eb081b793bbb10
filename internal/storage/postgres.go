package storage

import (
	"context"
	"log/slog"

	"github.com/paystream/ledger/internal/config"

	// Import postgres driver for registration with database/sql
	_ "github.com/lib/pq"
)

var postgresDialect = dialect{
	schema: `
		CREATE TABLE IF NOT EXISTS ledger_entries (
			key   TEXT PRIMARY KEY,
			value BYTEA NOT NULL
		)
	`,
	get:    `SELECT value FROM ledger_entries WHERE key = $1`,
	upsert: `INSERT INTO ledger_entries (key, value) VALUES ($1, $2) ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value`,
	delete: `DELETE FROM ledger_entries WHERE key = $1`,
}

// OpenPostgres connects a Postgres-backed store.
func OpenPostgres(ctx context.Context, cfg *config.DatabaseConfig, logger *slog.Logger) (*SQLStore, error) {
	logger.Info("connecting to postgres",
		"host", cfg.Host,
		"port", cfg.Port,
		"database", cfg.DBName,
	)
	return openSQL(ctx, "postgres", cfg.DSN(), postgresDialect, cfg, logger)
}
