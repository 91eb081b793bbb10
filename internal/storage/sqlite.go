package storage

import (
	"context"
	"log/slog"

	"github.com/paystream/ledger/internal/config"

	// Import sqlite driver for registration with database/sql
	_ "github.com/mattn/go-sqlite3"
)

var sqliteDialect = dialect{
	schema: `
		CREATE TABLE IF NOT EXISTS ledger_entries (
			key   TEXT PRIMARY KEY,
			value BLOB NOT NULL
		)
	`,
	get:    `SELECT value FROM ledger_entries WHERE key = ?`,
	upsert: `INSERT INTO ledger_entries (key, value) VALUES (?, ?) ON CONFLICT (key) DO UPDATE SET value = excluded.value`,
	delete: `DELETE FROM ledger_entries WHERE key = ?`,
}

// OpenSQLite connects a SQLite-backed store at cfg.Path. Suited to single-node
// and development deployments.
func OpenSQLite(ctx context.Context, cfg *config.DatabaseConfig, logger *slog.Logger) (*SQLStore, error) {
	logger.Info("opening sqlite store", "path", cfg.Path)
	return openSQL(ctx, "sqlite3", cfg.Path, sqliteDialect, cfg, logger)
}
