package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/paystream/ledger/internal/config"
)

// querier is satisfied by *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type dialect struct {
	schema string
	get    string
	upsert string
	delete string
}

// SQLStore persists ledger entries in a single key-value table. The same type
// backs both the Postgres and SQLite drivers; only the dialect differs.
type SQLStore struct {
	db      *sql.DB
	q       querier
	dialect dialect
	logger  *slog.Logger
}

// Open connects the store configured by cfg.Driver: "postgres", "sqlite3" or
// "memory".
func Open(ctx context.Context, cfg *config.DatabaseConfig, logger *slog.Logger) (Store, error) {
	switch cfg.Driver {
	case "postgres":
		return OpenPostgres(ctx, cfg, logger)
	case "sqlite3":
		return OpenSQLite(ctx, cfg, logger)
	case "memory":
		logger.Info("using in-memory store")
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown database driver: %q", cfg.Driver)
	}
}

func openSQL(ctx context.Context, driver, dsn string, d dialect, cfg *config.DatabaseConfig, logger *slog.Logger) (*SQLStore, error) {
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if _, err := db.ExecContext(ctx, d.schema); err != nil {
		return nil, fmt.Errorf("failed to ensure ledger_entries table: %w", err)
	}

	logger.Info("connected to database",
		"driver", driver,
		"max_open_conns", cfg.MaxOpenConns,
		"max_idle_conns", cfg.MaxIdleConns,
	)

	return &SQLStore{db: db, q: db, dialect: d, logger: logger}, nil
}

func (s *SQLStore) Get(ctx context.Context, key Key) ([]byte, bool, error) {
	var value []byte
	err := s.q.QueryRowContext(ctx, s.dialect.get, string(key)).Scan(&value)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read %s: %w", key, err)
	}
	return value, true, nil
}

func (s *SQLStore) Set(ctx context.Context, key Key, value []byte) error {
	if _, err := s.q.ExecContext(ctx, s.dialect.upsert, string(key), value); err != nil {
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	return nil
}

func (s *SQLStore) Delete(ctx context.Context, key Key) error {
	if _, err := s.q.ExecContext(ctx, s.dialect.delete, string(key)); err != nil {
		return fmt.Errorf("failed to delete %s: %w", key, err)
	}
	return nil
}

func (s *SQLStore) Atomic(ctx context.Context, fn func(Store) error) error {
	if s.db == nil {
		// Already inside a transaction; join it.
		return fn(s)
	}

	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return fmt.Errorf("failed to start transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback() //nolint:errcheck // rollback error is not critical in defer
	}()

	view := &SQLStore{q: tx, dialect: s.dialect, logger: s.logger}
	if err := fn(view); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (s *SQLStore) Ping(ctx context.Context) error {
	if s.db == nil {
		return nil
	}
	return s.db.PingContext(ctx)
}

// Close closes the underlying connection pool.
func (s *SQLStore) Close() error {
	if s.db == nil {
		return nil
	}
	s.logger.Info("closing database connection")
	return s.db.Close()
}
