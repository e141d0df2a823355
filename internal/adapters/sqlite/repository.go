package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/mattn/go-sqlite3"

	"tradeJournal/internal/ports"
)

// Repository implements the ports.TradeStore and ports.StrategyRepository interfaces using SQLite.
type Repository struct {
	db     *sql.DB
	sq     squirrel.StatementBuilderType
	logger ports.Logger
	feed   *feed
	now    func() time.Time
}

// Config holds configuration for the SQLite repository.
type Config struct {
	DBPath string
	Logger ports.Logger
}

// NewRepository creates a new SQLite repository instance.
func NewRepository(cfg Config) (*Repository, error) {
	if cfg.Logger == nil {
		return nil, fmt.Errorf("logger is required for SQLite repository")
	}
	dbPath := cfg.DBPath
	if dbPath == "" {
		dbPath = "./data/journal.db" // Default path
	}

	// Create data directory if it doesn't exist
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		err = fmt.Errorf("failed to create data directory '%s': %w", filepath.Dir(dbPath), err)
		cfg.Logger.Error(context.Background(), err, "SQLite repository initialization failed")
		return nil, err
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		err = fmt.Errorf("failed to open database at '%s': %w: %w", dbPath, ports.ErrDBConnection, err)
		cfg.Logger.Error(context.Background(), err, "SQLite repository initialization failed")
		return nil, err
	}

	if err := db.Ping(); err != nil {
		db.Close()
		err = fmt.Errorf("failed to ping database at '%s': %w: %w", dbPath, ports.ErrDBConnection, err)
		cfg.Logger.Error(context.Background(), err, "SQLite repository initialization failed")
		return nil, err
	}

	// A single connection serialises writers; SQLite locks the whole file anyway.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	cfg.Logger.Info(context.Background(), "SQLite database connection established", ports.Fields{"path": dbPath})

	repo := newRepository(db, cfg.Logger)
	if err := repo.initializeSchema(context.Background()); err != nil {
		db.Close()
		err = fmt.Errorf("failed to initialize database schema: %w", err)
		cfg.Logger.Error(context.Background(), err, "SQLite repository initialization failed")
		return nil, err
	}
	cfg.Logger.Info(context.Background(), "Database schema initialized/verified")

	return repo, nil
}

// newRepository wraps an open connection without touching the schema.
func newRepository(db *sql.DB, logger ports.Logger) *Repository {
	return &Repository{
		db:     db,
		sq:     squirrel.StatementBuilder.PlaceholderFormat(squirrel.Question),
		logger: logger,
		feed:   newFeed(),
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// initializeSchema creates tables if they don't exist.
// Money columns are TEXT so decimals round-trip exactly.
func (r *Repository) initializeSchema(ctx context.Context) error {
	const schema = `
	CREATE TABLE IF NOT EXISTS trades (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		symbol TEXT NOT NULL,
		entry_price TEXT NOT NULL,
		exit_price TEXT DEFAULT NULL,
		quantity INTEGER NOT NULL,
		type TEXT NOT NULL,
		status TEXT NOT NULL,
		pnl TEXT NOT NULL DEFAULT '0',
		date TEXT NOT NULL,
		market TEXT NOT NULL DEFAULT '',
		target TEXT DEFAULT NULL,
		stop_loss TEXT DEFAULT NULL,
		tags TEXT NOT NULL DEFAULT '[]',
		strategy_id TEXT DEFAULT NULL,
		notes TEXT NOT NULL DEFAULT '',
		confidence INTEGER NOT NULL DEFAULT 0,
		image_urls TEXT NOT NULL DEFAULT '[]',
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL
	);

	CREATE TABLE IF NOT EXISTS trade_orders (
		trade_id TEXT NOT NULL,
		seq INTEGER NOT NULL,
		action TEXT NOT NULL,
		date TEXT NOT NULL,
		time TEXT NOT NULL DEFAULT '',
		quantity INTEGER NOT NULL,
		price TEXT NOT NULL,
		fee TEXT NOT NULL DEFAULT '0',
		PRIMARY KEY (trade_id, seq)
	);

	CREATE TABLE IF NOT EXISTS strategies (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		name TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		rules TEXT NOT NULL DEFAULT '',
		risk_management TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL
	);
	-- Add indexes for common lookups
	CREATE INDEX IF NOT EXISTS idx_trades_user_date ON trades (user_id, date);
	CREATE INDEX IF NOT EXISTS idx_trades_user_strategy ON trades (user_id, strategy_id);
	CREATE INDEX IF NOT EXISTS idx_strategies_user ON strategies (user_id);
	`
	_, err := r.db.ExecContext(ctx, schema)
	if err != nil {
		return fmt.Errorf("failed to execute schema initialization: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (r *Repository) Close() error {
	if r.db != nil {
		r.logger.Info(context.Background(), "Closing SQLite database connection")
		return r.db.Close()
	}
	return nil
}

// classify maps driver errors onto the ports sentinels.
func classify(err error, fallback error) error {
	var se sqlite3.Error
	if errors.As(err, &se) && se.Code == sqlite3.ErrConstraint {
		return ports.ErrDuplicateEntry
	}
	return fallback
}

// inTx runs fn inside a transaction, rolling back on error.
func (r *Repository) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w: %w", ports.ErrDBConnection, err)
	}
	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			r.logger.Error(ctx, rbErr, "Failed to roll back transaction")
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// scanner defines an interface compatible with *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...interface{}) error
}
