package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"time"

	"analyseman/internal/domain"
	"analyseman/internal/ports"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// Repository implements ports.TradeRepository using SQLite.
type Repository struct {
	db     *sql.DB
	logger ports.Logger
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
		dbPath = "./data/analyseman.db"
	}

	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		err = fmt.Errorf("failed to create data directory '%s': %w", filepath.Dir(dbPath), err)
		cfg.Logger.Error(context.Background(), err, "SQLite repository initialization failed")
		return nil, err
	}

	// WAL mode for better concurrency between scan inserts and ranking reads.
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		err = fmt.Errorf("failed to open database at '%s': %w", dbPath, err)
		cfg.Logger.Error(context.Background(), err, "SQLite repository initialization failed")
		return nil, err
	}

	if err := db.Ping(); err != nil {
		db.Close()
		err = fmt.Errorf("failed to ping database at '%s': %w", dbPath, err)
		cfg.Logger.Error(context.Background(), err, "SQLite repository initialization failed")
		return nil, err
	}

	// The Go driver benefits from a single connection with SQLite.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	repo := &Repository{db: db, logger: cfg.Logger}

	if err := repo.initializeSchema(context.Background()); err != nil {
		db.Close()
		err = fmt.Errorf("failed to initialize database schema: %w", err)
		cfg.Logger.Error(context.Background(), err, "SQLite repository initialization failed")
		return nil, err
	}
	cfg.Logger.Info(context.Background(), "Trade store ready", map[string]interface{}{"path": dbPath})

	return repo, nil
}

func (r *Repository) initializeSchema(ctx context.Context) error {
	const schema = `
	CREATE TABLE IF NOT EXISTS trades (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		source_id TEXT NOT NULL,
		trader TEXT NOT NULL,
		symbol TEXT NOT NULL DEFAULT '',
		side TEXT NOT NULL DEFAULT '',
		leverage INTEGER NOT NULL DEFAULT 0,
		entry_price REAL NOT NULL DEFAULT 0,
		exit_price REAL NOT NULL DEFAULT 0,
		pnl_percent REAL NOT NULL,
		created_at TIMESTAMP NOT NULL,
		source_link TEXT NOT NULL DEFAULT ''
	);
	CREATE UNIQUE INDEX IF NOT EXISTS idx_trades_source ON trades (source_id);
	CREATE INDEX IF NOT EXISTS idx_trades_created_at ON trades (created_at);
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
		r.logger.Info(context.Background(), "Closing trade store")
		return r.db.Close()
	}
	return nil
}

// InsertTrade saves a trade record. The UNIQUE index on source_id combined
// with INSERT OR IGNORE makes re-inserting the same source message a no-op,
// which keeps backfill re-runs safe. Returns true when a new row was
// written.
func (r *Repository) InsertTrade(ctx context.Context, trade *domain.TradeRecord) (bool, error) {
	if trade.SourceID == "" || trade.Trader == "" {
		return false, fmt.Errorf("trade record missing source ID or trader: %w", ports.ErrInvalidRequest)
	}
	if math.IsNaN(trade.PnlPercent) || math.IsInf(trade.PnlPercent, 0) {
		return false, fmt.Errorf("trade record has non-finite PnL: %w", ports.ErrInvalidRequest)
	}

	const query = `
	INSERT OR IGNORE INTO trades (source_id, trader, symbol, side, leverage,
	                              entry_price, exit_price, pnl_percent, created_at, source_link)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	result, err := r.db.ExecContext(ctx, query,
		trade.SourceID, trade.Trader, trade.Symbol, string(trade.Side), trade.Leverage,
		trade.EntryPrice, trade.ExitPrice, trade.PnlPercent, trade.Timestamp, trade.SourceLink)
	if err != nil {
		return false, fmt.Errorf("failed to insert trade for source %s: %w", trade.SourceID, err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected for trade %s: %w", trade.SourceID, err)
	}
	if rows == 0 {
		r.logger.Debug(ctx, "Trade already recorded", map[string]interface{}{"sourceID": trade.SourceID})
		return false, nil
	}

	id, err := result.LastInsertId()
	if err != nil {
		return false, fmt.Errorf("failed to get last insert ID for trade %s: %w", trade.SourceID, err)
	}
	trade.ID = id
	r.logger.Debug(ctx, "Trade recorded", map[string]interface{}{
		"tradeID": id, "trader": trade.Trader, "pnl": trade.PnlPercent,
	})
	return true, nil
}

// FindAll retrieves every stored trade ordered by timestamp ascending.
// Insertion order is preserved for equal timestamps via the id column,
// which ranking tie-breaks rely on.
func (r *Repository) FindAll(ctx context.Context) ([]*domain.TradeRecord, error) {
	const query = `
	SELECT id, source_id, trader, symbol, side, leverage,
	       entry_price, exit_price, pnl_percent, created_at, source_link
	FROM trades
	ORDER BY created_at ASC, id ASC`

	return r.queryTrades(ctx, query)
}

// FindSince retrieves trades with created_at >= since, same ordering as FindAll.
func (r *Repository) FindSince(ctx context.Context, since time.Time) ([]*domain.TradeRecord, error) {
	const query = `
	SELECT id, source_id, trader, symbol, side, leverage,
	       entry_price, exit_price, pnl_percent, created_at, source_link
	FROM trades
	WHERE created_at >= ?
	ORDER BY created_at ASC, id ASC`

	return r.queryTrades(ctx, query, since)
}

// CountTrades returns the number of stored trades.
func (r *Repository) CountTrades(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM trades`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count trades: %w", err)
	}
	return count, nil
}

func (r *Repository) queryTrades(ctx context.Context, query string, args ...interface{}) ([]*domain.TradeRecord, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query trades: %w", err)
	}
	defer rows.Close()

	trades := make([]*domain.TradeRecord, 0)
	for rows.Next() {
		trade, err := scanTrade(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan trade row: %w", err)
		}
		trades = append(trades, trade)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating trade rows: %w", err)
	}
	return trades, nil
}

// scanner defines an interface compatible with *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...interface{}) error
}

func scanTrade(s scanner) (*domain.TradeRecord, error) {
	t := &domain.TradeRecord{}
	var side string
	err := s.Scan(
		&t.ID, &t.SourceID, &t.Trader, &t.Symbol, &side, &t.Leverage,
		&t.EntryPrice, &t.ExitPrice, &t.PnlPercent, &t.Timestamp, &t.SourceLink)
	if err != nil {
		return nil, err
	}
	t.Side = domain.Side(side)
	return t, nil
}
