package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"aizybot/internal/domain"
	"aizybot/internal/ports"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// Journal implements ports.ReportJournal using SQLite. It stores the
// outcomes of completed simulation runs; no in-run state lives here.
type Journal struct {
	db     *sql.DB
	logger ports.Logger
}

// Config holds configuration for the SQLite journal.
type Config struct {
	DBPath string
	Logger ports.Logger
}

// NewJournal opens (and if necessary creates) the journal database.
func NewJournal(cfg Config) (*Journal, error) {
	if cfg.Logger == nil {
		return nil, fmt.Errorf("logger is required for SQLite journal")
	}
	dbPath := cfg.DBPath
	if dbPath == "" {
		dbPath = "./data/backtests.db"
	}

	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		err = fmt.Errorf("failed to create data directory '%s': %w", filepath.Dir(dbPath), err)
		cfg.Logger.Error(context.Background(), err, "SQLite journal initialization failed")
		return nil, err
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		err = fmt.Errorf("failed to open database at '%s': %w", dbPath, err)
		cfg.Logger.Error(context.Background(), err, "SQLite journal initialization failed")
		return nil, err
	}
	if err := db.Ping(); err != nil {
		db.Close()
		err = fmt.Errorf("failed to ping database at '%s': %w: %v", dbPath, ports.ErrDBConnection, err)
		cfg.Logger.Error(context.Background(), err, "SQLite journal initialization failed")
		return nil, err
	}

	// SQLite handles concurrency internally; limit the Go side to one conn.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	j := &Journal{db: db, logger: cfg.Logger}
	if err := j.initializeSchema(context.Background()); err != nil {
		db.Close()
		err = fmt.Errorf("failed to initialize journal schema: %w", err)
		cfg.Logger.Error(context.Background(), err, "SQLite journal initialization failed")
		return nil, err
	}
	cfg.Logger.Info(context.Background(), "Backtest journal ready", map[string]interface{}{"path": dbPath})
	return j, nil
}

func (j *Journal) initializeSchema(ctx context.Context) error {
	const schema = `
	CREATE TABLE IF NOT EXISTS runs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		strategy TEXT NOT NULL,
		pair TEXT NOT NULL,
		duration INTEGER NOT NULL,
		natural_count INTEGER NOT NULL,
		forced_count INTEGER NOT NULL,
		natural_pnl REAL NOT NULL,
		forced_pnl REAL NOT NULL,
		alerts INTEGER NOT NULL,
		recorded_at TIMESTAMP NOT NULL
	);

	CREATE TABLE IF NOT EXISTS run_trades (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id INTEGER NOT NULL,
		order_id TEXT NOT NULL,
		pair TEXT NOT NULL,
		side TEXT NOT NULL,
		amount REAL NOT NULL,
		entry_price REAL NOT NULL,
		exit_price REAL NOT NULL,
		profit_loss REAL NOT NULL,
		roe REAL NOT NULL,
		duration REAL NOT NULL,
		opened_at TIMESTAMP NOT NULL,
		closed_at TIMESTAMP NOT NULL,
		reason TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_run_trades_run_id ON run_trades (run_id);
	CREATE INDEX IF NOT EXISTS idx_runs_recorded_at ON runs (recorded_at);
	`
	if _, err := j.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to execute schema initialization: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (j *Journal) Close() error {
	if j.db != nil {
		j.logger.Info(context.Background(), "Closing backtest journal")
		return j.db.Close()
	}
	return nil
}

// SaveRun persists a run summary with its trade records inside one
// transaction and returns the assigned run ID.
func (j *Journal) SaveRun(ctx context.Context, run *ports.RunSummary, trades []*domain.TradeRecord) (int64, error) {
	tx, err := j.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin journal transaction: %w", err)
	}
	defer tx.Rollback()

	recordedAt := run.RecordedAt
	if recordedAt.IsZero() {
		recordedAt = time.Now()
	}

	const runQuery = `
	INSERT INTO runs (strategy, pair, duration, natural_count, forced_count, natural_pnl, forced_pnl, alerts, recorded_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	result, err := tx.ExecContext(ctx, runQuery,
		run.Strategy, run.Pair, run.Duration, run.NaturalCount, run.ForcedCount,
		run.NaturalPnL, run.ForcedPnL, run.Alerts, recordedAt)
	if err != nil {
		return 0, fmt.Errorf("failed to insert run for strategy %s: %w", run.Strategy, err)
	}
	runID, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get run ID: %w", err)
	}

	const tradeQuery = `
	INSERT INTO run_trades (run_id, order_id, pair, side, amount, entry_price, exit_price, profit_loss, roe, duration, opened_at, closed_at, reason)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	for _, t := range trades {
		if _, err := tx.ExecContext(ctx, tradeQuery,
			runID, t.OrderID, t.Pair, t.Side, t.Amount, t.EntryPrice, t.ExitPrice,
			t.ProfitLoss, t.ROE, t.Duration, t.OpenedAt, t.ClosedAt, t.Reason); err != nil {
			return 0, fmt.Errorf("failed to insert trade %s for run %d: %w", t.OrderID, runID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit journal transaction: %w", err)
	}
	run.ID = runID
	j.logger.Debug(ctx, "Run journaled", map[string]interface{}{"runID": runID, "trades": len(trades)})
	return runID, nil
}

// FindRuns retrieves the most recent run summaries, newest first.
func (j *Journal) FindRuns(ctx context.Context, limit int) ([]*ports.RunSummary, error) {
	if limit <= 0 {
		limit = 50
	}
	const query = `
	SELECT id, strategy, pair, duration, natural_count, forced_count, natural_pnl, forced_pnl, alerts, recorded_at
	FROM runs ORDER BY recorded_at DESC, id DESC LIMIT ?`

	rows, err := j.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w: %v", ports.ErrQueryFailed, err)
	}
	defer rows.Close()

	var runs []*ports.RunSummary
	for rows.Next() {
		run := &ports.RunSummary{}
		if err := rows.Scan(&run.ID, &run.Strategy, &run.Pair, &run.Duration,
			&run.NaturalCount, &run.ForcedCount, &run.NaturalPnL, &run.ForcedPnL,
			&run.Alerts, &run.RecordedAt); err != nil {
			return nil, fmt.Errorf("failed to scan run row: %w", err)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// FindTrades retrieves the trade records recorded for a run, in insertion
// order. Returns ports.ErrNotFound for an unknown run.
func (j *Journal) FindTrades(ctx context.Context, runID int64) ([]*domain.TradeRecord, error) {
	var exists int
	if err := j.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM runs WHERE id = ?`, runID).Scan(&exists); err != nil {
		return nil, fmt.Errorf("failed to check run %d: %w", runID, err)
	}
	if exists == 0 {
		return nil, fmt.Errorf("run %d: %w", runID, ports.ErrNotFound)
	}

	const query = `
	SELECT order_id, pair, side, amount, entry_price, exit_price, profit_loss, roe, duration, opened_at, closed_at, reason
	FROM run_trades WHERE run_id = ? ORDER BY id`

	rows, err := j.db.QueryContext(ctx, query, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query trades for run %d: %w: %v", runID, ports.ErrQueryFailed, err)
	}
	defer rows.Close()

	var trades []*domain.TradeRecord
	for rows.Next() {
		t := &domain.TradeRecord{}
		if err := rows.Scan(&t.OrderID, &t.Pair, &t.Side, &t.Amount, &t.EntryPrice, &t.ExitPrice,
			&t.ProfitLoss, &t.ROE, &t.Duration, &t.OpenedAt, &t.ClosedAt, &t.Reason); err != nil {
			return nil, fmt.Errorf("failed to scan trade row: %w", err)
		}
		trades = append(trades, t)
	}
	return trades, rows.Err()
}
