package ports

import (
	"context"
	"time"

	"aizybot/internal/domain"
)

// RunSummary is the persisted form of one simulation run's outcome.
type RunSummary struct {
	ID           int64     // Assigned by the journal on save
	Strategy     string    // Name of the strategy that was exercised
	Pair         string    // Trading pair the run simulated
	Duration     int       // Number of simulated ticks
	NaturalCount int       // Trades closed by the strategy
	ForcedCount  int       // Trades force-closed at the horizon
	NaturalPnL   float64   // Total P&L over natural trades
	ForcedPnL    float64   // Total P&L over forced trades
	Alerts       int       // Number of consistency alerts raised
	RecordedAt   time.Time // Wall-clock time the run was journaled
}

// ReportJournal stores the results of completed simulation runs. It persists
// outcomes only; no in-run state survives a restart through it.
type ReportJournal interface {
	// SaveRun persists a run summary together with its trade records and
	// returns the assigned run ID.
	SaveRun(ctx context.Context, run *RunSummary, trades []*domain.TradeRecord) (int64, error)

	// FindRuns retrieves the most recent run summaries, up to limit.
	FindRuns(ctx context.Context, limit int) ([]*RunSummary, error)

	// FindTrades retrieves the trade records recorded for a run.
	// Returns ErrNotFound if the run does not exist.
	FindTrades(ctx context.Context, runID int64) ([]*domain.TradeRecord, error)
}
