package sqlite

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aizybot/internal/domain"
	"aizybot/internal/ports"
)

// mockLogger implements ports.Logger for testing
type mockLogger struct{}

func (m *mockLogger) Debug(ctx context.Context, msg string, fields ...map[string]interface{}) {}
func (m *mockLogger) Info(ctx context.Context, msg string, fields ...map[string]interface{})  {}
func (m *mockLogger) Warn(ctx context.Context, msg string, fields ...map[string]interface{})  {}
func (m *mockLogger) Error(ctx context.Context, err error, msg string, fields ...map[string]interface{}) {
}

// setupTestJournal creates a temporary database for testing
func setupTestJournal(t *testing.T) (*Journal, func()) {
	t.Helper()

	tmpDir, err := os.MkdirTemp("", "aizybot-journal-test-*")
	require.NoError(t, err)

	j, err := NewJournal(Config{
		DBPath: filepath.Join(tmpDir, "test.db"),
		Logger: &mockLogger{},
	})
	require.NoError(t, err)

	cleanup := func() {
		j.Close()
		os.RemoveAll(tmpDir)
	}
	return j, cleanup
}

func sampleTrades() []*domain.TradeRecord {
	opened := time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)
	return []*domain.TradeRecord{
		{
			OrderID: "ord-1", Pair: "BTC/USDT", Side: domain.Buy, Amount: 1,
			EntryPrice: 100, ExitPrice: 110, ProfitLoss: 10, ROE: 0.1,
			Duration: 3, OpenedAt: opened, ClosedAt: opened.Add(3 * time.Minute),
			Reason: domain.CloseNatural,
		},
		{
			OrderID: "ord-2", Pair: "BTC/USDT", Side: domain.Sell, Amount: 2,
			EntryPrice: 110, ExitPrice: 105, ProfitLoss: 5, ROE: 0.045,
			Duration: 1.5, OpenedAt: opened.Add(time.Minute), ClosedAt: opened.Add(5 * time.Minute),
			Reason: domain.CloseForced,
		},
	}
}

func TestJournal_SaveAndFindRun(t *testing.T) {
	j, cleanup := setupTestJournal(t)
	defer cleanup()
	ctx := context.Background()

	run := &ports.RunSummary{
		Strategy: "trend", Pair: "BTC/USDT", Duration: 60,
		NaturalCount: 1, ForcedCount: 1, NaturalPnL: 10, ForcedPnL: 5, Alerts: 0,
	}
	id, err := j.SaveRun(ctx, run, sampleTrades())
	require.NoError(t, err)
	assert.Equal(t, id, run.ID)

	runs, err := j.FindRuns(ctx, 10)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, "trend", runs[0].Strategy)
	assert.Equal(t, 60, runs[0].Duration)
	assert.InDelta(t, 10, runs[0].NaturalPnL, 1e-9)
	assert.False(t, runs[0].RecordedAt.IsZero())
}

func TestJournal_FindTrades(t *testing.T) {
	j, cleanup := setupTestJournal(t)
	defer cleanup()
	ctx := context.Background()

	run := &ports.RunSummary{Strategy: "smacross", Pair: "ETH/USDT", Duration: 30}
	id, err := j.SaveRun(ctx, run, sampleTrades())
	require.NoError(t, err)

	trades, err := j.FindTrades(ctx, id)
	require.NoError(t, err)
	require.Len(t, trades, 2)

	assert.Equal(t, "ord-1", trades[0].OrderID)
	assert.Equal(t, domain.Buy, trades[0].Side)
	assert.Equal(t, domain.CloseNatural, trades[0].Reason)
	assert.InDelta(t, 10, trades[0].ProfitLoss, 1e-9)

	assert.Equal(t, "ord-2", trades[1].OrderID)
	assert.Equal(t, domain.CloseForced, trades[1].Reason)
	assert.InDelta(t, 1.5, trades[1].Duration, 1e-9)
}

func TestJournal_FindTradesUnknownRun(t *testing.T) {
	j, cleanup := setupTestJournal(t)
	defer cleanup()

	_, err := j.FindTrades(context.Background(), 999)
	assert.ErrorIs(t, err, ports.ErrNotFound)
}

func TestJournal_FindRunsOrdering(t *testing.T) {
	j, cleanup := setupTestJournal(t)
	defer cleanup()
	ctx := context.Background()

	base := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		run := &ports.RunSummary{
			Strategy: "trend", Pair: "BTC/USDT", Duration: 10 + i,
			RecordedAt: base.Add(time.Duration(i) * time.Hour),
		}
		_, err := j.SaveRun(ctx, run, nil)
		require.NoError(t, err)
	}

	runs, err := j.FindRuns(ctx, 2)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, 12, runs[0].Duration, "newest run first")
	assert.Equal(t, 11, runs[1].Duration)
}
