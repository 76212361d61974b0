package strategies

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aizybot/internal/bot"
	"aizybot/internal/domain"
)

type nopLogger struct{}

func (nopLogger) Debug(ctx context.Context, msg string, fields ...map[string]interface{}) {}
func (nopLogger) Info(ctx context.Context, msg string, fields ...map[string]interface{})  {}
func (nopLogger) Warn(ctx context.Context, msg string, fields ...map[string]interface{})  {}
func (nopLogger) Error(ctx context.Context, err error, msg string, fields ...map[string]interface{}) {
}

func newBareBot(t *testing.T) *bot.Bot {
	t.Helper()
	b, err := bot.New(nopLogger{}, nil)
	require.NoError(t, err)
	return b
}

func candleAt(open, close float64, minute int) *domain.Candle {
	high, low := open, close
	if close > high {
		high = close
	}
	if open < low {
		low = open
	}
	return &domain.Candle{
		Timestamp: time.Date(2024, 6, 1, 0, minute, 0, 0, time.UTC),
		Open:      open,
		High:      high,
		Low:       low,
		Close:     close,
		Volume:    10,
	}
}

func TestTrendFollower(t *testing.T) {
	b := newBareBot(t)
	s := NewTrendFollower(b, TrendFollowerConfig{Pair: "ETH/USDT", Amount: 2}, nopLogger{})
	ctx := context.Background()
	require.NoError(t, s.Setup(ctx))

	// Green candle while flat: enter.
	require.NoError(t, s.OnCandle(ctx, candleAt(100, 105, 0)))
	require.Len(t, b.ListActiveTrades(), 1)
	assert.Equal(t, 2.0, b.ListActiveTrades()[0].Amount)

	// Another green candle: already long, no pyramiding.
	require.NoError(t, s.OnCandle(ctx, candleAt(105, 108, 1)))
	assert.Len(t, b.ListActiveTrades(), 1)

	// Red candle: exit.
	require.NoError(t, s.OnCandle(ctx, candleAt(108, 102, 2)))
	assert.Empty(t, b.ListActiveTrades())

	// Red candle while flat: nothing to do.
	require.NoError(t, s.OnCandle(ctx, candleAt(102, 99, 3)))
	assert.Empty(t, b.ListActiveTrades())
}

func TestSMACrossValidation(t *testing.T) {
	b := newBareBot(t)
	_, err := NewSMACross(b, SMACrossConfig{FastPeriod: 0, SlowPeriod: 5}, nopLogger{})
	assert.Error(t, err)
	_, err = NewSMACross(b, SMACrossConfig{FastPeriod: 5, SlowPeriod: 5}, nopLogger{})
	assert.Error(t, err)
}

func TestSMACrossTradesTheCross(t *testing.T) {
	b := newBareBot(t)
	s, err := NewSMACross(b, SMACrossConfig{FastPeriod: 2, SlowPeriod: 3}, nopLogger{})
	require.NoError(t, err)
	ctx := context.Background()
	require.NoError(t, s.Setup(ctx))

	// Falling series establishes fast below slow.
	closes := []float64{100, 98, 96, 94}
	for i, c := range closes {
		require.NoError(t, s.OnCandle(ctx, candleAt(c, c, i)))
	}
	require.Empty(t, b.ListActiveTrades())

	// Sharp rally flips fast above slow: golden cross, long entered.
	require.NoError(t, s.OnCandle(ctx, candleAt(94, 120, 4)))
	require.Len(t, b.ListActiveTrades(), 1)

	// Collapse flips it back: death cross, position closed.
	require.NoError(t, s.OnCandle(ctx, candleAt(120, 60, 5)))
	assert.Empty(t, b.ListActiveTrades())
}

func TestRSIReversalValidation(t *testing.T) {
	b := newBareBot(t)
	_, err := NewRSIReversal(b, RSIReversalConfig{Period: 0, Overbought: 70, Oversold: 30}, nopLogger{})
	assert.Error(t, err)
	_, err = NewRSIReversal(b, RSIReversalConfig{Period: 14, Overbought: 30, Oversold: 70}, nopLogger{})
	assert.Error(t, err)
}

func TestRSIReversalTradesExtremes(t *testing.T) {
	b := newBareBot(t)
	s, err := NewRSIReversal(b, RSIReversalConfig{Period: 3, Overbought: 70, Oversold: 30}, nopLogger{})
	require.NoError(t, err)
	ctx := context.Background()
	require.NoError(t, s.Setup(ctx))

	// Straight decline drives RSI to 0: oversold, long entered.
	minute := 0
	for _, c := range []float64{100, 95, 90, 85, 80} {
		require.NoError(t, s.OnCandle(ctx, candleAt(c, c, minute)))
		minute++
	}
	require.Len(t, b.ListActiveTrades(), 1)

	// Straight rally drives RSI to 100: overbought, position closed.
	for _, c := range []float64{90, 100, 110, 120, 130} {
		require.NoError(t, s.OnCandle(ctx, candleAt(c, c, minute)))
		minute++
	}
	assert.Empty(t, b.ListActiveTrades())
}

func TestFactory(t *testing.T) {
	params := Params{Pair: "BTC/USDT", Amount: 1, FastPeriod: 5, SlowPeriod: 20, RSIPeriod: 14, Overbought: 70, Oversold: 30}

	for _, name := range []string{"trend", "smacross", "rsi"} {
		factory, err := Factory(name, params, nopLogger{})
		require.NoError(t, err, name)
		s := factory(newBareBot(t))
		require.NotNil(t, s, name)
		assert.NoError(t, s.Setup(context.Background()), name)
	}

	_, err := Factory("martingale", params, nopLogger{})
	assert.Error(t, err)

	// Bad knobs surface at Setup, not as a nil strategy.
	bad := Params{FastPeriod: 10, SlowPeriod: 5}
	factory, err := Factory("smacross", bad, nopLogger{})
	require.NoError(t, err)
	s := factory(newBareBot(t))
	require.NotNil(t, s)
	assert.Error(t, s.Setup(context.Background()))
}
