package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRealizedPnL(t *testing.T) {
	tests := []struct {
		name  string
		side  OrderSide
		entry float64
		exit  float64
		want  float64
	}{
		{name: "long gains on rise", side: Buy, entry: 100, exit: 110, want: 10},
		{name: "long loses on fall", side: Buy, entry: 100, exit: 95, want: -5},
		{name: "short loses on rise", side: Sell, entry: 100, exit: 110, want: -10},
		{name: "short gains on fall", side: Sell, entry: 100, exit: 95, want: 5},
		{name: "flat", side: Buy, entry: 100, exit: 100, want: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, RealizedPnL(tt.side, tt.entry, tt.exit), 1e-9)
		})
	}
}

func TestReturnOnEquity(t *testing.T) {
	assert.InDelta(t, 0.1, ReturnOnEquity(Buy, 100, 110), 1e-9)
	assert.InDelta(t, -0.1, ReturnOnEquity(Sell, 100, 110), 1e-9)
	assert.Zero(t, ReturnOnEquity(Buy, 0, 110))
}

func TestCandleValidate(t *testing.T) {
	c := &Candle{Open: 100, High: 105, Low: 98, Close: 103, Volume: 12}
	assert.NoError(t, c.Validate())

	bad := &Candle{Open: 100, High: 99, Low: 98, Close: 103}
	assert.Error(t, bad.Validate())

	bad = &Candle{Open: 100, High: 105, Low: 101, Close: 103}
	assert.Error(t, bad.Validate())

	bad = &Candle{Open: -1, High: 105, Low: 98, Close: 103}
	assert.Error(t, bad.Validate())
}

func TestOrderStatusPredicates(t *testing.T) {
	assert.True(t, StatusClosed.IsTerminal())
	assert.True(t, StatusFailed.IsTerminal())
	assert.True(t, StatusCancelled.IsTerminal())
	assert.False(t, StatusActive.IsTerminal())

	assert.True(t, StatusCreated.IsCancellable())
	assert.True(t, StatusValidated.IsCancellable())
	assert.True(t, StatusPending.IsCancellable())
	assert.False(t, StatusActive.IsCancellable())
	assert.False(t, StatusClosed.IsCancellable())
}
