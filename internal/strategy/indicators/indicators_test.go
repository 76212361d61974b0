package indicators

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aizybot/internal/domain"
)

func candlesFromCloses(closes ...float64) []*domain.Candle {
	candles := make([]*domain.Candle, len(closes))
	for i, c := range closes {
		candles[i] = &domain.Candle{Open: c, High: c, Low: c, Close: c}
	}
	return candles
}

func TestSMA(t *testing.T) {
	ma := NewMovingAverage(MovingAverageConfig{
		IndicatorConfig: IndicatorConfig{Period: 3},
		Type:            SimpleMovingAverage,
	})

	value, err := ma.Calculate(context.Background(), candlesFromCloses(1, 2, 3, 4, 5))
	require.NoError(t, err)
	assert.InDelta(t, 4.0, value, 1e-9) // average of the last three closes

	_, err = ma.Calculate(context.Background(), candlesFromCloses(1, 2))
	assert.Error(t, err)
}

func TestEMA(t *testing.T) {
	ma := NewMovingAverage(MovingAverageConfig{
		IndicatorConfig: IndicatorConfig{Period: 3},
		Type:            ExponentialMovingAverage,
	})

	value, err := ma.Calculate(context.Background(), candlesFromCloses(2, 2, 2, 2, 2))
	require.NoError(t, err)
	assert.InDelta(t, 2.0, value, 1e-9, "EMA of a constant series is the constant")

	rising, err := ma.Calculate(context.Background(), candlesFromCloses(1, 2, 3, 4, 5))
	require.NoError(t, err)
	assert.Greater(t, rising, 3.0, "EMA of a rising series leans toward recent closes")
}

func TestMovingAverageUnsupportedType(t *testing.T) {
	ma := NewMovingAverage(MovingAverageConfig{
		IndicatorConfig: IndicatorConfig{Period: 3},
		Type:            MovingAverageType("WMA"),
	})
	_, err := ma.Calculate(context.Background(), candlesFromCloses(1, 2, 3))
	assert.Error(t, err)
}

func TestRSI(t *testing.T) {
	rsi := NewRSI(RSIConfig{
		IndicatorConfig: IndicatorConfig{Period: 3},
		Overbought:      70,
		Oversold:        30,
	})
	ctx := context.Background()

	onlyGains, err := rsi.Calculate(ctx, candlesFromCloses(1, 2, 3, 4, 5))
	require.NoError(t, err)
	assert.InDelta(t, 100, onlyGains, 1e-9)
	assert.True(t, rsi.IsOverbought(onlyGains))

	onlyLosses, err := rsi.Calculate(ctx, candlesFromCloses(5, 4, 3, 2, 1))
	require.NoError(t, err)
	assert.InDelta(t, 0, onlyLosses, 1e-9)
	assert.True(t, rsi.IsOversold(onlyLosses))

	flat, err := rsi.Calculate(ctx, candlesFromCloses(3, 3, 3, 3))
	require.NoError(t, err)
	assert.InDelta(t, 50, flat, 1e-9)

	_, err = rsi.Calculate(ctx, candlesFromCloses(1, 2, 3))
	assert.Error(t, err, "needs strictly more candles than the period")
}
