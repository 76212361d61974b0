package strategies

import (
	"context"
	"fmt"

	"aizybot/internal/bot"
	"aizybot/internal/domain"
	"aizybot/internal/ports"
	"aizybot/internal/strategy/indicators"
)

const maxCandleHistory = 500 // cap the in-memory window

// SMACrossConfig holds configuration for the SMA crossover strategy.
type SMACrossConfig struct {
	Pair       string
	Amount     float64
	FastPeriod int // e.g., 5
	SlowPeriod int // e.g., 20
}

// SMACross trades simple moving average crossovers: it buys when the fast
// average crosses above the slow one and closes the position on the opposite
// cross.
type SMACross struct {
	*bot.Bot
	cfg     SMACrossConfig
	logger  ports.Logger
	fast    *indicators.MovingAverage
	slow    *indicators.MovingAverage
	history []*domain.Candle
	wasFastAbove bool
	hasPrev      bool
}

// NewSMACross creates an SMA crossover strategy around the given bot.
func NewSMACross(b *bot.Bot, cfg SMACrossConfig, logger ports.Logger) (*SMACross, error) {
	if cfg.FastPeriod <= 0 || cfg.SlowPeriod <= 0 {
		return nil, fmt.Errorf("SMA periods must be positive")
	}
	if cfg.FastPeriod >= cfg.SlowPeriod {
		return nil, fmt.Errorf("fast period %d must be less than slow period %d", cfg.FastPeriod, cfg.SlowPeriod)
	}
	if cfg.Pair == "" {
		cfg.Pair = "BTC/USDT"
	}
	if cfg.Amount <= 0 {
		cfg.Amount = 1.0
	}
	return &SMACross{
		Bot:    b,
		cfg:    cfg,
		logger: logger,
		fast: indicators.NewMovingAverage(indicators.MovingAverageConfig{
			IndicatorConfig: indicators.IndicatorConfig{Period: cfg.FastPeriod},
			Type:            indicators.SimpleMovingAverage,
		}),
		slow: indicators.NewMovingAverage(indicators.MovingAverageConfig{
			IndicatorConfig: indicators.IndicatorConfig{Period: cfg.SlowPeriod},
			Type:            indicators.SimpleMovingAverage,
		}),
	}, nil
}

// Setup performs strategy-specific initialization.
func (s *SMACross) Setup(ctx context.Context) error {
	s.logger.Info(ctx, "SMA crossover ready", map[string]interface{}{
		"pair": s.cfg.Pair, "fastPeriod": s.cfg.FastPeriod, "slowPeriod": s.cfg.SlowPeriod,
	})
	return nil
}

// OnCandle accumulates history and trades the crossovers once enough candles
// have arrived.
func (s *SMACross) OnCandle(ctx context.Context, candle *domain.Candle) error {
	s.history = append(s.history, candle)
	if len(s.history) > maxCandleHistory {
		s.history = s.history[len(s.history)-maxCandleHistory:]
	}
	if len(s.history) < s.cfg.SlowPeriod {
		return nil
	}

	fast, err := s.fast.Calculate(ctx, s.history)
	if err != nil {
		return err
	}
	slow, err := s.slow.Calculate(ctx, s.history)
	if err != nil {
		return err
	}

	fastAbove := fast > slow
	defer func() { s.wasFastAbove, s.hasPrev = fastAbove, true }()
	if !s.hasPrev || fastAbove == s.wasFastAbove {
		return nil
	}

	active := s.ListActiveTrades()
	if fastAbove && len(active) == 0 {
		s.logger.Info(ctx, "Golden cross, entering long", map[string]interface{}{
			"fast": fast, "slow": slow, "close": candle.Close,
		})
		_, err := s.PlaceOrder(ctx, domain.Buy, s.cfg.Amount, candle.Close, s.cfg.Pair, domain.Market)
		return err
	}
	if !fastAbove && len(active) > 0 {
		s.logger.Info(ctx, "Death cross, closing position", map[string]interface{}{
			"fast": fast, "slow": slow, "close": candle.Close,
		})
		return s.CloseTrade(ctx, active[len(active)-1])
	}
	return nil
}
