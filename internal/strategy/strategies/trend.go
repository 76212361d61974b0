package strategies

import (
	"context"

	"aizybot/internal/bot"
	"aizybot/internal/domain"
	"aizybot/internal/ports"
)

// TrendFollowerConfig holds configuration for the trend follower strategy.
type TrendFollowerConfig struct {
	Pair   string
	Amount float64
}

// TrendFollower is the simplest possible strategy: buy one position on a
// green candle when flat, close the most recent trade on a red candle.
type TrendFollower struct {
	*bot.Bot
	cfg    TrendFollowerConfig
	logger ports.Logger
}

// NewTrendFollower creates a trend follower around the given bot.
func NewTrendFollower(b *bot.Bot, cfg TrendFollowerConfig, logger ports.Logger) *TrendFollower {
	if cfg.Pair == "" {
		cfg.Pair = "BTC/USDT"
	}
	if cfg.Amount <= 0 {
		cfg.Amount = 1.0
	}
	return &TrendFollower{Bot: b, cfg: cfg, logger: logger}
}

// Setup performs strategy-specific initialization.
func (s *TrendFollower) Setup(ctx context.Context) error {
	s.logger.Info(ctx, "Trend follower ready", map[string]interface{}{
		"pair": s.cfg.Pair, "amount": s.cfg.Amount,
	})
	return nil
}

// OnCandle reacts to one candle: enter on strength, exit on weakness.
func (s *TrendFollower) OnCandle(ctx context.Context, candle *domain.Candle) error {
	active := s.ListActiveTrades()

	if candle.IsGreen() && len(active) == 0 {
		s.logger.Debug(ctx, "Buy signal detected", map[string]interface{}{"close": candle.Close})
		_, err := s.PlaceOrder(ctx, domain.Buy, s.cfg.Amount, candle.Close, s.cfg.Pair, domain.Market)
		return err
	}
	if candle.Close < candle.Open && len(active) > 0 {
		s.logger.Debug(ctx, "Sell signal detected", map[string]interface{}{"close": candle.Close})
		return s.CloseTrade(ctx, active[len(active)-1])
	}
	return nil
}
