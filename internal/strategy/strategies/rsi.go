package strategies

import (
	"context"
	"fmt"

	"aizybot/internal/bot"
	"aizybot/internal/domain"
	"aizybot/internal/ports"
	"aizybot/internal/strategy/indicators"
)

// RSIReversalConfig holds configuration for the RSI reversal strategy.
type RSIReversalConfig struct {
	Pair       string
	Amount     float64
	Period     int     // e.g., 14
	Overbought float64 // e.g., 70
	Oversold   float64 // e.g., 30
}

// RSIReversal buys oversold conditions and closes the position once the
// market turns overbought.
type RSIReversal struct {
	*bot.Bot
	cfg     RSIReversalConfig
	logger  ports.Logger
	rsi     *indicators.RSI
	history []*domain.Candle
}

// NewRSIReversal creates an RSI reversal strategy around the given bot.
func NewRSIReversal(b *bot.Bot, cfg RSIReversalConfig, logger ports.Logger) (*RSIReversal, error) {
	if cfg.Period <= 0 {
		return nil, fmt.Errorf("RSI period must be positive")
	}
	if cfg.Overbought <= cfg.Oversold || cfg.Overbought > 100 || cfg.Oversold < 0 {
		return nil, fmt.Errorf("invalid RSI thresholds: overbought %f, oversold %f", cfg.Overbought, cfg.Oversold)
	}
	if cfg.Pair == "" {
		cfg.Pair = "BTC/USDT"
	}
	if cfg.Amount <= 0 {
		cfg.Amount = 1.0
	}
	return &RSIReversal{
		Bot:    b,
		cfg:    cfg,
		logger: logger,
		rsi: indicators.NewRSI(indicators.RSIConfig{
			IndicatorConfig: indicators.IndicatorConfig{Period: cfg.Period},
			Overbought:      cfg.Overbought,
			Oversold:        cfg.Oversold,
		}),
	}, nil
}

// Setup performs strategy-specific initialization.
func (s *RSIReversal) Setup(ctx context.Context) error {
	s.logger.Info(ctx, "RSI reversal ready", map[string]interface{}{
		"pair": s.cfg.Pair, "period": s.cfg.Period,
		"overbought": s.cfg.Overbought, "oversold": s.cfg.Oversold,
	})
	return nil
}

// OnCandle accumulates history and trades RSI extremes.
func (s *RSIReversal) OnCandle(ctx context.Context, candle *domain.Candle) error {
	s.history = append(s.history, candle)
	if len(s.history) > maxCandleHistory {
		s.history = s.history[len(s.history)-maxCandleHistory:]
	}
	if len(s.history) <= s.cfg.Period {
		return nil
	}

	value, err := s.rsi.Calculate(ctx, s.history)
	if err != nil {
		return err
	}

	active := s.ListActiveTrades()
	if s.rsi.IsOversold(value) && len(active) == 0 {
		s.logger.Info(ctx, "RSI oversold, entering long", map[string]interface{}{
			"rsi": value, "close": candle.Close,
		})
		_, err := s.PlaceOrder(ctx, domain.Buy, s.cfg.Amount, candle.Close, s.cfg.Pair, domain.Market)
		return err
	}
	if s.rsi.IsOverbought(value) && len(active) > 0 {
		s.logger.Info(ctx, "RSI overbought, closing position", map[string]interface{}{
			"rsi": value, "close": candle.Close,
		})
		return s.CloseTrade(ctx, active[len(active)-1])
	}
	return nil
}
