package strategies

import (
	"context"
	"fmt"

	"aizybot/internal/bot"
	"aizybot/internal/domain"
	"aizybot/internal/engine"
	"aizybot/internal/ports"
)

// Params carries the knobs shared by the bundled strategies.
type Params struct {
	Pair       string
	Amount     float64
	FastPeriod int
	SlowPeriod int
	RSIPeriod  int
	Overbought float64
	Oversold   float64
}

// Factory resolves a strategy name to an engine factory. Construction errors
// surface on first use inside the returned factory's Setup.
func Factory(name string, params Params, logger ports.Logger) (engine.StrategyFactory, error) {
	switch name {
	case "trend":
		return func(b *bot.Bot) ports.Strategy {
			return NewTrendFollower(b, TrendFollowerConfig{Pair: params.Pair, Amount: params.Amount}, logger)
		}, nil
	case "smacross":
		return func(b *bot.Bot) ports.Strategy {
			s, err := NewSMACross(b, SMACrossConfig{
				Pair:       params.Pair,
				Amount:     params.Amount,
				FastPeriod: params.FastPeriod,
				SlowPeriod: params.SlowPeriod,
			}, logger)
			if err != nil {
				return &failingStrategy{err: err}
			}
			return s
		}, nil
	case "rsi":
		return func(b *bot.Bot) ports.Strategy {
			s, err := NewRSIReversal(b, RSIReversalConfig{
				Pair:       params.Pair,
				Amount:     params.Amount,
				Period:     params.RSIPeriod,
				Overbought: params.Overbought,
				Oversold:   params.Oversold,
			}, logger)
			if err != nil {
				return &failingStrategy{err: err}
			}
			return s
		}, nil
	default:
		return nil, fmt.Errorf("unknown strategy %q (want trend, smacross or rsi)", name)
	}
}

// failingStrategy defers a construction error to Setup so the engine reports
// it instead of a nil strategy.
type failingStrategy struct {
	err error
}

func (s *failingStrategy) Setup(ctx context.Context) error { return s.err }

func (s *failingStrategy) OnCandle(ctx context.Context, candle *domain.Candle) error { return s.err }
