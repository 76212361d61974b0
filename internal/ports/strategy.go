package ports

import (
	"context"

	"aizybot/internal/domain"
)

// Strategy defines the contract every trading strategy implements. The
// lifecycle is driven from outside: Setup is called once before the first
// candle, OnCandle once per candle in delivery order. OnCandle must not block
// indefinitely.
type Strategy interface {
	// Setup performs strategy-specific initialization.
	Setup(ctx context.Context) error

	// OnCandle reacts to one market candle, typically by placing or closing
	// orders through the bot it was constructed with.
	OnCandle(ctx context.Context, candle *domain.Candle) error
}
