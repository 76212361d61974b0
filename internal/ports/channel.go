package ports

import (
	"context"

	"aizybot/internal/domain"
)

// CandleHandler processes one candle delivered by a notification channel.
type CandleHandler func(ctx context.Context, candle *domain.Candle) error

// OrderHook observes an order event on a notification channel. Hooks run
// synchronously: a channel implementation must invoke the registered hook
// before SendOrder/SendCloseOrder returns, so that observers see every order
// event strictly before the sender considers it acknowledged.
type OrderHook func(ctx context.Context, order *domain.Order)

// NotificationChannel is the duplex interface between the bot/ledger and an
// external observer. The simulation engine substitutes a mock implementation;
// a live transport to an exchange satisfies the same contract.
type NotificationChannel interface {
	// Connect establishes the channel. Idempotent.
	Connect(ctx context.Context) error

	// Disconnect tears the channel down. Idempotent.
	Disconnect(ctx context.Context) error

	// IsConnected reports whether the channel is currently connected.
	IsConnected() bool

	// Subscribe registers the handler that receives incoming candles.
	// Only one handler is held; a later call replaces the earlier one.
	Subscribe(handler CandleHandler)

	// SendOrder announces a newly activated order. Any registered order hook
	// is invoked before this method returns.
	SendOrder(ctx context.Context, order *domain.Order) error

	// SendCloseOrder announces a closed order. Only valid for orders the
	// channel currently considers open; any registered close hook is invoked
	// before this method returns.
	SendCloseOrder(ctx context.Context, order *domain.Order) error
}

// EventPublisher fans simulation events out to passive observers such as a
// live dashboard. Implementations must not block the simulation loop.
type EventPublisher interface {
	PublishCandle(candle *domain.Candle)
	PublishOrder(order *domain.Order)
	PublishClose(trade *domain.TradeRecord)
}
