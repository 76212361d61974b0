package bot

import (
	"context"
	"fmt"

	"aizybot/internal/domain"
	"aizybot/internal/orders"
	"aizybot/internal/ports"
)

// Bot is the support kit every strategy builds on. It owns an order ledger
// and announces order events on a notification channel; the strategy supplies
// the decision logic and calls back into PlaceOrder/CloseTrade.
type Bot struct {
	logger  ports.Logger
	ledger  *orders.Manager
	channel ports.NotificationChannel
}

// New creates a bot around the given notification channel. The channel may be
// nil, in which case order events are tracked in the ledger only.
func New(logger ports.Logger, channel ports.NotificationChannel) (*Bot, error) {
	if logger == nil {
		return nil, fmt.Errorf("logger is required for bot")
	}
	ledger, err := orders.NewManager(logger)
	if err != nil {
		return nil, err
	}
	return &Bot{logger: logger, ledger: ledger, channel: channel}, nil
}

// Ledger exposes the bot's order ledger for consistency checks.
func (b *Bot) Ledger() *orders.Manager {
	return b.ledger
}

// PlaceOrder runs an order through create, validate and execute, then
// announces it on the channel. A validation failure leaves the order in
// failed status, sends nothing, and is reported as an error the strategy may
// ignore or react to.
func (b *Bot) PlaceOrder(ctx context.Context, side domain.OrderSide, amount, price float64, pair string, kind domain.OrderKind) (*domain.Order, error) {
	order := b.ledger.Create(ctx, side, amount, price, pair, kind)

	if !b.ledger.Validate(ctx, order) {
		return order, fmt.Errorf("place order %s: %w", order.ID, ports.ErrInvalidAmount)
	}
	if err := b.ledger.Execute(ctx, order); err != nil {
		return order, err
	}

	if b.channel != nil {
		if err := b.channel.SendOrder(ctx, order); err != nil {
			b.logger.Warn(ctx, "Failed to announce order on channel", map[string]interface{}{
				"orderID": order.ID, "error": err.Error(),
			})
		}
	}
	return order, nil
}

// CloseTrade closes an active order through the ledger and announces the
// close on the channel. Closing a non-active order is an error and sends
// nothing.
func (b *Bot) CloseTrade(ctx context.Context, order *domain.Order) error {
	if order == nil {
		return fmt.Errorf("close trade: %w", ports.ErrNotFound)
	}
	if err := b.ledger.Close(ctx, order); err != nil {
		return err
	}
	if b.channel != nil {
		if err := b.channel.SendCloseOrder(ctx, order); err != nil {
			b.logger.Warn(ctx, "Failed to announce close on channel", map[string]interface{}{
				"orderID": order.ID, "error": err.Error(),
			})
		}
	}
	return nil
}

// CloseTradeByID resolves an order id through the ledger and closes it.
func (b *Bot) CloseTradeByID(ctx context.Context, id string) error {
	order, err := b.ledger.Find(id)
	if err != nil {
		return err
	}
	return b.CloseTrade(ctx, order)
}

// CancelOrder cancels an order that has not yet become active.
func (b *Bot) CancelOrder(ctx context.Context, order *domain.Order) error {
	return b.ledger.Cancel(ctx, order)
}

// ListActiveTrades returns all currently active orders.
func (b *Bot) ListActiveTrades() []*domain.Order {
	return b.ledger.ListActive()
}

// ListPendingOrders returns all currently pending limit orders.
func (b *Bot) ListPendingOrders() []*domain.Order {
	return b.ledger.ListPending()
}
