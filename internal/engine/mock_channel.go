package engine

import (
	"context"
	"fmt"

	"aizybot/internal/domain"
	"aizybot/internal/ports"
)

// MockChannel implements ports.NotificationChannel for simulated runs.
// It performs no I/O: Connect only flips a flag, SendOrder/SendCloseOrder
// record the order and invoke the engine-supplied hooks synchronously, and
// Publish pushes a candle into the subscribed handler. The raw open/closed
// order lists are exposed for the engine's end-of-run consistency check.
type MockChannel struct {
	logger       ports.Logger
	connected    bool
	handler      ports.CandleHandler
	onOrder      ports.OrderHook
	onCloseOrder ports.OrderHook
	open         []*domain.Order
	closed       []*domain.Order
}

// NewMockChannel creates a mock channel with the given order hooks.
// Either hook may be nil.
func NewMockChannel(logger ports.Logger, onOrder, onCloseOrder ports.OrderHook) *MockChannel {
	return &MockChannel{logger: logger, onOrder: onOrder, onCloseOrder: onCloseOrder}
}

// Connect marks the channel connected. Idempotent.
func (c *MockChannel) Connect(ctx context.Context) error {
	c.connected = true
	c.logger.Info(ctx, "Mock channel connected")
	return nil
}

// Disconnect marks the channel disconnected. Idempotent.
func (c *MockChannel) Disconnect(ctx context.Context) error {
	c.connected = false
	c.logger.Info(ctx, "Mock channel disconnected")
	return nil
}

// IsConnected reports the connected flag.
func (c *MockChannel) IsConnected() bool {
	return c.connected
}

// Subscribe registers the candle handler.
func (c *MockChannel) Subscribe(handler ports.CandleHandler) {
	c.handler = handler
}

// Publish delivers a candle to the subscribed handler. All order and close
// events the handler triggers complete before Publish returns.
func (c *MockChannel) Publish(ctx context.Context, candle *domain.Candle) error {
	if c.handler == nil {
		c.logger.Warn(ctx, "Candle received but no handler is subscribed")
		return nil
	}
	return c.handler(ctx, candle)
}

// SendOrder records a newly activated order as open and invokes the order
// hook before returning.
func (c *MockChannel) SendOrder(ctx context.Context, order *domain.Order) error {
	if !c.connected {
		return ports.ErrChannelNotConnected
	}
	c.open = append(c.open, order)
	if c.onOrder != nil {
		c.onOrder(ctx, order)
	}
	c.logger.Debug(ctx, "Mock channel observed order", map[string]interface{}{"orderID": order.ID})
	return nil
}

// SendCloseOrder moves an open order to the closed list and invokes the close
// hook before returning. Closing an order the channel never saw open is an
// error.
func (c *MockChannel) SendCloseOrder(ctx context.Context, order *domain.Order) error {
	if !c.connected {
		return ports.ErrChannelNotConnected
	}
	idx := -1
	for i, o := range c.open {
		if o.ID == order.ID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return fmt.Errorf("close order %s: %w", order.ID, ports.ErrOrderNotOpen)
	}
	c.open = append(c.open[:idx], c.open[idx+1:]...)
	c.closed = append(c.closed, order)
	if c.onCloseOrder != nil {
		c.onCloseOrder(ctx, order)
	}
	c.logger.Debug(ctx, "Mock channel observed close", map[string]interface{}{"orderID": order.ID})
	return nil
}

// OpenOrders returns the orders the channel currently considers open.
func (c *MockChannel) OpenOrders() []*domain.Order {
	return c.open
}

// ClosedOrders returns the orders the channel has observed as closed.
func (c *MockChannel) ClosedOrders() []*domain.Order {
	return c.closed
}
