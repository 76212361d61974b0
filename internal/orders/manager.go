package orders

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"aizybot/internal/domain"
	"aizybot/internal/ports"
)

// Manager owns the full set of orders for one bot and enforces the order
// lifecycle state machine. It is a bookkeeping ledger, not a matching engine:
// pending limit orders are never advanced to active automatically; any
// limit-fill simulation is strategy-level logic layered on top.
//
// Manager is not safe for concurrent use; the simulation path drives it from
// a single goroutine.
type Manager struct {
	logger ports.Logger
	orders []*domain.Order
	byID   map[string]*domain.Order
	now    func() time.Time
}

// NewManager creates an order ledger. A logger is required.
func NewManager(logger ports.Logger) (*Manager, error) {
	if logger == nil {
		return nil, fmt.Errorf("logger is required for order manager")
	}
	return &Manager{
		logger: logger,
		byID:   make(map[string]*domain.Order),
		now:    time.Now,
	}, nil
}

// Create registers a new order in Created status. Creation always succeeds;
// validity is checked by Validate.
func (m *Manager) Create(ctx context.Context, side domain.OrderSide, amount, price float64, pair string, kind domain.OrderKind) *domain.Order {
	order := &domain.Order{
		ID:        uuid.NewString(),
		Pair:      pair,
		Side:      side,
		Amount:    amount,
		Price:     price,
		Kind:      kind,
		Status:    domain.StatusCreated,
		CreatedAt: m.now(),
	}
	m.orders = append(m.orders, order)
	m.byID[order.ID] = order
	m.logger.Info(ctx, "Order created", map[string]interface{}{
		"orderID": order.ID, "pair": pair, "side": side, "amount": amount, "price": price, "kind": kind,
	})
	return order
}

// Validate moves a created order to Validated when its amount is positive,
// or to Failed otherwise. Returns whether the order is valid.
func (m *Manager) Validate(ctx context.Context, order *domain.Order) bool {
	if order.Amount <= 0 {
		order.Status = domain.StatusFailed
		m.logger.Error(ctx, ports.ErrInvalidAmount, "Order validation failed", map[string]interface{}{
			"orderID": order.ID, "amount": order.Amount,
		})
		return false
	}
	order.Status = domain.StatusValidated
	m.logger.Info(ctx, "Order validated", map[string]interface{}{"orderID": order.ID})
	return true
}

// Execute advances a validated order: market orders become Active, limit
// orders become Pending. Executing a non-validated order is an error.
func (m *Manager) Execute(ctx context.Context, order *domain.Order) error {
	if order.Status != domain.StatusValidated {
		m.logger.Error(ctx, ports.ErrOrderNotValidated, "Cannot execute order", map[string]interface{}{
			"orderID": order.ID, "status": order.Status,
		})
		return fmt.Errorf("execute order %s in status %s: %w", order.ID, order.Status, ports.ErrOrderNotValidated)
	}
	switch order.Kind {
	case domain.Limit:
		order.Status = domain.StatusPending
		m.logger.Info(ctx, "Limit order pending execution", map[string]interface{}{"orderID": order.ID})
	default:
		order.Status = domain.StatusActive
		m.logger.Info(ctx, "Market order activated", map[string]interface{}{"orderID": order.ID})
	}
	return nil
}

// Close moves an active order to Closed. Closing an order in any other status
// is an error.
func (m *Manager) Close(ctx context.Context, order *domain.Order) error {
	if order.Status != domain.StatusActive {
		m.logger.Error(ctx, ports.ErrOrderNotActive, "Cannot close order", map[string]interface{}{
			"orderID": order.ID, "status": order.Status,
		})
		return fmt.Errorf("close order %s in status %s: %w", order.ID, order.Status, ports.ErrOrderNotActive)
	}
	order.Status = domain.StatusClosed
	m.logger.Info(ctx, "Order closed", map[string]interface{}{"orderID": order.ID})
	return nil
}

// Cancel moves an order to Cancelled. Allowed only from Created, Validated or
// Pending; active, closed and failed orders cannot be cancelled.
func (m *Manager) Cancel(ctx context.Context, order *domain.Order) error {
	if !order.Status.IsCancellable() {
		m.logger.Warn(ctx, "Order cannot be cancelled", map[string]interface{}{
			"orderID": order.ID, "status": order.Status,
		})
		return fmt.Errorf("cancel order %s in status %s: %w", order.ID, order.Status, ports.ErrOrderNotCancellable)
	}
	order.Status = domain.StatusCancelled
	m.logger.Info(ctx, "Order cancelled", map[string]interface{}{"orderID": order.ID})
	return nil
}

// Find looks an order up by its identifier.
// Returns ports.ErrNotFound when the id is unknown.
func (m *Manager) Find(id string) (*domain.Order, error) {
	order, ok := m.byID[id]
	if !ok {
		return nil, fmt.Errorf("order %s: %w", id, ports.ErrNotFound)
	}
	return order, nil
}

// ListActive returns all orders currently in Active status.
func (m *Manager) ListActive() []*domain.Order {
	var active []*domain.Order
	for _, order := range m.orders {
		if order.Status == domain.StatusActive {
			active = append(active, order)
		}
	}
	return active
}

// ListPending returns all orders currently in Pending status.
func (m *Manager) ListPending() []*domain.Order {
	var pending []*domain.Order
	for _, order := range m.orders {
		if order.Status == domain.StatusPending {
			pending = append(pending, order)
		}
	}
	return pending
}

// ActiveCount returns the number of orders currently in Active status.
func (m *Manager) ActiveCount() int {
	n := 0
	for _, order := range m.orders {
		if order.Status == domain.StatusActive {
			n++
		}
	}
	return n
}

// TotalCreated returns the number of orders ever registered with the ledger.
func (m *Manager) TotalCreated() int {
	return len(m.orders)
}
