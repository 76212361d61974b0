package domain

import "time"

// OrderSide represents the side of an order (buy or sell).
type OrderSide string

const (
	Buy  OrderSide = "buy"
	Sell OrderSide = "sell"
)

// OrderKind distinguishes immediately-executed orders from resting limit orders.
type OrderKind string

const (
	Market OrderKind = "market"
	Limit  OrderKind = "limit"
)

// OrderStatus tracks an order through its lifecycle.
// Valid transitions: Created -> Validated -> {Active | Pending} -> Closed,
// with Cancelled and Failed as alternate terminal states.
type OrderStatus string

const (
	StatusCreated   OrderStatus = "created"
	StatusValidated OrderStatus = "validated"
	StatusActive    OrderStatus = "active"  // market orders that are actively traded
	StatusPending   OrderStatus = "pending" // limit orders waiting for price confirmation
	StatusCancelled OrderStatus = "cancelled"
	StatusFailed    OrderStatus = "failed"
	StatusClosed    OrderStatus = "closed"
)

// IsTerminal reports whether no further transition is possible from this status.
func (s OrderStatus) IsTerminal() bool {
	return s == StatusClosed || s == StatusCancelled || s == StatusFailed
}

// IsCancellable reports whether a cancel transition is allowed from this status.
func (s OrderStatus) IsCancellable() bool {
	return s == StatusCreated || s == StatusValidated || s == StatusPending
}

// Order is a strategy's instruction to buy or sell, tracked through a status
// lifecycle. Orders are owned by the ledger that created them; other components
// hold references but must not mutate them. Engine-side annotations (entry
// price, open time) live in a side table keyed by ID, not on the order.
type Order struct {
	ID        string      // Unique identifier assigned on creation
	Pair      string      // Trading pair (e.g., "BTC/USDT")
	Side      OrderSide   // buy or sell
	Amount    float64     // Requested amount; must be positive to validate
	Price     float64     // Requested price (informational for market orders)
	Kind      OrderKind   // market or limit
	Status    OrderStatus // Current lifecycle status
	CreatedAt time.Time   // Timestamp assigned on creation
}

// IsActive reports whether the order is currently an active trade.
func (o *Order) IsActive() bool {
	return o.Status == StatusActive
}
