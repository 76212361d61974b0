package domain

import "time"

// CloseReason indicates why a trade was closed.
type CloseReason string

const (
	// CloseNatural marks a trade closed by the strategy's own decision.
	CloseNatural CloseReason = "natural"
	// CloseForced marks a trade closed by the engine at the end of the
	// simulation horizon rather than by the strategy.
	CloseForced CloseReason = "forced"
)

// TradeRecord summarizes a completed (closed) order's economics.
// Records are immutable once produced; exactly one is recorded per order
// that reaches the closed status during a simulation.
type TradeRecord struct {
	OrderID    string      // Identifier of the order this record closes
	Pair       string      // Trading pair
	Side       OrderSide   // buy (long) or sell (short)
	Amount     float64     // Traded amount
	EntryPrice float64     // Simulated price when the order was opened
	ExitPrice  float64     // Simulated price when the order was closed
	ProfitLoss float64     // Realized P&L: exit-entry for buys, entry-exit for sells
	ROE        float64     // Return on equity: signed price move over entry price
	Duration   float64     // Trade lifetime in simulated intervals (fractional)
	OpenedAt   time.Time   // Simulated open timestamp
	ClosedAt   time.Time   // Simulated close timestamp
	Reason     CloseReason // natural or forced
}

// RealizedPnL computes the profit or loss of moving from entry to exit on the
// given side: a long gains when price rises, a short gains when it falls.
func RealizedPnL(side OrderSide, entry, exit float64) float64 {
	if side == Sell {
		return entry - exit
	}
	return exit - entry
}

// ReturnOnEquity expresses the realized move as a fraction of the entry price.
// Returns 0 for a zero entry price.
func ReturnOnEquity(side OrderSide, entry, exit float64) float64 {
	if entry == 0 {
		return 0
	}
	return RealizedPnL(side, entry, exit) / entry
}
