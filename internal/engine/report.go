package engine

import (
	"fmt"
	"strings"

	"aizybot/internal/domain"
)

// Report is the reconciled outcome of one simulated run. Trades are
// partitioned by closure reason: natural trades were closed by the strategy
// itself, forced trades by the engine at the horizon.
type Report struct {
	Strategy string
	Pair     string
	Duration int

	Natural    []*domain.TradeRecord
	Forced     []*domain.TradeRecord
	NaturalPnL float64
	ForcedPnL  float64

	// Observation counts for the consistency check.
	ChannelOpen     int // Orders the channel still considers open
	ChannelClosed   int // Orders the channel observed as closed
	LedgerActive    int // Ledger orders still active after forced closing
	ActiveAtHorizon int // Ledger orders active when the last tick completed

	Alerts []string
}

// NaturalCount returns the number of trades the strategy closed itself.
func (r *Report) NaturalCount() int { return len(r.Natural) }

// ForcedCount returns the number of trades force-closed at the horizon.
func (r *Report) ForcedCount() int { return len(r.Forced) }

// TotalPnL returns the combined profit/loss over both partitions.
func (r *Report) TotalPnL() float64 { return r.NaturalPnL + r.ForcedPnL }

// NaturalAvgDuration returns the average lifetime of natural trades in
// simulated intervals, 0 when there were none.
func (r *Report) NaturalAvgDuration() float64 {
	if len(r.Natural) == 0 {
		return 0
	}
	var sum float64
	for _, t := range r.Natural {
		sum += t.Duration
	}
	return sum / float64(len(r.Natural))
}

// AllTrades returns the natural records followed by the forced ones.
func (r *Report) AllTrades() []*domain.TradeRecord {
	all := make([]*domain.TradeRecord, 0, len(r.Natural)+len(r.Forced))
	all = append(all, r.Natural...)
	all = append(all, r.Forced...)
	return all
}

// String renders the performance summary.
func (r *Report) String() string {
	var sb strings.Builder
	sb.WriteString("=== Trade Performance Summary ===\n")
	fmt.Fprintf(&sb, "Strategy: %s  Pair: %s  Ticks: %d\n", r.Strategy, r.Pair, r.Duration)
	fmt.Fprintf(&sb, "Natural trades: %d  P&L: %.2f  Avg duration: %.1f intervals\n",
		r.NaturalCount(), r.NaturalPnL, r.NaturalAvgDuration())
	fmt.Fprintf(&sb, "Forced trades:  %d  P&L: %.2f\n", r.ForcedCount(), r.ForcedPnL)
	fmt.Fprintf(&sb, "Total P&L: %.2f\n", r.TotalPnL())
	fmt.Fprintf(&sb, "Channel orders open/closed: %d/%d\n", r.ChannelOpen, r.ChannelClosed)
	for _, t := range r.AllTrades() {
		fmt.Fprintf(&sb, "  [%s] %s %s entry %.2f exit %.2f pnl %.2f duration %.1f\n",
			t.Reason, t.Side, t.OrderID, t.EntryPrice, t.ExitPrice, t.ProfitLoss, t.Duration)
	}
	for _, alert := range r.Alerts {
		fmt.Fprintf(&sb, "[ALERT] %s\n", alert)
	}
	return sb.String()
}
