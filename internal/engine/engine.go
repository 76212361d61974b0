package engine

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"aizybot/internal/bot"
	"aizybot/internal/domain"
	"aizybot/internal/ports"
	"aizybot/internal/quotes"
)

// CandleSource feeds the engine one candle per simulated tick. The quotes
// generator implements it; tests substitute scripted price paths.
type CandleSource interface {
	Next() (*domain.Candle, bool)
}

// StrategyFactory builds a strategy instance around the bot the engine wires
// to its mock channel.
type StrategyFactory func(b *bot.Bot) ports.Strategy

// Config holds the parameters of one simulated run.
type Config struct {
	StrategyName string        // Reported name of the strategy under test
	Pair         string        // Trading pair passed through to the report
	Duration     int           // Number of simulated ticks
	Interval     time.Duration // Length of one simulated interval
	Source       CandleSource  // Candle feed; nil builds a default generator
	Logger       ports.Logger
	Publisher    ports.EventPublisher // Optional observer fan-out; may be nil
	Seed         int64                // Seed for the default generator
}

// annotation is the engine-side record of an order it observed opening.
// It lives outside the ledger so the engine never mutates ledger-owned
// orders.
type annotation struct {
	entryPrice float64
	openedAt   time.Time
}

// Engine drives a strategy through a full synthetic timeline and produces a
// reconciled performance report. A single goroutine runs the loop; between
// ticks the engine yields so concurrently-registered observers can
// interleave.
type Engine struct {
	cfg      Config
	logger   ports.Logger
	source   CandleSource
	channel  *MockChannel
	bot      *bot.Bot
	strategy ports.Strategy

	currentPrice float64
	currentTime  time.Time

	annotations map[string]annotation
	natural     []*domain.TradeRecord
	forced      []*domain.TradeRecord
	naturalPnL  float64
	forcedPnL   float64
	forcing     bool
}

// New wires an engine: mock channel with the engine's hooks, a bot on top of
// it, and the strategy built by the factory.
func New(cfg Config, factory StrategyFactory) (*Engine, error) {
	if cfg.Logger == nil {
		return nil, fmt.Errorf("logger is required for simulation engine")
	}
	if factory == nil {
		return nil, fmt.Errorf("strategy factory is required")
	}
	if cfg.Duration <= 0 {
		return nil, fmt.Errorf("duration must be positive, got %d", cfg.Duration)
	}
	if cfg.Interval <= 0 {
		cfg.Interval = time.Minute
	}

	source := cfg.Source
	if source == nil {
		genCfg := quotes.DefaultConfig()
		genCfg.Length = cfg.Duration
		genCfg.MinutesPerCandle = int(cfg.Interval / time.Minute)
		if genCfg.MinutesPerCandle <= 0 {
			genCfg.MinutesPerCandle = 1
		}
		genCfg.Seed = cfg.Seed
		gen, err := quotes.New(genCfg)
		if err != nil {
			return nil, fmt.Errorf("failed to build default candle source: %w", err)
		}
		source = gen
	}

	e := &Engine{
		cfg:         cfg,
		logger:      cfg.Logger,
		source:      source,
		annotations: make(map[string]annotation),
	}
	e.channel = NewMockChannel(cfg.Logger, e.onOrder, e.onCloseOrder)

	b, err := bot.New(cfg.Logger, e.channel)
	if err != nil {
		return nil, err
	}
	e.bot = b
	e.strategy = factory(b)
	if e.strategy == nil {
		return nil, fmt.Errorf("strategy factory returned nil")
	}
	return e, nil
}

// Run executes the full simulation protocol: setup, connect, tick loop,
// forced close of stragglers, report, consistency alerts. Consistency
// anomalies never abort the run; they surface as report alerts.
func (e *Engine) Run(ctx context.Context) (*Report, error) {
	e.logger.Info(ctx, "Starting simulation", map[string]interface{}{
		"strategy": e.cfg.StrategyName, "duration": e.cfg.Duration, "interval": e.cfg.Interval.String(),
	})

	if err := e.strategy.Setup(ctx); err != nil {
		return nil, fmt.Errorf("strategy setup failed: %w", err)
	}
	if err := e.channel.Connect(ctx); err != nil {
		return nil, err
	}
	e.channel.Subscribe(e.strategy.OnCandle)

	if err := e.simulate(ctx); err != nil {
		return nil, err
	}

	activeAtHorizon := e.bot.Ledger().ActiveCount()
	e.closeAllTrades(ctx)

	report := e.buildReport(activeAtHorizon)
	e.checkAlerts(report)
	e.logger.Info(ctx, "Simulation finished", map[string]interface{}{
		"naturalTrades": report.NaturalCount(), "forcedTrades": report.ForcedCount(),
		"totalPnL": report.TotalPnL(), "alerts": len(report.Alerts),
	})
	return report, nil
}

// simulate runs the tick loop. Candle N is fully processed, including every
// order and close callback it triggers, before candle N+1 is generated.
func (e *Engine) simulate(ctx context.Context) error {
	for tick := 0; tick < e.cfg.Duration; tick++ {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("simulation interrupted at tick %d: %w", tick, err)
		}
		candle, ok := e.source.Next()
		if !ok {
			e.logger.Warn(ctx, "Candle source exhausted before horizon", map[string]interface{}{
				"tick": tick, "duration": e.cfg.Duration,
			})
			return nil
		}
		e.currentTime = candle.Timestamp
		e.currentPrice = candle.Close

		if e.cfg.Publisher != nil {
			e.cfg.Publisher.PublishCandle(candle)
		}
		if err := e.channel.Publish(ctx, candle); err != nil {
			e.logger.Error(ctx, err, "Strategy returned an error from candle handler", map[string]interface{}{"tick": tick})
		}

		// Scheduling point between ticks so concurrent observers can drain.
		runtime.Gosched()
	}
	return nil
}

// closeAllTrades force-closes every order still active at the horizon. The
// close hook tags records produced during this phase as forced at recording
// time.
func (e *Engine) closeAllTrades(ctx context.Context) {
	active := e.bot.ListActiveTrades()
	if len(active) == 0 {
		return
	}
	e.logger.Info(ctx, "Force-closing trades left open at horizon", map[string]interface{}{"count": len(active)})

	e.forcing = true
	defer func() { e.forcing = false }()
	for _, order := range active {
		if err := e.bot.CloseTrade(ctx, order); err != nil {
			e.logger.Error(ctx, err, "Failed to force-close order", map[string]interface{}{"orderID": order.ID})
		}
	}
}

// onOrder is invoked by the mock channel for every newly activated order.
// It stamps the engine's current simulated price and timestamp into the
// annotation table; the ledger's own record is never mutated.
func (e *Engine) onOrder(ctx context.Context, order *domain.Order) {
	e.annotations[order.ID] = annotation{entryPrice: e.currentPrice, openedAt: e.currentTime}
	if e.cfg.Publisher != nil {
		e.cfg.Publisher.PublishOrder(order)
	}
	e.logger.Debug(ctx, "Order opened in simulation", map[string]interface{}{
		"orderID": order.ID, "entryPrice": e.currentPrice,
	})
}

// onCloseOrder is invoked by the mock channel for every closed order. It
// realizes the trade against the current simulated price and appends the
// record to the natural or forced ledger.
func (e *Engine) onCloseOrder(ctx context.Context, order *domain.Order) {
	ann, ok := e.annotations[order.ID]
	if !ok {
		e.logger.Warn(ctx, "Close observed for order with no open annotation", map[string]interface{}{"orderID": order.ID})
		return
	}
	delete(e.annotations, order.ID)

	exitPrice := e.currentPrice
	pnl := domain.RealizedPnL(order.Side, ann.entryPrice, exitPrice)
	duration := float64(e.currentTime.Sub(ann.openedAt)) / float64(e.cfg.Interval)

	record := &domain.TradeRecord{
		OrderID:    order.ID,
		Pair:       order.Pair,
		Side:       order.Side,
		Amount:     order.Amount,
		EntryPrice: ann.entryPrice,
		ExitPrice:  exitPrice,
		ProfitLoss: pnl,
		ROE:        domain.ReturnOnEquity(order.Side, ann.entryPrice, exitPrice),
		Duration:   duration,
		OpenedAt:   ann.openedAt,
		ClosedAt:   e.currentTime,
		Reason:     domain.CloseNatural,
	}
	if e.forcing {
		record.Reason = domain.CloseForced
		e.forced = append(e.forced, record)
		e.forcedPnL += pnl
	} else {
		e.natural = append(e.natural, record)
		e.naturalPnL += pnl
	}

	if e.cfg.Publisher != nil {
		e.cfg.Publisher.PublishClose(record)
	}
	e.logger.Debug(ctx, "Trade recorded", map[string]interface{}{
		"orderID": order.ID, "pnl": pnl, "duration": duration, "reason": record.Reason,
	})
}

func (e *Engine) buildReport(activeAtHorizon int) *Report {
	return &Report{
		Strategy:        e.cfg.StrategyName,
		Pair:            e.cfg.Pair,
		Duration:        e.cfg.Duration,
		Natural:         e.natural,
		Forced:          e.forced,
		NaturalPnL:      e.naturalPnL,
		ForcedPnL:       e.forcedPnL,
		ChannelOpen:     len(e.channel.OpenOrders()),
		ChannelClosed:   len(e.channel.ClosedOrders()),
		LedgerActive:    e.bot.Ledger().ActiveCount(),
		ActiveAtHorizon: activeAtHorizon,
	}
}

// checkAlerts runs the end-of-run consistency diagnostics. None of them are
// fatal; the worst outcome is a report the caller must notice.
func (e *Engine) checkAlerts(report *Report) {
	if report.LedgerActive > 0 {
		report.Alerts = append(report.Alerts, fmt.Sprintf(
			"%d active trades remain after forced closing", report.LedgerActive))
	}
	if report.ChannelOpen != report.LedgerActive {
		report.Alerts = append(report.Alerts, fmt.Sprintf(
			"channel open-order count %d does not match ledger active count %d",
			report.ChannelOpen, report.LedgerActive))
	}
	totalOpened := report.NaturalCount() + report.ActiveAtHorizon
	if totalOpened > 0 && report.ActiveAtHorizon == totalOpened {
		report.Alerts = append(report.Alerts,
			"bot did not close any trades during the test; trade-closing logic may be absent")
	}
}
