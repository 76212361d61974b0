package main

import (
	"context"
	"fmt"
	"time"

	"aizybot/internal/adapters/dashboard"
	"aizybot/internal/adapters/logger"
	"aizybot/internal/adapters/sqlite"
	"aizybot/internal/engine"
	"aizybot/internal/ports"
	"aizybot/internal/strategy/strategies"

	"github.com/spf13/cobra"
)

var backtestFlags struct {
	Duration        int
	IntervalMinutes int
	Pair            string
	Strategy        string
	Amount          float64
	Seed            int64

	FastPeriod int
	SlowPeriod int
	RSIPeriod  int
	Overbought float64
	Oversold   float64

	JournalPath string
	ListenAddr  string
}

var backtestCmd = &cobra.Command{
	Use:   "backtest",
	Short: "Run a strategy against a synthetic price path",
	RunE:  runBacktest,
}

func init() {
	cmd := backtestCmd
	f := &backtestFlags
	cmd.Flags().IntVar(&f.Duration, "duration", 200, "Number of candles to simulate")
	cmd.Flags().IntVar(&f.IntervalMinutes, "interval", 5, "Candle interval in minutes")
	cmd.Flags().StringVar(&f.Pair, "pair", "BTC/USDT", "Trading pair")
	cmd.Flags().StringVar(&f.Strategy, "strategy", "trend", "Strategy to run (trend, smacross, rsi)")
	cmd.Flags().Float64Var(&f.Amount, "amount", 1.0, "Order amount per trade")
	cmd.Flags().Int64Var(&f.Seed, "seed", 0, "Random seed for the price path (0 uses the clock)")
	cmd.Flags().IntVar(&f.FastPeriod, "fast", 20, "Fast SMA period (smacross)")
	cmd.Flags().IntVar(&f.SlowPeriod, "slow", 50, "Slow SMA period (smacross)")
	cmd.Flags().IntVar(&f.RSIPeriod, "rsi-period", 14, "RSI period (rsi)")
	cmd.Flags().Float64Var(&f.Overbought, "overbought", 70, "RSI overbought threshold (rsi)")
	cmd.Flags().Float64Var(&f.Oversold, "oversold", 30, "RSI oversold threshold (rsi)")
	cmd.Flags().StringVar(&f.JournalPath, "journal", "", "SQLite database to persist the run report (empty disables)")
	cmd.Flags().StringVar(&f.ListenAddr, "listen", "", "Address to serve the live dashboard on (empty disables)")
}

func runBacktest(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	log := logger.NewStdLogger(logger.ParseLevel(logLevel))
	f := &backtestFlags

	factory, err := strategies.Factory(f.Strategy, strategies.Params{
		Pair:       f.Pair,
		Amount:     f.Amount,
		FastPeriod: f.FastPeriod,
		SlowPeriod: f.SlowPeriod,
		RSIPeriod:  f.RSIPeriod,
		Overbought: f.Overbought,
		Oversold:   f.Oversold,
	}, log)
	if err != nil {
		return err
	}

	var publisher ports.EventPublisher
	var dash *dashboard.Server
	if f.ListenAddr != "" {
		dash = dashboard.NewServer(f.ListenAddr, log)
		dash.Start(ctx)
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
			defer cancel()
			_ = dash.Shutdown(shutdownCtx)
		}()
		publisher = dash
	}

	sim, err := engine.New(engine.Config{
		StrategyName: f.Strategy,
		Pair:         f.Pair,
		Duration:     f.Duration,
		Interval:     time.Duration(f.IntervalMinutes) * time.Minute,
		Logger:       log,
		Publisher:    publisher,
		Seed:         f.Seed,
	}, factory)
	if err != nil {
		return err
	}

	report, err := sim.Run(ctx)
	if err != nil {
		return fmt.Errorf("simulation failed: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), report.String())
	if dash != nil {
		dash.PublishReport(report)
	}

	if f.JournalPath != "" {
		journal, err := sqlite.NewJournal(sqlite.Config{DBPath: f.JournalPath, Logger: log})
		if err != nil {
			return fmt.Errorf("failed to open journal: %w", err)
		}
		defer journal.Close()

		summary := &ports.RunSummary{
			Strategy:     report.Strategy,
			Pair:         report.Pair,
			Duration:     report.Duration,
			NaturalCount: report.NaturalCount(),
			ForcedCount:  report.ForcedCount(),
			NaturalPnL:   report.NaturalPnL,
			ForcedPnL:    report.ForcedPnL,
			Alerts:       len(report.Alerts),
			RecordedAt:   time.Now().UTC(),
		}
		runID, err := journal.SaveRun(ctx, summary, report.AllTrades())
		if err != nil {
			return fmt.Errorf("failed to journal run: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "run journaled with id %d\n", runID)
	}
	return nil
}
