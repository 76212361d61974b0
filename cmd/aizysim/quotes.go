package main

import (
	"fmt"
	"os"

	"aizybot/internal/quotes"
	"aizybot/internal/utils"

	"github.com/spf13/cobra"
)

var quotesCfg = quotes.DefaultConfig()
var quotesOut string

var quotesCmd = &cobra.Command{
	Use:   "quotes",
	Short: "Generate synthetic candles as CSV",
	RunE:  runQuotes,
}

func init() {
	cmd := quotesCmd
	cmd.Flags().IntVar(&quotesCfg.Length, "length", quotesCfg.Length, "Number of candles to generate")
	cmd.Flags().Float64Var(&quotesCfg.MinClose, "min-close", quotesCfg.MinClose, "Lower bound for close prices")
	cmd.Flags().Float64Var(&quotesCfg.MaxClose, "max-close", quotesCfg.MaxClose, "Upper bound for close prices")
	cmd.Flags().Float64Var(&quotesCfg.UpCandlesProb, "up-candles-prob", quotesCfg.UpCandlesProb, "Probability of an up candle at each step")
	cmd.Flags().Float64Var(&quotesCfg.MaxCandleBody, "max-candle-body", quotesCfg.MaxCandleBody, "Excess added beyond the body on outlier candles")
	cmd.Flags().Float64Var(&quotesCfg.MaxOutlier, "max-outlier", quotesCfg.MaxOutlier, "Probability of an outlier candle")
	cmd.Flags().IntVar(&quotesCfg.MinutesPerCandle, "minutes-per-candle", quotesCfg.MinutesPerCandle, "Timestamp step between candles in minutes")
	cmd.Flags().Float64Var(&quotesCfg.AverageVolatility, "average-volatility", quotesCfg.AverageVolatility, "Maximum open-to-close move per step")
	cmd.Flags().Float64Var(&quotesCfg.StartPrice, "start-price", 0, "Starting price (0 picks one inside the bounds)")
	cmd.Flags().Int64Var(&quotesCfg.Seed, "seed", 0, "Random seed (0 uses the clock)")
	cmd.Flags().StringVar(&quotesOut, "out", "", "Output file (default stdout)")
}

func runQuotes(cmd *cobra.Command, args []string) error {
	gen, err := quotes.New(quotesCfg)
	if err != nil {
		return fmt.Errorf("invalid generator configuration: %w", err)
	}
	candles := gen.All()

	if quotesOut != "" {
		if err := utils.WriteCandlesToCSV(candles, quotesOut); err != nil {
			return fmt.Errorf("failed to write %s: %w", quotesOut, err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "wrote %d candles to %s\n", len(candles), quotesOut)
		return nil
	}
	return utils.WriteCandles(os.Stdout, candles)
}
