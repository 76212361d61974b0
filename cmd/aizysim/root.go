package main

import (
	"github.com/spf13/cobra"
)

var logLevel string

var rootCmd = &cobra.Command{
	Use:   "aizysim",
	Short: "Synthetic market data and strategy backtesting",
	Long: `aizysim generates synthetic candle data and runs trading strategies
against it in a deterministic simulation.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "INFO", "Log level (DEBUG, INFO, WARN, ERROR)")
	rootCmd.AddCommand(quotesCmd)
	rootCmd.AddCommand(backtestCmd)
}
