package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "fxsentinel",
	Short: "An automated FX trading engine for MetaTrader 5",
	Long: `FXSentinel is an automated FX trading engine that drives a MetaTrader 5
terminal through its HTTP bridge.

It provides tools for:
  - Running the recurring trading cycle against live market data
  - Rule-based entries confirmed by an ONNX confidence classifier
  - ATR-based position sizing and bracket placement
  - Durable trailing stop management across restarts
  - SQLite journaling of every order and stop move`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}
