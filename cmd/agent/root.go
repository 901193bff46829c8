package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// version is overridden at build time with -ldflags "-X main.version=...".
var version = "dev"

var configPath string

var rootCmd = &cobra.Command{
	Use:   "signal-agent",
	Short: "Trading-signal API over live crypto candles",
	Long: `signal-agent fetches recent OHLCV candles, derives moving averages and RSI,
and recommends Buy, Sell or Hold through a small HTTP API.

It also keeps one simulated all-in/all-out account that can be stepped
through the /step and /reset endpoints.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the build version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), version)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "config.yaml", "path to the YAML config file")
	rootCmd.AddCommand(serveCmd, summarizeCmd, versionCmd)
}
