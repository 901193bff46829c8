package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"signal-agent/internal/eod"
	"signal-agent/internal/eod/eodobs"
	"signal-agent/internal/interfaces"
)

var summarizeDate string

var summarizeCmd = &cobra.Command{
	Use:   "summarize",
	Short: "Write the daily CSV summary of simulated fills",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := initializeSystem(); err != nil {
			return err
		}
		cfg, err := loadConfig(cmd.Context(), configPath, 0)
		if err != nil {
			return err
		}

		day := time.Now().UTC()
		if summarizeDate != "" {
			day, err = time.Parse("2006-01-02", summarizeDate)
			if err != nil {
				return fmt.Errorf("invalid --date %q: %w", summarizeDate, err)
			}
		}

		p, err := initializeEOD(cfg.Journal.Dir).SummarizeDay(cmd.Context(), day)
		if err != nil {
			return err
		}
		if p == "" {
			fmt.Fprintln(cmd.OutOrStdout(), "no fills for", day.Format("2006-01-02"))
			return nil
		}
		fmt.Fprintln(cmd.OutOrStdout(), "EOD CSV written:", p)
		return nil
	},
}

// initializeEOD wraps the journal summarizer with observability
func initializeEOD(dir string) interfaces.EodSummarizer {
	return eodobs.Wrap(eod.NewSummarizer(dir))
}

func init() {
	summarizeCmd.Flags().StringVar(&summarizeDate, "date", "", "UTC day to summarize, YYYY-MM-DD (default today)")
}
