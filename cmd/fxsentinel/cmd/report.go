package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"fxsentinel/journal"
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Print a daily activity report from the journal",
	Long: `Summarize journaled activity for one UTC calendar day: orders and
traded volume per symbol, plus trailing stop moves.

Examples:
  fxsentinel report -j fxsentinel.db
  fxsentinel report -j fxsentinel.db -d 2026-08-27`,
	RunE: runReport,
}

var (
	reportJournalPath string
	reportDay         string
)

func init() {
	rootCmd.AddCommand(reportCmd)

	reportCmd.Flags().StringVarP(&reportJournalPath, "journal", "j", "", "path to the journal database (required)")
	reportCmd.Flags().StringVarP(&reportDay, "day", "d", "", "UTC day as YYYY-MM-DD (default today)")
	reportCmd.MarkFlagRequired("journal")
}

func runReport(cmd *cobra.Command, args []string) error {
	day := time.Now().UTC()
	if reportDay != "" {
		var err error
		day, err = time.Parse("2006-01-02", reportDay)
		if err != nil {
			return fmt.Errorf("parse day: %w", err)
		}
	}

	j, err := journal.NewSQLite(reportJournalPath)
	if err != nil {
		return fmt.Errorf("open journal: %w", err)
	}
	defer j.Close()

	rows, err := j.DailyReport(day)
	if err != nil {
		return fmt.Errorf("daily report: %w", err)
	}

	fmt.Printf("Activity for %s\n\n", day.Format("2006-01-02"))
	if len(rows) == 0 {
		fmt.Println("  no journaled activity")
		return nil
	}

	fmt.Printf("  %-10s %8s %10s %12s\n", "Symbol", "Orders", "Volume", "Stop moves")
	for _, r := range rows {
		fmt.Printf("  %-10s %8d %10.2f %12d\n", r.Symbol, r.Orders, r.Volume, r.StopMoves)
	}
	return nil
}
