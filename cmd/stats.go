package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show attendance statistics",
	RunE:  runStats,
}

func init() {
	rootCmd.AddCommand(statsCmd)
}

func runStats(cmd *cobra.Command, args []string) error {
	rt, err := newRuntime()
	if err != nil {
		return err
	}

	stats, err := rt.ledger.Stats(time.Now())
	if err != nil {
		return fmt.Errorf("computing stats: %w", err)
	}

	fmt.Printf("Total records:   %d\n", stats.TotalRecords)
	fmt.Printf("Unique students: %d\n", stats.UniqueStudents)
	fmt.Printf("Days tracked:    %d\n", stats.UniqueDates)
	fmt.Printf("Present today:   %d\n", stats.TodayCount)

	return nil
}
