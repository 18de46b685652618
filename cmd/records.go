package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/kozaktomas/smart-attendance/internal/ledger"
)

var recordsCmd = &cobra.Command{
	Use:   "records",
	Short: "List attendance records",
	Long:  `List attendance records, newest first. Use --date to show a single day.`,
	RunE:  runRecords,
}

var recordsExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export attendance records as CSV",
	Long: `Write attendance records as CSV to a file. Without --output the file is
named attendance_all_<today>.csv (or attendance_export_<today>.csv when
filtered with --date) in the current directory.`,
	RunE: runRecordsExport,
}

var recordsClearCmd = &cobra.Command{
	Use:   "clear <date>",
	Short: "Delete all records of one date",
	Long: `Delete every attendance record of the given date (YYYY-MM-DD).
This cannot be undone.`,
	Args: cobra.ExactArgs(1),
	RunE: runRecordsClear,
}

func init() {
	rootCmd.AddCommand(recordsCmd)
	recordsCmd.AddCommand(recordsExportCmd)
	recordsCmd.AddCommand(recordsClearCmd)

	recordsCmd.Flags().String("date", "", "Only show records of this date (YYYY-MM-DD)")
	recordsExportCmd.Flags().String("date", "", "Only export records of this date (YYYY-MM-DD)")
	recordsExportCmd.Flags().String("output", "", "Output file path")
	recordsClearCmd.Flags().Bool("yes", false, "Skip confirmation prompt")
}

func confirmAction(prompt string) bool {
	fmt.Print(prompt)
	reader := bufio.NewReader(os.Stdin)
	response, _ := reader.ReadString('\n')
	response = strings.TrimSpace(strings.ToLower(response))
	return response == "y" || response == "yes"
}

func runRecords(cmd *cobra.Command, args []string) error {
	rt, err := newRuntime()
	if err != nil {
		return err
	}

	date := mustGetString(cmd, "date")
	records, err := rt.ledger.Load(date)
	if err != nil {
		return fmt.Errorf("loading records: %w", err)
	}

	if len(records) == 0 {
		fmt.Println("No attendance records found")
		return nil
	}

	fmt.Printf("%-25s %-12s %-10s %s\n", "Name", "Date", "Time", "Status")
	for _, rec := range records {
		fmt.Printf("%-25s %-12s %-10s %s\n", rec.Name, rec.Date, rec.Time, rec.Status)
	}
	fmt.Printf("\n%d records\n", len(records))

	return nil
}

func runRecordsExport(cmd *cobra.Command, args []string) error {
	rt, err := newRuntime()
	if err != nil {
		return err
	}

	date := mustGetString(cmd, "date")
	records, err := rt.ledger.Load(date)
	if err != nil {
		return fmt.Errorf("loading records: %w", err)
	}

	output := mustGetString(cmd, "output")
	if output == "" {
		output = ledger.ExportFileName(date == "", time.Now())
	}

	f, err := os.Create(output)
	if err != nil {
		return fmt.Errorf("creating export file: %w", err)
	}
	defer f.Close()

	if err := ledger.WriteCSV(f, records); err != nil {
		return fmt.Errorf("writing export: %w", err)
	}

	fmt.Printf("Exported %d records to %s\n", len(records), output)
	return nil
}

func runRecordsClear(cmd *cobra.Command, args []string) error {
	date := args[0]
	if _, err := time.Parse("2006-01-02", date); err != nil {
		return fmt.Errorf("invalid date %q, expected YYYY-MM-DD", date)
	}

	rt, err := newRuntime()
	if err != nil {
		return err
	}

	if !mustGetBool(cmd, "yes") {
		if !confirmAction(fmt.Sprintf("Delete all attendance records of %s? [y/N] ", date)) {
			fmt.Println("Aborted")
			return nil
		}
	}

	removed, err := rt.ledger.Clear(date)
	if err != nil {
		return fmt.Errorf("clearing records: %w", err)
	}

	fmt.Printf("Removed %d records of %s\n", removed, date)
	return nil
}
