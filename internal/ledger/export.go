package ledger

import (
	"encoding/csv"
	"fmt"
	"io"
	"time"

	"github.com/kozaktomas/smart-attendance/internal/constants"
)

// WriteCSV writes records to w in ledger column order, header first. Used by
// the export endpoints and the records CLI.
func WriteCSV(w io.Writer, records []Record) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return fmt.Errorf("writing export header: %w", err)
	}
	for _, rec := range records {
		if err := cw.Write([]string{rec.Name, rec.Date, rec.Time, rec.Status}); err != nil {
			return fmt.Errorf("writing export record: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// ExportFileName names a CSV download: attendance_all_<today>.csv for the
// full ledger, attendance_export_<today>.csv for a filtered view.
func ExportFileName(all bool, today time.Time) string {
	kind := "export"
	if all {
		kind = "all"
	}
	return fmt.Sprintf("attendance_%s_%s.csv", kind, today.Format(constants.DateFormat))
}
