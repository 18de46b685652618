// Package ledger is the durable attendance record store: a CSV file with a
// fixed header, appended once per student per day. The file is the sole
// source of truth and is re-read on every operation, so external edits are
// honored on the next call. All path and format knowledge lives here.
package ledger

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/kozaktomas/smart-attendance/internal/constants"
)

// Header is the fixed CSV header row.
var Header = []string{"Name", "Date", "Time", "Status"}

// Record is one attendance entry. Dates are YYYY-MM-DD, times HH:MM:SS.
type Record struct {
	Name   string `json:"name"`
	Date   string `json:"date"`
	Time   string `json:"time"`
	Status string `json:"status"`
}

// Confirmation is returned by a successful Mark.
type Confirmation struct {
	Name string
	At   time.Time
}

// Rejection is a validation outcome, not a fault: the mark was refused for a
// reason the caller can show to the user.
type Rejection struct {
	Reason string
}

func (r *Rejection) Error() string {
	return r.Reason
}

// Rejection reasons.
const (
	ReasonUnrecognized  = "unrecognized face"
	ReasonAlreadyMarked = "already marked today"
)

// Stats aggregates the whole ledger for the dashboard.
type Stats struct {
	TotalRecords   int `json:"total_records"`
	UniqueStudents int `json:"unique_students"`
	UniqueDates    int `json:"unique_dates"`
	TodayCount     int `json:"today_count"`
}

// Ledger owns the attendance CSV file.
type Ledger struct {
	path string
}

// New creates a ledger over the given CSV path. The file itself is created
// lazily, with a header, on first touch.
func New(path string) *Ledger {
	return &Ledger{path: path}
}

// Path returns the ledger file location.
func (l *Ledger) Path() string {
	return l.path
}

// ensure creates the CSV with its header if it does not already exist.
func (l *Ledger) ensure() error {
	if _, err := os.Stat(l.path); err == nil {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(l.path), 0o755); err != nil {
		return fmt.Errorf("creating ledger directory: %w", err)
	}

	f, err := os.Create(l.path)
	if err != nil {
		return fmt.Errorf("creating ledger: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(Header); err != nil {
		return fmt.Errorf("writing ledger header: %w", err)
	}
	w.Flush()
	return w.Error()
}

// readAll reads every record in file order. Rows with fewer than four fields
// (possible after manual edits) are skipped.
func (l *Ledger) readAll() ([]Record, error) {
	if err := l.ensure(); err != nil {
		return nil, err
	}

	f, err := os.Open(l.path)
	if err != nil {
		return nil, fmt.Errorf("opening ledger: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading ledger: %w", err)
	}

	var records []Record
	for i, row := range rows {
		if i == 0 || len(row) < 4 {
			continue // header or malformed row
		}
		records = append(records, Record{
			Name:   row[0],
			Date:   row[1],
			Time:   row[2],
			Status: row[3],
		})
	}
	return records, nil
}

// Mark records attendance for name at the given moment. Empty names and the
// Unknown sentinel (any case) are rejected with ReasonUnrecognized; a second
// mark on the same date is rejected with ReasonAlreadyMarked. The duplicate
// check is read-then-append without a lock, which is fine for the intended
// single-operator deployment.
func (l *Ledger) Mark(name string, now time.Time) (*Confirmation, error) {
	name = strings.TrimSpace(name)
	if name == "" || strings.EqualFold(name, constants.UnknownName) {
		return nil, &Rejection{Reason: ReasonUnrecognized}
	}

	marked, err := l.TodayMarked(now)
	if err != nil {
		return nil, err
	}
	if _, ok := marked[name]; ok {
		return nil, &Rejection{Reason: ReasonAlreadyMarked}
	}

	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("opening ledger for append: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	row := []string{
		name,
		now.Format(constants.DateFormat),
		now.Format(constants.TimeFormat),
		constants.StatusPresent,
	}
	if err := w.Write(row); err != nil {
		return nil, fmt.Errorf("appending ledger record: %w", err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("appending ledger record: %w", err)
	}

	return &Confirmation{Name: name, At: now}, nil
}

// TodayMarked returns the set of names already recorded on the given day,
// read fresh from disk.
func (l *Ledger) TodayMarked(day time.Time) (map[string]struct{}, error) {
	records, err := l.readAll()
	if err != nil {
		return nil, err
	}

	date := day.Format(constants.DateFormat)
	marked := make(map[string]struct{})
	for _, rec := range records {
		if rec.Date == date {
			marked[rec.Name] = struct{}{}
		}
	}
	return marked, nil
}

// Load returns records sorted by (Date desc, Time desc) for display. When
// filterDate is non-empty only records of that date are returned. A missing
// ledger file yields an empty result, never an error.
func (l *Ledger) Load(filterDate string) ([]Record, error) {
	records, err := l.readAll()
	if err != nil {
		return nil, err
	}

	if filterDate != "" {
		filtered := records[:0]
		for _, rec := range records {
			if rec.Date == filterDate {
				filtered = append(filtered, rec)
			}
		}
		records = filtered
	}

	sort.SliceStable(records, func(i, j int) bool {
		if records[i].Date != records[j].Date {
			return records[i].Date > records[j].Date
		}
		return records[i].Time > records[j].Time
	})
	return records, nil
}

// Stats aggregates the full ledger; today is resolved against the given day.
func (l *Ledger) Stats(today time.Time) (Stats, error) {
	records, err := l.readAll()
	if err != nil {
		return Stats{}, err
	}

	date := today.Format(constants.DateFormat)
	names := make(map[string]struct{})
	dates := make(map[string]struct{})
	todayCount := 0
	for _, rec := range records {
		names[rec.Name] = struct{}{}
		dates[rec.Date] = struct{}{}
		if rec.Date == date {
			todayCount++
		}
	}

	return Stats{
		TotalRecords:   len(records),
		UniqueStudents: len(names),
		UniqueDates:    len(dates),
		TodayCount:     todayCount,
	}, nil
}

// Clear removes every record with the given date, rewriting the ledger. All
// other rows keep their original relative order. Returns the number of
// removed records. Irreversible.
func (l *Ledger) Clear(date string) (int, error) {
	records, err := l.readAll()
	if err != nil {
		return 0, err
	}

	var kept []Record
	removed := 0
	for _, rec := range records {
		if rec.Date == date {
			removed++
			continue
		}
		kept = append(kept, rec)
	}
	if removed == 0 {
		return 0, nil
	}

	f, err := os.Create(l.path)
	if err != nil {
		return 0, fmt.Errorf("rewriting ledger: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(Header); err != nil {
		return 0, fmt.Errorf("rewriting ledger header: %w", err)
	}
	for _, rec := range kept {
		if err := w.Write([]string{rec.Name, rec.Date, rec.Time, rec.Status}); err != nil {
			return 0, fmt.Errorf("rewriting ledger record: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return 0, fmt.Errorf("rewriting ledger: %w", err)
	}
	return removed, nil
}
