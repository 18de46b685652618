package handlers

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/kozaktomas/smart-attendance/internal/ledger"
	"github.com/kozaktomas/smart-attendance/internal/roster"
)

// RecordsHandler serves the attendance history: browsing, CSV export and
// clearing a day's records.
type RecordsHandler struct {
	ledger *ledger.Ledger
}

// NewRecordsHandler creates a new records handler.
func NewRecordsHandler(led *ledger.Ledger) *RecordsHandler {
	return &RecordsHandler{ledger: led}
}

// List handles GET /api/v1/records?date=YYYY-MM-DD&search=name. Returns
// attendance records newest first, optionally filtered to a single date
// and/or a name substring (diacritics- and case-insensitive).
func (h *RecordsHandler) List(w http.ResponseWriter, r *http.Request) {
	date := r.URL.Query().Get("date")

	records, err := h.ledger.Load(date)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "loading records: "+err.Error())
		return
	}

	if search := r.URL.Query().Get("search"); search != "" {
		needle := roster.NormalizeName(search)
		filtered := records[:0]
		for _, rec := range records {
			if strings.Contains(roster.NormalizeName(rec.Name), needle) {
				filtered = append(filtered, rec)
			}
		}
		records = filtered
	}

	if records == nil {
		records = []ledger.Record{}
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"records": records,
		"count":   len(records),
	})
}

// Export handles GET /api/v1/records/export?date=YYYY-MM-DD. Streams the
// ledger as a CSV download; without a date filter the whole ledger is
// exported.
func (h *RecordsHandler) Export(w http.ResponseWriter, r *http.Request) {
	date := r.URL.Query().Get("date")

	records, err := h.ledger.Load(date)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "loading records: "+err.Error())
		return
	}

	filename := ledger.ExportFileName(date == "", time.Now())
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)

	if err := ledger.WriteCSV(w, records); err != nil {
		// Headers are already sent; nothing sensible left to do.
		return
	}
}

// Clear handles DELETE /api/v1/records/{date}. Removes every record of the
// given date and reports how many were deleted. Irreversible.
func (h *RecordsHandler) Clear(w http.ResponseWriter, r *http.Request) {
	date := chi.URLParam(r, "date")
	if _, err := time.Parse("2006-01-02", date); err != nil {
		respondError(w, http.StatusBadRequest, "invalid date, expected YYYY-MM-DD")
		return
	}

	removed, err := h.ledger.Clear(date)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "clearing records: "+err.Error())
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"date":    date,
		"removed": removed,
	})
}
