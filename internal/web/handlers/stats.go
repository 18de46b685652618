package handlers

import (
	"net/http"
	"time"

	"github.com/kozaktomas/smart-attendance/internal/ledger"
)

// StatsHandler serves dashboard statistics aggregated from the ledger.
type StatsHandler struct {
	ledger *ledger.Ledger
}

// NewStatsHandler creates a new stats handler.
func NewStatsHandler(led *ledger.Ledger) *StatsHandler {
	return &StatsHandler{ledger: led}
}

// Get handles GET /api/v1/stats.
func (h *StatsHandler) Get(w http.ResponseWriter, r *http.Request) {
	stats, err := h.ledger.Stats(time.Now())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "computing stats: "+err.Error())
		return
	}
	respondJSON(w, http.StatusOK, stats)
}
