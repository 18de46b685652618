package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/kozaktomas/smart-attendance/internal/ledger"
)

func seedRecords(t *testing.T, env *testEnv) {
	t.Helper()
	for _, m := range []struct {
		name string
		at   string
	}{
		{"Alice", "2024-03-01 09:00:00"},
		{"Bob", "2024-03-02 08:30:00"},
		{"Carol", "2024-03-02 10:45:00"},
	} {
		at, err := time.Parse("2006-01-02 15:04:05", m.at)
		if err != nil {
			t.Fatalf("bad test time %q: %v", m.at, err)
		}
		if _, err := env.ledger.Mark(m.name, at); err != nil {
			t.Fatalf("marking %s: %v", m.name, err)
		}
	}
}

func TestRecordsHandler_List_All(t *testing.T) {
	env := newTestEnv(t)
	seedRecords(t, env)

	handler := NewRecordsHandler(env.ledger)
	recorder := httptest.NewRecorder()
	handler.List(recorder, httptest.NewRequest("GET", "/api/v1/records", nil))

	assertStatusCode(t, recorder, http.StatusOK)

	var resp struct {
		Records []ledger.Record `json:"records"`
		Count   int             `json:"count"`
	}
	parseJSONResponse(t, recorder, &resp)

	if resp.Count != 3 {
		t.Fatalf("expected 3 records, got %d", resp.Count)
	}
	// Newest first.
	if resp.Records[0].Name != "Carol" || resp.Records[2].Name != "Alice" {
		t.Errorf("unexpected order: %+v", resp.Records)
	}
}

func TestRecordsHandler_List_Filtered(t *testing.T) {
	env := newTestEnv(t)
	seedRecords(t, env)

	handler := NewRecordsHandler(env.ledger)
	recorder := httptest.NewRecorder()
	handler.List(recorder, httptest.NewRequest("GET", "/api/v1/records?date=2024-03-01", nil))

	var resp struct {
		Records []ledger.Record `json:"records"`
		Count   int             `json:"count"`
	}
	parseJSONResponse(t, recorder, &resp)

	if resp.Count != 1 || resp.Records[0].Name != "Alice" {
		t.Errorf("expected only Alice, got %+v", resp.Records)
	}
}

func TestRecordsHandler_List_Search(t *testing.T) {
	env := newTestEnv(t)
	seedRecords(t, env)

	handler := NewRecordsHandler(env.ledger)
	recorder := httptest.NewRecorder()
	handler.List(recorder, httptest.NewRequest("GET", "/api/v1/records?search=cAr", nil))

	var resp struct {
		Records []ledger.Record `json:"records"`
		Count   int             `json:"count"`
	}
	parseJSONResponse(t, recorder, &resp)

	if resp.Count != 1 || resp.Records[0].Name != "Carol" {
		t.Errorf("expected only Carol for search 'cAr', got %+v", resp.Records)
	}
}

func TestRecordsHandler_List_EmptyLedger(t *testing.T) {
	env := newTestEnv(t)

	handler := NewRecordsHandler(env.ledger)
	recorder := httptest.NewRecorder()
	handler.List(recorder, httptest.NewRequest("GET", "/api/v1/records", nil))

	assertStatusCode(t, recorder, http.StatusOK)

	var resp map[string]any
	parseJSONResponse(t, recorder, &resp)
	if resp["records"] == nil {
		t.Error("expected empty array, not null")
	}
}

func TestRecordsHandler_Export(t *testing.T) {
	env := newTestEnv(t)
	seedRecords(t, env)

	handler := NewRecordsHandler(env.ledger)
	recorder := httptest.NewRecorder()
	handler.Export(recorder, httptest.NewRequest("GET", "/api/v1/records/export", nil))

	assertStatusCode(t, recorder, http.StatusOK)
	assertContentType(t, recorder, "text/csv")

	disposition := recorder.Header().Get("Content-Disposition")
	wantName := "attendance_all_" + time.Now().Format("2006-01-02") + ".csv"
	if !strings.Contains(disposition, wantName) {
		t.Errorf("expected filename %q in disposition %q", wantName, disposition)
	}

	body := recorder.Body.String()
	if !strings.HasPrefix(body, "Name,Date,Time,Status\n") {
		t.Errorf("export missing header: %q", body)
	}
	for _, name := range []string{"Alice", "Bob", "Carol"} {
		if !strings.Contains(body, name) {
			t.Errorf("export missing %s: %q", name, body)
		}
	}
}

func TestRecordsHandler_Export_Filtered(t *testing.T) {
	env := newTestEnv(t)
	seedRecords(t, env)

	handler := NewRecordsHandler(env.ledger)
	recorder := httptest.NewRecorder()
	handler.Export(recorder, httptest.NewRequest("GET", "/api/v1/records/export?date=2024-03-02", nil))

	disposition := recorder.Header().Get("Content-Disposition")
	if !strings.Contains(disposition, "attendance_export_") {
		t.Errorf("expected filtered export filename, got %q", disposition)
	}

	body := recorder.Body.String()
	if strings.Contains(body, "Alice") {
		t.Errorf("filtered export must not contain Alice: %q", body)
	}
	if !strings.Contains(body, "Bob") || !strings.Contains(body, "Carol") {
		t.Errorf("filtered export missing expected records: %q", body)
	}
}

func TestRecordsHandler_Clear(t *testing.T) {
	env := newTestEnv(t)
	seedRecords(t, env)

	handler := NewRecordsHandler(env.ledger)
	req := requestWithChiParams(
		httptest.NewRequest("DELETE", "/api/v1/records/2024-03-02", nil),
		map[string]string{"date": "2024-03-02"},
	)
	recorder := httptest.NewRecorder()
	handler.Clear(recorder, req)

	assertStatusCode(t, recorder, http.StatusOK)

	var resp struct {
		Date    string `json:"date"`
		Removed int    `json:"removed"`
	}
	parseJSONResponse(t, recorder, &resp)

	if resp.Removed != 2 {
		t.Errorf("expected 2 removed, got %d", resp.Removed)
	}

	records, err := env.ledger.Load("")
	if err != nil {
		t.Fatalf("loading ledger: %v", err)
	}
	if len(records) != 1 || records[0].Name != "Alice" {
		t.Errorf("expected only Alice to survive, got %+v", records)
	}
}

func TestRecordsHandler_Clear_InvalidDate(t *testing.T) {
	env := newTestEnv(t)

	handler := NewRecordsHandler(env.ledger)
	req := requestWithChiParams(
		httptest.NewRequest("DELETE", "/api/v1/records/yesterday", nil),
		map[string]string{"date": "yesterday"},
	)
	recorder := httptest.NewRecorder()
	handler.Clear(recorder, req)

	assertStatusCode(t, recorder, http.StatusBadRequest)
}
