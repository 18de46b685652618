package web

import (
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/kozaktomas/smart-attendance/internal/config"
	"github.com/kozaktomas/smart-attendance/internal/embedding/mock"
	"github.com/kozaktomas/smart-attendance/internal/encodings"
	"github.com/kozaktomas/smart-attendance/internal/ledger"
	"github.com/kozaktomas/smart-attendance/internal/recognize"
	"github.com/kozaktomas/smart-attendance/internal/roster"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()

	dataDir := t.TempDir()
	provider := mock.NewProvider()

	ros, err := roster.New(filepath.Join(dataDir, "student_images"))
	if err != nil {
		t.Fatalf("creating roster: %v", err)
	}

	cfg := &config.Config{
		Web: config.WebConfig{Host: "127.0.0.1", Port: 0},
	}
	led := ledger.New(filepath.Join(dataDir, "attendance", "attendance.csv"))
	store := encodings.NewStore(ros, filepath.Join(dataDir, "encodings.gob"), provider)
	matcher := recognize.NewMatcher(provider)

	return NewServer(cfg, led, ros, store, matcher, provider)
}

func TestServer_HealthEndpoint(t *testing.T) {
	server := newTestServer(t)

	req := httptest.NewRequest("GET", "/api/v1/health", nil)
	recorder := httptest.NewRecorder()
	server.Router().ServeHTTP(recorder, req)

	if recorder.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", recorder.Code)
	}
	if !strings.Contains(recorder.Body.String(), `"status":"ok"`) {
		t.Errorf("unexpected health body: %s", recorder.Body.String())
	}
}

func TestServer_RoutesRegistered(t *testing.T) {
	server := newTestServer(t)

	// A GET against a registered POST route must yield 405, not 404.
	tests := []struct {
		method string
		path   string
		want   int
	}{
		{"GET", "/api/v1/students", http.StatusOK},
		{"GET", "/api/v1/records", http.StatusOK},
		{"GET", "/api/v1/stats", http.StatusOK},
		{"GET", "/api/v1/attendance/today", http.StatusOK},
		{"GET", "/api/v1/students/encodings", http.StatusOK},
		{"GET", "/api/v1/attendance/recognize", http.StatusMethodNotAllowed},
		{"GET", "/api/v1/attendance/mark", http.StatusMethodNotAllowed},
		{"GET", "/api/v1/nope", http.StatusNotFound},
	}

	for _, tc := range tests {
		req := httptest.NewRequest(tc.method, tc.path, nil)
		recorder := httptest.NewRecorder()
		server.Router().ServeHTTP(recorder, req)

		if recorder.Code != tc.want {
			t.Errorf("%s %s: expected %d, got %d", tc.method, tc.path, tc.want, recorder.Code)
		}
	}
}

func TestServer_MarkThroughRouter(t *testing.T) {
	server := newTestServer(t)

	req := httptest.NewRequest("POST", "/api/v1/attendance/mark", strings.NewReader(`{"name":"Alice"}`))
	req.Header.Set("Content-Type", "application/json")
	recorder := httptest.NewRecorder()
	server.Router().ServeHTTP(recorder, req)

	if recorder.Code != http.StatusCreated {
		t.Errorf("expected 201, got %d\nBody: %s", recorder.Code, recorder.Body.String())
	}

	// Second mark the same day conflicts.
	req = httptest.NewRequest("POST", "/api/v1/attendance/mark", strings.NewReader(`{"name":"Alice"}`))
	req.Header.Set("Content-Type", "application/json")
	recorder = httptest.NewRecorder()
	server.Router().ServeHTTP(recorder, req)

	if recorder.Code != http.StatusConflict {
		t.Errorf("expected 409, got %d", recorder.Code)
	}
}
