package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/kozaktomas/smart-attendance/internal/config"
	"github.com/kozaktomas/smart-attendance/internal/embedding"
	"github.com/kozaktomas/smart-attendance/internal/embedding/mock"
	"github.com/kozaktomas/smart-attendance/internal/encodings"
	"github.com/kozaktomas/smart-attendance/internal/ledger"
	"github.com/kozaktomas/smart-attendance/internal/recognize"
	"github.com/kozaktomas/smart-attendance/internal/roster"
)

// testEnv wires a full handler dependency set over a temporary data
// directory and a mock embedding provider.
type testEnv struct {
	config   *config.Config
	ledger   *ledger.Ledger
	roster   *roster.Roster
	store    *encodings.Store
	matcher  *recognize.Matcher
	provider *mock.Provider
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	dataDir := t.TempDir()
	provider := mock.NewProvider()

	ros, err := roster.New(filepath.Join(dataDir, "student_images"))
	if err != nil {
		t.Fatalf("creating roster: %v", err)
	}

	return &testEnv{
		config: &config.Config{
			Recognition: config.RecognitionConfig{Tolerance: 0.5},
		},
		ledger:   ledger.New(filepath.Join(dataDir, "attendance", "attendance.csv")),
		roster:   ros,
		store:    encodings.NewStore(ros, filepath.Join(dataDir, "encodings.gob"), provider),
		matcher:  recognize.NewMatcher(provider),
		provider: provider,
	}
}

// seedStudent writes a fake reference photo and registers its descriptor with
// the mock provider.
func (env *testEnv) seedStudent(t *testing.T, filename string, descriptor []float32) {
	t.Helper()

	content := []byte("image:" + filename)
	path := filepath.Join(env.roster.Dir(), filename)
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatalf("writing reference photo: %v", err)
	}

	env.provider.AddImage(content, embedding.FaceResponse{
		FacesCount: 1,
		Faces:      []embedding.FaceDetection{{Embedding: descriptor}},
	})
}

// capturePhoto registers a fake captured photo with the given face set and
// returns its bytes.
func (env *testEnv) capturePhoto(t *testing.T, name string, faces []embedding.FaceDetection) []byte {
	t.Helper()
	photo := []byte("capture:" + name)
	env.provider.AddImage(photo, embedding.FaceResponse{
		FacesCount: len(faces),
		Faces:      faces,
	})
	return photo
}

// multipartRequest builds a multipart request with a single file part.
func multipartRequest(t *testing.T, path, field, filename string, content []byte) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile(field, filename)
	if err != nil {
		t.Fatalf("creating form file: %v", err)
	}
	if _, err := part.Write(content); err != nil {
		t.Fatalf("writing form file: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("closing multipart writer: %v", err)
	}

	req := httptest.NewRequest("POST", path, &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

// jsonRequest builds a request with a JSON body.
func jsonRequest(t *testing.T, method, path string, body any) *http.Request {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshaling request body: %v", err)
		}
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	return req
}

// requestWithChiParams creates a request with chi URL parameters
func requestWithChiParams(r *http.Request, params map[string]string) *http.Request {
	rctx := chi.NewRouteContext()
	for key, value := range params {
		rctx.URLParams.Add(key, value)
	}
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// parseJSONResponse parses a JSON response body into the target type
func parseJSONResponse(t *testing.T, recorder *httptest.ResponseRecorder, target any) {
	t.Helper()
	if err := json.Unmarshal(recorder.Body.Bytes(), target); err != nil {
		t.Fatalf("failed to parse JSON response: %v\nBody: %s", err, recorder.Body.String())
	}
}

// assertStatusCode checks if the response has the expected status code
func assertStatusCode(t *testing.T, recorder *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if recorder.Code != expected {
		t.Errorf("expected status %d, got %d\nBody: %s", expected, recorder.Code, recorder.Body.String())
	}
}

// assertContentType checks if the response has the expected content type
func assertContentType(t *testing.T, recorder *httptest.ResponseRecorder, expected string) {
	t.Helper()
	ct := recorder.Header().Get("Content-Type")
	if ct != expected {
		t.Errorf("expected Content-Type '%s', got '%s'", expected, ct)
	}
}

// assertJSONError checks if the response is a JSON error with the expected message
func assertJSONError(t *testing.T, recorder *httptest.ResponseRecorder, expectedMessage string) {
	t.Helper()
	var result map[string]string
	if err := json.Unmarshal(recorder.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to parse error response: %v\nBody: %s", err, recorder.Body.String())
	}
	if result["error"] != expectedMessage {
		t.Errorf("expected error '%s', got '%s'", expectedMessage, result["error"])
	}
}
