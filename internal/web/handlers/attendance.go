package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/kozaktomas/smart-attendance/internal/config"
	"github.com/kozaktomas/smart-attendance/internal/constants"
	"github.com/kozaktomas/smart-attendance/internal/embedding"
	"github.com/kozaktomas/smart-attendance/internal/encodings"
	"github.com/kozaktomas/smart-attendance/internal/ledger"
	"github.com/kozaktomas/smart-attendance/internal/recognize"
)

// AttendanceHandler handles attendance capture: recognizing faces in a
// captured photo and marking recognized students present.
type AttendanceHandler struct {
	config   *config.Config
	ledger   *ledger.Ledger
	store    *encodings.Store
	matcher  *recognize.Matcher
	provider embedding.Provider
}

// NewAttendanceHandler creates a new attendance handler.
func NewAttendanceHandler(cfg *config.Config, led *ledger.Ledger, store *encodings.Store, matcher *recognize.Matcher, provider embedding.Provider) *AttendanceHandler {
	return &AttendanceHandler{
		config:   cfg,
		ledger:   led,
		store:    store,
		matcher:  matcher,
		provider: provider,
	}
}

// recognizedFace is one match enriched with the ledger's duplicate state so
// the frontend can disable the mark button immediately.
type recognizedFace struct {
	Name          string    `json:"name"`
	Confidence    float64   `json:"confidence"`
	BBox          []float64 `json:"bbox"`
	DetScore      float64   `json:"det_score"`
	Known         bool      `json:"known"`
	AlreadyMarked bool      `json:"already_marked"`
}

type recognizeResponse struct {
	CaptureID string           `json:"capture_id"`
	Available bool             `json:"available"`
	Faces     []recognizedFace `json:"faces"`
}

// readCapturedPhoto extracts the photo part from a multipart capture request.
func readCapturedPhoto(r *http.Request) ([]byte, error) {
	if err := r.ParseMultipartForm(constants.MaxUploadSize); err != nil {
		return nil, err
	}

	file, _, err := r.FormFile("photo")
	if err != nil {
		return nil, err
	}
	defer file.Close()

	return io.ReadAll(file)
}

// Recognize handles POST /api/v1/attendance/recognize. It accepts a multipart
// photo, runs face recognition against the current encoding database and
// returns the matched faces. Nothing is written to the ledger here.
func (h *AttendanceHandler) Recognize(w http.ResponseWriter, r *http.Request) {
	photo, err := readCapturedPhoto(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "missing photo upload")
		return
	}

	ctx := r.Context()
	db, err := h.store.Load(ctx)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "loading encodings: "+err.Error())
		return
	}

	tolerance := h.config.Tolerance(h.config.Embedding.Model)
	matches, err := h.matcher.Recognize(ctx, photo, db, tolerance)
	if err != nil {
		respondError(w, http.StatusBadGateway, "face recognition failed: "+err.Error())
		return
	}

	marked, err := h.ledger.TodayMarked(time.Now())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "reading attendance: "+err.Error())
		return
	}

	faces := make([]recognizedFace, 0, len(matches))
	for _, m := range matches {
		_, already := marked[m.Name]
		faces = append(faces, recognizedFace{
			Name:          m.Name,
			Confidence:    m.Confidence,
			BBox:          m.BBox,
			DetScore:      m.DetScore,
			Known:         m.Known(),
			AlreadyMarked: m.Known() && already,
		})
	}

	respondJSON(w, http.StatusOK, recognizeResponse{
		CaptureID: uuid.NewString(),
		Available: h.provider.Available(ctx),
		Faces:     faces,
	})
}

// Annotate handles POST /api/v1/attendance/annotate. Same input as Recognize
// but returns the captured photo as JPEG with labeled bounding boxes drawn on.
func (h *AttendanceHandler) Annotate(w http.ResponseWriter, r *http.Request) {
	photo, err := readCapturedPhoto(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "missing photo upload")
		return
	}

	ctx := r.Context()
	db, err := h.store.Load(ctx)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "loading encodings: "+err.Error())
		return
	}

	tolerance := h.config.Tolerance(h.config.Embedding.Model)
	matches, err := h.matcher.Recognize(ctx, photo, db, tolerance)
	if err != nil {
		respondError(w, http.StatusBadGateway, "face recognition failed: "+err.Error())
		return
	}

	annotated, err := recognize.Annotate(photo, matches)
	if err != nil {
		respondError(w, http.StatusBadRequest, "annotating photo: "+err.Error())
		return
	}

	w.Header().Set("Content-Type", "image/jpeg")
	w.WriteHeader(http.StatusOK)
	w.Write(annotated)
}

type markRequest struct {
	Name string `json:"name"`
}

// Mark handles POST /api/v1/attendance/mark. Records attendance for one
// recognized student. A duplicate mark on the same day returns 409, an
// unrecognized name 422.
func (h *AttendanceHandler) Mark(w http.ResponseWriter, r *http.Request) {
	var req markRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, errInvalidRequestBody)
		return
	}

	conf, err := h.ledger.Mark(req.Name, time.Now())
	if err != nil {
		var rej *ledger.Rejection
		if errors.As(err, &rej) {
			status := http.StatusUnprocessableEntity
			if rej.Reason == ledger.ReasonAlreadyMarked {
				status = http.StatusConflict
			}
			respondError(w, status, rej.Reason)
			return
		}
		respondError(w, http.StatusInternalServerError, "recording attendance: "+err.Error())
		return
	}

	respondJSON(w, http.StatusCreated, map[string]string{
		"name":   conf.Name,
		"date":   conf.At.Format(constants.DateFormat),
		"time":   conf.At.Format(constants.TimeFormat),
		"status": constants.StatusPresent,
	})
}

// Today handles GET /api/v1/attendance/today. Returns the names already
// marked present today, sorted.
func (h *AttendanceHandler) Today(w http.ResponseWriter, r *http.Request) {
	now := time.Now()
	marked, err := h.ledger.TodayMarked(now)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "reading attendance: "+err.Error())
		return
	}

	names := make([]string, 0, len(marked))
	for name := range marked {
		names = append(names, name)
	}
	sort.Strings(names)

	respondJSON(w, http.StatusOK, map[string]any{
		"date":  now.Format(constants.DateFormat),
		"names": names,
	})
}
