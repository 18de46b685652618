package handlers

import (
	"errors"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/kozaktomas/smart-attendance/internal/constants"
	"github.com/kozaktomas/smart-attendance/internal/embedding"
	"github.com/kozaktomas/smart-attendance/internal/encodings"
	"github.com/kozaktomas/smart-attendance/internal/roster"
)

// StudentsHandler manages the labeled reference photos and the encoding
// database built from them.
type StudentsHandler struct {
	roster   *roster.Roster
	store    *encodings.Store
	provider embedding.Provider
}

// NewStudentsHandler creates a new students handler.
func NewStudentsHandler(ros *roster.Roster, store *encodings.Store, provider embedding.Provider) *StudentsHandler {
	return &StudentsHandler{
		roster:   ros,
		store:    store,
		provider: provider,
	}
}

// List handles GET /api/v1/students. Returns every reference photo plus the
// distinct derived student names.
func (h *StudentsHandler) List(w http.ResponseWriter, r *http.Request) {
	students, err := h.roster.List()
	if err != nil {
		respondError(w, http.StatusInternalServerError, "listing students: "+err.Error())
		return
	}
	names, err := h.roster.Names()
	if err != nil {
		respondError(w, http.StatusInternalServerError, "listing students: "+err.Error())
		return
	}

	if students == nil {
		students = []roster.Student{}
	}
	if names == nil {
		names = []string{}
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"students": students,
		"names":    names,
		"count":    len(students),
	})
}

// Upload handles POST /api/v1/students. Accepts one or more reference photos
// as multipart "photos" parts. Files that already exist are skipped, never
// overwritten. A successful upload invalidates the encoding database.
func (h *StudentsHandler) Upload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(constants.MaxUploadSize); err != nil {
		respondError(w, http.StatusBadRequest, "invalid multipart request")
		return
	}

	files := r.MultipartForm.File["photos"]
	if len(files) == 0 {
		respondError(w, http.StatusBadRequest, "no photos uploaded")
		return
	}

	var saved, skipped, rejected []string
	for _, fh := range files {
		if !roster.IsSupported(fh.Filename) {
			rejected = append(rejected, fh.Filename)
			continue
		}

		f, err := fh.Open()
		if err != nil {
			respondError(w, http.StatusInternalServerError, "reading upload: "+err.Error())
			return
		}

		exists, err := h.roster.Save(fh.Filename, f)
		f.Close()
		if err != nil {
			respondError(w, http.StatusInternalServerError, "saving reference photo: "+err.Error())
			return
		}
		if exists {
			skipped = append(skipped, fh.Filename)
		} else {
			saved = append(saved, fh.Filename)
		}
	}

	if len(saved) > 0 {
		if err := h.store.Invalidate(); err != nil {
			respondError(w, http.StatusInternalServerError, "invalidating encodings: "+err.Error())
			return
		}
	}

	respondJSON(w, http.StatusCreated, map[string]any{
		"saved":    emptyIfNil(saved),
		"skipped":  emptyIfNil(skipped),
		"rejected": emptyIfNil(rejected),
	})
}

// Delete handles DELETE /api/v1/students/{filename}. Removes a reference
// photo and invalidates the encoding database.
func (h *StudentsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	filename := chi.URLParam(r, "filename")
	if filename == "" {
		respondError(w, http.StatusBadRequest, "missing filename")
		return
	}

	if err := h.roster.Delete(filename); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			respondError(w, http.StatusNotFound, "reference photo not found")
			return
		}
		respondError(w, http.StatusInternalServerError, "deleting reference photo: "+err.Error())
		return
	}

	if err := h.store.Invalidate(); err != nil {
		respondError(w, http.StatusInternalServerError, "invalidating encodings: "+err.Error())
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"deleted": filename})
}

// Encode handles POST /api/v1/students/encode. Rebuilds the encoding
// database from all reference photos. With the embedding service down the
// rebuild yields an empty database and available=false.
func (h *StudentsHandler) Encode(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	db, err := h.store.Rebuild(ctx, nil)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "rebuilding encodings: "+err.Error())
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"available":   h.provider.Available(ctx),
		"students":    len(db),
		"descriptors": db.Count(),
	})
}

// Status handles GET /api/v1/students/encodings. Reports whether a persisted
// encoding database exists and when it was built.
func (h *StudentsHandler) Status(w http.ResponseWriter, r *http.Request) {
	builtAt, ok := h.store.BuiltAt()

	resp := map[string]any{"built": ok}
	if ok {
		resp["built_at"] = builtAt.Format(time.RFC3339)
	}
	respondJSON(w, http.StatusOK, resp)
}

func emptyIfNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
