// ABOUTME: JSON endpoints under /api
// ABOUTME: Session introspection and course image upload

package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/MohamedIjlal27/LMS/middleware"
	"github.com/MohamedIjlal27/LMS/services"
)

// ErrorResponse is the JSON error body.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  int    `json:"code"`
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode JSON response", "error", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, message string, code int) {
	h.writeJSON(w, code, ErrorResponse{Error: message, Code: code})
}

// Session returns the resolved AuthState. The token is never included.
func (h *Handler) Session(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Cache-Control", "no-store")
	h.writeJSON(w, http.StatusOK, middleware.FromContext(r.Context()))
}

// UploadCourseImage stores one image from the multipart field "file" and
// returns its public URL.
func (h *Handler) UploadCourseImage(w http.ResponseWriter, r *http.Request) {
	if h.images == nil {
		h.writeError(w, "Image uploads are not configured", http.StatusServiceUnavailable)
		return
	}

	// Leave headroom for multipart framing; the image itself is capped by CourseImages
	r.Body = http.MaxBytesReader(w, r.Body, h.images.MaxBytes()+1<<20)
	if err := r.ParseMultipartForm(h.images.MaxBytes()); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.writeError(w, services.ErrImageTooLarge.Error(), http.StatusRequestEntityTooLarge)
			return
		}
		h.writeError(w, "Expected a multipart form with a file field", http.StatusBadRequest)
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, _, err := r.FormFile("file")
	if err != nil {
		h.writeError(w, "Missing file field", http.StatusBadRequest)
		return
	}
	defer file.Close()

	url, err := h.images.Store(r.Context(), file)
	switch {
	case errors.Is(err, services.ErrImageTooLarge):
		h.writeError(w, err.Error(), http.StatusRequestEntityTooLarge)
	case errors.Is(err, services.ErrNotAnImage):
		h.writeError(w, err.Error(), http.StatusUnsupportedMediaType)
	case err != nil:
		logFailure(r.Context(), "Image upload", err)
		h.writeError(w, "Upload failed", http.StatusBadGateway)
	default:
		h.writeJSON(w, http.StatusCreated, map[string]string{"url": url})
	}
}
