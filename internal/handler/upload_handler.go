package handler

import (
	"errors"
	"net/http"
	"time"

	"catalog-api/internal/model"
	"catalog-api/internal/storage"

	"github.com/rs/zerolog"
)

// multipartOverhead is the room left for multipart headers and boundaries
// on top of the file size limit.
const multipartOverhead = 64 << 10

// UploadHandler handles image uploads.
type UploadHandler struct {
	images   storage.ImageStore
	maxBytes int64
	logger   zerolog.Logger
	now      func() time.Time
}

// NewUploadHandler creates a new upload handler accepting files up to maxBytes.
func NewUploadHandler(images storage.ImageStore, maxBytes int64, logger zerolog.Logger) *UploadHandler {
	return &UploadHandler{
		images:   images,
		maxBytes: maxBytes,
		logger:   logger.With().Str("handler", "upload").Logger(),
		now:      time.Now,
	}
}

// Upload handles POST /upload-image. The file is read from the "image" form field.
func (h *UploadHandler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes+multipartOverhead)

	if err := r.ParseMultipartForm(h.maxBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, r, model.ErrFileTooLarge, h.logger)
			return
		}
		writeError(w, r, model.ErrFileRequired, h.logger)
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("image")
	if err != nil {
		writeError(w, r, model.ErrFileRequired, h.logger)
		return
	}
	defer file.Close()

	if header.Size > h.maxBytes {
		writeError(w, r, model.ErrFileTooLarge, h.logger)
		return
	}

	name := storage.ObjectName(header.Filename, h.now())
	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	link, err := h.images.Put(r.Context(), name, contentType, file, header.Size)
	if err != nil {
		writeError(w, r, model.NewBackendError("failed to store image", err), h.logger)
		return
	}

	h.logger.Info().
		Str("name", name).
		Int64("size", header.Size).
		Str("url", link).
		Msg("image uploaded")

	writeJSON(w, http.StatusOK, model.UploadResponse{URL: link})
}
