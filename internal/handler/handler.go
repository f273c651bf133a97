package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"catalog-api/internal/model"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		// Log the error but don't expose it to the client
		return
	}
}

// writeError maps err to a status code and writes the error body. Backend
// failures are logged with their cause and answered with a generic message.
func writeError(w http.ResponseWriter, r *http.Request, err error, logger zerolog.Logger) {
	requestID := middleware.GetReqID(r.Context())

	var appErr *model.AppError
	if !errors.As(err, &appErr) {
		appErr = model.NewBackendError("Internal server error", err)
	}

	status := statusFor(appErr.Kind)

	event := logger.Warn()
	if status >= http.StatusInternalServerError {
		event = logger.Error()
	}
	event.Err(err).
		Str("request_id", requestID).
		Str("kind", appErr.Kind.String()).
		Int("status", status).
		Msg("request failed")

	message := appErr.Message
	if appErr.Kind == model.KindBackend {
		message = "Internal server error"
	}

	writeJSON(w, status, model.ErrorResponse{
		Error:         appErr.Code,
		Message:       message,
		CorrelationID: requestID,
	})
}

func statusFor(kind model.ErrorKind) int {
	switch kind {
	case model.KindValidation:
		return http.StatusBadRequest
	case model.KindAuth:
		return http.StatusUnauthorized
	case model.KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// productID parses the {id} path parameter. An id that is not a number
// cannot name a product, so it is reported as not found.
func productID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		return 0, model.ErrProductNotFound
	}
	return id, nil
}
