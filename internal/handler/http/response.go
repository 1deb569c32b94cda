package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	apperrors "github.com/felire/audio-medic-api/pkg/errors"
	"github.com/felire/audio-medic-api/pkg/logger"
	"github.com/felire/audio-medic-api/pkg/validator"
)

// response is the uniform JSON envelope for every endpoint.
type response struct {
	Success bool              `json:"success"`
	Data    any               `json:"data,omitempty"`
	Message string            `json:"message,omitempty"`
	Error   string            `json:"error,omitempty"`
	Fields  map[string]string `json:"fields,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	// Headers are already sent; nothing meaningful can be done if encoding fails.
	_ = json.NewEncoder(w).Encode(v)
}

func writeSuccess(w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, response{Success: true, Data: data})
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, response{Success: false, Message: message, Error: code})
}

func writeAppError(w http.ResponseWriter, r *http.Request, err error, log *slog.Logger) {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		if appErr.Status >= http.StatusInternalServerError {
			logger.WithContext(r.Context(), log).ErrorContext(r.Context(), "request failed",
				slog.String("error", err.Error()),
			)
			writeError(w, appErr.Status, "SERVER_ERROR", "an internal error occurred")
			return
		}
		writeError(w, appErr.Status, appErr.Code, appErr.Message)
		return
	}

	status := apperrors.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		logger.WithContext(r.Context(), log).ErrorContext(r.Context(), "request failed",
			slog.String("error", err.Error()),
		)
		writeError(w, status, "SERVER_ERROR", "an internal error occurred")
		return
	}

	code := "SERVER_ERROR"
	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		code = "NOT_FOUND"
	case errors.Is(err, apperrors.ErrConflict):
		code = "ALREADY_EXISTS"
	case errors.Is(err, apperrors.ErrInvalidInput), errors.Is(err, apperrors.ErrInvalidState):
		code = "VALIDATION_ERROR"
	case errors.Is(err, apperrors.ErrUnauthorized):
		code = "INVALID_TOKEN"
	case errors.Is(err, apperrors.ErrForbidden):
		code = "FORBIDDEN"
	}
	writeError(w, status, code, err.Error())
}

func writeValidationError(w http.ResponseWriter, err error) {
	var valErr *validator.ValidationError
	if errors.As(err, &valErr) {
		writeJSON(w, http.StatusBadRequest, response{
			Success: false,
			Message: "request validation failed",
			Error:   "VALIDATION_ERROR",
			Fields:  valErr.Fields(),
		})
		return
	}

	writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
}
