// Package handler contains the HTTP layer: request decoding, the JSON
// response envelope, and the translation of service errors into status
// codes. No business rules live here.
package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/tasnim/travelmate/internal/apperror"
)

// Every response uses the same envelope: success carries "message" and
// "data", failure carries "message" and a machine-readable "error" type.
type successResponse struct {
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

type errorResponse struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body != nil {
		if err := json.NewEncoder(w).Encode(body); err != nil {
			// Headers are already sent at this point; logging is all
			// that's left.
			slog.Error("failed to encode JSON response", slog.String("error", err.Error()))
		}
	}
}

func writeData(w http.ResponseWriter, status int, message string, data any) {
	writeJSON(w, status, successResponse{Message: message, Data: data})
}

// writeError translates a service error into the envelope. Typed apperror
// values map to their status; anything else is a generic 500 so internal
// details never reach the client.
func writeError(w http.ResponseWriter, err error) {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		status := http.StatusInternalServerError
		errType := "internal_error"
		switch {
		case errors.Is(err, apperror.ErrValidation):
			status = http.StatusBadRequest
			errType = "validation_error"
		case errors.Is(err, apperror.ErrUnauthorized):
			status = http.StatusUnauthorized
			errType = "unauthorized"
		case errors.Is(err, apperror.ErrForbidden):
			status = http.StatusForbidden
			errType = "forbidden"
		case errors.Is(err, apperror.ErrNotFound):
			status = http.StatusNotFound
			errType = "not_found"
		}
		writeJSON(w, status, errorResponse{Message: appErr.Message, Error: errType})
		return
	}

	slog.Error("internal error", slog.String("error", err.Error()))
	writeJSON(w, http.StatusInternalServerError, errorResponse{
		Message: "something went wrong",
		Error:   "internal_error",
	})
}

// decodeJSON parses the request body into dest, rejecting unknown fields
// so typos in client payloads fail loudly instead of being ignored.
func decodeJSON(r *http.Request, dest any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dest); err != nil {
		return apperror.ValidationFailed("", "invalid JSON body")
	}
	return nil
}
