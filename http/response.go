package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/Rifqialba/urilaga"
)

// ErrorResponse represents a JSON error response
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Message string `json:"message"`
}

// WriteError writes a JSON error response
func WriteError(w http.ResponseWriter, code int, errCode, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(ErrorResponse{
		Success: false,
		Error:   errCode,
		Message: message,
	}); err != nil {
		slog.Error("failed to encode error response", "error", err)
	}
}

type errorMapping struct {
	target  error
	status  int
	code    string
	message string
}

// errorMappings is checked in order; the first match wins.
var errorMappings = []errorMapping{
	{urilaga.ErrTooLarge, http.StatusRequestEntityTooLarge, "too_large", "Request body too large"},
	{urilaga.ErrIncompleteMetadata, http.StatusBadRequest, "validation_error", "Incomplete metadata"},
	{urilaga.ErrValidation, http.StatusBadRequest, "validation_error", "Invalid request"},
	{urilaga.ErrInvalidCredential, http.StatusBadRequest, "invalid_credential", "Incorrect password"},
	{urilaga.ErrUnauthorized, http.StatusForbidden, "unauthorized", "Access denied"},
	{urilaga.ErrNotFound, http.StatusNotFound, "not_found", "Not found"},
	{urilaga.ErrStorage, http.StatusInternalServerError, "storage_error", "Error uploading file"},
	{urilaga.ErrSign, http.StatusInternalServerError, "sign_error", "Error generating signed URL"},
	{urilaga.ErrPersistence, http.StatusInternalServerError, "persistence_error", "Error inserting metadata"},
	{urilaga.ErrQuery, http.StatusInternalServerError, "query_error", "Failed to list images"},
}

// HandleError writes appropriate error response based on error type.
// Client errors are logged at warn level and server errors at error level.
func HandleError(w http.ResponseWriter, err error) {
	for _, m := range errorMappings {
		if errors.Is(err, m.target) {
			logError(m.status, err)
			WriteError(w, m.status, m.code, m.message)
			return
		}
	}

	// Default internal error
	logError(http.StatusInternalServerError, err)
	WriteError(w, http.StatusInternalServerError, "server_error", "Server error")
}

func logError(status int, err error) {
	if status >= http.StatusInternalServerError {
		slog.Error("request error", "status", status, "error", err)
		return
	}
	slog.Warn("request rejected", "status", status, "error", err)
}

// WriteJSON writes a JSON response
func WriteJSON(w http.ResponseWriter, code int, data any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	return json.NewEncoder(w).Encode(data)
}
