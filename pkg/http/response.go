package http

import (
	"encoding/json"
	"net/http"
)

// Status values carried by every JSON response.
const (
	StatusPending = "PENDING"
	StatusFailed  = "FAILED"
	StatusSuccess = "SUCCESS"
)

// Response is the envelope returned by every JSON endpoint.
type Response struct {
	Status  string      `json:"status"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// WriteResponse writes the standard envelope with the given HTTP status code.
func WriteResponse(w http.ResponseWriter, statusCode int, status, message string, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	// Log encoding errors but don't expose them to client
	_ = json.NewEncoder(w).Encode(Response{
		Status:  status,
		Message: message,
		Data:    data,
	})
}

// WritePending reports an operation that succeeded up to a fire-and-forget
// mail send (signup, reset request).
func WritePending(w http.ResponseWriter, message string, data interface{}) {
	WriteResponse(w, http.StatusAccepted, StatusPending, message, data)
}

// WriteSuccess reports a completed operation.
func WriteSuccess(w http.ResponseWriter, message string, data interface{}) {
	WriteResponse(w, http.StatusOK, StatusSuccess, message, data)
}

// Common failure writers for consistency
func WriteBadRequest(w http.ResponseWriter, message string) {
	WriteResponse(w, http.StatusBadRequest, StatusFailed, message, nil)
}

func WriteUnauthorized(w http.ResponseWriter, message string) {
	WriteResponse(w, http.StatusUnauthorized, StatusFailed, message, nil)
}

func WriteForbidden(w http.ResponseWriter, message string) {
	WriteResponse(w, http.StatusForbidden, StatusFailed, message, nil)
}

func WriteNotFound(w http.ResponseWriter, message string) {
	WriteResponse(w, http.StatusNotFound, StatusFailed, message, nil)
}

func WriteConflict(w http.ResponseWriter, message string) {
	WriteResponse(w, http.StatusConflict, StatusFailed, message, nil)
}

func WriteGone(w http.ResponseWriter, message string) {
	WriteResponse(w, http.StatusGone, StatusFailed, message, nil)
}

func WriteInternalError(w http.ResponseWriter, message string) {
	WriteResponse(w, http.StatusInternalServerError, StatusFailed, message, nil)
}
