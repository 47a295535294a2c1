package http

import (
	"encoding/json"
	"net/http"
)

// Error codes returned in ErrorResponse.Code
const (
	CodeValidation   = "ERROR.VALIDATION"
	CodeUnauthorized = "ERROR.UNAUTHORIZED"
	CodeForbidden    = "ERROR.FORBIDDEN"
	CodeNotFound     = "ERROR.NOT_FOUND"
	CodeConflict     = "ERROR.CONFLICT"
	CodeRateLimited  = "ERROR.RATE_LIMITED"
	CodeInternal     = "ERROR.INTERNAL"
)

// ErrorResponse represents a standard API error response
type ErrorResponse struct {
	Code    string              `json:"code"`              // Machine-readable error code
	Message string              `json:"message"`           // Human-readable message
	Details map[string][]string `json:"details,omitempty"` // Per-field messages
}

// WriteJSON writes v as a JSON body with the given status code
func WriteJSON(w http.ResponseWriter, statusCode int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError writes a JSON error response with the given status code
func WriteError(w http.ResponseWriter, statusCode int, code, message string) {
	WriteErrorWithDetails(w, statusCode, code, message, nil)
}

// WriteErrorWithDetails writes a JSON error response with per-field details
func WriteErrorWithDetails(w http.ResponseWriter, statusCode int, code, message string, details map[string][]string) {
	WriteJSON(w, statusCode, ErrorResponse{
		Code:    code,
		Message: message,
		Details: details,
	})
}

// Common error writers for consistency
func WriteBadRequest(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusBadRequest, CodeValidation, message)
}

func WriteValidationError(w http.ResponseWriter, message string, details map[string][]string) {
	WriteErrorWithDetails(w, http.StatusBadRequest, CodeValidation, message, details)
}

func WriteUnauthorized(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusUnauthorized, CodeUnauthorized, message)
}

func WriteForbidden(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusForbidden, CodeForbidden, message)
}

func WriteNotFound(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusNotFound, CodeNotFound, message)
}

func WriteConflict(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusConflict, CodeConflict, message)
}

func WriteTooManyRequests(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusTooManyRequests, CodeRateLimited, message)
}

func WriteInternalError(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusInternalServerError, CodeInternal, message)
}
