package helpers

import (
	"encoding/json"
	"net/http"
)

// Error codes for API error responses. Use these with WriteJSONError.
const (
	ErrCodeBadRequest         = "bad_request"
	ErrCodeNotFound           = "not_found"
	ErrCodeInternalError      = "internal_error"
	ErrCodeServiceUnavailable = "service_unavailable"
)

// APIError is the body written for every failed request.
// swagger:model APIError
type APIError struct {
	Error   string `json:"error"`
	Code    string `json:"code"`
	Details string `json:"details,omitempty"`
}

// CreatedResponse is the body of a successful create.
// swagger:model CreatedResponse
type CreatedResponse struct {
	EventID string `json:"event_id"`
}

// MessageResponse is the body of a successful update or delete.
// swagger:model MessageResponse
type MessageResponse struct {
	Message string `json:"message"`
}

// WriteJSON sets Content-Type to application/json, writes statusCode, and encodes data.
func WriteJSON(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(data)
}

// WriteJSONError writes an APIError. details carries the underlying error text and may be empty.
func WriteJSONError(w http.ResponseWriter, statusCode int, code, message, details string) {
	WriteJSON(w, statusCode, APIError{Error: message, Code: code, Details: details})
}
