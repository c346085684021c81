package api

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// maxBodySize is the maximum allowed request body size (1 MB).
const maxBodySize = 1 << 20

// successEnvelope is the standard success response shape.
type successEnvelope struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// errorEnvelope is the standard error response shape.
type errorEnvelope struct {
	Success    bool   `json:"success"`
	Message    string `json:"message"`
	Error      string `json:"error"`
	StatusCode int    `json:"statusCode"`
}

// writeSuccess writes a JSON success envelope with the given status code.
// Data may be nil for message-only responses.
func writeSuccess(w http.ResponseWriter, statusCode int, message string, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(successEnvelope{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// writeError writes a JSON error envelope with the given status code.
func writeError(w http.ResponseWriter, statusCode int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(errorEnvelope{
		Success:    false,
		Message:    message,
		Error:      errorType(statusCode),
		StatusCode: statusCode,
	})
}

// errorType maps a status code to the error label used in the envelope.
func errorType(statusCode int) string {
	switch statusCode {
	case http.StatusBadRequest:
		return "Bad Request"
	case http.StatusUnauthorized:
		return "Unauthorized"
	case http.StatusForbidden:
		return "Forbidden"
	case http.StatusNotFound:
		return "Not Found"
	case http.StatusConflict:
		return "Conflict"
	case http.StatusUnprocessableEntity:
		return "Validation Error"
	case http.StatusTooManyRequests:
		return "Too Many Requests"
	default:
		return "Internal Server Error"
	}
}

// readJSON decodes the request body into v, enforcing a size limit.
func readJSON(r *http.Request, v any) error {
	lr := io.LimitReader(r.Body, maxBodySize)
	return json.NewDecoder(lr).Decode(v)
}

// fieldError is a single per-field validation failure.
type fieldError struct {
	field   string
	message string
}

// writeValidationError aggregates field errors into a single 422 envelope,
// e.g. "Validation failed: email: must be a valid email; password: ...".
func writeValidationError(w http.ResponseWriter, errs []fieldError) {
	parts := make([]string, len(errs))
	for i, fe := range errs {
		parts[i] = fmt.Sprintf("%s: %s", fe.field, fe.message)
	}
	writeError(w, http.StatusUnprocessableEntity,
		"Validation failed: "+strings.Join(parts, "; "))
}
