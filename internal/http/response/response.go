// Package response writes the standard JSON envelope for handlers that run
// outside Huma: unknown routes, method mismatches, rate limiting and panics.
package response

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	domainerrors "github.com/loveletters/loveletters-server/internal/errors"
	"github.com/loveletters/loveletters-server/internal/store"
)

// Envelope provides a consistent JSON response structure.
type Envelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Count   *int   `json:"count,omitempty"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
	Code    string `json:"code,omitempty"`
	Details any    `json:"details,omitempty"`
}

// Write encodes the envelope with the given status code.
func Write(w http.ResponseWriter, status int, envelope Envelope, logger *slog.Logger) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(envelope); err != nil {
		if logger != nil {
			logger.Error("Failed to encode JSON response", "error", err)
		}
	}
}

// Error writes an error response with the given status code. Client errors
// without a matching domain code carry no code.
func Error(w http.ResponseWriter, status int, message string, logger *slog.Logger) {
	code := domainerrors.CodeForStatus(status)
	if code == domainerrors.CodeInternal && status < 500 {
		code = ""
	}
	Write(w, status, Envelope{Error: message, Code: string(code)}, logger)
}

// NotFound writes a 404 Not Found response.
func NotFound(w http.ResponseWriter, message string, logger *slog.Logger) {
	Error(w, http.StatusNotFound, message, logger)
}

// MethodNotAllowed writes a 405 Method Not Allowed response.
func MethodNotAllowed(w http.ResponseWriter, message string, logger *slog.Logger) {
	Error(w, http.StatusMethodNotAllowed, message, logger)
}

// TooManyRequests writes a 429 response. A positive retryAfter is sent as
// the Retry-After header, rounded up to whole seconds.
func TooManyRequests(w http.ResponseWriter, message string, retryAfter time.Duration, logger *slog.Logger) {
	if retryAfter > 0 {
		secs := int((retryAfter + time.Second - 1) / time.Second)
		w.Header().Set("Retry-After", strconv.Itoa(secs))
	}
	Error(w, http.StatusTooManyRequests, message, logger)
}

// InternalError writes a 500 Internal Server Error response. detail is only
// exposed when it is non-empty.
func InternalError(w http.ResponseWriter, detail string, logger *slog.Logger) {
	Write(w, http.StatusInternalServerError, Envelope{
		Error:   "internal server error",
		Code:    string(domainerrors.CodeInternal),
		Message: detail,
	}, logger)
}

// HandleError writes an appropriate HTTP response based on the error type.
// Domain and store errors map to their own status. Internal and unknown
// errors become 500 with the error text shown only when exposeDetail is set.
func HandleError(w http.ResponseWriter, err error, exposeDetail bool, logger *slog.Logger) {
	var domainErr *domainerrors.Error
	if errors.As(err, &domainErr) && domainErr.Code != domainerrors.CodeInternal {
		Write(w, domainErr.HTTPStatus(), Envelope{
			Error:   domainErr.Message,
			Code:    string(domainErr.Code),
			Details: domainErr.Details,
		}, logger)
		return
	}

	var storeErr *store.Error
	if errors.As(err, &storeErr) {
		Error(w, storeErr.HTTPCode(), storeErr.Message, logger)
		return
	}

	if logger != nil {
		logger.Error("Unhandled error", "error", err)
	}
	detail := ""
	if exposeDetail {
		detail = err.Error()
	}
	InternalError(w, detail, logger)
}
