// Package errors provides the JSON error responses of the ingest server and
// the panic recovery middleware.
package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"runtime/debug"

	json "github.com/goccy/go-json"

	"github.com/rafaelsantos01/react-nextjs-logger/cmd/rnl/internal/constants"
	"github.com/rafaelsantos01/react-nextjs-logger/cmd/rnl/internal/logging"
)

// ErrorCode represents a standard error code
type ErrorCode string

const (
	// Request errors
	CodeBadRequest       ErrorCode = "BAD_REQUEST"
	CodeInvalidJSON      ErrorCode = "INVALID_JSON"
	CodeInvalidULID      ErrorCode = "INVALID_ULID"
	CodeInvalidLevel     ErrorCode = "INVALID_LEVEL"
	CodeBatchTooLarge    ErrorCode = "BATCH_TOO_LARGE"
	CodePayloadTooLarge  ErrorCode = "PAYLOAD_TOO_LARGE"
	CodeMethodNotAllowed ErrorCode = "METHOD_NOT_ALLOWED"
	CodeNotFound         ErrorCode = "NOT_FOUND"

	// Authentication errors
	CodeUnauthorized ErrorCode = "UNAUTHORIZED"
	CodeMissingToken ErrorCode = "MISSING_TOKEN"
	CodeInvalidToken ErrorCode = "INVALID_TOKEN"

	// Server errors
	CodeInternalError      ErrorCode = "INTERNAL_ERROR"
	CodeDatabaseError      ErrorCode = "DATABASE_ERROR"
	CodeServiceUnavailable ErrorCode = "SERVICE_UNAVAILABLE"
)

// ErrorResponse represents the standard error response format
type ErrorResponse struct {
	Error     string         `json:"error"`
	Code      int            `json:"code"`
	ErrorCode ErrorCode      `json:"error_code,omitempty"`
	Details   map[string]any `json:"details,omitempty"`
	RequestID string         `json:"request_id,omitempty"`
}

// APIError represents an application error
type APIError struct {
	Message    string
	StatusCode int
	ErrorCode  ErrorCode
	Details    map[string]any
	Err        error
}

// Error implements the error interface
func (e *APIError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the wrapped error
func (e *APIError) Unwrap() error {
	return e.Err
}

// WithDetails adds details to the error
func (e *APIError) WithDetails(details map[string]any) *APIError {
	e.Details = details
	return e
}

// Wrap wraps an error with additional context
func (e *APIError) Wrap(err error) *APIError {
	e.Err = err
	return e
}

// NewAPIError creates a new API error
func NewAPIError(statusCode int, errorCode ErrorCode, message string) *APIError {
	return &APIError{
		Message:    message,
		StatusCode: statusCode,
		ErrorCode:  errorCode,
	}
}

// NewBadRequestError creates a 400 Bad Request error
func NewBadRequestError(code ErrorCode, message string) *APIError {
	return NewAPIError(http.StatusBadRequest, code, message)
}

// NewUnauthorizedError creates a 401 Unauthorized error
func NewUnauthorizedError(code ErrorCode, message string) *APIError {
	return NewAPIError(http.StatusUnauthorized, code, message)
}

// NewPayloadTooLargeError creates a 413 error
func NewPayloadTooLargeError(code ErrorCode, message string) *APIError {
	return NewAPIError(http.StatusRequestEntityTooLarge, code, message)
}

// NewInternalError creates a 500 Internal Server Error
func NewInternalError(message string) *APIError {
	return NewAPIError(http.StatusInternalServerError, CodeInternalError, message)
}

// NewDatabaseError creates a 500 Database Error
func NewDatabaseError(err error) *APIError {
	return NewAPIError(http.StatusInternalServerError, CodeDatabaseError, "Database error").Wrap(err)
}

// NewServiceUnavailableError creates a 503 Service Unavailable error
func NewServiceUnavailableError(message string) *APIError {
	return NewAPIError(http.StatusServiceUnavailable, CodeServiceUnavailable, message)
}

// WriteError writes err as a JSON error response. Errors that are not an
// *APIError become a generic 500.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	var apiErr *APIError
	if !stderrors.As(err, &apiErr) {
		apiErr = NewInternalError("An unexpected error occurred").Wrap(err)
	}

	requestID := logging.GetRequestID(r.Context())
	logger := logging.GetLogger().WithContext(r.Context())
	data := map[string]any{
		"status":     apiErr.StatusCode,
		"error_code": string(apiErr.ErrorCode),
	}
	if apiErr.Err != nil {
		data["cause"] = apiErr.Err.Error()
	}
	if apiErr.StatusCode >= http.StatusInternalServerError {
		logger.Log(logging.LevelError, apiErr.Message, data)
	} else {
		logger.Log(logging.LevelWarn, apiErr.Message, data)
	}

	response := ErrorResponse{
		Error:     apiErr.Message,
		Code:      apiErr.StatusCode,
		ErrorCode: apiErr.ErrorCode,
		Details:   apiErr.Details,
		RequestID: requestID,
	}

	w.Header().Set(constants.HeaderContentType, constants.MIMEApplicationJSON)
	w.WriteHeader(apiErr.StatusCode)
	json.NewEncoder(w).Encode(response)
}

// RecoveryMiddleware catches panics and converts them to 500 errors
func RecoveryMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				logging.GetLogger().WithContext(r.Context()).Log(logging.LevelError, "panic recovered", map[string]any{
					"panic": fmt.Sprint(rec),
					"stack": string(debug.Stack()),
				})
				WriteError(w, r, NewInternalError("Internal server error"))
			}
		}()

		next(w, r)
	}
}

// MapHTTPStatusToErrorCode maps HTTP status codes to error codes
func MapHTTPStatusToErrorCode(statusCode int) ErrorCode {
	switch statusCode {
	case http.StatusBadRequest:
		return CodeBadRequest
	case http.StatusUnauthorized:
		return CodeUnauthorized
	case http.StatusNotFound:
		return CodeNotFound
	case http.StatusMethodNotAllowed:
		return CodeMethodNotAllowed
	case http.StatusRequestEntityTooLarge:
		return CodePayloadTooLarge
	case http.StatusServiceUnavailable:
		return CodeServiceUnavailable
	default:
		return CodeInternalError
	}
}
