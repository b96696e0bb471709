// Package errs defines the error shapes returned to API clients.
//
// Every error the service surfaces is an *HTTPError: it carries the HTTP
// status, a machine-readable code, a human message and, for validation
// failures, the list of offending fields.
package errs

import (
	"errors"
	"net/http"
	"strings"
)

// FieldError is a validation failure on a single input field.
type FieldError struct {
	Field string `json:"field"`
	Error string `json:"error"`
}

// HTTPError is the error type rendered by the HTTP layer.
type HTTPError struct {
	Code    string       `json:"code"`
	Message string       `json:"message"`
	Status  int          `json:"status"`
	Errors  []FieldError `json:"errors,omitempty"`
}

func (e *HTTPError) Error() string {
	return e.Message
}

// Is matches any *HTTPError with the same status, so callers can test for a
// kind with errors.Is(err, errs.ErrNotFound).
func (e *HTTPError) Is(target error) bool {
	t, ok := target.(*HTTPError)
	return ok && t.Status == e.Status
}

// Kind sentinels for errors.Is.
var (
	ErrBadRequest = &HTTPError{Status: http.StatusBadRequest}
	ErrNotFound   = &HTTPError{Status: http.StatusNotFound}
)

// StatusCode converts a status text to UPPER_SNAKE: "Not Found" -> "NOT_FOUND".
func StatusCode(status int) string {
	return strings.ToUpper(strings.ReplaceAll(http.StatusText(status), " ", "_"))
}

// NewBadRequestError returns a 400. An empty code defaults to BAD_REQUEST.
func NewBadRequestError(message, code string) *HTTPError {
	if code == "" {
		code = StatusCode(http.StatusBadRequest)
	}
	return &HTTPError{Code: code, Message: message, Status: http.StatusBadRequest}
}

// NewValidationError returns a 400 listing the failed fields.
func NewValidationError(fields []FieldError) *HTTPError {
	return &HTTPError{
		Code:    StatusCode(http.StatusBadRequest),
		Message: "Validation failed",
		Status:  http.StatusBadRequest,
		Errors:  fields,
	}
}

// NewNotFoundError returns a 404.
func NewNotFoundError(message string) *HTTPError {
	return &HTTPError{Code: StatusCode(http.StatusNotFound), Message: message, Status: http.StatusNotFound}
}

// NewInternalServerError returns a 500 with the generic status text, so
// internal details never reach the client.
func NewInternalServerError() *HTTPError {
	return &HTTPError{
		Code:    StatusCode(http.StatusInternalServerError),
		Message: http.StatusText(http.StatusInternalServerError),
		Status:  http.StatusInternalServerError,
	}
}

// As extracts the *HTTPError from err's chain.
func As(err error) (*HTTPError, bool) {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr, true
	}
	return nil, false
}
