// Package errs defines the error shape returned to API clients.
//
// Handlers return *HTTPError values and the global error handler renders
// them, so every failure response carries the same JSON structure.
package errs

import (
	"net/http"
	"strings"
)

// FieldError represents a field-level validation error.
//
//	{ "field": "name", "error": "is required" }
type FieldError struct {
	Field string `json:"field"`
	Error string `json:"error"`
}

// HTTPError is the error type rendered by the global error handler.
type HTTPError struct {
	Code    string       `json:"code"`
	Message string       `json:"message"`
	Status  int          `json:"status"`
	Errors  []FieldError `json:"errors,omitempty"`
}

func (e *HTTPError) Error() string {
	return e.Message
}

// Is reports whether target is an *HTTPError with the same status.
func (e *HTTPError) Is(target error) bool {
	t, ok := target.(*HTTPError)
	return ok && t.Status == e.Status
}

// WithMessage returns a copy of e with Message replaced.
func (e *HTTPError) WithMessage(message string) *HTTPError {
	cp := *e
	cp.Message = message
	return &cp
}

// MakeUpperCaseWithUnderscores converts "Bad Request" into "BAD_REQUEST".
func MakeUpperCaseWithUnderscores(str string) string {
	return strings.ToUpper(strings.ReplaceAll(str, " ", "_"))
}

// New builds an HTTPError whose code is derived from the status text.
func New(status int, message string) *HTTPError {
	return &HTTPError{
		Code:    MakeUpperCaseWithUnderscores(http.StatusText(status)),
		Message: message,
		Status:  status,
	}
}

// NewBadRequestError creates a 400 with optional field errors.
func NewBadRequestError(message string, fieldErrors []FieldError) *HTTPError {
	e := New(http.StatusBadRequest, message)
	e.Errors = fieldErrors
	return e
}

// NewNotFoundError creates a 404.
func NewNotFoundError(message string) *HTTPError {
	return New(http.StatusNotFound, message)
}

// NewServiceUnavailableError creates a 503.
func NewServiceUnavailableError(message string) *HTTPError {
	return New(http.StatusServiceUnavailable, message)
}

// NewInternalServerError creates a 500 carrying only the generic status
// text; the underlying cause is logged, never sent.
func NewInternalServerError() *HTTPError {
	return New(http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
}
