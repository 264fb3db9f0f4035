package errors

import (
	"errors"
	"net/http"
	"sort"
	"strings"
)

var (
	// ErrValidation is returned when input is malformed or incomplete.
	ErrValidation = errors.New("validation failed")
	// ErrUnauthorized is returned for bad credentials or tokens.
	ErrUnauthorized = errors.New("invalid credentials")
	// ErrNotFound is returned when a resource does not exist.
	ErrNotFound = errors.New("not found")
	// ErrConflict is returned when a uniqueness constraint would be violated.
	ErrConflict = errors.New("already exists")
	// ErrInvalidTransition is returned when a scan hits a state-machine guard.
	ErrInvalidTransition = errors.New("Item is not available or not assigned to you")
	// ErrInvalidQRCode is returned when no equipment carries the scanned token.
	ErrInvalidQRCode = &KindError{Kind: ErrNotFound, Message: "Invalid QR code"}
)

// KindError attaches a caller-facing message to one of the sentinel kinds.
type KindError struct {
	Kind    error
	Message string
}

func (e *KindError) Error() string {
	return e.Message
}

// Unwrap lets errors.Is match the sentinel kind.
func (e *KindError) Unwrap() error {
	return e.Kind
}

// NotFound builds a not-found error with a specific message.
func NotFound(message string) error {
	return &KindError{Kind: ErrNotFound, Message: message}
}

// Conflict builds a conflict error with a specific message.
func Conflict(message string) error {
	return &KindError{Kind: ErrConflict, Message: message}
}

// ValidationError carries per-field messages for rejected input.
type ValidationError struct {
	Fields map[string]string
}

// NewValidationError returns an empty ValidationError ready for Add.
func NewValidationError() *ValidationError {
	return &ValidationError{Fields: map[string]string{}}
}

// Add records a message for field, keeping the first one reported.
func (e *ValidationError) Add(field, message string) {
	if _, ok := e.Fields[field]; !ok {
		e.Fields[field] = message
	}
}

// HasErrors reports whether any field was rejected.
func (e *ValidationError) HasErrors() bool {
	return len(e.Fields) > 0
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Unwrap lets errors.Is(err, ErrValidation) match.
func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// ErrorResponse represents a standardized error response.
type ErrorResponse struct {
	Error   string            `json:"error"`
	Code    string            `json:"code"`
	Details map[string]string `json:"details,omitempty"`
}

// HTTPError represents an HTTP error with status code.
type HTTPError struct {
	StatusCode int
	Message    string
	Code       string
	Details    map[string]string
}

func (e *HTTPError) Error() string {
	return e.Message
}

// NewHTTPError creates a new HTTP error.
func NewHTTPError(statusCode int, message, code string) *HTTPError {
	return &HTTPError{
		StatusCode: statusCode,
		Message:    message,
		Code:       code,
	}
}

// ToErrorResponse converts an HTTPError to ErrorResponse.
func (e *HTTPError) ToErrorResponse() ErrorResponse {
	return ErrorResponse{
		Error:   e.Message,
		Code:    e.Code,
		Details: e.Details,
	}
}

// MapErrorToHTTP maps domain errors to HTTP errors.
func MapErrorToHTTP(err error) *HTTPError {
	var verr *ValidationError
	if errors.As(err, &verr) {
		httpErr := NewHTTPError(http.StatusBadRequest, "Validation failed", "VALIDATION_ERROR")
		httpErr.Details = verr.Fields
		return httpErr
	}

	switch {
	case errors.Is(err, ErrValidation):
		return NewHTTPError(http.StatusBadRequest, message(err), "VALIDATION_ERROR")
	case errors.Is(err, ErrUnauthorized):
		return NewHTTPError(http.StatusUnauthorized, message(err), "UNAUTHORIZED")
	case errors.Is(err, ErrNotFound):
		return NewHTTPError(http.StatusNotFound, message(err), "NOT_FOUND")
	case errors.Is(err, ErrConflict):
		return NewHTTPError(http.StatusConflict, message(err), "CONFLICT")
	case errors.Is(err, ErrInvalidTransition):
		return NewHTTPError(http.StatusBadRequest, ErrInvalidTransition.Error(), "INVALID_TRANSITION")
	default:
		return NewHTTPError(http.StatusInternalServerError, "internal server error", "INTERNAL_ERROR")
	}
}

// message prefers the KindError text over a wrapped chain.
func message(err error) string {
	var kerr *KindError
	if errors.As(err, &kerr) {
		return kerr.Message
	}
	for _, sentinel := range []error{ErrValidation, ErrUnauthorized, ErrNotFound, ErrConflict} {
		if errors.Is(err, sentinel) {
			return sentinel.Error()
		}
	}
	return err.Error()
}
