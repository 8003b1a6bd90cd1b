package apierror

import (
	"fmt"
	"net/http"
)

// APIError carries the HTTP status alongside the client-facing message.
// The JSON envelope uses the status itself as the error code.
type APIError struct {
	Message    string
	Detail     string
	HTTPStatus int
}

func (e *APIError) Error() string {
	if e == nil {
		return ""
	}

	if e.Detail != "" {
		return fmt.Sprintf("%d: %s (%s)", e.HTTPStatus, e.Message, e.Detail)
	}

	return fmt.Sprintf("%d: %s", e.HTTPStatus, e.Message)
}

func New(status int, message string) *APIError {
	return &APIError{Message: message, HTTPStatus: status}
}

func BadRequest(message string) *APIError {
	return New(http.StatusBadRequest, message)
}

func Unauthorized(message string) *APIError {
	return New(http.StatusUnauthorized, message)
}

// Locked is the 423 returned while a lockout window is still open.
func Locked(message string) *APIError {
	return New(http.StatusLocked, message)
}

func NotFound(message string) *APIError {
	return New(http.StatusNotFound, message)
}

func Internal(message string) *APIError {
	return New(http.StatusInternalServerError, message)
}
