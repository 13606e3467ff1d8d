package utils

import (
	"net/http"
)

// HTTPError carries an explicit status code for request validation failures.
// Everything else surfaces as a sentinel from domainerrors.go and gets its
// code in HandleErrors.
type HTTPError struct {
	Code    int    `json:"-"`
	Message string `json:"message"`
}

func (e *HTTPError) Error() string {
	return e.Message
}

func NewHTTPError(code int, message string) error {
	return &HTTPError{
		Code:    code,
		Message: message,
	}
}

// BadRequest creates a 400 Bad Request error
func BadRequest(message string) error {
	return NewHTTPError(http.StatusBadRequest, message)
}
