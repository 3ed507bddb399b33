package session

import (
	"errors"
	"fmt"
)

const (
	passwordMismatchMessage = "Passwords do not match"
	fallbackMessage         = "An error occurred"
)

var (
	ErrPasswordMismatch  = errors.New(passwordMismatchMessage)
	ErrRefreshInProgress = errors.New("token refresh already in progress")
)

// APIError is a non 2xx response from the auth service.
// Message holds the server supplied message, or a generic fallback.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("auth service returned %d: %s", e.StatusCode, e.Message)
}

// userMessage is the text shown to the user for a failed request
func userMessage(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return fallbackMessage
}
