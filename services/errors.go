// ABOUTME: Error taxonomy for backend calls
// ABOUTME: Sentinels for transport, auth, not-found and breaker states plus typed APIError

package services

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrTransport means no response was received from the backend.
	ErrTransport = errors.New("backend unreachable")
	// ErrUnauthorized means the backend rejected the bearer token or credentials.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrForbidden means the token is valid but lacks permission.
	ErrForbidden = errors.New("forbidden")
	ErrNotFound  = errors.New("not found")
	// ErrUnavailable means the circuit breaker is open and the call was not attempted.
	ErrUnavailable = errors.New("backend temporarily unavailable")
)

// APIError is a non-2xx backend response.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("backend returned status %d", e.Status)
	}
	return fmt.Sprintf("backend error (%d): %s", e.Status, e.Message)
}

// Is maps well-known statuses onto the sentinels so callers can use errors.Is.
func (e *APIError) Is(target error) bool {
	switch target {
	case ErrUnauthorized:
		return e.Status == http.StatusUnauthorized
	case ErrForbidden:
		return e.Status == http.StatusForbidden
	case ErrNotFound:
		return e.Status == http.StatusNotFound
	}
	return false
}

// UserMessage returns text suitable for an alert or flash.
func UserMessage(err error) string {
	var apiErr *APIError
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrUnauthorized):
		return MsgSessionExpired
	case errors.Is(err, ErrForbidden):
		return "You do not have permission to do that."
	case errors.Is(err, ErrNotFound):
		return "The requested item could not be found."
	case errors.Is(err, ErrUnavailable):
		return "The service is temporarily unavailable. Please try again shortly."
	case errors.As(err, &apiErr) && apiErr.Message != "" && apiErr.Status < 500:
		return apiErr.Message
	default:
		return MsgGenericFailure
	}
}

const (
	MsgInvalidCredentials = "Invalid email or password."
	MsgGenericFailure     = "An error occurred. Please try again."
	MsgSessionExpired     = "Your session has expired. Please log in again."
)
