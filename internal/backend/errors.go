package backend

import (
	"errors"
	"fmt"
	"net/http"

	"orderdesk/internal/domain"
)

// ErrUnauthorized matches a missing token and 401/403 responses.
var ErrUnauthorized = domain.ErrUnauthorized

// APIError is a non-2xx response from the backend.
type APIError struct {
	Status      int    `json:"-"`
	Method      string `json:"-"`
	Path        string `json:"-"`
	UserMessage string `json:"userMessage,omitempty"`
	Message     string `json:"message,omitempty"`
}

func (e *APIError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = e.UserMessage
	}
	if msg == "" {
		msg = http.StatusText(e.Status)
	}
	return fmt.Sprintf("backend %s %s: %d %s", e.Method, e.Path, e.Status, msg)
}

func (e *APIError) Is(target error) bool {
	switch target {
	case ErrUnauthorized:
		return e.Status == http.StatusUnauthorized || e.Status == http.StatusForbidden
	case domain.ErrNotFound:
		return e.Status == http.StatusNotFound
	}
	return false
}

// UserMessage returns the backend's userMessage when err carries one,
// otherwise fallback.
func UserMessage(err error, fallback string) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.UserMessage != "" {
		return apiErr.UserMessage
	}
	return fallback
}
