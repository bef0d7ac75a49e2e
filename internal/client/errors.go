package client

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/dastanaron/bookmarks/internal/session"
)

// APIError is a non-success response from the backend
type APIError struct {
	StatusCode int
	// Message is the backend's {"error": ...} text, or the raw body when it was not JSON
	Message string
}

func newAPIError(status int, body []byte) *APIError {
	var payload struct {
		Error string `json:"error"`
	}
	msg := strings.TrimSpace(string(body))
	if err := json.Unmarshal(body, &payload); err == nil && payload.Error != "" {
		msg = payload.Error
	}
	return &APIError{StatusCode: status, Message: msg}
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("API error: status=%d", e.StatusCode)
	}
	return fmt.Sprintf("API error: status=%d, message=%s", e.StatusCode, e.Message)
}

// Is makes authorization failures match session.ErrUnauthorized
func (e *APIError) Is(target error) bool {
	if target != session.ErrUnauthorized {
		return false
	}
	return e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden
}
