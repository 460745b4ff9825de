package apiclient

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// APIError is a non-2xx HTTP response from the hub API.
type APIError struct {
	Status  int
	Message string
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return fmt.Sprintf("hub api: %s (status %d)", e.Message, e.Status)
}

// HTTPStatus returns the HTTP status code.
func (e *APIError) HTTPStatus() int { return e.Status }

// IsAuthExpired reports whether the error is a 401 that survived the refresh
// path, i.e. the session is gone for good.
func (e *APIError) IsAuthExpired() bool { return e.Status == http.StatusUnauthorized }

// extractMessage pulls a human-readable message from an error response body.
// The hub API responds with {"error": "..."}; anything else falls back to a
// generic status-coded message.
func extractMessage(status int, body []byte) string {
	var payload struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && payload.Error != "" {
		return payload.Error
	}
	return fmt.Sprintf("request failed with status %d", status)
}
