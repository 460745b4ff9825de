package server

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	hub "github.com/Tejas3545/project-hub-sub001/internal"
)

// apiError is the error body shape. Clients extract the message from the
// top-level "error" field.
type apiError struct {
	Error string `json:"error"`
}

func errorResponse(msg string) apiError {
	return apiError{Error: msg}
}

func errorStatus(err error) int {
	switch {
	case errors.Is(err, hub.ErrUnauthorized),
		errors.Is(err, hub.ErrTokenExpired),
		errors.Is(err, hub.ErrTokenRevoked),
		errors.Is(err, hub.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, hub.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, hub.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, hub.ErrConflict), errors.Is(err, hub.ErrReviewClosed):
		return http.StatusConflict
	case errors.Is(err, hub.ErrRateLimited):
		return http.StatusTooManyRequests
	case errors.Is(err, hub.ErrBadRequest):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// writeError maps a service error to its status and JSON body. Internal
// errors are logged and masked.
func writeError(w http.ResponseWriter, err error) {
	status := errorStatus(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		slog.Error("internal error", "error", err)
		msg = "internal server error"
	}
	writeJSON(w, status, errorResponse(msg))
}

// jsonCT is a pre-allocated header value slice. Direct map assignment
// (w.Header()["Content-Type"] = jsonCT) avoids the []string{v} alloc
// that Header.Set creates on every call.
var jsonCT = []string{"application/json"}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header()["Content-Type"] = jsonCT
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

// decodeJSON decodes a request body into v. An empty body leaves v zeroed,
// so handlers with all-optional fields accept bodyless requests.
func decodeJSON(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return hub.ErrBadRequest
	}
	return nil
}
