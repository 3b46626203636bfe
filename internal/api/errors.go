package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Sentinels matched by *Error via errors.Is.
var (
	ErrNotFound     = errors.New("not found")
	ErrUnauthorized = errors.New("unauthorized")
)

// Error is a non-2xx response from the API.
type Error struct {
	Status    int
	Message   string
	RequestID string
}

func (e *Error) Error() string {
	text := http.StatusText(e.Status)
	if e.Message == "" {
		return fmt.Sprintf("api: %d %s", e.Status, text)
	}
	return fmt.Sprintf("api: %d %s: %s", e.Status, text, e.Message)
}

// ServerMessage returns the message the server put in the body.
func (e *Error) ServerMessage() string { return e.Message }

// Is maps status codes onto the sentinels.
func (e *Error) Is(target error) bool {
	switch target {
	case ErrNotFound:
		return e.Status == http.StatusNotFound
	case ErrUnauthorized:
		return e.Status == http.StatusUnauthorized
	}
	return false
}

// parseError builds an *Error from a response body. The message comes
// from "message", else "error", else a short plain-text body.
func parseError(status int, body []byte, requestID string) *Error {
	e := &Error{Status: status, RequestID: requestID}

	var payload struct {
		Message string          `json:"message"`
		Error   json.RawMessage `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		if payload.Message != "" {
			e.Message = payload.Message
			return e
		}
		var s string
		if len(payload.Error) > 0 && json.Unmarshal(payload.Error, &s) == nil {
			e.Message = s
		}
		return e
	}

	if text := strings.TrimSpace(string(body)); text != "" && len(text) <= 200 && !strings.HasPrefix(text, "<") {
		e.Message = text
	}
	return e
}
