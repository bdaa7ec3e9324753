package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
)

// Messages used when a remote service gives nothing better.
const (
	msgNetworkError       = "A network error occurred."
	msgTimeout            = "The request timed out. Please try again."
	msgUnexpectedResponse = "Unexpected response from server."
)

// APIError is a failed collaborator call. Message is always safe to show to
// a user; Status is the remote HTTP status, or 0 when no response arrived.
type APIError struct {
	Message string
	Status  int
	Err     error
}

func (e *APIError) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("%s (status %d)", e.Message, e.Status)
	}
	return e.Message
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// transportError wraps a failure that happened before any response arrived.
func transportError(err error) *APIError {
	msg := msgNetworkError
	if errors.Is(err, context.DeadlineExceeded) {
		msg = msgTimeout
	}
	return &APIError{Message: msg, Err: err}
}

// unexpectedResponse is returned for a 2xx whose body lacks the expected fields.
func unexpectedResponse(status int) *APIError {
	return &APIError{Message: msgUnexpectedResponse, Status: status}
}

// errorFromResponse builds an APIError from a non-2xx response. A JSON body
// carrying a string "error" (or an object with "message") supplies the text.
func errorFromResponse(resp *http.Response) *APIError {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))

	var payload map[string]json.RawMessage
	if json.Unmarshal(body, &payload) == nil {
		if raw, ok := payload["error"]; ok {
			var msg string
			if json.Unmarshal(raw, &msg) == nil && msg != "" {
				return &APIError{Message: msg, Status: resp.StatusCode}
			}
			var nested struct {
				Message string `json:"message"`
			}
			if json.Unmarshal(raw, &nested) == nil && nested.Message != "" {
				return &APIError{Message: nested.Message, Status: resp.StatusCode}
			}
		}
	}

	return &APIError{
		Message: fmt.Sprintf("Server error (HTTP %d)", resp.StatusCode),
		Status:  resp.StatusCode,
	}
}
