package github

import (
	"errors"
	"fmt"
	"net/http"
)

// Error kinds surfaced by the GitHub gateway.
var (
	ErrNotFound     = errors.New("not found")
	ErrRateLimited  = errors.New("rate limit exceeded")
	ErrInvalidQuery = errors.New("invalid query")
	ErrUnknown      = errors.New("github request failed")
)

// User facing messages for each error kind.
const (
	MessageRateLimited  = "API rate limit exceeded. Please try again later."
	MessageNotFound     = "Resource not found."
	MessageInvalidQuery = "Invalid search query."
	MessageUnknown      = "An unexpected error occurred."
)

// APIError is a failed GitHub call. StatusCode is 0 for transport failures.
type APIError struct {
	StatusCode int
	Kind       error
	Message    string
	Err        error
}

func (e *APIError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("github: status %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("github: %s", e.Message)
}

// Unwrap exposes both the kind sentinel and the underlying cause.
func (e *APIError) Unwrap() []error {
	if e.Err != nil {
		return []error{e.Kind, e.Err}
	}
	return []error{e.Kind}
}

// newStatusError maps an HTTP status to the error taxonomy.
func newStatusError(status int) *APIError {
	switch status {
	case http.StatusForbidden:
		return &APIError{StatusCode: status, Kind: ErrRateLimited, Message: MessageRateLimited}
	case http.StatusNotFound:
		return &APIError{StatusCode: status, Kind: ErrNotFound, Message: MessageNotFound}
	case http.StatusUnprocessableEntity:
		return &APIError{StatusCode: status, Kind: ErrInvalidQuery, Message: MessageInvalidQuery}
	}
	return &APIError{
		StatusCode: status,
		Kind:       ErrUnknown,
		Message:    fmt.Sprintf("Http failure response: %d %s", status, http.StatusText(status)),
	}
}

// newTransportError wraps a network or decoding failure.
func newTransportError(err error) *APIError {
	msg := MessageUnknown
	if err != nil && err.Error() != "" {
		msg = err.Error()
	}
	return &APIError{Kind: ErrUnknown, Message: msg, Err: err}
}

// Message returns the user facing message for err.
func Message(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	if err == nil || err.Error() == "" {
		return MessageUnknown
	}
	return err.Error()
}
