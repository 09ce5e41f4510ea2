package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Fixed messages for statuses the backend does not describe well.
const (
	MessageUnauthorized = "Invalid credentials"
	MessageNotFound     = "Resource not found"
	MessageServerError  = "Internal server error"
)

// Error is a failed backend call. Either Transport is set (the request never
// produced a usable response) or Status holds the non-2xx status code.
type Error struct {
	Method string
	Path   string
	Status int
	// Message is the human-readable text derived by intercept: a fixed
	// string for 401/404/500, otherwise the server-supplied message (may be
	// empty).
	Message string
	// ServerMessage is whatever message field the backend sent, verbatim.
	ServerMessage string
	Body          []byte
	Transport     bool
	Err           error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Transport {
		return fmt.Sprintf("%s %s: %v", e.Method, e.Path, e.Err)
	}
	if e.Message != "" {
		return fmt.Sprintf("%s %s: status %d: %s", e.Method, e.Path, e.Status, e.Message)
	}
	return fmt.Sprintf("%s %s: status %d", e.Method, e.Path, e.Status)
}

// Unwrap returns the transport cause, if any.
func (e *Error) Unwrap() error {
	return e.Err
}

// StatusOf returns the backend status carried by err, or 0.
func StatusOf(err error) int {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}

// MessageOf returns the interceptor message carried by err, or "".
func MessageOf(err error) string {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	return ""
}

// intercept maps a non-2xx response to *Error.
func intercept(method, path string, status int, body []byte) *Error {
	serverMsg := serverMessage(body)
	e := &Error{
		Method:        method,
		Path:          path,
		Status:        status,
		ServerMessage: serverMsg,
		Body:          body,
	}
	switch status {
	case http.StatusUnauthorized:
		e.Message = MessageUnauthorized
	case http.StatusNotFound:
		e.Message = MessageNotFound
	case http.StatusInternalServerError:
		e.Message = MessageServerError
	default:
		e.Message = serverMsg
	}
	return e
}

// serverMessage looks for message, error or title in the JSON body, at the
// top level first and then under "data".
func serverMessage(body []byte) string {
	var top map[string]json.RawMessage
	if err := json.Unmarshal(body, &top); err != nil {
		return ""
	}
	if msg := pickMessage(top); msg != "" {
		return msg
	}
	if data, ok := top["data"]; ok {
		var nested map[string]json.RawMessage
		if err := json.Unmarshal(data, &nested); err == nil {
			return pickMessage(nested)
		}
	}
	return ""
}

func pickMessage(m map[string]json.RawMessage) string {
	for _, key := range []string{"message", "error", "title"} {
		raw, ok := m[key]
		if !ok {
			continue
		}
		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			if s = strings.TrimSpace(s); s != "" {
				return s
			}
		}
	}
	return ""
}
