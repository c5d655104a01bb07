package api

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrMalformedResponse marks a 2xx reply whose payload is missing or
// undecodable. Domains use it for replies that lack required fields.
var ErrMalformedResponse = errors.New("malformed response from server")

// RequestError means the request could not be constructed and was never sent.
type RequestError struct {
	Err error
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("build request: %v", e.Err)
}

func (e *RequestError) Unwrap() error { return e.Err }

// NetworkError means the request was sent but no response came back.
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("no response from server: %v", e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// StatusError is a non-2xx response. Message holds the human-readable string
// extracted from the error body, if any.
type StatusError struct {
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("server returned %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("server returned %d", e.StatusCode)
}

// Message extracts a single human-readable string from err, falling back to
// the given message when the error carries none. This is what the UI renders;
// raw payloads and stack traces never surface.
func Message(err error, fallback string) string {
	var statusErr *StatusError
	if errors.As(err, &statusErr) && statusErr.Message != "" {
		return statusErr.Message
	}
	return fallback
}

// errorBody covers the two validation-error shapes the backend responds with:
// {"message": "..."} and {"errors": [{"msg": "..."}]}.
type errorBody struct {
	Message string `json:"message"`
	Error   string `json:"error"`
	Errors  []struct {
		Msg string `json:"msg"`
	} `json:"errors"`
}

func extractMessage(body []byte) string {
	var parsed errorBody
	if err := json.Unmarshal(body, &parsed); err != nil {
		return ""
	}
	if parsed.Message != "" {
		return parsed.Message
	}
	if len(parsed.Errors) > 0 && parsed.Errors[0].Msg != "" {
		return parsed.Errors[0].Msg
	}
	return parsed.Error
}
