package clinicapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

// GenericMessage is shown when a failure carries no server message.
const GenericMessage = "Something went wrong. Please try again."

// maxTextMessage bounds plain-text bodies used as messages.
const maxTextMessage = 200

// APIError is a non-2xx response from the backend.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("http %d", e.StatusCode)
	}
	return fmt.Sprintf("http %d: %s", e.StatusCode, e.Message)
}

// newAPIError extracts the server message from a JSON {"message"} or
// {"error"} body, or from a short plain-text body.
func newAPIError(status int, body []byte) *APIError {
	e := &APIError{StatusCode: status}
	trimmed := strings.TrimSpace(string(body))
	if trimmed == "" {
		return e
	}
	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if strings.HasPrefix(trimmed, "{") {
		if err := json.Unmarshal([]byte(trimmed), &payload); err == nil {
			switch {
			case payload.Message != "":
				e.Message = payload.Message
			case payload.Error != "":
				e.Message = payload.Error
			}
			return e
		}
	}
	e.Message = truncate(trimmed, maxTextMessage)
	return e
}

// truncate cuts s to at most n bytes without splitting a rune.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}

// StatusCode returns the HTTP status of an APIError anywhere in the chain, or 0.
func StatusCode(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}

// MessageOf returns the text to show a user for err: the server message when
// there is one, the error text for local failures, else GenericMessage.
func MessageOf(err error) string {
	if err == nil {
		return ""
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		if apiErr.Message != "" {
			return apiErr.Message
		}
		return GenericMessage
	}
	if msg := err.Error(); msg != "" {
		return msg
	}
	return GenericMessage
}
