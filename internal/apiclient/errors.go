package apiclient

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ErrUnreachable marks transport failures: DNS, refused connections,
// timeouts. The request never produced an HTTP status.
var ErrUnreachable = errors.New("clinical service unreachable")

// RejectionError is returned for any non-2xx response.
type RejectionError struct {
	Status int
	// Message is the raw response body, or "HTTP <status>" when empty.
	Message string
}

func (e *RejectionError) Error() string {
	return fmt.Sprintf("backend rejected request (%d): %s", e.Status, e.Message)
}

// Detail extracts a human message from a JSON body shaped like
// {"message": "..."} or {"error": "..."}; otherwise the text itself.
func (e *RejectionError) Detail() string {
	text := strings.TrimSpace(e.Message)
	if !strings.HasPrefix(text, "{") {
		return text
	}
	var body struct {
		Message any    `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal([]byte(text), &body); err != nil {
		return text
	}
	switch msg := body.Message.(type) {
	case string:
		if msg != "" {
			return msg
		}
	case []any:
		parts := make([]string, 0, len(msg))
		for _, m := range msg {
			if s, ok := m.(string); ok && s != "" {
				parts = append(parts, s)
			}
		}
		if len(parts) > 0 {
			return strings.Join(parts, "; ")
		}
	}
	if body.Error != "" {
		return body.Error
	}
	return text
}

func newRejection(status int, body []byte) *RejectionError {
	msg := strings.TrimSpace(string(body))
	if msg == "" {
		msg = fmt.Sprintf("HTTP %d", status)
	}
	return &RejectionError{Status: status, Message: msg}
}

// IsUnauthorized reports whether err is a 401 rejection, meaning the stored
// token is no longer accepted.
func IsUnauthorized(err error) bool {
	return StatusOf(err) == http.StatusUnauthorized
}

// StatusOf returns the HTTP status carried by a rejection, or 0.
func StatusOf(err error) int {
	var rej *RejectionError
	if errors.As(err, &rej) {
		return rej.Status
	}
	return 0
}
