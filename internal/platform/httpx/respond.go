// Package httpx writes the JSON bodies of the portal's health endpoints.
package httpx

import (
	"encoding/json"
	"errors"
	"net/http"
)

// ErrUnavailable marks a dependency the endpoint could not reach.
var ErrUnavailable = errors.New("dependency unavailable")

// retryAfter is the Retry-After hint, in seconds, sent with 503 replies.
const retryAfter = "30"

// ProblemDetail is an RFC 7807 body.
type ProblemDetail struct {
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail,omitempty"`
}

// JSON writes data with status. Health data is never cached.
func JSON(w http.ResponseWriter, status int, data any) {
	write(w, "application/json", status, data)
}

// RespondError answers 503 with the error text for ErrUnavailable and a bare
// 500 for anything else, so internal causes never leak.
func RespondError(w http.ResponseWriter, err error) {
	if errors.Is(err, ErrUnavailable) {
		w.Header().Set("Retry-After", retryAfter)
		Problem(w, http.StatusServiceUnavailable, "Service Unavailable", err.Error())
		return
	}
	Problem(w, http.StatusInternalServerError, "Internal Error", "")
}

// Problem writes an application/problem+json body.
func Problem(w http.ResponseWriter, status int, title, detail string) {
	write(w, "application/problem+json", status, ProblemDetail{Title: title, Status: status, Detail: detail})
}

func write(w http.ResponseWriter, contentType string, status int, body any) {
	h := w.Header()
	h.Set("Content-Type", contentType)
	h.Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
