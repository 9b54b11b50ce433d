package shared

import "errors"

// Session and form errors. Login failures wrap ErrInvalidCredentials around
// the backend rejection so callers can still read the status.
var (
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrSessionMissing      = errors.New("session missing")
	ErrTokenRequired       = errors.New("session: token required")
	ErrCSRFTokenMissing    = errors.New("csrf token missing")
	ErrCSRFTokenMismatch   = errors.New("csrf token mismatch")
	ErrDuplicateSubmission = errors.New("form already submitted")
)
