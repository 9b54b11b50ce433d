package auth

import (
	"time"

	"github.com/clinicportal/clinicportal/internal/shared"
)

// LoginResult is the backend reply to a successful login.
type LoginResult struct {
	Token string              `json:"token"`
	User  *shared.UserProfile `json:"user,omitempty"`
}

// SessionRecord is the audit row kept for every portal login.
type SessionRecord struct {
	ID        string
	UserID    string
	Role      string
	CreatedAt time.Time
	ExpiresAt time.Time
	IP        string
	UserAgent string
}
