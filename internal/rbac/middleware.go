package rbac

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/clinicportal/clinicportal/internal/shared"
)

// Middleware wires role based authorization helpers for HTTP handlers.
type Middleware struct {
	Logger *slog.Logger
	// Forbidden renders the denial page. Defaults to a plain 403.
	Forbidden http.HandlerFunc
}

// RequireAny lets the request through when the current role grants at
// least one of caps. An empty caps list allows everyone.
func (m Middleware) RequireAny(caps ...string) func(http.Handler) http.Handler {
	normalized := normalizeCapabilities(caps)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			role, ok := CurrentRole(r)
			if len(normalized) == 0 || (ok && hasAny(role, normalized)) {
				next.ServeHTTP(w, r)
				return
			}
			if m.Logger != nil {
				m.Logger.Warn("rbac denied",
					slog.String("role", string(role)),
					slog.String("path", r.URL.Path),
					slog.Any("capabilities", normalized))
			}
			m.forbidden(w, r)
		})
	}
}

func (m Middleware) forbidden(w http.ResponseWriter, r *http.Request) {
	if m.Forbidden != nil {
		m.Forbidden(w, r)
		return
	}
	http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
}

// CurrentRole returns the role of the signed-in user.
func CurrentRole(r *http.Request) (Role, bool) {
	user, ok := shared.UserFromContext(r.Context())
	if !ok {
		return "", false
	}
	return ParseRole(user.Role), true
}

func normalizeCapabilities(caps []string) []string {
	unique := make(map[string]struct{}, len(caps))
	normalized := make([]string, 0, len(caps))
	for _, c := range caps {
		c = strings.TrimSpace(strings.ToLower(c))
		if c == "" {
			continue
		}
		if _, seen := unique[c]; seen {
			continue
		}
		unique[c] = struct{}{}
		normalized = append(normalized, c)
	}
	return normalized
}

func hasAny(role Role, required []string) bool {
	for _, c := range required {
		if role.Has(c) {
			return true
		}
	}
	return len(required) == 0
}
