package auth

import (
	"net/http"
	"time"

	"github.com/clinicportal/clinicportal/internal/feature"
	"github.com/clinicportal/clinicportal/internal/rbac"
	"github.com/clinicportal/clinicportal/internal/shared"
)

// Guard protects routes that need a signed-in user.
type Guard struct {
	deps *feature.Deps
	now  func() time.Time
}

// NewGuard constructs a Guard.
func NewGuard(deps *feature.Deps) *Guard {
	return &Guard{deps: deps, now: time.Now}
}

// Current returns the profile of a valid session. A session whose JWT has
// expired counts as signed out.
func (g *Guard) Current(r *http.Request) (shared.UserProfile, bool) {
	sess := shared.SessionFromContext(r.Context())
	token, ok := sess.GetToken()
	if !ok {
		return shared.UserProfile{}, false
	}
	user, ok := sess.GetUser()
	if !ok || TokenExpired(token, g.now()) {
		return shared.UserProfile{}, false
	}
	return user, true
}

// RequireSession redirects to the login page unless a valid session exists.
func (g *Guard) RequireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := g.Current(r)
		if !ok {
			_, hadToken := shared.SessionFromContext(r.Context()).GetToken()
			msg := feature.MsgSignInRequired
			if hadToken {
				msg = feature.MsgSessionExpired
			}
			g.deps.EndSession(w, r, msg)
			return
		}
		next.ServeHTTP(w, r.WithContext(shared.ContextWithUser(r.Context(), user)))
	})
}

// RedirectIfAuthenticated sends signed-in users to their dashboard.
func (g *Guard) RedirectIfAuthenticated(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if user, ok := g.Current(r); ok {
			http.Redirect(w, r, rbac.ParseRole(user.Role).DashboardPath(), http.StatusSeeOther)
			return
		}
		next.ServeHTTP(w, r)
	})
}
