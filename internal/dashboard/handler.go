// Package dashboard serves the role landing pages.
package dashboard

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/clinicportal/clinicportal/internal/feature"
	"github.com/clinicportal/clinicportal/internal/rbac"
	"github.com/clinicportal/clinicportal/internal/shared"
)

// Page is the template model of pages/dashboard.html.
type Page struct {
	Heading  string
	Greeting string
	Tiles    []feature.Entry
}

// Handler renders dashboards.
type Handler struct {
	deps *feature.Deps
}

// NewHandler constructs a dashboard handler.
func NewHandler(deps *feature.Deps) *Handler {
	return &Handler{deps: deps}
}

// MountRoutes registers /dashboard routes. The router applies the session
// guard.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.generic)
	r.Get("/{slug}", h.forRole)
}

func (h *Handler) generic(w http.ResponseWriter, r *http.Request) {
	user, ok := shared.UserFromContext(r.Context())
	if !ok {
		h.deps.EndSession(w, r, feature.MsgSignInRequired)
		return
	}
	role := rbac.ParseRole(user.Role)
	if role.Known() {
		http.Redirect(w, r, role.DashboardPath(), http.StatusSeeOther)
		return
	}
	h.render(w, r, user, role)
}

func (h *Handler) forRole(w http.ResponseWriter, r *http.Request) {
	user, ok := shared.UserFromContext(r.Context())
	if !ok {
		h.deps.EndSession(w, r, feature.MsgSignInRequired)
		return
	}
	role := rbac.ParseRole(user.Role)
	want, ok := rbac.RoleForSlug(chi.URLParam(r, "slug"))
	if !ok || want != role {
		http.Redirect(w, r, role.DashboardPath(), http.StatusSeeOther)
		return
	}
	h.render(w, r, user, role)
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, user shared.UserProfile, role rbac.Role) {
	heading := "Dashboard"
	if role.Known() {
		heading = role.Label() + " dashboard"
	}
	name := user.FullName
	if name == "" {
		name = user.Username
	}
	page := Page{
		Heading:  heading,
		Greeting: "Hello, " + name + ".",
		Tiles:    h.deps.Menu.For(role),
	}
	h.deps.Render(w, r, "pages/dashboard.html", heading, page, http.StatusOK)
}
