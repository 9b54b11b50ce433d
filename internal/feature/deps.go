package feature

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/clinicportal/clinicportal/internal/apiclient"
	"github.com/clinicportal/clinicportal/internal/rbac"
	"github.com/clinicportal/clinicportal/internal/shared"
	"github.com/clinicportal/clinicportal/internal/view"
)

// LoginPath is where signed-out users are sent.
const LoginPath = "/auth/login"

// Deps are the collaborators every page handler needs.
type Deps struct {
	Logger      *slog.Logger
	Templates   *view.Engine
	CSRF        *shared.CSRFManager
	Forms       *shared.FormTokens
	Workspaces  *Workspaces
	Audit       shared.AuditRecorder
	Menu        *Menu
	ExportLimit int
	Now         func() time.Time
}

func (d *Deps) now() time.Time {
	if d.Now != nil {
		return d.Now()
	}
	return time.Now()
}

func (d *Deps) logger() *slog.Logger {
	if d.Logger != nil {
		return d.Logger
	}
	return slog.Default()
}

// Page assembles layout data for the current request.
func (d *Deps) Page(r *http.Request, title string, data any) view.TemplateData {
	sess := shared.SessionFromContext(r.Context())
	csrfToken, _ := d.CSRF.EnsureToken(r.Context(), sess)
	td := view.TemplateData{
		Title:       title,
		CSRFToken:   csrfToken,
		Flash:       sess.PopFlash(),
		CurrentPath: r.URL.Path,
		Data:        data,
	}
	if user, ok := shared.UserFromContext(r.Context()); ok {
		role := rbac.ParseRole(user.Role)
		td.User = &user
		td.RoleLabel = role.Label()
		td.Dashboard = role.DashboardPath()
		td.Nav = d.Nav(role, r.URL.Path)
	}
	return td
}

// Nav builds the navigation for role.
func (d *Deps) Nav(role rbac.Role, current string) []view.NavItem {
	entries := d.Menu.For(role)
	items := make([]view.NavItem, 0, len(entries))
	for _, e := range entries {
		items = append(items, view.NavItem{
			Title:  e.Title,
			Path:   e.Path,
			Active: current == e.Path || strings.HasPrefix(current, e.Path+"/"),
		})
	}
	return items
}

// Render writes a full page with status.
func (d *Deps) Render(w http.ResponseWriter, r *http.Request, name, title string, data any, status int) {
	viewData := d.Page(r, title, data)
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := d.Templates.Render(w, name, viewData); err != nil {
		d.logger().Error("render template", slog.String("template", name), slog.Any("error", err))
	}
}

// RedirectWithFlash queues a notification and redirects with 303.
func (d *Deps) RedirectWithFlash(w http.ResponseWriter, r *http.Request, location, kind, message string) {
	shared.SessionFromContext(r.Context()).AddFlash(shared.FlashMessage{Kind: kind, Message: message})
	http.Redirect(w, r, location, http.StatusSeeOther)
}

// Forbidden renders the 403 page.
func (d *Deps) Forbidden(w http.ResponseWriter, r *http.Request) {
	d.Render(w, r, "pages/error.html", "Access denied", map[string]any{
		"Status":  http.StatusForbidden,
		"Message": MsgPermissionDenied,
	}, http.StatusForbidden)
}

// EndSession clears the credentials and the session workspace, then sends
// the browser to the login page with message.
func (d *Deps) EndSession(w http.ResponseWriter, r *http.Request, message string) {
	if sess := shared.SessionFromContext(r.Context()); sess != nil {
		sess.ClearAuth()
		if d.Workspaces != nil {
			d.Workspaces.Drop(sess.ID)
		}
		sess.AddFlash(shared.FlashMessage{Kind: shared.FlashWarning, Message: message})
	}
	http.Redirect(w, r, LoginPath, http.StatusSeeOther)
}

// Credentials returns the backend credentials and profile of the request.
func (d *Deps) Credentials(r *http.Request) (apiclient.Credentials, shared.UserProfile, bool) {
	token, ok := shared.SessionFromContext(r.Context()).GetToken()
	if !ok {
		return apiclient.Credentials{}, shared.UserProfile{}, false
	}
	user, ok := shared.UserFromContext(r.Context())
	if !ok {
		return apiclient.Credentials{}, shared.UserProfile{}, false
	}
	return apiclient.Credentials{Token: token, UserID: user.IdentificationNumber}, user, true
}

// Workspace returns the workspace bound to the request session.
func (d *Deps) Workspace(r *http.Request) *Workspace {
	id := ""
	if sess := shared.SessionFromContext(r.Context()); sess != nil {
		id = sess.ID
	}
	return d.Workspaces.For(id)
}

func (d *Deps) record(ctx context.Context, user shared.UserProfile, action, entity, entityID string, meta map[string]any) {
	if d.Audit == nil {
		return
	}
	entry := shared.AuditLog{
		ActorID:  user.IdentificationNumber,
		Role:     user.Role,
		Action:   action,
		Entity:   entity,
		EntityID: entityID,
		Meta:     meta,
		At:       d.now(),
	}
	if err := d.Audit.Record(ctx, entry); err != nil {
		d.logger().Warn("audit record", slog.String("entity", entity), slog.Any("error", err))
	}
}
