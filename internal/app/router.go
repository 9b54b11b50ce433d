package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/clinicportal/clinicportal/internal/auth"
	"github.com/clinicportal/clinicportal/internal/dashboard"
	"github.com/clinicportal/clinicportal/internal/feature"
	"github.com/clinicportal/clinicportal/internal/observability"
	"github.com/clinicportal/clinicportal/internal/platform/httpx"
	"github.com/clinicportal/clinicportal/internal/rbac"
	"github.com/clinicportal/clinicportal/internal/shared"
	"github.com/clinicportal/clinicportal/jobs"
	"github.com/clinicportal/clinicportal/web"
)

// BackendPinger checks the clinical backend on demand.
type BackendPinger interface {
	Ping(ctx context.Context) error
}

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger         *slog.Logger
	Config         *Config
	SessionManager *shared.SessionManager
	CSRFManager    *shared.CSRFManager
	Deps           *feature.Deps
	Guard          *auth.Guard
	AuthHandler    *auth.Handler
	Dashboard      *dashboard.Handler
	Modules        []feature.Mountable
	JobHandler     *jobs.Handler
	ProbeStatus    *jobs.StatusStore
	Backend        BackendPinger
	Metrics        *observability.Metrics
}

// landingStatus is the template model of the backend panel on /welcome.
type landingStatus struct {
	Known     bool
	Status    string
	CheckedAt time.Time
	Error     string
}

// NewRouter constructs the chi.Router with portal defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:         params.Logger,
		Config:         params.Config,
		SessionManager: params.SessionManager,
		CSRFManager:    params.CSRFManager,
		Metrics:        params.Metrics,
	}) {
		r.Use(mw)
	}

	if !InTestMode() {
		r.Use(chimw.Logger)
	}

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Get("/healthz/backend", backendHealth(params))

	r.Get("/welcome", func(w http.ResponseWriter, r *http.Request) {
		if _, ok := params.Guard.Current(r); ok {
			http.Redirect(w, r, "/", http.StatusSeeOther)
			return
		}
		var data landingStatus
		status, ok, err := params.ProbeStatus.Latest(r.Context())
		if err != nil {
			params.Logger.Warn("read backend status", slog.Any("error", err))
		}
		if ok {
			data = landingStatus{Known: true, Status: status.Status, CheckedAt: status.CheckedAt, Error: status.Error}
		}
		params.Deps.Render(w, r, "pages/landing.html", "Clinic Portal", data, http.StatusOK)
	})

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		user, ok := params.Guard.Current(r)
		if !ok {
			http.Redirect(w, r, "/welcome", http.StatusSeeOther)
			return
		}
		http.Redirect(w, r, rbac.ParseRole(user.Role).DashboardPath(), http.StatusSeeOther)
	})

	r.Route("/auth", params.AuthHandler.MountRoutes)

	r.Group(func(r chi.Router) {
		r.Use(params.Guard.RequireSession)
		r.Route("/dashboard", params.Dashboard.MountRoutes)
		for _, m := range params.Modules {
			r.Route(m.Entry().Path, m.MountRoutes)
		}
	})

	if params.JobHandler != nil {
		r.Route("/jobs", params.JobHandler.MountRoutes)
	}
	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	staticFS, err := web.Assets()
	if err != nil {
		params.Logger.Error("create static sub filesystem", slog.Any("error", err))
	} else {
		fileServer := http.StripPrefix("/static/", http.FileServer(http.FS(staticFS)))
		r.Handle("/static/*", staticCacheHandler(fileServer))
	}

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		params.Deps.Render(w, r, "pages/error.html", "Not found", map[string]any{
			"Status":  http.StatusNotFound,
			"Message": "The page you requested does not exist.",
		}, http.StatusNotFound)
	})

	return r
}

// backendHealth reports the last probe result, pinging live when the worker
// has not recorded one recently.
func backendHealth(params RouterParams) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status, ok, err := params.ProbeStatus.Latest(r.Context())
		if err != nil {
			params.Logger.Warn("read backend status", slog.Any("error", err))
		}
		if !ok && params.Backend != nil {
			status = jobs.BackendStatus{Status: jobs.StatusUp, CheckedAt: time.Now().UTC()}
			if err := params.Backend.Ping(r.Context()); err != nil {
				status.Status = jobs.StatusDown
				status.Error = err.Error()
			}
			ok = true
		}
		if !ok {
			httpx.RespondError(w, fmt.Errorf("backend status unknown: %w", httpx.ErrUnavailable))
			return
		}
		if !status.Up() {
			httpx.RespondError(w, fmt.Errorf("clinical backend down: %s: %w", status.Error, httpx.ErrUnavailable))
			return
		}
		httpx.JSON(w, http.StatusOK, status)
	}
}

// staticCacheHandler wraps a file server with Cache-Control headers.
func staticCacheHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "public, max-age=3600")
		next.ServeHTTP(w, r)
	})
}
