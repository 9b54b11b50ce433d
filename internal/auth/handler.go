package auth

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/clinicportal/clinicportal/internal/apiclient"
	"github.com/clinicportal/clinicportal/internal/feature"
	"github.com/clinicportal/clinicportal/internal/rbac"
	"github.com/clinicportal/clinicportal/internal/shared"
)

// Handler wires HTTP endpoints for authentication flows.
type Handler struct {
	logger         *slog.Logger
	service        *Service
	deps           *feature.Deps
	sessionManager *shared.SessionManager
	guard          *Guard
	validator      *validator.Validate
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service, deps *feature.Deps, sessions *shared.SessionManager, guard *Guard) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		logger:         logger,
		service:        service,
		deps:           deps,
		sessionManager: sessions,
		guard:          guard,
		validator:      validator.New(),
	}
}

// MountRoutes registers auth routes on provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.With(h.guard.RedirectIfAuthenticated).Get("/login", h.showLogin)
	r.Post("/login", h.handleLogin)
	r.Post("/logout", h.handleLogout)
}

type loginForm struct {
	Username string `validate:"required,max=15"`
	Password string `validate:"required"`
}

type loginPageData struct {
	Form   loginForm
	Errors map[string]string
}

var loginFieldLabels = map[string]string{
	"Username": "Username",
	"Password": "Password",
}

func (h *Handler) showLogin(w http.ResponseWriter, r *http.Request) {
	h.deps.Render(w, r, "pages/login.html", "Sign in", loginPageData{Errors: map[string]string{}}, http.StatusOK)
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	sess := shared.SessionFromContext(r.Context())
	form := loginForm{
		Username: strings.TrimSpace(r.PostFormValue("username")),
		Password: r.PostFormValue("password"),
	}
	errs := make(map[string]string)
	if err := h.validator.Struct(form); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			for _, fieldErr := range validationErrs {
				errs[fieldErr.Field()] = loginFieldMessage(fieldErr)
			}
		}
	}

	status := http.StatusBadRequest
	if len(errs) == 0 {
		token, user, err := h.service.Authenticate(r.Context(), form.Username, form.Password)
		switch {
		case err == nil && sess == nil:
			h.logger.Error("session missing during login")
			errs["general"] = feature.MsgUnexpected
			status = http.StatusInternalServerError
		case err == nil:
			h.startSession(w, r, sess, token, user)
			return
		case errors.Is(err, shared.ErrInvalidCredentials):
			errs["general"] = "Invalid username or password"
		default:
			h.logger.Warn("login failed", slog.Any("error", err))
			errs["general"] = feature.UserMessage(err)
			status = http.StatusBadGateway
		}
	}

	form.Password = ""
	h.deps.Render(w, r, "pages/login.html", "Sign in", loginPageData{Form: form, Errors: errs}, status)
}

func (h *Handler) startSession(w http.ResponseWriter, r *http.Request, sess *shared.Session, token string, user shared.UserProfile) {
	ctx := r.Context()
	if err := sess.SetUser(token, user); err != nil {
		h.logger.Error("store session user", slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	if _, err := h.deps.CSRF.RotateToken(ctx, sess); err != nil {
		h.logger.Warn("rotate csrf token", slog.Any("error", err))
	}
	h.deps.Workspaces.Drop(sess.ID)

	role := rbac.ParseRole(user.Role)
	if !role.Known() {
		h.logger.Warn("login with unknown role", slog.String("role", user.Role), slog.String("user", user.IdentificationNumber))
	}
	now := time.Now()
	err := h.service.RegisterSession(ctx, SessionRecord{
		ID:        sess.ID,
		UserID:    user.IdentificationNumber,
		Role:      string(role),
		CreatedAt: now,
		ExpiresAt: now.Add(h.sessionManager.TTL()),
		IP:        r.RemoteAddr,
		UserAgent: r.UserAgent(),
	})
	if err != nil {
		h.logger.Warn("register session", slog.Any("error", err))
	}
	name := user.FullName
	if name == "" {
		name = user.Username
	}
	h.deps.RedirectWithFlash(w, r, role.DashboardPath(), shared.FlashSuccess, "Welcome back, "+name)
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	sess := shared.SessionFromContext(r.Context())
	if sess == nil {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	ctx := r.Context()
	if token, ok := sess.GetToken(); ok {
		user, _ := sess.GetUser()
		if err := h.service.Logout(ctx, apiclient.Credentials{Token: token, UserID: user.IdentificationNumber}); err != nil {
			h.logger.Warn("backend logout", slog.Any("error", err))
		}
	}
	if err := h.service.RemoveSession(ctx, sess.ID); err != nil {
		h.logger.Warn("remove session", slog.Any("error", err))
	}
	sess.ClearAuth()
	h.deps.Workspaces.Drop(sess.ID)
	if _, err := h.deps.CSRF.RotateToken(ctx, sess); err != nil {
		h.logger.Warn("rotate csrf token", slog.Any("error", err))
	}
	h.deps.RedirectWithFlash(w, r, feature.LoginPath, shared.FlashInfo, "You have been signed out.")
}

func loginFieldMessage(fe validator.FieldError) string {
	label := loginFieldLabels[fe.Field()]
	switch fe.Tag() {
	case "required":
		return label + " is required"
	case "max":
		return label + " must be at most " + fe.Param() + " characters"
	default:
		return label + " is invalid"
	}
}

// ShowLoginForTest exposes the GET handler for tests.
func (h *Handler) ShowLoginForTest(w http.ResponseWriter, r *http.Request) {
	h.showLogin(w, r)
}

// HandleLoginForTest exposes the POST handler for tests.
func (h *Handler) HandleLoginForTest(w http.ResponseWriter, r *http.Request) {
	h.handleLogin(w, r)
}

// HandleLogoutForTest exposes the logout handler for tests.
func (h *Handler) HandleLogoutForTest(w http.ResponseWriter, r *http.Request) {
	h.handleLogout(w, r)
}
