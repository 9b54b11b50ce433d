package feature

import (
	"bytes"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"

	"github.com/clinicportal/clinicportal/internal/apiclient"
	"github.com/clinicportal/clinicportal/internal/rbac"
	"github.com/clinicportal/clinicportal/internal/shared"
)

const defaultExportLimit = 10

// Mountable is a module handler the router can attach.
type Mountable interface {
	Entry() Entry
	MountRoutes(r chi.Router)
}

// Handler serves the list, form, export and print routes of one module.
type Handler[T any] struct {
	deps   *Deps
	module *Module[T]
	rbac   rbac.Middleware
}

// NewHandler constructs a Handler.
func NewHandler[T any](deps *Deps, module *Module[T]) *Handler[T] {
	return &Handler[T]{
		deps:   deps,
		module: module,
		rbac:   rbac.Middleware{Logger: deps.Logger, Forbidden: deps.Forbidden},
	}
}

// Entry exposes the module descriptor.
func (h *Handler[T]) Entry() Entry {
	return h.module.Entry()
}

// MountRoutes registers module routes.
func (h *Handler[T]) MountRoutes(r chi.Router) {
	limit := h.deps.ExportLimit
	if limit <= 0 {
		limit = defaultExportLimit
	}
	limiter := httprate.Limit(limit, time.Minute,
		httprate.WithKeyFuncs(rateLimitKey),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			h.deps.RedirectWithFlash(w, r, h.module.Path, shared.FlashWarning, "Too many exports. Wait a minute and try again.")
		}),
	)

	r.Get("/", h.list)
	r.Post("/print", h.print)
	r.With(limiter).Get("/export.csv", h.export)

	m := h.module
	if m.Schema == nil || m.Manage == "" || m.Create == nil {
		return
	}
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAny(m.Manage))
		r.Get("/new", h.newForm)
		r.Post("/", h.create)
		if m.Update != nil {
			r.Get("/{key}/edit", h.editForm)
			r.Post("/{key}", h.update)
		}
		if m.Remove != nil {
			r.Post("/{key}/delete", h.remove)
		}
	})
}

func (h *Handler[T]) list(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	reload := !q.Has("q") || q.Has("refresh")
	h.renderList(w, r, nil, reload, http.StatusOK)
}

func (h *Handler[T]) newForm(w http.ResponseWriter, r *http.Request) {
	scope := h.scope(r)
	values := url.Values{}
	if h.module.Defaults != nil {
		values = h.module.Defaults(scope)
	}
	form := h.form(r, values, ModeCreate, "", scope)
	h.renderList(w, r, form, false, http.StatusOK)
}

func (h *Handler[T]) editForm(w http.ResponseWriter, r *http.Request) {
	m := h.module
	key := chi.URLParam(r, "key")
	ws := h.deps.Workspace(r)
	item, ok := m.find(m.Store(ws).Snapshot().All, key)
	if !ok || m.Prefill == nil {
		h.deps.RedirectWithFlash(w, r, m.listURL(h.scope(r)), shared.FlashWarning, "The selected record is no longer available.")
		return
	}
	form := h.form(r, m.Prefill(item), ModeEdit, key, h.scope(r))
	h.renderList(w, r, form, false, http.StatusOK)
}

func (h *Handler[T]) create(w http.ResponseWriter, r *http.Request) {
	h.submit(w, r, ModeCreate, "")
}

func (h *Handler[T]) update(w http.ResponseWriter, r *http.Request) {
	h.submit(w, r, ModeEdit, chi.URLParam(r, "key"))
}

func (h *Handler[T]) submit(w http.ResponseWriter, r *http.Request, mode Mode, key string) {
	m := h.module
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	creds, user, ok := h.deps.Credentials(r)
	if !ok {
		h.deps.EndSession(w, r, MsgSignInRequired)
		return
	}
	ctx := r.Context()
	values := r.PostForm
	scope := h.scope(r)
	token := values.Get(shared.FormTokenField)

	if err := h.deps.Forms.Consume(ctx, m.Name, token); err != nil {
		if errors.Is(err, shared.ErrDuplicateSubmission) {
			h.deps.RedirectWithFlash(w, r, m.listURL(scope), shared.FlashWarning, MsgDuplicate)
			return
		}
		h.deps.logger().Error("consume form token", slog.String("module", m.Name), slog.Any("error", err))
		h.deps.RedirectWithFlash(w, r, m.listURL(scope), shared.FlashError, MsgUnexpected)
		return
	}
	release := func() {
		if err := h.deps.Forms.Release(ctx, m.Name, token); err != nil {
			h.deps.logger().Warn("release form token", slog.String("module", m.Name), slog.Any("error", err))
		}
	}

	if msgs := m.Schema.Validate(values, mode); len(msgs) > 0 {
		release()
		form := h.formWith(values, mode, key, token, msgs, scope)
		h.renderList(w, r, form, false, http.StatusUnprocessableEntity)
		return
	}

	var err error
	action := "create"
	if mode == ModeEdit {
		action = "update"
		err = m.Update(ctx, creds, key, values)
	} else {
		err = m.Create(ctx, creds, values)
	}
	if err != nil {
		if apiclient.IsUnauthorized(err) {
			h.deps.EndSession(w, r, MsgSessionExpired)
			return
		}
		release()
		msg := UserMessage(err)
		h.deps.logger().Warn("module submit failed", slog.String("module", m.Name), slog.String("action", action), slog.Any("error", err))
		form := h.formWith(values, mode, key, token, []string{msg}, scope)
		h.renderList(w, r, form, false, failureStatus(err))
		return
	}

	h.deps.record(ctx, user, m.Name+"."+action, m.Name, key, map[string]any{
		"section": m.Schema.ActiveSection(values),
		"scope":   scope,
	})
	text := m.createdText()
	if mode == ModeEdit {
		text = m.updatedText()
	}
	h.deps.RedirectWithFlash(w, r, m.listURL(scope), shared.FlashSuccess, text)
}

func (h *Handler[T]) remove(w http.ResponseWriter, r *http.Request) {
	m := h.module
	creds, user, ok := h.deps.Credentials(r)
	if !ok {
		h.deps.EndSession(w, r, MsgSignInRequired)
		return
	}
	key := chi.URLParam(r, "key")
	scope := h.scope(r)
	if err := m.Remove(r.Context(), creds, key); err != nil {
		if apiclient.IsUnauthorized(err) {
			h.deps.EndSession(w, r, MsgSessionExpired)
			return
		}
		h.deps.logger().Warn("module delete failed", slog.String("module", m.Name), slog.Any("error", err))
		h.deps.RedirectWithFlash(w, r, m.listURL(scope), shared.FlashError, UserMessage(err))
		return
	}
	h.deps.record(r.Context(), user, m.Name+".delete", m.Name, key, nil)
	h.deps.RedirectWithFlash(w, r, m.listURL(scope), shared.FlashSuccess, m.removedText())
}

func (h *Handler[T]) export(w http.ResponseWriter, r *http.Request) {
	m := h.module
	creds, user, ok := h.deps.Credentials(r)
	if !ok {
		h.deps.EndSession(w, r, MsgSignInRequired)
		return
	}
	role := rbac.ParseRole(user.Role)
	if !role.Has(m.View) {
		h.deps.Forbidden(w, r)
		return
	}
	scope := h.scope(r)
	ws := h.deps.Workspace(r)
	store := m.Store(ws)
	if !store.Loaded(scope) {
		if _, err := m.Load(r.Context(), role, ws, creds, scope); err != nil {
			if apiclient.IsUnauthorized(err) {
				h.deps.EndSession(w, r, MsgSessionExpired)
				return
			}
			h.deps.RedirectWithFlash(w, r, m.listURL(scope), shared.FlashError, UserMessage(err))
			return
		}
	}
	store.Filter(r.URL.Query().Get("q"))
	snap := store.Snapshot()
	items := snap.Filtered
	if snap.Scope != scope {
		items = nil
	}

	exporter := m.exporter()
	var buf bytes.Buffer
	if err := exporter.Write(&buf, items); err != nil {
		if errors.Is(err, ErrNothingToExport) {
			h.deps.RedirectWithFlash(w, r, m.listURL(scope), shared.FlashWarning, MsgNothingToExport)
			return
		}
		h.deps.logger().Error("export csv", slog.String("module", m.Name), slog.Any("error", err))
		h.deps.RedirectWithFlash(w, r, m.listURL(scope), shared.FlashError, MsgUnexpected)
		return
	}
	h.deps.record(r.Context(), user, m.Name+".export", m.Name, scope, map[string]any{"rows": len(items)})
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+exporter.Filename(h.deps.now())+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

func (h *Handler[T]) print(w http.ResponseWriter, r *http.Request) {
	h.deps.RedirectWithFlash(w, r, h.module.listURL(h.scope(r)), shared.FlashInfo, MsgPrintPending)
}

func (h *Handler[T]) renderList(w http.ResponseWriter, r *http.Request, form *FormView, reload bool, status int) {
	m := h.module
	creds, user, ok := h.deps.Credentials(r)
	if !ok {
		h.deps.EndSession(w, r, MsgSignInRequired)
		return
	}
	role := rbac.ParseRole(user.Role)
	page := ListPage{Module: m.Entry(), EmptyText: m.EmptyText}
	if page.EmptyText == "" {
		page.EmptyText = "No records to show."
	}
	if !role.Has(m.View) {
		page.Denied = MsgPermissionDenied
		h.deps.Render(w, r, "pages/module.html", m.Title, page, http.StatusForbidden)
		return
	}

	scope := h.scope(r)
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	ws := h.deps.Workspace(r)
	store := m.Store(ws)

	var loadErr error
	if reload || !store.Loaded(scope) {
		_, loadErr = m.Load(r.Context(), role, ws, creds, scope)
	}
	if apiclient.IsUnauthorized(loadErr) {
		h.deps.EndSession(w, r, MsgSessionExpired)
		return
	}
	if loadErr != nil {
		h.deps.logger().Warn("module load failed", slog.String("module", m.Name), slog.Any("error", loadErr))
		page.ErrorText = UserMessage(loadErr)
	}
	store.Filter(query)
	snap := store.Snapshot()

	page.State = snap.State.String()
	page.Query = query
	page.LoadedAt = snap.LoadedAt
	page.CanManage = m.CanManage(role)
	page.CanEdit = page.CanManage && m.Update != nil && m.Prefill != nil && m.Key != nil
	page.CanDelete = page.CanManage && m.Remove != nil && m.Key != nil
	page.NewURL = h.withScope(m.Path+"/new", scope)
	page.PrintURL = h.withScope(m.Path+"/print", scope)
	page.FilterURL = m.Path
	page.Form = form
	if m.Lookup != nil {
		page.Lookup = &LookupView{Param: m.Lookup.Param, Label: m.Lookup.Label, Placeholder: m.Lookup.Placeholder, Value: scope}
	}
	for _, c := range m.Columns {
		page.Columns = append(page.Columns, c.Header)
	}

	visible := m.Lookup == nil || (scope != "" && snap.Scope == scope)
	if visible {
		page.Total = len(snap.All)
		page.Shown = len(snap.Filtered)
		for _, item := range snap.Filtered {
			row := RowView{Cells: make([]string, len(m.Columns))}
			for i, c := range m.Columns {
				row.Cells[i] = c.Value(item)
			}
			if m.Key != nil {
				row.Key = m.Key(item)
				if page.CanEdit {
					row.EditURL = h.withScope(m.Path+"/"+url.PathEscape(row.Key)+"/edit", scope)
				}
				if page.CanDelete {
					row.DeleteURL = h.withScope(m.Path+"/"+url.PathEscape(row.Key)+"/delete", scope)
				}
			}
			page.Rows = append(page.Rows, row)
		}
	}
	exportParams := url.Values{}
	if m.Lookup != nil && scope != "" {
		exportParams.Set(m.Lookup.Param, scope)
	}
	if query != "" {
		exportParams.Set("q", query)
	}
	page.ExportURL = m.Path + "/export.csv"
	if len(exportParams) > 0 {
		page.ExportURL += "?" + exportParams.Encode()
	}
	h.deps.Render(w, r, "pages/module.html", m.Title, page, status)
}

func (h *Handler[T]) form(r *http.Request, values url.Values, mode Mode, key, scope string) *FormView {
	token, err := h.deps.Forms.Issue(r.Context(), h.module.Name)
	if err != nil {
		h.deps.logger().Error("issue form token", slog.String("module", h.module.Name), slog.Any("error", err))
	}
	return h.formWith(values, mode, key, token, nil, scope)
}

func (h *Handler[T]) formWith(values url.Values, mode Mode, key, token string, errs []string, scope string) *FormView {
	m := h.module
	form := buildForm(m.Schema, values, mode)
	form.Token = token
	form.Errors = errs
	form.Action = h.withScope(m.Path, scope)
	if mode == ModeEdit {
		form.Action = h.withScope(m.Path+"/"+url.PathEscape(key), scope)
	}
	form.CancelURL = m.listURL(scope)
	return form
}

// scope reads the lookup value from the query string, or from the posted
// form on submissions.
func (h *Handler[T]) scope(r *http.Request) string {
	if h.module.Lookup == nil {
		return ""
	}
	param := h.module.Lookup.Param
	if v := strings.TrimSpace(r.URL.Query().Get(param)); v != "" {
		return v
	}
	if r.Method == http.MethodPost {
		return strings.TrimSpace(r.PostFormValue(param))
	}
	return ""
}

func (h *Handler[T]) withScope(path, scope string) string {
	if h.module.Lookup == nil || scope == "" {
		return path
	}
	return path + "?" + url.Values{h.module.Lookup.Param: {scope}}.Encode()
}

func failureStatus(err error) int {
	if errors.Is(err, apiclient.ErrUnreachable) {
		return http.StatusBadGateway
	}
	if status := apiclient.StatusOf(err); status >= 500 {
		return http.StatusBadGateway
	}
	return http.StatusUnprocessableEntity
}

func rateLimitKey(r *http.Request) (string, error) {
	if user, ok := shared.UserFromContext(r.Context()); ok && user.IdentificationNumber != "" {
		return "user:" + user.IdentificationNumber, nil
	}
	key, err := httprate.KeyByIP(r)
	if err != nil {
		return "", err
	}
	return "ip:" + key, nil
}
