package feature

import (
	"context"
	"net/url"
	"regexp"
	"strings"

	"github.com/clinicportal/clinicportal/internal/apiclient"
	"github.com/clinicportal/clinicportal/internal/rbac"
)

// Column maps a record to one table cell.
type Column[T any] struct {
	Header string
	Value  func(T) string
}

// Lookup declares the query parameter that scopes a module, such as the
// patient whose records are shown. Without a value nothing is fetched.
type Lookup struct {
	Param       string
	Label       string
	Placeholder string
	Pattern     *regexp.Regexp
	Hint        string
}

func (l *Lookup) check(value string) error {
	if l == nil || value == "" || l.Pattern == nil || l.Pattern.MatchString(value) {
		return nil
	}
	hint := l.Hint
	if hint == "" {
		hint = "has an invalid format"
	}
	return &ValidationError{Messages: []string{l.Label + " " + hint}}
}

// Entry describes a module for navigation and dashboards.
type Entry struct {
	Name        string
	Title       string
	Description string
	Path        string
	View        string
}

// Module is the declarative definition of one clinical section.
type Module[T any] struct {
	Name        string
	Title       string
	Description string
	Path        string
	// View gates listing; Manage gates create, edit and delete.
	View   string
	Manage string

	Lookup  *Lookup
	Columns []Column[T]
	Key     func(T) string
	Match   Matcher[T]
	Fetch   func(ctx context.Context, creds apiclient.Credentials, scope string) ([]T, error)

	Schema   *Schema
	Create   func(ctx context.Context, creds apiclient.Credentials, values url.Values) error
	Update   func(ctx context.Context, creds apiclient.Credentials, key string, values url.Values) error
	Remove   func(ctx context.Context, creds apiclient.Credentials, key string) error
	Prefill  func(T) url.Values
	Defaults func(scope string) url.Values

	Export      *Exporter[T]
	EmptyText   string
	CreatedText string
	UpdatedText string
	RemovedText string
}

// Entry returns the navigation descriptor.
func (m *Module[T]) Entry() Entry {
	return Entry{Name: m.Name, Title: m.Title, Description: m.Description, Path: m.Path, View: m.View}
}

// Store returns the module store inside ws.
func (m *Module[T]) Store(ws *Workspace) *Store[T] {
	return StoreFor(ws, m.Name, m.Match)
}

// Load checks the role, then fetches records for scope into the workspace
// store. A denied role never reaches Fetch.
func (m *Module[T]) Load(ctx context.Context, role rbac.Role, ws *Workspace, creds apiclient.Credentials, scope string) (Snapshot[T], error) {
	if !role.Has(m.View) {
		return Snapshot[T]{}, ErrPermissionDenied
	}
	store := m.Store(ws)
	scope = strings.TrimSpace(scope)
	if m.Lookup != nil {
		if scope == "" {
			return store.Snapshot(), nil
		}
		if err := m.Lookup.check(scope); err != nil {
			return store.Snapshot(), err
		}
	}
	err := ws.Do(ctx, m.Name+"|"+scope, func(ctx context.Context) error {
		return store.Load(ctx, scope, func(ctx context.Context) ([]T, error) {
			return m.Fetch(ctx, creds, scope)
		})
	})
	return store.Snapshot(), err
}

// CanManage reports whether role may mutate records.
func (m *Module[T]) CanManage(role rbac.Role) bool {
	return m.Schema != nil && m.Manage != "" && m.Create != nil && role.Has(m.Manage)
}

func (m *Module[T]) exporter() Exporter[T] {
	if m.Export != nil {
		return *m.Export
	}
	return ExporterFromColumns(m.Name, m.Columns)
}

func (m *Module[T]) find(items []T, key string) (T, bool) {
	var zero T
	if m.Key == nil {
		return zero, false
	}
	for _, item := range items {
		if m.Key(item) == key {
			return item, true
		}
	}
	return zero, false
}

func (m *Module[T]) listURL(scope string) string {
	if m.Lookup == nil || scope == "" {
		return m.Path
	}
	return m.Path + "?" + url.Values{m.Lookup.Param: {scope}}.Encode()
}

func (m *Module[T]) createdText() string {
	if m.CreatedText != "" {
		return m.CreatedText
	}
	return "Record saved successfully."
}

func (m *Module[T]) updatedText() string {
	if m.UpdatedText != "" {
		return m.UpdatedText
	}
	return "Record updated successfully."
}

func (m *Module[T]) removedText() string {
	if m.RemovedText != "" {
		return m.RemovedText
	}
	return "Record deleted."
}

// Menu is the ordered set of modules shown in navigation.
type Menu struct {
	entries []Entry
}

// NewMenu builds a menu in the given order.
func NewMenu(entries ...Entry) *Menu {
	return &Menu{entries: entries}
}

// For returns the entries role may view.
func (m *Menu) For(role rbac.Role) []Entry {
	if m == nil {
		return nil
	}
	var out []Entry
	for _, e := range m.entries {
		if role.Has(e.View) {
			out = append(out, e)
		}
	}
	return out
}
