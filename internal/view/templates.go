package view

import (
	"fmt"
	"html/template"
	"net/http"
	"strings"
	"time"

	"github.com/clinicportal/clinicportal/internal/shared"
	"github.com/clinicportal/clinicportal/web"
)

// Engine renders HTML templates.
type Engine struct {
	templates *template.Template
}

// NavItem is one entry of the top navigation.
type NavItem struct {
	Title  string
	Path   string
	Active bool
}

// TemplateData contains values shared across templates.
type TemplateData struct {
	Title       string
	CSRFToken   string
	Flash       *shared.FlashMessage
	CurrentPath string
	User        *shared.UserProfile
	RoleLabel   string
	Dashboard   string
	Nav         []NavItem
	Data        any
}

// NewEngine parses templates at build-time.
func NewEngine() (*Engine, error) {
	funcMap := template.FuncMap{
		"formatDate": func(t time.Time) string {
			if t.IsZero() {
				return ""
			}
			return t.Format("02 Jan 2006 15:04")
		},
		"flashClass": func(kind string) string {
			switch kind {
			case shared.FlashSuccess, shared.FlashWarning, shared.FlashError:
				return "flash flash-" + kind
			default:
				return "flash flash-info"
			}
		},
		"initials": func(name string) string {
			var out []rune
			for _, part := range strings.Fields(name) {
				out = append(out, []rune(strings.ToUpper(part))[0])
				if len(out) == 2 {
					break
				}
			}
			return string(out)
		},
	}
	tpl, err := template.New("root").Funcs(funcMap).ParseFS(web.Templates(), web.TemplatePatterns...)
	if err != nil {
		return nil, err
	}
	return &Engine{templates: tpl}, nil
}

// Render executes a named template with TemplateData.
func (e *Engine) Render(w http.ResponseWriter, name string, data TemplateData) error {
	if e == nil {
		return fmt.Errorf("template engine not initialised")
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	return e.templates.ExecuteTemplate(w, name, data)
}
