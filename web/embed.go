// Package web bundles the portal's page templates and browser assets into
// the binary.
package web

import (
	"embed"
	"io/fs"
)

//go:embed templates/layouts/*.html templates/partials/*.html templates/pages/*.html
var templates embed.FS

//go:embed static/css/* static/js/*
var static embed.FS

// TemplatePatterns lists the globs parsed into the view engine. Layouts come
// first so pages can override their blocks.
var TemplatePatterns = []string{
	"templates/layouts/*.html",
	"templates/partials/*.html",
	"templates/pages/*.html",
}

// Templates returns the embedded template tree rooted at the web directory.
func Templates() fs.FS {
	return templates
}

// Assets returns the static tree with the "static/" prefix removed, ready to
// be served under /static/.
func Assets() (fs.FS, error) {
	return fs.Sub(static, "static")
}
