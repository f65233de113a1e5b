// Package templates renders the HTML panel fragments pushed over
// Datastar SSE: legend, statistics and the chat transcript.
package templates

import (
	"bytes"
	"embed"
	"html/template"
	"path/filepath"
	"sync"
)

//go:embed fragments/*.html
var embedded embed.FS

// Renderer manages the panel fragment templates.
type Renderer struct {
	mu        sync.RWMutex
	templates *template.Template
}

// New parses the embedded fragment templates.
func New() (*Renderer, error) {
	tmpl, err := template.ParseFS(embedded, "fragments/*.html")
	if err != nil {
		return nil, err
	}
	return &Renderer{templates: tmpl}, nil
}

// NewFromDir parses fragment templates from a directory instead of the
// embedded set, for deployments that restyle the panels.
func NewFromDir(dir string) (*Renderer, error) {
	tmpl, err := template.ParseGlob(filepath.Join(dir, "*.html"))
	if err != nil {
		return nil, err
	}
	return &Renderer{templates: tmpl}, nil
}

// Render renders a named template to a string.
func (r *Renderer) Render(name string, data any) (string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var buf bytes.Buffer
	if err := r.templates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// MustRender renders a template and panics on error. Use only when the
// template is known to exist.
func (r *Renderer) MustRender(name string, data any) string {
	s, err := r.Render(name, data)
	if err != nil {
		panic(err)
	}
	return s
}
