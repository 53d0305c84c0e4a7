// ABOUTME: Server-side HTML rendering for every page
// ABOUTME: Parses embedded templates once and renders them into a buffer before writing

package views

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"path"

	"github.com/MohamedIjlal27/LMS/models"
	"github.com/MohamedIjlal27/LMS/services"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

// Page is the envelope every template receives.
type Page struct {
	Title     string
	Path      string
	Auth      models.AuthState
	Flashes   []services.Notification
	CSRFField template.HTML
	CSRFToken string
	Data      any
}

// Renderer holds one parsed template set per page.
type Renderer struct {
	pages map[string]*template.Template
}

// New parses the layout and partials together with each page template.
func New() (*Renderer, error) {
	base, err := template.New("base").Funcs(funcMap()).ParseFS(templateFS, "templates/layout.html", "templates/partials.html")
	if err != nil {
		return nil, fmt.Errorf("parsing layout: %w", err)
	}

	files, err := fs.Glob(templateFS, "templates/*.html")
	if err != nil {
		return nil, err
	}

	r := &Renderer{pages: make(map[string]*template.Template)}
	for _, file := range files {
		name := path.Base(file)
		if name == "layout.html" || name == "partials.html" {
			continue
		}
		t, err := base.Clone()
		if err != nil {
			return nil, err
		}
		if _, err := t.ParseFS(templateFS, file); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", name, err)
		}
		r.pages[name[:len(name)-len(".html")]] = t
	}
	return r, nil
}

// Has reports whether a page template exists.
func (r *Renderer) Has(name string) bool {
	_, ok := r.pages[name]
	return ok
}

// Render executes the named page. Output is buffered so a template error
// never leaves a half-written page behind.
func (r *Renderer) Render(w http.ResponseWriter, status int, name string, page Page) {
	t, ok := r.pages[name]
	if !ok {
		slog.Error("Unknown template", "name", name)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout", page); err != nil {
		slog.Error("Template execution failed", "name", name, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	buf.WriteTo(w)
}

// Static returns the embedded static assets rooted at /static.
func Static() http.Handler {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	return http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
}
