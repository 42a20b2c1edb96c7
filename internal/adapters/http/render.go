package web

import (
	"embed"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"

	"github.com/gorilla/csrf"

	"badgecreator/internal/domain/session"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticRoot embed.FS

// staticFS serves /static/ from the embedded static directory.
var staticFS fs.FS = staticRoot

var funcMap = template.FuncMap{
	"add": func(a, b int) int { return a + b },
}

// pages holds layout.html parsed together with each page template.
var pages = map[string]*template.Template{
	"single.html": parsePage("single.html"),
	"bulk.html":   parsePage("bulk.html"),

	"submissions.html": parsePage("submissions.html"),
}

func parsePage(name string) *template.Template {
	return template.Must(template.New("layout.html").Funcs(funcMap).ParseFS(templateFS, "templates/layout.html", "templates/"+name))
}

// pageData is what layout.html renders around a page.
type pageData struct {
	Site      site
	Page      session.Page
	Flashes   []session.Flash
	CSRFField template.HTML
	Form      any
}

// render executes a page inside the layout, consuming the session's pending flashes.
func render(w http.ResponseWriter, r *http.Request, name string, form any) {
	sess := currentSession(r)
	tpl, ok := pages[name]
	if !ok {
		slog.Error("render_failed", "template", name, "error", "unknown template")
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	data := pageData{
		Site:      chrome,
		Page:      sess.Page,
		Flashes:   sess.TakeFlashes(),
		CSRFField: csrf.TemplateField(r),
		Form:      form,
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	if err := tpl.Execute(w, data); err != nil {
		slog.Error("render_failed", "template", name, "error", err)
	}
}
