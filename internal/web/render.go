package web

import (
	"bytes"
	stderrors "errors"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"

	"github.com/yuin/goldmark"

	"github.com/chatsnap/chatsnap/internal/errors"
	"github.com/chatsnap/chatsnap/internal/feed"
)

// PageData contains common fields used across all page templates.
type PageData struct {
	Title   string
	Version string
	Nav     string // active nav item: "messages", "sources"
}

// MessageView is one record prepared for rendering.
type MessageView struct {
	feed.Record
	When        string // empty when the record's date is null
	ContentHTML template.HTML
}

// MessagesPageData is the template data for the snapshot page.
type MessagesPageData struct {
	PageData
	Category string
	Limit    int
	RunID    string
	Skipped  []string
	Items    []MessageView
}

// SourcesPageData is the template data for the sources page.
type SourcesPageData struct {
	PageData
	Category string
	Items    []feed.SourceInfo
}

// ErrorPageData is the template data for the error page.
type ErrorPageData struct {
	PageData
	StatusCode int
	Message    string
}

// Renderer manages template parsing and rendering.
type Renderer struct {
	templates map[string]*template.Template
	version   string
}

// NewRenderer creates a Renderer by parsing templates from the given FS.
func NewRenderer(templateFS fs.FS, version string) *Renderer {
	layoutTmpl := template.Must(template.New("layout").ParseFS(templateFS, "layout.html"))

	pages := map[string]string{
		"messages": "messages.html",
		"sources":  "sources.html",
		"error":    "error.html",
	}

	templates := make(map[string]*template.Template, len(pages))
	for name, file := range pages {
		t := template.Must(layoutTmpl.Clone())
		template.Must(t.ParseFS(templateFS, file))
		templates[name] = t
	}

	return &Renderer{
		templates: templates,
		version:   version,
	}
}

// renderPage renders a named page template with HTTP 200 status.
func (r *Renderer) renderPage(w http.ResponseWriter, name string, data any) {
	r.renderPageStatus(w, http.StatusOK, name, data)
}

func (r *Renderer) renderPageStatus(w http.ResponseWriter, status int, name string, data any) {
	t, ok := r.templates[name]
	if !ok {
		slog.Error("template not found", "name", name)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout", data); err != nil {
		slog.Error("template execution error", "name", name, "err", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(buf.Bytes())
}

// renderError renders the error page with the status carried by the error.
func (r *Renderer) renderError(w http.ResponseWriter, err error) {
	var sErr *errors.SnapError
	if !stderrors.As(err, &sErr) {
		sErr = errors.NewInternal(err)
	}

	r.renderPageStatus(w, sErr.Status, "error", ErrorPageData{
		PageData: PageData{
			Title:   "Error",
			Version: r.version,
		},
		StatusCode: sErr.Status,
		Message:    sErr.Message,
	})
}

// renderMarkdown converts message content to HTML using goldmark.
// On failure the raw text is escaped and used as-is.
func renderMarkdown(md string) template.HTML {
	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(md), &buf); err != nil {
		return template.HTML(template.HTMLEscapeString(md))
	}
	return template.HTML(buf.String())
}
