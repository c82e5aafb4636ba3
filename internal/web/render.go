package web

import (
	"bytes"
	"embed"
	stderrors "errors"
	"fmt"
	"html/template"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/dkarlsen/marksite/internal/article"
	"github.com/dkarlsen/marksite/internal/errors"
)

//go:embed templates/*.html
var templateFS embed.FS

// PageData is the template data for every page: the rendered HTML fragment
// plus the parsed article metadata, when the page is an article.
type PageData struct {
	Title      string
	Content    template.HTML
	Article    *article.Article
	AuthorName string
}

// Renderer wraps the layout template and error rendering.
type Renderer struct {
	layout *template.Template
	log    *zap.Logger
}

// NewRenderer parses the embedded layout template.
func NewRenderer(log *zap.Logger) *Renderer {
	funcMap := template.FuncMap{
		"formatDate": formatDate,
	}
	layout := template.Must(
		template.New("layout").Funcs(funcMap).ParseFS(templateFS, "templates/layout.html"))
	return &Renderer{layout: layout, log: log}
}

// renderPage writes the layout-wrapped page with the given status.
func (r *Renderer) renderPage(w http.ResponseWriter, status int, data PageData) {
	var buf bytes.Buffer
	if err := r.layout.ExecuteTemplate(&buf, "layout", data); err != nil {
		r.log.Error("template execution failed", zap.Error(err))
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(buf.Bytes())
}

// renderError writes an error page. Upstream fetch failures read as "not
// found" to visitors: the page either does not exist or cannot be resolved,
// and the distinction is an upstream detail.
func (r *Renderer) renderError(w http.ResponseWriter, err error) {
	var sErr *errors.SiteError
	if !stderrors.As(err, &sErr) {
		sErr = errors.NewInternal(err)
	}

	status := sErr.Status
	message := sErr.Message
	if sErr.Code == errors.ErrFetchFailed || sErr.Code == errors.ErrNotFound {
		status = http.StatusNotFound
		message = "The page you are looking for does not exist."
	}

	if status >= 500 {
		r.log.Error("request failed", zap.String("code", string(sErr.Code)), zap.Error(err))
	}

	body := fmt.Sprintf("<h1>%d</h1>\n<p>%s</p>\n",
		status, template.HTMLEscapeString(message))
	r.renderPage(w, status, PageData{
		Title:   fmt.Sprintf("Error %d", status),
		Content: template.HTML(body),
	})
}

// formatDate formats a Unix timestamp as "January 2, 2006".
func formatDate(unix int64) string {
	return time.Unix(unix, 0).Format("January 2, 2006")
}
