package web

import (
	"fmt"
	"html/template"
	"net/http"

	"github.com/dkarlsen/marksite/internal/errors"
	"github.com/dkarlsen/marksite/internal/site"
)

// Handlers contains the HTTP route handlers. Each resolves a request to a
// page, article, or document identifier and runs it through the
// fetch-render-cache pipeline.
type Handlers struct {
	site     *site.Site
	renderer *Renderer
}

// HandleHome handles GET / — the configured "home" page descriptor.
func (h *Handlers) HandleHome(w http.ResponseWriter, r *http.Request) {
	page, ok := h.site.Config.Pages["home"]
	if !ok {
		h.renderer.renderError(w, errors.NewNotFound("home"))
		return
	}

	url := h.site.Fetcher.PageRawURL(page, "")
	html, err := h.site.Fetcher.FetchRendered(r.Context(), url)
	if err != nil {
		h.renderer.renderError(w, err)
		return
	}

	h.renderer.renderPage(w, http.StatusOK, PageData{
		Title:   h.site.Config.Site.Title,
		Content: template.HTML(html),
	})
}

// HandleArticle handles GET /blog/{slug} — a blog article by slug.
func (h *Handlers) HandleArticle(w http.ResponseWriter, r *http.Request) {
	slug := r.PathValue("slug")

	a := h.site.Articles.Get(slug)
	if a == nil {
		h.renderer.renderError(w, errors.NewNotFound("blog/"+slug))
		return
	}

	url := h.site.Fetcher.BlogRawURL(slug)
	html, err := h.site.Fetcher.FetchRendered(r.Context(), url)
	if err != nil {
		h.renderer.renderError(w, err)
		return
	}

	h.renderer.renderPage(w, http.StatusOK, PageData{
		Title:      fmt.Sprintf("%s — %s", a.Title, h.site.Config.Site.Title),
		Content:    template.HTML(html),
		Article:    a,
		AuthorName: h.site.AuthorName(a.Author),
	})
}

// HandleLatest handles GET /blog/latest — redirects to the most recent
// article's canonical URL.
func (h *Handlers) HandleLatest(w http.ResponseWriter, r *http.Request) {
	a := h.site.Articles.Latest()
	if a == nil {
		h.renderer.renderError(w, errors.NewNotFound("blog/latest"))
		return
	}
	http.Redirect(w, r, "/blog/"+a.Slug, http.StatusFound)
}

// HandleDoc handles GET /docs/{page} and GET /docs/{page}/{path...} — a
// repository document, root or nested.
func (h *Handlers) HandleDoc(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("page")
	path := r.PathValue("path")

	page, ok := h.site.Config.Pages[name]
	if !ok {
		h.renderer.renderError(w, errors.NewNotFound("docs/"+name))
		return
	}

	url := h.site.Fetcher.PageRawURL(page, path)
	html, err := h.site.Fetcher.FetchRendered(r.Context(), url)
	if err != nil {
		h.renderer.renderError(w, err)
		return
	}

	title := h.site.Config.Site.Title
	h.renderer.renderPage(w, http.StatusOK, PageData{
		Title:   fmt.Sprintf("%s — %s", name, title),
		Content: template.HTML(html),
	})
}
