package web

import (
	"net/http"
	"time"

	"github.com/gorilla/feeds"
	"go.uber.org/zap"
)

// HandleFeed handles GET /feed — an RSS feed of the article index.
func (h *Handlers) HandleFeed(w http.ResponseWriter, r *http.Request) {
	cfg := h.site.Config

	baseURL := cfg.Site.BaseURL
	if baseURL == "" {
		baseURL = "http://" + r.Host
	}

	feed := &feeds.Feed{
		Title:       cfg.Site.Title,
		Link:        &feeds.Link{Href: baseURL + "/feed"},
		Description: cfg.Site.Description,
		Created:     time.Now(),
	}

	for _, a := range h.site.Articles.All() {
		feed.Items = append(feed.Items, &feeds.Item{
			Id:          baseURL + "/blog/" + a.Slug,
			Title:       a.Title,
			Link:        &feeds.Link{Href: baseURL + "/blog/" + a.Slug},
			Description: a.Summary,
			Author:      &feeds.Author{Name: h.site.AuthorName(a.Author)},
			Created:     time.Unix(a.Date, 0),
		})
	}

	w.Header().Set("Content-Type", "application/rss+xml; charset=utf-8")
	if err := feed.WriteRss(w); err != nil {
		h.site.Log.Error("feed serialization failed", zap.Error(err))
	}
}
