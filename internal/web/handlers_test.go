package web

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/dkarlsen/marksite/internal/article"
	"github.com/dkarlsen/marksite/internal/cache"
	"github.com/dkarlsen/marksite/internal/config"
	"github.com/dkarlsen/marksite/internal/fetch"
	"github.com/dkarlsen/marksite/internal/render"
	"github.com/dkarlsen/marksite/internal/site"
)

// newTestSite assembles a Site against an upstream stub, with one preloaded
// article under the slug "first-post".
func newTestSite(t *testing.T, upstream http.HandlerFunc) (*site.Site, *httptest.Server) {
	t.Helper()

	srv := httptest.NewServer(upstream)
	t.Cleanup(srv.Close)

	cfg := config.DefaultConfig()
	cfg.Site.Title = "Test Site"
	cfg.Blog = config.BlogConfig{Org: "example", Repo: "writing", Branch: "main", Dir: "posts", Slugs: []string{"first-post"}}
	cfg.Pages = map[string]config.Page{
		"home":  {Org: "example", Repo: "example"},
		"tools": {Org: "example", Repo: "tools", Path: "docs/index.md"},
	}
	cfg.Authors = map[string]config.Author{"a": {Name: "Avery Quinn"}}

	c := cache.New(64, 1<<20, time.Hour)
	rd := render.New()
	f := fetch.New(fetch.Options{
		Timeout:      5 * time.Second,
		MaxRedirects: 5,
		RawBaseURL:   srv.URL,
		Blog:         cfg.Blog,
	}, c, rd, zap.NewNop())

	idx := article.NewIndex(cfg.Blog.Slugs)
	idx.Add(&article.Article{
		Slug:    "first-post",
		Title:   "First Post",
		Summary: "The very first post",
		Author:  "a",
		Date:    time.Date(2024, 3, 15, 0, 0, 0, 0, time.Local).Unix(),
		Tags:    []string{"go"},
		Words:   42,
	})

	return &site.Site{
		Config:   cfg,
		Log:      zap.NewNop(),
		Cache:    c,
		Renderer: rd,
		Fetcher:  f,
		Articles: idx,
	}, srv
}

func get(t *testing.T, s *site.Site, path string) *httptest.ResponseRecorder {
	t.Helper()
	srv := NewServer(s)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	srv.Handler.ServeHTTP(rec, req)
	return rec
}

func TestHandleArticle_OK(t *testing.T) {
	s, _ := newTestSite(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = fmt.Fprint(w, "# First Post\n\nHello readers.\n")
	})

	rec := get(t, s, "/blog/first-post")

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "Hello readers.")
	assert.Contains(t, body, "First Post")
	assert.Contains(t, body, "Avery Quinn")
	assert.Contains(t, body, "42 words")
}

func TestHandleArticle_UnknownSlug(t *testing.T) {
	s, _ := newTestSite(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("unknown slugs must not reach upstream")
	})

	rec := get(t, s, "/blog/nope")
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandleArticle_UpstreamFailureIsNotFound(t *testing.T) {
	s, _ := newTestSite(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream down", http.StatusBadGateway)
	})

	rec := get(t, s, "/blog/first-post")

	require.Equal(t, http.StatusNotFound, rec.Code)
	// A failed fetch must leave no cache entry behind.
	url := s.Fetcher.BlogRawURL("first-post")
	assert.False(t, s.Cache.Has(url), "raw key should not be cached")
	assert.False(t, s.Cache.Has(fetch.RenderedKeyPrefix+url), "rendered key should not be cached")
}

func TestHandleLatest_Redirects(t *testing.T) {
	s, _ := newTestSite(t, func(w http.ResponseWriter, r *http.Request) {})

	rec := get(t, s, "/blog/latest")

	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/blog/first-post", rec.Header().Get("Location"))
}

func TestHandleHome_RendersConfiguredPage(t *testing.T) {
	s, _ := newTestSite(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/example/example/main/README.md", r.URL.Path)
		_, _ = fmt.Fprint(w, "# Welcome\n")
	})

	rec := get(t, s, "/")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Welcome")
}

func TestHandleDoc_RootAndNested(t *testing.T) {
	var paths []string
	s, _ := newTestSite(t, func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.Path)
		_, _ = fmt.Fprint(w, "doc body\n")
	})

	rec := get(t, s, "/docs/tools")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = get(t, s, "/docs/tools/guide/setup.md")
	require.Equal(t, http.StatusOK, rec.Code)

	require.Len(t, paths, 2)
	assert.Equal(t, "/example/tools/main/docs/index.md", paths[0])
	assert.Equal(t, "/example/tools/main/guide/setup.md", paths[1])
}

func TestHandleDoc_UnknownPage(t *testing.T) {
	s, _ := newTestSite(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("unknown pages must not reach upstream")
	})

	rec := get(t, s, "/docs/ghost")
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandleFeed(t *testing.T) {
	s, _ := newTestSite(t, func(w http.ResponseWriter, r *http.Request) {})

	rec := get(t, s, "/feed")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/rss+xml; charset=utf-8", rec.Header().Get("Content-Type"))
	body := rec.Body.String()
	assert.Contains(t, body, "<rss")
	assert.Contains(t, body, "First Post")
	assert.Contains(t, body, "The very first post")
	assert.Contains(t, body, "/blog/first-post")
}

func TestMiddleware_HeadersAndRequestID(t *testing.T) {
	s, _ := newTestSite(t, func(w http.ResponseWriter, r *http.Request) {})

	rec := get(t, s, "/feed")

	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestHandleArticle_SecondRequestServedFromCache(t *testing.T) {
	var hits int
	s, _ := newTestSite(t, func(w http.ResponseWriter, r *http.Request) {
		hits++
		_, _ = fmt.Fprint(w, "# Cached\n")
	})

	rec := get(t, s, "/blog/first-post")
	require.Equal(t, http.StatusOK, rec.Code)
	rec = get(t, s, "/blog/first-post")
	require.Equal(t, http.StatusOK, rec.Code)

	assert.Equal(t, 1, hits, "second request should be served from the rendered cache")
	assert.True(t, strings.Contains(rec.Body.String(), "Cached"))
}
