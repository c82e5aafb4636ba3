package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/dkarlsen/marksite/internal/cache"
	"github.com/dkarlsen/marksite/internal/config"
	"github.com/dkarlsen/marksite/internal/errors"
	"github.com/dkarlsen/marksite/internal/render"
)

// RenderedKeyPrefix namespaces rendered-HTML cache entries apart from raw
// text entries for the same URL, so the two expire independently.
const RenderedKeyPrefix = "RENDERED:"

// rawContentHost serves raw file content for repository coordinates.
const rawContentHost = "https://raw.githubusercontent.com"

// Options holds the fetcher's HTTP and mode policy.
type Options struct {
	Timeout      time.Duration
	MaxRedirects int
	UserAgent    string

	// RawBaseURL overrides the raw-content host, e.g. for a mirror.
	// Empty means raw.githubusercontent.com.
	RawBaseURL string

	// Debug disables rendered-cache persistence and redirects blog content
	// fetches to LocalDir.
	Debug    bool
	LocalDir string

	// Blog locates the article source repository.
	Blog config.BlogConfig
}

// Fetcher retrieves remote Markdown and rendered HTML, funneling results
// through the shared bounded cache. It holds no per-request state of its
// own; the cache is the only mutable resource it touches.
type Fetcher struct {
	client        *http.Client
	cache         *cache.Cache
	renderer      *render.Renderer
	log           *zap.Logger
	opts          Options
	blogRawPrefix string
}

// New creates a Fetcher. The HTTP client enforces the fixed request timeout,
// bounded redirect following, and keep-alive connections.
func New(opts Options, c *cache.Cache, r *render.Renderer, log *zap.Logger) *Fetcher {
	maxRedirects := opts.MaxRedirects
	client := &http.Client{
		Timeout: opts.Timeout,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= maxRedirects {
				return fmt.Errorf("stopped after %d redirects", maxRedirects)
			}
			return nil
		},
		Transport: &http.Transport{
			MaxIdleConns:        16,
			MaxIdleConnsPerHost: 8,
			IdleConnTimeout:     90 * time.Second,
		},
	}
	if opts.RawBaseURL == "" {
		opts.RawBaseURL = rawContentHost
	}
	return &Fetcher{
		client:        client,
		cache:         c,
		renderer:      r,
		log:           log,
		opts:          opts,
		blogRawPrefix: blogRawPrefix(opts.RawBaseURL, opts.Blog),
	}
}

// BlogRawURL resolves an article slug to its raw-content URL.
func (f *Fetcher) BlogRawURL(slug string) string {
	return f.blogRawPrefix + slug + ".md"
}

// PageRawURL resolves a page descriptor and an optional path override to a
// raw-content URL. An empty path falls back to the descriptor's path, then
// to README.md.
func (f *Fetcher) PageRawURL(p config.Page, path string) string {
	if path == "" {
		path = p.Path
	}
	if path == "" {
		path = "README.md"
	}
	branch := p.Branch
	if branch == "" {
		branch = "main"
	}
	return fmt.Sprintf("%s/%s/%s/%s/%s", f.opts.RawBaseURL, p.Org, p.Repo, branch, path)
}

// FetchRaw returns the raw text at url, serving from the cache when fresh.
// Any network error or non-2xx status is a FETCH_FAILED error; failures are
// surfaced immediately, never retried, and never cached. In debug mode the
// cache is skipped in both directions and blog URLs read from LocalDir.
func (f *Fetcher) FetchRaw(ctx context.Context, url string) (string, error) {
	if f.opts.Debug && strings.HasPrefix(url, f.blogRawPrefix) {
		return f.readLocal(url)
	}

	if !f.opts.Debug {
		if v, ok := f.cache.Get(url); ok {
			return v, nil
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", errors.NewFetchFailed(url, err)
	}
	if f.opts.UserAgent != "" {
		req.Header.Set("User-Agent", f.opts.UserAgent)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		f.log.Warn("fetch failed", zap.String("url", url), zap.Error(err))
		return "", errors.NewFetchFailed(url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		f.log.Warn("fetch got non-success status",
			zap.String("url", url), zap.Int("status", resp.StatusCode))
		return "", errors.NewFetchStatus(url, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", errors.NewFetchFailed(url, err)
	}

	text := string(body)
	if !f.opts.Debug {
		f.cache.Set(url, text)
	}
	f.log.Debug("fetched", zap.String("url", url), zap.Int("bytes", len(text)))
	return text, nil
}

// FetchRendered returns the rendered HTML for the Markdown at url, cached
// under the rendered-key namespace. In debug mode the cache is skipped in
// both directions so local edits always re-render.
func (f *Fetcher) FetchRendered(ctx context.Context, url string) (string, error) {
	key := RenderedKeyPrefix + url
	if !f.opts.Debug {
		if v, ok := f.cache.Get(key); ok {
			return v, nil
		}
	}

	raw, err := f.FetchRaw(ctx, url)
	if err != nil {
		return "", err
	}

	html := f.renderer.Render(raw)
	if !f.opts.Debug {
		f.cache.Set(key, html)
	}
	return html, nil
}

// readLocal serves a blog URL from the local content directory, bypassing
// the cache entirely so authors see edits immediately.
func (f *Fetcher) readLocal(url string) (string, error) {
	rel := strings.TrimPrefix(url, f.blogRawPrefix)
	path := filepath.Join(f.opts.LocalDir, filepath.FromSlash(rel))

	data, err := os.ReadFile(path)
	if err != nil {
		f.log.Warn("local content read failed", zap.String("path", path), zap.Error(err))
		return "", errors.NewFetchFailed(url, err)
	}
	return string(data), nil
}

func blogRawPrefix(baseURL string, b config.BlogConfig) string {
	branch := b.Branch
	if branch == "" {
		branch = "main"
	}
	prefix := fmt.Sprintf("%s/%s/%s/%s/", baseURL, b.Org, b.Repo, branch)
	if b.Dir != "" {
		prefix += strings.Trim(b.Dir, "/") + "/"
	}
	return prefix
}
