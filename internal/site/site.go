package site

import (
	"context"

	"go.uber.org/zap"

	"github.com/dkarlsen/marksite/internal/article"
	"github.com/dkarlsen/marksite/internal/cache"
	"github.com/dkarlsen/marksite/internal/config"
	"github.com/dkarlsen/marksite/internal/fetch"
	"github.com/dkarlsen/marksite/internal/preload"
	"github.com/dkarlsen/marksite/internal/render"
)

// Site is the process-wide context constructed once at startup and injected
// into every request handler. Teardown is process exit; nothing here holds
// state that outlives the process.
type Site struct {
	Config   *config.Config
	Log      *zap.Logger
	Cache    *cache.Cache
	Renderer *render.Renderer
	Fetcher  *fetch.Fetcher
	Articles *article.Index
}

// New wires the pipeline in initialization order: cache, renderer, fetcher,
// then the article preload. A preload failure aborts startup; the service
// must not serve with a partial article index.
func New(ctx context.Context, cfg *config.Config, log *zap.Logger) (*Site, error) {
	c := cache.New(cfg.Cache.MaxItems, cfg.Cache.MaxBytes, cfg.Cache.TTL())
	r := render.New()

	f := fetch.New(fetch.Options{
		Timeout:      cfg.Fetch.Timeout(),
		MaxRedirects: cfg.Fetch.MaxRedirects,
		UserAgent:    cfg.Fetch.UserAgent,
		Debug:        cfg.Server.Debug,
		LocalDir:     cfg.Server.ContentDir,
		Blog:         cfg.Blog,
	}, c, r, log)

	idx, err := preload.Preload(ctx, f, cfg.Blog.Slugs, cfg.Blog.PreloadConcurrency, log)
	if err != nil {
		return nil, err
	}

	return &Site{
		Config:   cfg,
		Log:      log,
		Cache:    c,
		Renderer: r,
		Fetcher:  f,
		Articles: idx,
	}, nil
}

// AuthorName resolves an author key to its display name, falling back to
// the key itself when unconfigured.
func (s *Site) AuthorName(key string) string {
	if a, ok := s.Config.Authors[key]; ok && a.Name != "" {
		return a.Name
	}
	return key
}
