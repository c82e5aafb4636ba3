package preload

import (
	"context"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/dkarlsen/marksite/internal/article"
	"github.com/dkarlsen/marksite/internal/errors"
	"github.com/dkarlsen/marksite/internal/fetch"
	"github.com/dkarlsen/marksite/internal/frontmatter"
)

// DefaultConcurrency bounds in-flight fetches when the config does not.
const DefaultConcurrency = 8

// Preload fetches and parses every configured article before the service
// accepts traffic, with at most limit fetches in flight. It fails fast: the
// first fetch or front-matter failure cancels the remaining work and the
// whole preload errors, so the caller never serves a partial index.
func Preload(ctx context.Context, f *fetch.Fetcher, slugs []string, limit int, log *zap.Logger) (*article.Index, error) {
	if limit < 1 {
		limit = DefaultConcurrency
	}

	idx := article.NewIndex(slugs)
	var mu sync.Mutex

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	for _, slug := range slugs {
		g.Go(func() error {
			raw, err := f.FetchRaw(ctx, f.BlogRawURL(slug))
			if err != nil {
				return errors.NewPreloadFailed(slug, err)
			}

			a, err := frontmatter.ParseArticle(slug, raw)
			if err != nil {
				return errors.NewPreloadFailed(slug, err)
			}

			mu.Lock()
			idx.Add(a)
			mu.Unlock()

			log.Debug("preloaded article",
				zap.String("slug", slug), zap.Int("words", a.Words))
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	log.Info("article index preloaded", zap.Int("articles", idx.Len()))
	return idx, nil
}
