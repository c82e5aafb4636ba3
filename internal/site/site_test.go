package site

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap"

	"github.com/dkarlsen/marksite/internal/config"
	"github.com/dkarlsen/marksite/internal/errors"
)

func TestNew_WiresPipeline(t *testing.T) {
	cfg := config.DefaultConfig()

	s, err := New(context.Background(), cfg, zap.NewNop())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	if s.Cache == nil || s.Renderer == nil || s.Fetcher == nil || s.Articles == nil {
		t.Error("all pipeline components should be constructed")
	}
	if s.Articles.Len() != 0 {
		t.Errorf("no slugs configured, index should be empty, got %d", s.Articles.Len())
	}
}

func TestNew_PreloadFailureAbortsStartup(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Server.Debug = true
	cfg.Server.ContentDir = t.TempDir() // no article files
	cfg.Blog = config.BlogConfig{Org: "example", Repo: "writing", Slugs: []string{"ghost"}}

	_, err := New(context.Background(), cfg, zap.NewNop())
	if !errors.Is(err, errors.ErrPreloadFailed) {
		t.Errorf("err = %v, startup must abort on preload failure", err)
	}
}

func TestNew_DebugPreloadFromLocalContent(t *testing.T) {
	dir := t.TempDir()
	src := `<!-- Title: Local -->
<!-- Summary: S -->
<!-- Author: a -->
<!-- Date: 2024/02/02 -->
<!-- Tags: go -->

Body.
`
	if err := os.WriteFile(filepath.Join(dir, "local.md"), []byte(src), 0600); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	cfg := config.DefaultConfig()
	cfg.Server.Debug = true
	cfg.Server.ContentDir = dir
	cfg.Blog = config.BlogConfig{Org: "example", Repo: "writing", Slugs: []string{"local"}}

	s, err := New(context.Background(), cfg, zap.NewNop())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if a := s.Articles.Get("local"); a == nil || a.Title != "Local" {
		t.Errorf("article = %+v, want preloaded local article", a)
	}
}

func TestAuthorName(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Authors = map[string]config.Author{"a": {Name: "Avery Quinn"}}
	s := &Site{Config: cfg}

	if got := s.AuthorName("a"); got != "Avery Quinn" {
		t.Errorf("AuthorName(a) = %q", got)
	}
	if got := s.AuthorName("unknown"); got != "unknown" {
		t.Errorf("AuthorName(unknown) = %q, want the key itself", got)
	}
}
