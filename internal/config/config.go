package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/goccy/go-yaml"
)

// Sentinel errors for config operations.
var (
	ErrConfigParse    = errors.New("failed to parse config")
	ErrConfigInvalid  = errors.New("invalid config")
	ErrConfigNotFound = errors.New("config file not found")
)

// Config holds the whole site configuration.
type Config struct {
	Site    SiteMeta          `yaml:"site"`
	Server  ServerConfig      `yaml:"server"`
	Cache   CacheConfig       `yaml:"cache"`
	Fetch   FetchConfig       `yaml:"fetch"`
	Blog    BlogConfig        `yaml:"blog"`
	Pages   map[string]Page   `yaml:"pages"`
	Authors map[string]Author `yaml:"authors"`
}

// SiteMeta holds display metadata used by page titles and the feed.
type SiteMeta struct {
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
	BaseURL     string `yaml:"base_url"`
}

// ServerConfig holds HTTP server and mode settings.
type ServerConfig struct {
	Bind string `yaml:"bind"`
	Port int    `yaml:"port"`

	// Debug enables local authoring mode: rendered-HTML cache entries are
	// never persisted and blog fetches read from ContentDir instead of the
	// network.
	Debug bool `yaml:"debug"`

	// ContentDir is the local blog content directory used in debug mode.
	ContentDir string `yaml:"content_dir"`
}

// CacheConfig bounds the shared content cache.
type CacheConfig struct {
	MaxItems   int   `yaml:"max_items"`
	MaxBytes   int64 `yaml:"max_bytes"`
	TTLSeconds int   `yaml:"ttl_seconds"`
}

// TTL returns the default entry TTL as a duration.
func (c CacheConfig) TTL() time.Duration {
	return time.Duration(c.TTLSeconds) * time.Second
}

// FetchConfig holds upstream HTTP policy.
type FetchConfig struct {
	TimeoutSeconds int    `yaml:"timeout_seconds"`
	MaxRedirects   int    `yaml:"max_redirects"`
	UserAgent      string `yaml:"user_agent"`
}

// Timeout returns the request timeout as a duration.
func (c FetchConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// BlogConfig identifies the blog content repository and the known articles.
type BlogConfig struct {
	Org    string `yaml:"org"`
	Repo   string `yaml:"repo"`
	Branch string `yaml:"branch"`

	// Dir is the path within the repository holding article sources.
	Dir string `yaml:"dir"`

	// Slugs lists known articles, most-recent-first.
	Slugs []string `yaml:"slugs"`

	// PreloadConcurrency bounds in-flight fetches during startup preload.
	PreloadConcurrency int `yaml:"preload_concurrency"`
}

// Page identifies a remote repository coordinate the fetcher resolves to a
// raw-content URL. Read-only input to the pipeline.
type Page struct {
	Org    string `yaml:"org"`
	Repo   string `yaml:"repo"`
	Branch string `yaml:"branch"`
	Path   string `yaml:"path"` // optional; empty means README.md
}

// Author holds display metadata for an author key.
type Author struct {
	Name  string `yaml:"name"`
	URL   string `yaml:"url"`
	Email string `yaml:"email"`
}

// DefaultConfig returns the default configuration. Pages, authors, and blog
// slugs have no defaults; they come from the config file.
func DefaultConfig() *Config {
	return &Config{
		Site: SiteMeta{
			Title: "marksite",
		},
		Server: ServerConfig{
			Bind:       "127.0.0.1",
			Port:       3000,
			ContentDir: "content",
		},
		Cache: CacheConfig{
			MaxItems:   512,
			MaxBytes:   32 << 20, // 32 MiB
			TTLSeconds: 86400,
		},
		Fetch: FetchConfig{
			TimeoutSeconds: 30,
			MaxRedirects:   5,
			UserAgent:      "marksite/1.0",
		},
		Blog: BlogConfig{
			Branch:             "main",
			PreloadConcurrency: 8,
		},
	}
}

// Load reads configuration from path and merges it over the defaults.
// A missing file is an error: the site cannot run without its page map.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, path)
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	overlay := &Config{}
	if err := yaml.Unmarshal(data, overlay); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfigParse, err)
	}

	cfg := Merge(DefaultConfig(), overlay)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Merge combines base and overlay configs. Overlay values win when non-zero;
// maps and slices replace wholesale when present in the overlay.
func Merge(base, overlay *Config) *Config {
	result := &Config{}

	result.Site = base.Site
	if overlay.Site.Title != "" {
		result.Site.Title = overlay.Site.Title
	}
	if overlay.Site.Description != "" {
		result.Site.Description = overlay.Site.Description
	}
	if overlay.Site.BaseURL != "" {
		result.Site.BaseURL = overlay.Site.BaseURL
	}

	result.Server = base.Server
	if overlay.Server.Bind != "" {
		result.Server.Bind = overlay.Server.Bind
	}
	if overlay.Server.Port != 0 {
		result.Server.Port = overlay.Server.Port
	}
	if overlay.Server.ContentDir != "" {
		result.Server.ContentDir = overlay.Server.ContentDir
	}
	result.Server.Debug = base.Server.Debug || overlay.Server.Debug

	result.Cache = base.Cache
	if overlay.Cache.MaxItems != 0 {
		result.Cache.MaxItems = overlay.Cache.MaxItems
	}
	if overlay.Cache.MaxBytes != 0 {
		result.Cache.MaxBytes = overlay.Cache.MaxBytes
	}
	if overlay.Cache.TTLSeconds != 0 {
		result.Cache.TTLSeconds = overlay.Cache.TTLSeconds
	}

	result.Fetch = base.Fetch
	if overlay.Fetch.TimeoutSeconds != 0 {
		result.Fetch.TimeoutSeconds = overlay.Fetch.TimeoutSeconds
	}
	if overlay.Fetch.MaxRedirects != 0 {
		result.Fetch.MaxRedirects = overlay.Fetch.MaxRedirects
	}
	if overlay.Fetch.UserAgent != "" {
		result.Fetch.UserAgent = overlay.Fetch.UserAgent
	}

	result.Blog = base.Blog
	if overlay.Blog.Org != "" {
		result.Blog.Org = overlay.Blog.Org
	}
	if overlay.Blog.Repo != "" {
		result.Blog.Repo = overlay.Blog.Repo
	}
	if overlay.Blog.Branch != "" {
		result.Blog.Branch = overlay.Blog.Branch
	}
	if overlay.Blog.Dir != "" {
		result.Blog.Dir = overlay.Blog.Dir
	}
	if len(overlay.Blog.Slugs) > 0 {
		result.Blog.Slugs = overlay.Blog.Slugs
	}
	if overlay.Blog.PreloadConcurrency != 0 {
		result.Blog.PreloadConcurrency = overlay.Blog.PreloadConcurrency
	}

	result.Pages = base.Pages
	if len(overlay.Pages) > 0 {
		result.Pages = overlay.Pages
	}
	result.Authors = base.Authors
	if len(overlay.Authors) > 0 {
		result.Authors = overlay.Authors
	}

	return result
}

// Validate checks cross-field consistency: blog coordinates when slugs are
// configured, and page coordinates for every page entry.
func (c *Config) Validate() error {
	if len(c.Blog.Slugs) > 0 {
		if c.Blog.Org == "" || c.Blog.Repo == "" {
			return fmt.Errorf("%w: blog slugs configured without blog org/repo", ErrConfigInvalid)
		}
	}
	for name, p := range c.Pages {
		if p.Org == "" || p.Repo == "" {
			return fmt.Errorf("%w: page %q missing org/repo", ErrConfigInvalid, name)
		}
	}
	if c.Cache.MaxItems < 1 || c.Cache.MaxBytes < 1 {
		return fmt.Errorf("%w: cache budgets must be positive", ErrConfigInvalid)
	}
	return nil
}
