package frontmatter

import (
	"regexp"
	"strings"
	"time"

	"github.com/dkarlsen/marksite/internal/article"
	"github.com/dkarlsen/marksite/internal/errors"
)

// Meta holds the raw front matter key/value pairs of a blog source. Keys are
// lowercased; values are trimmed strings.
type Meta map[string]string

// requiredKeys must all be present for a well-formed blog source. A missing
// key fails the article during preload rather than defaulting silently.
var requiredKeys = []string{"title", "summary", "author", "date", "tags"}

// metaPattern matches comment metadata lines of the exact shape
// <!-- Key: Value --> anywhere in the document.
var metaPattern = regexp.MustCompile(`<!--\s*([A-Za-z][A-Za-z0-9_-]*)\s*:\s*(.*?)\s*-->`)

// dateLayout is the source date format, parsed at midnight local time.
const dateLayout = "2006/01/02"

// tagSeparator splits the tags value on commas with optional following
// whitespace, preserving order.
var tagSeparator = regexp.MustCompile(`,\s*`)

// Scan extracts all comment metadata pairs from markdown without validating
// required keys. Later occurrences of a key overwrite earlier ones.
func Scan(markdown string) Meta {
	meta := make(Meta)
	for _, m := range metaPattern.FindAllStringSubmatch(markdown, -1) {
		meta[strings.ToLower(m[1])] = m[2]
	}
	return meta
}

// Parse extracts front matter and validates that every required key is
// present. The error names all missing keys at once.
func Parse(slug, markdown string) (Meta, error) {
	meta := Scan(markdown)

	var missing []string
	for _, key := range requiredKeys {
		if meta[key] == "" {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		return nil, errors.NewInvalidFrontMatter(slug, missing)
	}
	return meta, nil
}

// ParseArticle builds an Article from a blog source: validated front matter
// plus the derived date, tags, and word count fields.
func ParseArticle(slug, markdown string) (*article.Article, error) {
	meta, err := Parse(slug, markdown)
	if err != nil {
		return nil, err
	}

	date, err := ParseDate(meta["date"])
	if err != nil {
		return nil, errors.NewInvalidDate(slug, meta["date"], err)
	}

	return &article.Article{
		Slug:    slug,
		Title:   meta["title"],
		Summary: meta["summary"],
		Author:  meta["author"],
		Date:    date,
		Tags:    SplitTags(meta["tags"]),
		Words:   WordCount(markdown),
	}, nil
}

// ParseDate converts a YYYY/MM/DD source string to seconds since epoch at
// midnight local time.
func ParseDate(value string) (int64, error) {
	t, err := time.ParseInLocation(dateLayout, strings.TrimSpace(value), time.Local)
	if err != nil {
		return 0, err
	}
	return t.Unix(), nil
}

// SplitTags splits a comma-separated tags value into an ordered list.
func SplitTags(value string) []string {
	parts := tagSeparator.Split(value, -1)
	tags := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			tags = append(tags, p)
		}
	}
	return tags
}

var (
	fencedBlockPattern = regexp.MustCompile("(?s)```.*?```")
	htmlTagPattern     = regexp.MustCompile(`<[^>]*>`)
	imagePattern       = regexp.MustCompile(`!\[([^\]]*)\]\([^)]*\)`)
	linkPattern        = regexp.MustCompile(`\[([^\]]*)\]\([^)]*\)`)
)

// WordCount counts whitespace-delimited word tokens in a markdown body,
// ignoring fenced code blocks, HTML tags, and link URLs. Link and image
// syntax collapses to its text.
func WordCount(markdown string) int {
	s := fencedBlockPattern.ReplaceAllString(markdown, " ")
	s = htmlTagPattern.ReplaceAllString(s, " ")
	s = imagePattern.ReplaceAllString(s, "$1")
	s = linkPattern.ReplaceAllString(s, "$1")
	return len(strings.Fields(s))
}
