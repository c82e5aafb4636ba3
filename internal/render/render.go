package render

import (
	"bytes"
	"html/template"

	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
)

// Renderer converts Markdown text to HTML fragments. It is a pure function
// of its input plus a fixed rule set: GFM tables, auto heading IDs, fenced
// code highlighting, and admonition blockquotes. Hard wraps and typographic
// substitution stay off. Raw HTML passes through so comment-style front
// matter survives into the page source.
type Renderer struct {
	md goldmark.Markdown
}

// New creates a Renderer with the site's rule configuration.
func New() *Renderer {
	md := goldmark.New(
		goldmark.WithExtensions(
			extension.GFM, // tables, strikethrough, autolinks, task lists
			highlighting.NewHighlighting(
				highlighting.WithStyle("github"),
				highlighting.WithFormatOptions(
					chromahtml.WithClasses(true),
				),
			),
			&Admonitions{},
		),
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(),
		),
		goldmark.WithRendererOptions(
			html.WithUnsafe(),
		),
	)
	return &Renderer{md: md}
}

// Render converts Markdown to an HTML fragment. It never fails: if goldmark
// rejects the input, the escaped source is returned as best-effort output.
func (r *Renderer) Render(markdown string) string {
	var buf bytes.Buffer
	if err := r.md.Convert([]byte(markdown), &buf); err != nil {
		return template.HTMLEscapeString(markdown)
	}
	return buf.String()
}
