package render

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
)

// admonitionIcons maps alert keywords to their icon class suffix.
var admonitionIcons = map[string]string{
	"note":      "info",
	"tip":       "lightbulb",
	"important": "alert",
	"warning":   "warning",
	"caution":   "stop",
}

// admonitionMarker matches the leading alert marker on the first line of a
// blockquote, including trailing whitespace so the stripped body starts at
// its first real character.
var admonitionMarker = regexp.MustCompile(`^\[!([A-Za-z]+)\][ \t]*`)

// An Admonition is a blockquote rewritten into a styled callout block.
type Admonition struct {
	ast.BaseBlock

	// Name is the lowercased alert keyword ("note", "warning", ...).
	Name string

	// Title is the capitalized keyword shown in the block header.
	Title string
}

// KindAdmonition is the node kind of Admonition nodes.
var KindAdmonition = ast.NewNodeKind("Admonition")

// Kind implements ast.Node.
func (n *Admonition) Kind() ast.NodeKind {
	return KindAdmonition
}

// Dump implements ast.Node.
func (n *Admonition) Dump(source []byte, level int) {
	ast.DumpHelper(n, source, level, map[string]string{"Name": n.Name}, nil)
}

// Admonitions is a goldmark extension that rewrites `> [!KEYWORD]`
// blockquotes into admonition blocks. Blockquotes without a recognized
// marker render unchanged.
type Admonitions struct{}

// Extend implements goldmark.Extender.
func (e *Admonitions) Extend(m goldmark.Markdown) {
	m.Parser().AddOptions(
		parser.WithASTTransformers(
			util.Prioritized(&admonitionTransformer{}, 500),
		),
	)
	m.Renderer().AddOptions(
		renderer.WithNodeRenderers(
			util.Prioritized(&admonitionHTMLRenderer{}, 500),
		),
	)
}

type admonitionTransformer struct{}

// Transform replaces marked blockquotes after the full parse, once inline
// nodes exist, so the marker can be stripped from the rendered body.
func (t *admonitionTransformer) Transform(doc *ast.Document, reader text.Reader, _ parser.Context) {
	source := reader.Source()

	var quotes []*ast.Blockquote
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if entering {
			if bq, ok := n.(*ast.Blockquote); ok {
				quotes = append(quotes, bq)
			}
		}
		return ast.WalkContinue, nil
	})

	for _, bq := range quotes {
		rewriteAdmonition(bq, source)
	}
}

func rewriteAdmonition(bq *ast.Blockquote, source []byte) {
	para, ok := bq.FirstChild().(*ast.Paragraph)
	if !ok || para.Lines().Len() == 0 {
		return
	}

	first := para.Lines().At(0)
	m := admonitionMarker.FindSubmatch(first.Value(source))
	if m == nil {
		return
	}
	keyword := strings.ToLower(string(m[1]))
	if _, known := admonitionIcons[keyword]; !known {
		return
	}

	stripMarker(para, first.Start+len(m[0]))
	if para.ChildCount() == 0 {
		bq.RemoveChild(bq, para)
	}

	adm := &Admonition{
		Name:  keyword,
		Title: strings.ToUpper(keyword[:1]) + keyword[1:],
	}
	for child := bq.FirstChild(); child != nil; {
		next := child.NextSibling()
		adm.AppendChild(adm, child)
		child = next
	}

	parent := bq.Parent()
	parent.ReplaceChild(parent, bq, adm)
}

// stripMarker removes the marker bytes from the paragraph's leading inline
// text nodes. The marker may span several Text nodes (brackets are parsed
// separately), so nodes fully inside it are dropped and a straddling node is
// trimmed to start at markerEnd.
func stripMarker(para *ast.Paragraph, markerEnd int) {
	for child := para.FirstChild(); child != nil; {
		next := child.NextSibling()
		t, ok := child.(*ast.Text)
		if !ok {
			return
		}
		switch {
		case t.Segment.Stop <= markerEnd:
			para.RemoveChild(para, child)
		case t.Segment.Start < markerEnd:
			t.Segment = t.Segment.WithStart(markerEnd)
			return
		default:
			return
		}
		child = next
	}
}

type admonitionHTMLRenderer struct{}

// RegisterFuncs implements renderer.NodeRenderer.
func (r *admonitionHTMLRenderer) RegisterFuncs(reg renderer.NodeRendererFuncRegisterer) {
	reg.Register(KindAdmonition, r.renderAdmonition)
}

func (r *admonitionHTMLRenderer) renderAdmonition(w util.BufWriter, _ []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	n := node.(*Admonition)
	if entering {
		_, _ = fmt.Fprintf(w, "<div class=\"admonition admonition-%s\">\n", n.Name)
		_, _ = fmt.Fprintf(w,
			"<p class=\"admonition-title\"><span class=\"admonition-icon icon-%s\"></span>%s</p>\n",
			admonitionIcons[n.Name], n.Title)
	} else {
		_, _ = w.WriteString("</div>\n")
	}
	return ast.WalkContinue, nil
}
