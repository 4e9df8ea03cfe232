// Package render turns page source files into HTML before their links are
// rewritten. HTML pages pass through untouched; Markdown pages are rendered
// with goldmark and wrapped in a minimal document.
package render

import (
	"bytes"
	"fmt"
	"html"
	"regexp"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	gmhtml "github.com/yuin/goldmark/renderer/html"
)

// Renderer converts page source to HTML.
type Renderer interface {
	Render(source []byte) ([]byte, error)
}

// For returns the renderer for a page extension.
func For(ext string) (Renderer, error) {
	switch strings.ToLower(ext) {
	case ".html", ".htm":
		return HTML{}, nil
	case ".md", ".markdown":
		return NewMarkdown(), nil
	}
	return nil, fmt.Errorf("no renderer for %q pages", ext)
}

// HTML is the identity renderer.
type HTML struct{}

// Render returns source unchanged.
func (HTML) Render(source []byte) ([]byte, error) {
	return source, nil
}

// Markdown renders GitHub-flavored Markdown. Raw HTML in the source is kept
// so pages can embed forms and images with attributes.
type Markdown struct {
	md goldmark.Markdown
}

// NewMarkdown creates a Markdown renderer.
func NewMarkdown() *Markdown {
	md := goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,
			extension.Footnote,
			extension.DefinitionList,
		),
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(),
		),
		goldmark.WithRendererOptions(
			gmhtml.WithUnsafe(),
		),
	)
	return &Markdown{md: md}
}

var h1Re = regexp.MustCompile(`(?s)<h1[^>]*>(.*?)</h1>`)
var tagRe = regexp.MustCompile(`<[^>]+>`)

// Render converts Markdown to a complete HTML document titled after the
// first level-one heading.
func (m *Markdown) Render(source []byte) ([]byte, error) {
	var body bytes.Buffer
	if err := m.md.Convert(source, &body); err != nil {
		return nil, fmt.Errorf("rendering markdown: %w", err)
	}

	title := ""
	if sub := h1Re.FindSubmatch(body.Bytes()); sub != nil {
		title = html.UnescapeString(strings.TrimSpace(tagRe.ReplaceAllString(string(sub[1]), "")))
	}

	var b bytes.Buffer
	b.WriteString("<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n")
	fmt.Fprintf(&b, "<title>%s</title>\n", html.EscapeString(title))
	b.WriteString("</head>\n<body>\n")
	b.Write(body.Bytes())
	b.WriteString("</body>\n</html>\n")
	return b.Bytes(), nil
}
