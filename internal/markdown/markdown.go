// Package markdown renders publication content to HTML with goldmark.
// Content is authored in Markdown by the site admin; public detail
// responses carry the rendered HTML alongside the raw source.
package markdown

import (
	"bytes"

	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
)

var renderer = newRenderer()

func newRenderer() goldmark.Markdown {
	return goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,
			extension.Typographer,
			highlighting.NewHighlighting(
				highlighting.WithStyle("monokai"),
			),
		),
		// Heading IDs give in-page anchors for long essays.
		goldmark.WithParserOptions(parser.WithAutoHeadingID()),
		// Admin-authored content, so raw HTML blocks pass through.
		goldmark.WithRendererOptions(html.WithUnsafe()),
	)
}

// ToHTML renders Markdown source to HTML.
func ToHTML(source string) (string, error) {
	var buf bytes.Buffer
	if err := renderer.Convert([]byte(source), &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}
