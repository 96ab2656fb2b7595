// Package markdown renders lesson bodies to HTML.
package markdown

import (
	"bytes"
	"fmt"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
)

// Renderer converts GitHub Flavored Markdown into HTML.
//
// Raw HTML in the source is dropped from the output; lesson content is
// authored by instructors but shown to every learner.
type Renderer struct {
	md goldmark.Markdown
}

// NewRenderer builds a Renderer. It is safe for concurrent use, so services share one.
func NewRenderer() *Renderer {
	return &Renderer{
		md: goldmark.New(
			goldmark.WithExtensions(
				extension.GFM,
				extension.Typographer,
			),
			goldmark.WithParserOptions(
				parser.WithAutoHeadingID(),
			),
		),
	}
}

// Render returns the HTML for src. An empty source renders to "".
func (r *Renderer) Render(src string) (string, error) {
	if src == "" {
		return "", nil
	}

	var buf bytes.Buffer
	if err := r.md.Convert([]byte(src), &buf); err != nil {
		return "", fmt.Errorf("rendering markdown: %w", err)
	}
	return buf.String(), nil
}
