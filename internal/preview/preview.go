// Package preview renders a post to HTML for viewing in a browser.
package preview

import (
	"bytes"
	"fmt"
	"html/template"
	"os"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
)

var page = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
body { max-width: 42rem; margin: 2rem auto; font-family: Georgia, serif; line-height: 1.6; }
pre, code { font-family: Menlo, monospace; background: #f4f4f4; }
img { max-width: 100%; }
</style>
</head>
<body>
{{if .Title}}<h1 class="post-title">{{.Title}}</h1>
{{end}}{{.Body}}
</body>
</html>
`))

// Renderer converts Markdown to HTML.
type Renderer struct {
	md goldmark.Markdown
}

// New returns a renderer with GitHub flavored Markdown enabled.
func New() *Renderer {
	return &Renderer{
		md: goldmark.New(
			goldmark.WithExtensions(extension.GFM),
			goldmark.WithParserOptions(parser.WithAutoHeadingID()),
		),
	}
}

// Fragment renders markdown to an HTML fragment.
func (r *Renderer) Fragment(markdown string) (string, error) {
	var buf bytes.Buffer
	if err := r.md.Convert([]byte(markdown), &buf); err != nil {
		return "", fmt.Errorf("rendering markdown: %w", err)
	}
	return buf.String(), nil
}

// Page renders markdown as a standalone HTML document.
func (r *Renderer) Page(title, markdown string) ([]byte, error) {
	body, err := r.Fragment(markdown)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	err = page.Execute(&buf, struct {
		Title string
		Body  template.HTML
	}{title, template.HTML(body)})
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteFile renders markdown and writes the page to path.
func (r *Renderer) WriteFile(path, title, markdown string) error {
	data, err := r.Page(title, markdown)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
