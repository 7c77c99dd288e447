package mdadapter

import (
	"bytes"
	"fmt"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
	"go.abhg.dev/goldmark/frontmatter"
)

// Meta is the part of the front matter used by the page.
type Meta struct {
	Title string `yaml:"title"`
}

type mdAdapter struct {
	md goldmark.Markdown
}

func NewMDAdapter() *mdAdapter {
	md := goldmark.New(
		goldmark.WithExtensions(
			extension.Table,
			&frontmatter.Extender{},
		),
		goldmark.WithRendererOptions(
			html.WithXHTML(),
		),
	)

	return &mdAdapter{md: md}
}

/*
Render converts markdown to html. The front matter block is not rendered,
it is decoded into Meta instead. A source without front matter yields an empty Meta.
*/
func (a *mdAdapter) Render(src []byte) ([]byte, *Meta, error) {
	var buf bytes.Buffer

	ctx := parser.NewContext()
	if err := a.md.Convert(src, &buf, parser.WithContext(ctx)); err != nil {
		return nil, nil, fmt.Errorf("cannot convert markdown: %w", err)
	}

	meta := &Meta{}
	if fm := frontmatter.Get(ctx); fm != nil {
		if err := fm.Decode(meta); err != nil {
			return nil, nil, fmt.Errorf("cannot unmarshal frontmatter: %w", err)
		}
	}

	return buf.Bytes(), meta, nil
}
