package render

import (
	"io"

	"golang.org/x/net/html"

	"photo-gallery/pkg/dom"
)

// Document is a parsed host page
type Document struct {
	Root *html.Node
}

// ParseDocument parses a host page
func ParseDocument(r io.Reader) (*Document, error) {
	root, err := dom.Parse(r)
	if err != nil {
		return nil, err
	}
	return &Document{Root: root}, nil
}

// Container returns the gallery container, or nil when the page has none
func (d *Document) Container() *html.Node {
	n, _ := dom.Query(d.Root, ContainerSelector)
	return n
}

// Render writes the document
func (d *Document) Render(w io.Writer) error {
	return html.Render(w, d.Root)
}
