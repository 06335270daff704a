// Package dom holds small helpers over golang.org/x/net/html nodes: attribute
// access, CSS selection through cascadia, ancestry checks and element builders.
package dom

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Attr returns the value of the named attribute and whether it is present
func Attr(n *html.Node, key string) (string, bool) {
	if n == nil {
		return "", false
	}
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

// SetAttr sets or replaces an attribute
func SetAttr(n *html.Node, key, val string) {
	for i, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			n.Attr[i].Val = val
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
}

// RemoveAttr deletes an attribute if present
func RemoveAttr(n *html.Node, key string) {
	kept := n.Attr[:0]
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			continue
		}
		kept = append(kept, a)
	}
	n.Attr = kept
}

// HasClass reports whether the class attribute contains name
func HasClass(n *html.Node, name string) bool {
	class, _ := Attr(n, "class")
	for _, c := range strings.Fields(class) {
		if c == name {
			return true
		}
	}
	return false
}

// Compile parses a CSS selector
func Compile(selector string) (cascadia.Sel, error) {
	sel, err := cascadia.Parse(selector)
	if err != nil {
		return nil, fmt.Errorf("invalid selector %q: %w", selector, err)
	}
	return sel, nil
}

// QueryAll returns the descendants of root matching selector, in document order
func QueryAll(root *html.Node, selector string) ([]*html.Node, error) {
	sel, err := Compile(selector)
	if err != nil {
		return nil, err
	}
	return cascadia.QueryAll(root, sel), nil
}

// Query returns the first descendant of root matching selector, or nil
func Query(root *html.Node, selector string) (*html.Node, error) {
	sel, err := Compile(selector)
	if err != nil {
		return nil, err
	}
	return cascadia.Query(root, sel), nil
}

// Closest walks from n up to (and including) stop, returning the first node
// matching sel. It returns nil when nothing matches before stop is passed.
func Closest(n, stop *html.Node, sel cascadia.Sel) *html.Node {
	for cur := n; cur != nil; cur = cur.Parent {
		if cur.Type == html.ElementNode && sel.Match(cur) {
			return cur
		}
		if cur == stop {
			return nil
		}
	}
	return nil
}

// Contains reports whether n is root or one of its descendants
func Contains(root, n *html.Node) bool {
	for cur := n; cur != nil; cur = cur.Parent {
		if cur == root {
			return true
		}
	}
	return false
}

// RemoveChildren detaches every child of n
func RemoveChildren(n *html.Node) {
	for c := n.FirstChild; c != nil; {
		next := c.NextSibling
		n.RemoveChild(c)
		c = next
	}
}

// Element creates an element node with the given attributes, given as key/value pairs
func Element(a atom.Atom, attrs ...string) *html.Node {
	n := &html.Node{Type: html.ElementNode, DataAtom: a, Data: a.String()}
	for i := 0; i+1 < len(attrs); i += 2 {
		n.Attr = append(n.Attr, html.Attribute{Key: attrs[i], Val: attrs[i+1]})
	}
	return n
}

// Text creates a text node
func Text(s string) *html.Node {
	return &html.Node{Type: html.TextNode, Data: s}
}

// SetText replaces the children of n with a single text node
func SetText(n *html.Node, s string) {
	RemoveChildren(n)
	n.AppendChild(Text(s))
}

// TextContent concatenates the text beneath n
func TextContent(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(c *html.Node) {
		if c.Type == html.TextNode {
			b.WriteString(c.Data)
		}
		for ch := c.FirstChild; ch != nil; ch = ch.NextSibling {
			walk(ch)
		}
	}
	walk(n)
	return b.String()
}

// Parse parses a full HTML document
func Parse(r io.Reader) (*html.Node, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parsing html: %w", err)
	}
	return doc, nil
}

// Render serialises n to a string
func Render(n *html.Node) (string, error) {
	var buf bytes.Buffer
	if err := html.Render(&buf, n); err != nil {
		return "", err
	}
	return buf.String(), nil
}
