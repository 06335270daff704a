// Package lazyload promotes deferred thumbnail sources once they near the viewport.
//
// Layout never waits on this package: the grid is positioned from the reserved
// aspect-ratio boxes, so promotions may happen before or after layout.
package lazyload

import (
	"log/slog"
	"strconv"
	"sync"

	"golang.org/x/net/html"

	"photo-gallery/pkg/dom"
	"photo-gallery/pkg/models"
)

const (
	deferredAttr = "data-src"
	loadedAttr   = "data-loaded"

	// MarginAttr carries the lookahead margin to the browser observer
	MarginAttr = "data-lazy-margin"
)

// Geometry locates an element on the page
type Geometry func(n *html.Node) (models.Rect, bool)

// Coordinator tracks the images still waiting for promotion
type Coordinator struct {
	// Margin grows the viewport so images just below the fold load early
	Margin float64

	mu       sync.Mutex
	root     *html.Node
	observed []*html.Node
	watching map[*html.Node]bool
}

// NewCoordinator creates a coordinator with the given lookahead margin
func NewCoordinator(margin float64) *Coordinator {
	return &Coordinator{Margin: margin, watching: make(map[*html.Node]bool)}
}

// Attach starts observing every element under root matching selector that
// still has a deferred source. Attaching to a different root forgets images
// outside it. It returns the number of newly observed images.
func (c *Coordinator) Attach(root *html.Node, selector string) (int, error) {
	nodes, err := dom.QueryAll(root, selector)
	if err != nil {
		return 0, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.root != root {
		c.dropOutside(root)
		c.root = root
	}
	added := 0
	for _, n := range nodes {
		if _, ok := dom.Attr(n, deferredAttr); !ok || c.watching[n] || isLoaded(n) {
			continue
		}
		c.watching[n] = true
		c.observed = append(c.observed, n)
		added++
	}
	return added, nil
}

// Observe promotes every observed image whose box intersects the viewport
// grown by the margin. Images geometry cannot place stay observed.
func (c *Coordinator) Observe(viewport models.Rect, geometry Geometry) int {
	c.mu.Lock()
	candidates := append([]*html.Node(nil), c.observed...)
	c.mu.Unlock()

	area := viewport.Grow(c.Margin)
	promoted := 0
	for _, img := range candidates {
		box, ok := geometry(img)
		if !ok || !box.Intersects(area) {
			continue
		}
		if c.Promote(img) {
			promoted++
		}
	}
	slog.Debug("Lazy-load pass", "promoted", promoted, "pending", c.Pending())
	return promoted
}

// Promote swaps the placeholder for the deferred source and stops observing img.
// It reports false, changing nothing, when img was already promoted or is no
// longer attached under the observed root.
func (c *Coordinator) Promote(img *html.Node) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.unobserve(img)

	if img == nil || isLoaded(img) {
		return false
	}
	if c.root != nil && !dom.Contains(c.root, img) {
		return false
	}
	src, ok := dom.Attr(img, deferredAttr)
	if !ok {
		return false
	}

	dom.SetAttr(img, "src", src)
	dom.SetAttr(img, loadedAttr, "true")
	return true
}

// Annotate records the lookahead margin on n so the browser observer uses the same one
func (c *Coordinator) Annotate(n *html.Node) {
	dom.SetAttr(n, MarginAttr, strconv.FormatFloat(c.Margin, 'f', -1, 64))
}

// Pending returns the number of images still observed
func (c *Coordinator) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.observed)
}

func (c *Coordinator) unobserve(img *html.Node) {
	if !c.watching[img] {
		return
	}
	delete(c.watching, img)
	for i, n := range c.observed {
		if n == img {
			c.observed = append(c.observed[:i], c.observed[i+1:]...)
			return
		}
	}
}

// dropOutside stops observing images that are not under root
func (c *Coordinator) dropOutside(root *html.Node) {
	kept := c.observed[:0]
	for _, n := range c.observed {
		if dom.Contains(root, n) {
			kept = append(kept, n)
			continue
		}
		delete(c.watching, n)
	}
	c.observed = kept
}

func isLoaded(n *html.Node) bool {
	_, ok := dom.Attr(n, loadedAttr)
	return ok
}
