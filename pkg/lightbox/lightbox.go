// Package lightbox maps an activated thumbnail back to its record and opens the viewer.
package lightbox

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"sync"

	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"

	"photo-gallery/pkg/dom"
	"photo-gallery/pkg/models"
	"photo-gallery/pkg/render"
)

// BoundsFunc returns the current viewport rect of thumbnail i
type BoundsFunc func(i int) (models.Rect, bool)

// Viewer is the full-screen widget that shows an ordered set of items
type Viewer interface {
	Open(items []models.Item, index int, bounds BoundsFunc) error
}

// ErrIndexMismatch means a node's data-index disagrees with its document position
var ErrIndexMismatch = errors.New("thumbnail index does not match document order")

// ErrNoResult means Install was given no render result to map thumbnails to
var ErrNoResult = errors.New("lightbox: no render result")

// Activation describes an opened viewer
type Activation struct {
	Index int
	Count int
	Item  models.Item
}

// Controller owns the delegated activation handling for one gallery root at a time
type Controller struct {
	viewer Viewer

	// Locate places a node on the page; ScrollY is subtracted to get viewport coordinates
	Locate  func(n *html.Node) (models.Rect, bool)
	ScrollY float64

	mu       sync.Mutex
	root     *html.Node
	result   *render.Result
	thumbSel cascadia.Sel
	once     *sync.Once
	items    []models.Item
}

// New creates a controller handing activations to viewer
func New(viewer Viewer) *Controller {
	return &Controller{viewer: viewer}
}

// Install binds the controller to the gallery root under container matching
// gallerySelector. Installing again on the same root is a no-op; a new root
// (after a re-render) replaces the old one and drops the cached item list.
func (c *Controller) Install(container *html.Node, gallerySelector string, res *render.Result) (bool, error) {
	if res == nil || res.Gallery == nil {
		return false, ErrNoResult
	}
	root, err := dom.Query(container, gallerySelector)
	if err != nil {
		return false, err
	}
	if root == nil {
		return false, fmt.Errorf("gallery root %s not found", gallerySelector)
	}
	sel, err := dom.Compile(render.ThumbSelector)
	if err != nil {
		return false, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.root == root {
		return false, nil
	}
	c.root = root
	c.result = res
	c.thumbSel = sel
	c.once = new(sync.Once)
	c.items = nil
	dom.SetAttr(root, "data-lightbox", "pswp")
	return true, nil
}

// Items returns the ordered viewer items, built on first use per install
func (c *Controller) Items() []models.Item {
	c.mu.Lock()
	once, res := c.once, c.result
	c.mu.Unlock()
	if once == nil {
		return nil
	}

	once.Do(func() {
		items := res.Gallery.Items()
		c.mu.Lock()
		c.items = items
		c.mu.Unlock()
	})

	c.mu.Lock()
	defer c.mu.Unlock()
	return c.items
}

// Activate handles a click on target. It reports false when target is not
// inside a thumbnail of the installed root; such clicks are ignored.
func (c *Controller) Activate(target *html.Node) (*Activation, bool, error) {
	c.mu.Lock()
	root, res, sel := c.root, c.result, c.thumbSel
	c.mu.Unlock()

	if root == nil || target == nil || !dom.Contains(root, target) {
		return nil, false, nil
	}
	thumb := dom.Closest(target, root, sel)
	if thumb == nil {
		return nil, false, nil
	}

	pos, ok := res.Index[thumb]
	if !ok {
		return nil, false, nil
	}
	raw, _ := dom.Attr(thumb, "data-index")
	index, err := strconv.Atoi(raw)
	if err != nil || index != pos {
		return nil, false, fmt.Errorf("%w: data-index %q at position %d", ErrIndexMismatch, raw, pos)
	}

	items := c.Items()
	slog.Debug("Opening viewer", "index", index, "items", len(items))
	if err := c.viewer.Open(items, index, c.bounds(res)); err != nil {
		return nil, true, fmt.Errorf("opening viewer: %w", err)
	}
	return &Activation{Index: index, Count: len(items), Item: items[index]}, true, nil
}

// ActivateIndex activates the thumbnail at position i, as a click on its image would
func (c *Controller) ActivateIndex(i int) (*Activation, bool, error) {
	c.mu.Lock()
	res := c.result
	c.mu.Unlock()
	if res == nil || i < 0 || i >= len(res.Thumbs) {
		return nil, false, nil
	}
	target := res.Thumbs[i]
	if img, _ := dom.Query(target, "img"); img != nil {
		target = img
	}
	return c.Activate(target)
}

func (c *Controller) bounds(res *render.Result) BoundsFunc {
	return func(i int) (models.Rect, bool) {
		if c.Locate == nil || i < 0 || i >= len(res.Thumbs) {
			return models.Rect{}, false
		}
		target := res.Thumbs[i]
		if img, _ := dom.Query(target, "img"); img != nil {
			target = img
		}
		r, ok := c.Locate(target)
		if !ok {
			return models.Rect{}, false
		}
		r.Y -= c.ScrollY
		return r, true
	}
}
