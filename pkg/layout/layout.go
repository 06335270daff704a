// Package layout hands the rendered grid to a masonry engine exactly once per render.
package layout

import (
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/net/html"

	"photo-gallery/pkg/dom"
	"photo-gallery/pkg/models"
)

// Options is the fixed masonry configuration
type Options struct {
	ItemSelector    string `json:"itemSelector"`
	ColumnWidth     string `json:"columnWidth"`
	Gutter          int    `json:"gutter"`
	PercentPosition bool   `json:"percentPosition"`
	FitWidth        bool   `json:"fitWidth"`
}

// DefaultOptions sizes items by the thumbnail column with no gutter
func DefaultOptions(itemSelector string) Options {
	return Options{
		ItemSelector:    itemSelector,
		ColumnWidth:     ".thumb",
		Gutter:          0,
		PercentPosition: true,
		FitWidth:        true,
	}
}

// Placement maps laid-out items to their page rects
type Placement map[*html.Node]models.Rect

// Locate returns the rect of n, or of its nearest placed ancestor
func (p Placement) Locate(n *html.Node) (models.Rect, bool) {
	for cur := n; cur != nil; cur = cur.Parent {
		if r, ok := p[cur]; ok {
			return r, true
		}
	}
	return models.Rect{}, false
}

// Engine positions items inside a grid
type Engine interface {
	Layout(grid *html.Node, items []*html.Node, opts Options) (Placement, error)
}

// Coordinator invokes the engine once per grid node
type Coordinator struct {
	engine Engine

	mu   sync.Mutex
	done map[*html.Node]Placement
}

// NewCoordinator creates a coordinator around engine
func NewCoordinator(engine Engine) *Coordinator {
	return &Coordinator{engine: engine, done: make(map[*html.Node]Placement)}
}

// Apply lays out grid. A grid that was already laid out returns its previous placement.
func (c *Coordinator) Apply(grid *html.Node, itemSelector string) (Placement, error) {
	if grid == nil {
		return nil, fmt.Errorf("layout: nil grid")
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if p, ok := c.done[grid]; ok {
		slog.Debug("Grid already laid out")
		return p, nil
	}

	items, err := dom.QueryAll(grid, itemSelector)
	if err != nil {
		return nil, err
	}

	p, err := c.engine.Layout(grid, items, DefaultOptions(itemSelector))
	if err != nil {
		return nil, fmt.Errorf("layout: %w", err)
	}
	c.done[grid] = p
	return p, nil
}
