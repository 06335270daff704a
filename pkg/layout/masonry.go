package layout

import (
	"encoding/json"
	"fmt"
	"math"
	"slices"
	"strings"

	"golang.org/x/net/html"

	"photo-gallery/pkg/dom"
	"photo-gallery/pkg/models"
)

// Masonry hands its options to the browser engine through a data-masonry
// attribute and estimates the placement the browser will compute, packing
// each item into the shortest column. Month headings are full-width rows.
type Masonry struct {
	ContainerWidth float64
	ColumnWidth    float64
	TitleHeight    float64
	Origin         models.Rect
}

// Columns returns the column count for the configured widths
func (m *Masonry) Columns() int {
	if m.ColumnWidth <= 0 {
		return 1
	}
	return max(1, int(math.Floor(m.ContainerWidth/m.ColumnWidth)))
}

// Layout implements Engine
func (m *Masonry) Layout(grid *html.Node, items []*html.Node, opts Options) (Placement, error) {
	data, err := json.Marshal(opts)
	if err != nil {
		return nil, err
	}
	dom.SetAttr(grid, "data-masonry", string(data))

	cols := m.Columns()
	heights := make([]float64, cols)
	placement := make(Placement, len(items))

	for _, item := range items {
		h := m.itemHeight(item)

		// Headings span the whole grid and start below the tallest column.
		if isTitle(item) {
			y := slices.Max(heights)
			placement[item] = models.Rect{
				X: m.Origin.X,
				Y: m.Origin.Y + y,
				W: float64(cols) * m.ColumnWidth,
				H: h,
			}
			for c := range heights {
				heights[c] = y + h + float64(opts.Gutter)
			}
			continue
		}

		col := 0
		for c := 1; c < cols; c++ {
			if heights[c] < heights[col] {
				col = c
			}
		}

		placement[item] = models.Rect{
			X: m.Origin.X + float64(col)*m.ColumnWidth,
			Y: m.Origin.Y + heights[col],
			W: m.ColumnWidth,
			H: h,
		}
		heights[col] += h + float64(opts.Gutter)
	}

	return placement, nil
}

// itemHeight uses the reserved aspect-ratio box so the estimate matches the
// browser before any thumbnail has arrived.
func (m *Masonry) itemHeight(item *html.Node) float64 {
	if isTitle(item) {
		return m.TitleHeight
	}
	box, _ := dom.Query(item, ".aspect-ratio-box")
	if box == nil {
		return m.ColumnWidth
	}
	pct, err := paddingTop(box)
	if err != nil {
		return m.ColumnWidth
	}
	return m.ColumnWidth * pct / 100
}

func isTitle(item *html.Node) bool {
	return dom.HasClass(item, "grid-item--title")
}

func paddingTop(n *html.Node) (float64, error) {
	style, _ := dom.Attr(n, "style")
	for _, decl := range strings.Split(style, ";") {
		name, value, ok := strings.Cut(decl, ":")
		if !ok || strings.TrimSpace(name) != "padding-top" {
			continue
		}
		var pct float64
		if _, err := fmt.Sscanf(strings.TrimSpace(value), "%f%%", &pct); err != nil {
			return 0, fmt.Errorf("padding-top %q: %w", value, err)
		}
		return pct, nil
	}
	return 0, fmt.Errorf("no padding-top in %q", style)
}
