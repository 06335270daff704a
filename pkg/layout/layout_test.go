package layout

import (
	"encoding/json"
	"strings"
	"testing"

	"golang.org/x/net/html"

	"photo-gallery/pkg/dom"
	"photo-gallery/pkg/gallery"
	"photo-gallery/pkg/models"
	"photo-gallery/pkg/render"
)

type countingEngine struct {
	calls int
	inner Engine
}

func (e *countingEngine) Layout(grid *html.Node, items []*html.Node, opts Options) (Placement, error) {
	e.calls++
	return e.inner.Layout(grid, items, opts)
}

func renderGrid(t *testing.T) (*render.Result, *render.Document) {
	t.Helper()
	doc, err := render.ParseDocument(strings.NewReader(`<div class="instagram"><div class="open-ins"></div></div>`))
	if err != nil {
		t.Fatal(err)
	}
	g := gallery.Build(&models.Manifest{List: []models.MonthGroup{{
		Year: 2024, Month: 5,
		Links:    []string{"a.jpg", "b.jpg", "c.jpg"},
		MinSizes: []string{"2x1", "1x1", "1x2"},
	}}}, gallery.URLs{})
	res, err := render.NewRenderer().Render(doc.Container(), g)
	if err != nil {
		t.Fatal(err)
	}
	return res, doc
}

func TestApplyOncePerGrid(t *testing.T) {
	res, doc := renderGrid(t)
	engine := &countingEngine{inner: &Masonry{ContainerWidth: 600, ColumnWidth: 200, TitleHeight: 50}}
	c := NewCoordinator(engine)

	first, err := c.Apply(res.Grid, render.ItemSelector)
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	second, err := c.Apply(res.Grid, render.ItemSelector)
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	if engine.calls != 1 {
		t.Errorf("expected engine to run once, ran %d times", engine.calls)
	}
	if len(first) != 4 || len(second) != 4 {
		t.Errorf("expected 4 placed items, got %d and %d", len(first), len(second))
	}

	// A re-render produces a grid the engine has not seen.
	rerendered, err := render.NewRenderer().Render(doc.Container(), res.Gallery)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := c.Apply(rerendered.Grid, render.ItemSelector); err != nil {
		t.Fatal(err)
	}
	if engine.calls != 2 {
		t.Errorf("expected a new grid to be laid out, calls = %d", engine.calls)
	}
}

func TestMasonryPlacement(t *testing.T) {
	res, _ := renderGrid(t)
	m := &Masonry{ContainerWidth: 650, ColumnWidth: 200, TitleHeight: 50}

	items, _ := dom.QueryAll(res.Grid, render.ItemSelector)
	p, err := m.Layout(res.Grid, items, DefaultOptions(render.ItemSelector))
	if err != nil {
		t.Fatal(err)
	}

	if m.Columns() != 3 {
		t.Fatalf("expected 3 columns, got %d", m.Columns())
	}

	want := []models.Rect{
		{X: 0, Y: 0, W: 600, H: 50},    // title spans every column
		{X: 0, Y: 50, W: 200, H: 100},   // 2x1
		{X: 200, Y: 50, W: 200, H: 200}, // 1x1
		{X: 400, Y: 50, W: 200, H: 400}, // 1x2
	}
	for i, item := range items {
		if p[item] != want[i] {
			t.Errorf("item %d: got %+v, want %+v", i, p[item], want[i])
		}
	}

	raw, ok := dom.Attr(res.Grid, "data-masonry")
	if !ok {
		t.Fatal("data-masonry missing")
	}
	var opts Options
	if err := json.Unmarshal([]byte(raw), &opts); err != nil {
		t.Fatal(err)
	}
	if opts != DefaultOptions(render.ItemSelector) {
		t.Errorf("unexpected options %+v", opts)
	}
	if opts.Gutter != 0 || !opts.PercentPosition || !opts.FitWidth || opts.ColumnWidth != ".thumb" {
		t.Errorf("fixed configuration changed: %+v", opts)
	}
}

func TestMasonryHeadingsStartBelowPreviousGroup(t *testing.T) {
	doc, err := render.ParseDocument(strings.NewReader(`<div class="instagram"></div>`))
	if err != nil {
		t.Fatal(err)
	}
	g := gallery.Build(&models.Manifest{List: []models.MonthGroup{
		{Year: 2024, Month: 5, Links: []string{"a.jpg", "b.jpg", "c.jpg"}, MinSizes: []string{"1x3", "1x1", "1x1"}},
		{Year: 2024, Month: 4, Links: []string{"d.jpg"}, MinSizes: []string{"1x1"}},
	}}, gallery.URLs{})
	res, err := render.NewRenderer().Render(doc.Container(), g)
	if err != nil {
		t.Fatal(err)
	}

	m := &Masonry{ContainerWidth: 600, ColumnWidth: 200, TitleHeight: 50}
	items, _ := dom.QueryAll(res.Grid, render.ItemSelector)
	p, err := m.Layout(res.Grid, items, DefaultOptions(render.ItemSelector))
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		node *html.Node
		want models.Rect
	}{
		{"first heading", res.Titles[0], models.Rect{X: 0, Y: 0, W: 600, H: 50}},
		{"tall photo", res.Thumbs[0], models.Rect{X: 0, Y: 50, W: 200, H: 600}},
		{"second photo", res.Thumbs[1], models.Rect{X: 200, Y: 50, W: 200, H: 200}},
		{"third photo", res.Thumbs[2], models.Rect{X: 400, Y: 50, W: 200, H: 200}},
		{"second heading below the tallest column", res.Titles[1], models.Rect{X: 0, Y: 650, W: 600, H: 50}},
		{"next month photo below its heading", res.Thumbs[3], models.Rect{X: 0, Y: 700, W: 200, H: 200}},
	}
	for _, tt := range tests {
		if got := p[tt.node]; got != tt.want {
			t.Errorf("%s: got %+v, want %+v", tt.name, got, tt.want)
		}
	}
}

func TestApplyNilGrid(t *testing.T) {
	if _, err := NewCoordinator(&Masonry{}).Apply(nil, render.ItemSelector); err == nil {
		t.Error("expected error for nil grid")
	}
}
