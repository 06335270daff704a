package render

import (
	"strconv"
	"strings"
	"testing"

	"photo-gallery/pkg/dom"
	"photo-gallery/pkg/gallery"
	"photo-gallery/pkg/models"
)

const shell = `<!DOCTYPE html><html><head></head><body>` +
	`<div class="instagram"><div class="open-ins">Loading...</div></div></body></html>`

func parseShell(t *testing.T) *Document {
	t.Helper()
	doc, err := ParseDocument(strings.NewReader(shell))
	if err != nil {
		t.Fatalf("ParseDocument failed: %v", err)
	}
	return doc
}

func sampleGallery() *gallery.Gallery {
	return gallery.Build(&models.Manifest{List: []models.MonthGroup{
		{Year: 2024, Month: 5, Links: []string{"a.jpg", "b.jpg"}, Sizes: []string{"800x600", "400x400"}, MinSizes: []string{"2x1"}},
		{Year: 2024, Month: 4, Links: []string{"c.jpg"}, Captions: []string{`"><script>alert(1)</script>`}},
	}}, gallery.URLs{Photos: "/photos/", Thumbs: "/min_photos/"})
}

func TestRenderOrderRoundTrip(t *testing.T) {
	doc := parseShell(t)
	g := sampleGallery()

	res, err := NewRenderer().Render(doc.Container(), g)
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}

	thumbs, err := dom.QueryAll(doc.Root, ThumbSelector)
	if err != nil {
		t.Fatal(err)
	}
	if len(thumbs) != g.Len() {
		t.Fatalf("expected %d thumbnails, got %d", g.Len(), len(thumbs))
	}

	for i, node := range thumbs {
		if node != res.Thumbs[i] {
			t.Errorf("document order differs from render order at %d", i)
		}
		rec, ok := res.Record(node)
		if !ok || rec.Index != i {
			t.Errorf("node %d maps to record %d (%v)", i, rec.Index, ok)
		}
		if v, _ := dom.Attr(node, "data-index"); v != strconv.Itoa(i) {
			t.Errorf("node %d has data-index %q", i, v)
		}
		if v, _ := dom.Attr(node, "data-id"); v != g.Records[i].ID {
			t.Errorf("node %d has data-id %q", i, v)
		}
	}

	if len(res.Titles) != 2 {
		t.Fatalf("expected 2 headings, got %d", len(res.Titles))
	}
	if got := dom.TextContent(res.Titles[0]); got != "2024年5月" {
		t.Errorf("unexpected heading %q", got)
	}
}

func TestRenderThumbnailAttributes(t *testing.T) {
	doc := parseShell(t)
	res, err := NewRenderer().Render(doc.Container(), sampleGallery())
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}

	first := res.Thumbs[0]
	link, _ := dom.Query(first, "a")
	if href, _ := dom.Attr(link, "href"); href != "/photos/a.jpg" {
		t.Errorf("href = %q", href)
	}
	if size, _ := dom.Attr(link, "data-size"); size != "800x600" {
		t.Errorf("data-size = %q", size)
	}

	box, _ := dom.Query(first, ".aspect-ratio-box")
	if style, _ := dom.Attr(box, "style"); style != "padding-top: 50.0000%;" {
		t.Errorf("style = %q", style)
	}

	img, _ := dom.Query(first, "img")
	if src, _ := dom.Attr(img, "src"); src != Placeholder {
		t.Errorf("src should be the placeholder, got %q", src)
	}
	if src, _ := dom.Attr(img, "data-src"); src != "/min_photos/a.jpg" {
		t.Errorf("data-src = %q", src)
	}
}

func TestRenderEscapesCaptions(t *testing.T) {
	doc := parseShell(t)
	if _, err := NewRenderer().Render(doc.Container(), sampleGallery()); err != nil {
		t.Fatalf("Render failed: %v", err)
	}

	var out strings.Builder
	if err := doc.Render(&out); err != nil {
		t.Fatal(err)
	}
	html := out.String()
	if strings.Contains(html, "<script>alert(1)</script>") {
		t.Fatalf("caption was injected as markup: %s", html)
	}
	if !strings.Contains(html, `alt="&#34;&gt;&lt;script&gt;alert(1)&lt;/script&gt;"`) {
		t.Errorf("escaped caption missing: %s", html)
	}
}

func TestRenderReplacesContainer(t *testing.T) {
	doc := parseShell(t)
	container := doc.Container()
	r := NewRenderer()

	first, err := r.Render(container, sampleGallery())
	if err != nil {
		t.Fatal(err)
	}
	second, err := r.Render(container, sampleGallery())
	if err != nil {
		t.Fatal(err)
	}

	if loading, _ := dom.Query(container, LoadingSelector); loading != nil {
		t.Error("loading indicator should be replaced")
	}
	if dom.Contains(doc.Root, first.Thumbs[0]) {
		t.Error("nodes from the first render should be detached")
	}
	if !dom.Contains(doc.Root, second.Thumbs[0]) {
		t.Error("nodes from the second render should be attached")
	}
	roots, _ := dom.QueryAll(container, GallerySelector)
	if len(roots) != 1 {
		t.Errorf("expected one gallery root, got %d", len(roots))
	}
}

func TestRenderFailure(t *testing.T) {
	doc := parseShell(t)
	if err := RenderFailure(doc.Container(), "图片加载失败，请刷新页面重试。"); err != nil {
		t.Fatalf("RenderFailure failed: %v", err)
	}
	loading, _ := dom.Query(doc.Root, LoadingSelector)
	if dom.TextContent(loading) != "图片加载失败，请刷新页面重试。" {
		t.Errorf("unexpected indicator text %q", dom.TextContent(loading))
	}
	if thumbs, _ := dom.QueryAll(doc.Root, ThumbSelector); len(thumbs) != 0 {
		t.Error("failure must not render thumbnails")
	}

	if err := RenderFailure(nil, "x"); err != ErrNoContainer {
		t.Errorf("expected ErrNoContainer, got %v", err)
	}
}

func TestDocumentWithoutContainer(t *testing.T) {
	doc, err := ParseDocument(strings.NewReader("<html><body><p>no gallery</p></body></html>"))
	if err != nil {
		t.Fatal(err)
	}
	if doc.Container() != nil {
		t.Error("expected no container")
	}
	if _, err := NewRenderer().Render(doc.Container(), sampleGallery()); err != ErrNoContainer {
		t.Errorf("expected ErrNoContainer, got %v", err)
	}
}
