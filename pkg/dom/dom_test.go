package dom

import (
	"strings"
	"testing"

	"golang.org/x/net/html/atom"
)

const page = `<html><body><div class="instagram"><div class="open-ins">Loading</div>` +
	`<figure class="grid-item thumb"><a href="a.jpg"><img id="i1" src="x"></a></figure></div></body></html>`

func TestQueryAndClosest(t *testing.T) {
	doc, err := Parse(strings.NewReader(page))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	container, err := Query(doc, ".instagram")
	if err != nil || container == nil {
		t.Fatalf("container not found: %v", err)
	}

	img, _ := Query(doc, "#i1")
	sel, _ := Compile("figure.thumb")
	fig := Closest(img, container, sel)
	if fig == nil || !HasClass(fig, "thumb") {
		t.Fatalf("expected enclosing figure, got %v", fig)
	}

	loading, _ := Query(container, ".open-ins")
	if Closest(loading, container, sel) != nil {
		t.Error("loading indicator has no figure ancestor")
	}
	if !Contains(container, img) {
		t.Error("img should be inside container")
	}
}

func TestAttributes(t *testing.T) {
	n := Element(atom.Img, "src", "a", "alt", "b")
	SetAttr(n, "src", "c")
	SetAttr(n, "data-src", "d")
	RemoveAttr(n, "alt")

	if v, _ := Attr(n, "src"); v != "c" {
		t.Errorf("src = %q", v)
	}
	if v, ok := Attr(n, "data-src"); !ok || v != "d" {
		t.Errorf("data-src = %q, %v", v, ok)
	}
	if _, ok := Attr(n, "alt"); ok {
		t.Error("alt should be removed")
	}
}

func TestSetTextAndRender(t *testing.T) {
	div := Element(atom.Div, "class", "open-ins")
	div.AppendChild(Text("old"))
	SetText(div, "<b>failed</b>")

	if TextContent(div) != "<b>failed</b>" {
		t.Errorf("unexpected text %q", TextContent(div))
	}
	out, err := Render(div)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "&lt;b&gt;failed&lt;/b&gt;") {
		t.Errorf("text not escaped: %s", out)
	}
}

func TestCompileInvalid(t *testing.T) {
	if _, err := Compile("figure[["); err == nil {
		t.Error("expected selector error")
	}
}
