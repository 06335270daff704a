package gallery

import (
	"fmt"
	"testing"

	"photo-gallery/pkg/models"
)

var testURLs = URLs{Photos: "https://cdn.example.com/photos/", Thumbs: "https://cdn.example.com/min_photos/"}

func TestBuildCountsAndOrder(t *testing.T) {
	m := &models.Manifest{List: []models.MonthGroup{
		{Year: 2024, Month: 5, Links: []string{"a.jpg", "b.jpg"}, Sizes: []string{"800x600", "400x400"}},
		{Year: 2024, Month: 4, Links: []string{"c.jpg"}},
		{Year: 2024, Month: 3},
		{Year: 2023, Month: 12, Links: []string{"d.jpg", "e.jpg", "f.jpg"}},
	}}

	g := Build(m, testURLs)

	if g.Len() != 6 {
		t.Fatalf("expected 6 records, got %d", g.Len())
	}
	if len(g.Groups) != 4 {
		t.Fatalf("expected 4 groups, got %d", len(g.Groups))
	}

	want := []string{"a.jpg", "b.jpg", "c.jpg", "d.jpg", "e.jpg", "f.jpg"}
	for i, r := range g.Records {
		if r.Index != i {
			t.Errorf("record %d has index %d", i, r.Index)
		}
		if r.Filename != want[i] {
			t.Errorf("record %d: got %s, want %s", i, r.Filename, want[i])
		}
	}

	if g.Records[1].FullURL != "https://cdn.example.com/photos/b.jpg" || g.Records[1].ThumbURL != "https://cdn.example.com/min_photos/b.jpg" {
		t.Errorf("unexpected urls %+v", g.Records[1])
	}
	if g.Records[3].ID != "p-3-0" || g.Records[3].GroupIndex != 3 || g.Records[3].IndexInGroup != 0 {
		t.Errorf("unexpected identity %+v", g.Records[3])
	}
	if g.Groups[3].First != 3 || g.Groups[3].Count != 3 {
		t.Errorf("unexpected group bounds %+v", g.Groups[3])
	}

	again := Build(m, testURLs)
	for i := range g.Records {
		if g.Records[i] != again.Records[i] {
			t.Errorf("build is not deterministic at %d", i)
		}
	}
}

func TestBuildDimensions(t *testing.T) {
	tests := []struct {
		name       string
		size       []string
		wantW      int
		wantH      int
		wantIssues int
	}{
		{name: "valid size", size: []string{"800x600"}, wantW: 800, wantH: 600},
		{name: "missing size uses default", size: nil, wantW: 1080, wantH: 1080},
		{name: "empty size uses default", size: []string{""}, wantW: 1080, wantH: 1080},
		{name: "no separator", size: []string{"800"}, wantW: 1080, wantH: 1080, wantIssues: 1},
		{name: "extra separator", size: []string{"800x600x"}, wantW: 1080, wantH: 1080, wantIssues: 1},
		{name: "not a number", size: []string{"abcx600"}, wantW: 1080, wantH: 1080, wantIssues: 1},
		{name: "zero width", size: []string{"0x600"}, wantW: 1080, wantH: 1080, wantIssues: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := &models.Manifest{List: []models.MonthGroup{{Links: []string{"a.jpg", "b.jpg"}, Sizes: tt.size}}}
			g := Build(m, testURLs)

			r := g.Records[0]
			if r.Width != tt.wantW || r.Height != tt.wantH {
				t.Errorf("got %dx%d, want %dx%d", r.Width, r.Height, tt.wantW, tt.wantH)
			}
			if len(g.Issues) != tt.wantIssues {
				t.Errorf("expected %d issues, got %d", tt.wantIssues, len(g.Issues))
			}
			if g.Records[1].Width != 1080 {
				t.Errorf("second record should keep defaults, got %d", g.Records[1].Width)
			}
		})
	}
}

func TestAspectRatioPercent(t *testing.T) {
	m := &models.Manifest{List: []models.MonthGroup{{
		Links:    []string{"a.jpg", "b.jpg", "c.jpg"},
		MinSizes: []string{"2x1", "3x2", "bad"},
	}}}
	g := Build(m, testURLs)

	if got := fmt.Sprintf("%.4f", g.Records[0].AspectRatioPercent); got != "50.0000" {
		t.Errorf("2x1: got %s, want 50.0000", got)
	}
	if g.Records[1].AspectRatioPercent != 66.6667 {
		t.Errorf("3x2: got %v, want 66.6667", g.Records[1].AspectRatioPercent)
	}
	if g.Records[2].AspectRatioPercent != 100 || g.Records[2].ThumbWidth != 1 {
		t.Errorf("malformed min size should fall back to 1x1, got %+v", g.Records[2])
	}
	if len(g.Issues) != 1 || g.Issues[0].Field != "min_size" {
		t.Errorf("expected one min_size issue, got %v", g.Issues)
	}
}

func TestParseSize(t *testing.T) {
	w, h, err := ParseSize("1920x1080")
	if err != nil || w != 1920 || h != 1080 {
		t.Errorf("ParseSize = %d, %d, %v", w, h, err)
	}
	for _, bad := range []string{"", "x", "1920", "1920X1080", "1x2x3", "-1x5"} {
		if _, _, err := ParseSize(bad); err == nil {
			t.Errorf("expected error for %q", bad)
		}
	}
}

func TestItemsFollowRecords(t *testing.T) {
	m := &models.Manifest{List: []models.MonthGroup{{
		Year: 2024, Month: 5,
		Links:    []string{"a.jpg", "b.jpg"},
		Sizes:    []string{"800x600", "400x400"},
		Captions: []string{"first"},
	}}}
	items := Build(m, testURLs).Items()

	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}
	if items[1].W != 400 || items[1].H != 400 || items[1].Src != testURLs.Photos+"b.jpg" {
		t.Errorf("unexpected item %+v", items[1])
	}
	if items[0].Title != "first" || items[1].Title != "" {
		t.Errorf("unexpected captions %q %q", items[0].Title, items[1].Title)
	}
}

func TestBuildNilManifest(t *testing.T) {
	if Build(nil, testURLs).Len() != 0 {
		t.Error("nil manifest should build an empty gallery")
	}
}
