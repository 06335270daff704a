// Package gallery turns a manifest into the flat, ordered record sequence that
// rendering and the lightbox share as their index space.
package gallery

import (
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"strings"

	"photo-gallery/pkg/models"
)

const (
	DefaultSize    = "1080x1080"
	DefaultMinSize = "1x1"
)

// URLs are the prefixes joined with each manifest link
type URLs struct {
	Photos string
	Thumbs string
}

// MalformedEntryError reports a dimension string that fell back to its default
type MalformedEntryError struct {
	GroupIndex   int
	IndexInGroup int
	Field        string
	Value        string
	Fallback     string
}

func (e *MalformedEntryError) Error() string {
	return fmt.Sprintf("malformed %s %q for photo %d in group %d, using %s",
		e.Field, e.Value, e.IndexInGroup, e.GroupIndex, e.Fallback)
}

// Gallery is the built model: groups, records and any recovered entries
type Gallery struct {
	Groups  []models.Group
	Records []models.PhotoRecord
	Issues  []*MalformedEntryError
}

// Build walks groups in manifest order and links in array order
func Build(m *models.Manifest, urls URLs) *Gallery {
	g := &Gallery{}
	if m == nil {
		return g
	}

	for gi, group := range m.List {
		g.Groups = append(g.Groups, models.Group{
			Index: gi,
			Year:  group.Year,
			Month: group.Month,
			First: len(g.Records),
			Count: len(group.Links),
		})

		for i, link := range group.Links {
			w, h := g.dimensions(gi, i, "size", at(group.Sizes, i), DefaultSize)
			tw, th := g.dimensions(gi, i, "min_size", at(group.MinSizes, i), DefaultMinSize)

			g.Records = append(g.Records, models.PhotoRecord{
				Index:              len(g.Records),
				ID:                 RecordID(gi, i),
				GroupIndex:         gi,
				IndexInGroup:       i,
				Filename:           link,
				FullURL:            urls.Photos + link,
				ThumbURL:           urls.Thumbs + link,
				Width:              w,
				Height:             h,
				ThumbWidth:         tw,
				ThumbHeight:        th,
				AspectRatioPercent: AspectRatioPercent(tw, th),
				Caption:            at(group.Captions, i),
			})
		}
	}

	return g
}

// dimensions parses value, recording an issue and falling back when it is malformed.
// An absent value uses the fallback silently.
func (g *Gallery) dimensions(gi, i int, field, value, fallback string) (int, int) {
	if value == "" {
		value = fallback
	}
	if w, h, err := ParseSize(value); err == nil {
		return w, h
	}

	issue := &MalformedEntryError{GroupIndex: gi, IndexInGroup: i, Field: field, Value: value, Fallback: fallback}
	slog.Warn("Malformed photo entry", "group", gi, "index", i, "field", field, "value", value, "fallback", fallback)
	g.Issues = append(g.Issues, issue)

	w, h, _ := ParseSize(fallback)
	return w, h
}

// ParseSize splits "WxH" on the literal x into two positive integers
func ParseSize(s string) (int, int, error) {
	parts := strings.Split(s, "x")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("size %q is not WxH", s)
	}
	w, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, fmt.Errorf("size %q: width: %w", s, err)
	}
	h, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, fmt.Errorf("size %q: height: %w", s, err)
	}
	if w <= 0 || h <= 0 {
		return 0, 0, fmt.Errorf("size %q must be positive", s)
	}
	return w, h, nil
}

// AspectRatioPercent is height/width*100 rounded to 4 decimal digits
func AspectRatioPercent(width, height int) float64 {
	if width <= 0 {
		return 100
	}
	return math.Round(float64(height)/float64(width)*100*1e4) / 1e4
}

// FormatSize renders dimensions as "WxH"
func FormatSize(w, h int) string {
	return fmt.Sprintf("%dx%d", w, h)
}

// RecordID is the stable identifier carried from record to rendered node
func RecordID(groupIndex, indexInGroup int) string {
	return fmt.Sprintf("p-%d-%d", groupIndex, indexInGroup)
}

// Items returns the viewer items in record order
func (g *Gallery) Items() []models.Item {
	items := make([]models.Item, len(g.Records))
	for i, r := range g.Records {
		items[i] = models.Item{
			Src:   r.FullURL,
			MSrc:  r.ThumbURL,
			W:     r.Width,
			H:     r.Height,
			Title: r.Caption,
		}
	}
	return items
}

// Len returns the number of records
func (g *Gallery) Len() int {
	return len(g.Records)
}

func at(values []string, i int) string {
	if i < len(values) {
		return values[i]
	}
	return ""
}
