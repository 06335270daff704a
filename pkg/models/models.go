package models

import "encoding/json"

// Manifest is the published photo manifest (data.json)
type Manifest struct {
	List []MonthGroup `json:"list"`
}

// MonthGroup holds the photos of one month, index-aligned by position
type MonthGroup struct {
	Year     int      `json:"year"`
	Month    int      `json:"month"`
	Links    []string `json:"link"`
	Sizes    []string `json:"size,omitempty"`
	MinSizes []string `json:"min_size,omitempty"`
	Captions []string `json:"text,omitempty"`
}

// UnmarshalJSON accepts both the wrapped form {"arr": {...}} used by the
// published manifest and a flat group object.
func (g *MonthGroup) UnmarshalJSON(data []byte) error {
	type plain MonthGroup
	var wrapped struct {
		Arr *plain `json:"arr"`
	}
	if err := json.Unmarshal(data, &wrapped); err != nil {
		return err
	}
	if wrapped.Arr != nil {
		*g = MonthGroup(*wrapped.Arr)
		return nil
	}

	var flat plain
	if err := json.Unmarshal(data, &flat); err != nil {
		return err
	}
	*g = MonthGroup(flat)
	return nil
}

// MarshalJSON writes the wrapped form so exported manifests stay readable by the page script
func (g MonthGroup) MarshalJSON() ([]byte, error) {
	type plain MonthGroup
	return json.Marshal(struct {
		Arr plain `json:"arr"`
	}{Arr: plain(g)})
}

// PhotoRecord is one photo, flattened across all month groups
type PhotoRecord struct {
	Index              int     `json:"index"`
	ID                 string  `json:"id"`
	GroupIndex         int     `json:"groupIndex"`
	IndexInGroup       int     `json:"indexInGroup"`
	Filename           string  `json:"filename"`
	FullURL            string  `json:"fullUrl"`
	ThumbURL           string  `json:"thumbUrl"`
	Width              int     `json:"width"`
	Height             int     `json:"height"`
	ThumbWidth         int     `json:"thumbWidth"`
	ThumbHeight        int     `json:"thumbHeight"`
	AspectRatioPercent float64 `json:"aspectRatioPercent"`
	Caption            string  `json:"caption,omitempty"`
}

// Group describes a month heading and the records that follow it
type Group struct {
	Index int `json:"index"`
	Year  int `json:"year"`
	Month int `json:"month"`
	First int `json:"first"`
	Count int `json:"count"`
}

// Item is a single entry handed to the lightbox viewer
type Item struct {
	Src   string `json:"src"`
	MSrc  string `json:"msrc,omitempty"`
	W     int    `json:"w"`
	H     int    `json:"h"`
	Title string `json:"title,omitempty"`
}

// Rect is a box in page coordinates (pixels)
type Rect struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	W float64 `json:"w"`
	H float64 `json:"h"`
}

// Intersects reports whether two rects overlap
func (r Rect) Intersects(o Rect) bool {
	return r.X < o.X+o.W && o.X < r.X+r.W && r.Y < o.Y+o.H && o.Y < r.Y+r.H
}

// Grow returns r expanded by margin on every side
func (r Rect) Grow(margin float64) Rect {
	return Rect{X: r.X - margin, Y: r.Y - margin, W: r.W + 2*margin, H: r.H + 2*margin}
}

// Index represents the page shell data
type Index struct {
	Title   string
	Styles  []string
	Scripts []string
}
