package lightbox

import (
	"encoding/json"
	"sync"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"photo-gallery/pkg/dom"
	"photo-gallery/pkg/models"
)

// ItemsScriptID is the id of the embedded item list read by the page script
const ItemsScriptID = "gallery-items"

// Opening is one recorded viewer call
type Opening struct {
	Items  []models.Item `json:"items"`
	Index  int           `json:"index"`
	Bounds *models.Rect  `json:"bounds,omitempty"`
}

// Recorder is a Viewer that keeps the last opening, resolving the thumb bounds at open time
type Recorder struct {
	mu   sync.Mutex
	last *Opening
}

// Open implements Viewer
func (r *Recorder) Open(items []models.Item, index int, bounds BoundsFunc) error {
	o := &Opening{Items: items, Index: index}
	if bounds != nil {
		if rect, ok := bounds(index); ok {
			o.Bounds = &rect
		}
	}
	r.mu.Lock()
	r.last = o
	r.mu.Unlock()
	return nil
}

// Last returns the most recent opening, or nil
func (r *Recorder) Last() *Opening {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.last
}

// Embed appends the item list to parent as a JSON script the browser viewer reads,
// replacing an earlier embed.
func Embed(parent *html.Node, items []models.Item) error {
	data, err := json.Marshal(struct {
		Items []models.Item `json:"items"`
	}{Items: items})
	if err != nil {
		return err
	}

	if old, _ := dom.Query(parent, "script#"+ItemsScriptID); old != nil && old.Parent != nil {
		old.Parent.RemoveChild(old)
	}

	script := dom.Element(atom.Script, "type", "application/json", "id", ItemsScriptID)
	script.AppendChild(dom.Text(string(data)))
	parent.AppendChild(script)
	return nil
}
