// Package render builds the gallery markup from the record sequence.
//
// Every thumbnail is a figure carrying data-index and data-id. Document order
// of the figures equals record order, and Result.Index maps each figure back to
// its record so later stages never re-derive positions from attribute strings.
package render

import (
	"errors"
	"fmt"
	"strconv"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"photo-gallery/pkg/dom"
	"photo-gallery/pkg/gallery"
	"photo-gallery/pkg/models"
)

const (
	// Placeholder is an inert 1x1 transparent GIF shown until lazy-loading promotes the image
	Placeholder = "data:image/gif;base64,R0lGODlhAQABAIAAAAAAAP///yH5BAEAAAAALAAAAAABAAEAAAIBRAA7"

	ContainerSelector = ".instagram"
	LoadingSelector   = ".open-ins"
	GallerySelector   = ".photos"
	GridSelector      = ".img-box-ul"
	ItemSelector      = ".grid-item"
	ThumbSelector     = "figure.thumb"
	ImageSelector     = "img[data-src]"
)

// ErrNoContainer is returned when rendering into a nil container
var ErrNoContainer = errors.New("gallery container not found")

// Result is the outcome of one render pass
type Result struct {
	Root    *html.Node // div.photos, the gallery root the lightbox listens on
	Grid    *html.Node // div.img-box-ul, the masonry container
	Titles  []*html.Node
	Thumbs  []*html.Node
	Index   map[*html.Node]int
	Gallery *gallery.Gallery
}

// Record returns the record a thumbnail node was rendered from
func (r *Result) Record(n *html.Node) (models.PhotoRecord, bool) {
	i, ok := r.Index[n]
	if !ok {
		return models.PhotoRecord{}, false
	}
	return r.Gallery.Records[i], true
}

// Renderer produces gallery markup
type Renderer struct {
	// Heading formats the year and month heading parts
	Heading func(year, month int) (string, string)
}

// NewRenderer returns a renderer using the album's heading format
func NewRenderer() *Renderer {
	return &Renderer{Heading: defaultHeading}
}

func defaultHeading(year, month int) (string, string) {
	return fmt.Sprintf("%d年", year), fmt.Sprintf("%d月", month)
}

// Render replaces the content of container with the gallery
func (r *Renderer) Render(container *html.Node, g *gallery.Gallery) (*Result, error) {
	if container == nil {
		return nil, ErrNoContainer
	}

	res := &Result{
		Root: dom.Element(atom.Div,
			"class", "photos",
			"itemscope", "",
			"itemtype", "http://schema.org/ImageGallery"),
		Grid:    dom.Element(atom.Div, "class", "img-box-ul"),
		Index:   make(map[*html.Node]int, len(g.Records)),
		Gallery: g,
	}
	res.Root.AppendChild(res.Grid)

	for _, group := range g.Groups {
		title := r.title(group)
		res.Titles = append(res.Titles, title)
		res.Grid.AppendChild(title)

		for i := group.First; i < group.First+group.Count; i++ {
			thumb := thumbnail(g.Records[i])
			res.Index[thumb] = len(res.Thumbs)
			res.Thumbs = append(res.Thumbs, thumb)
			res.Grid.AppendChild(thumb)
		}
	}

	dom.RemoveChildren(container)
	container.AppendChild(res.Root)
	return res, nil
}

func (r *Renderer) title(group models.Group) *html.Node {
	heading := r.Heading
	if heading == nil {
		heading = defaultHeading
	}
	year, month := heading(group.Year, group.Month)

	h1 := dom.Element(atom.H1, "class", "year")
	h1.AppendChild(dom.Text(year))
	em := dom.Element(atom.Em)
	em.AppendChild(dom.Text(month))
	h1.AppendChild(em)

	div := dom.Element(atom.Div, "class", "grid-item grid-item--title")
	div.AppendChild(h1)
	return div
}

func thumbnail(rec models.PhotoRecord) *html.Node {
	figure := dom.Element(atom.Figure,
		"class", "grid-item thumb",
		"data-index", strconv.Itoa(rec.Index),
		"data-id", rec.ID,
		"itemprop", "associatedMedia",
		"itemscope", "",
		"itemtype", "http://schema.org/ImageObject")

	link := dom.Element(atom.A,
		"href", rec.FullURL,
		"itemprop", "contentUrl",
		"data-size", gallery.FormatSize(rec.Width, rec.Height))

	box := dom.Element(atom.Div,
		"class", "aspect-ratio-box",
		"style", fmt.Sprintf("padding-top: %.4f%%;", rec.AspectRatioPercent))

	img := dom.Element(atom.Img,
		"class", "lazy",
		"src", Placeholder,
		"data-src", rec.ThumbURL,
		"itemprop", "thumbnail",
		"alt", rec.Caption)

	box.AppendChild(img)
	link.AppendChild(box)
	figure.AppendChild(link)
	return figure
}

// RenderFailure writes msg into the loading indicator and leaves the rest of the container alone
func RenderFailure(container *html.Node, msg string) error {
	if container == nil {
		return ErrNoContainer
	}
	indicator, err := dom.Query(container, LoadingSelector)
	if err != nil {
		return err
	}
	if indicator == nil {
		return fmt.Errorf("loading indicator %s not found", LoadingSelector)
	}
	dom.SetText(indicator, msg)
	return nil
}
