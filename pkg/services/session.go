package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/net/html"

	"photo-gallery/pkg/bootstrap"
	"photo-gallery/pkg/dom"
	"photo-gallery/pkg/gallery"
	"photo-gallery/pkg/layout"
	"photo-gallery/pkg/lazyload"
	"photo-gallery/pkg/lightbox"
	"photo-gallery/pkg/models"
	"photo-gallery/pkg/render"
)

// HeadlessShell is the minimal host page used when no template is rendered
const HeadlessShell = `<!DOCTYPE html><html><head><meta charset="utf-8"></head><body>` +
	`<div class="instagram"><div class="open-ins">Loading...</div></div></body></html>`

// Session is the state of one page load. Nothing in it is shared with other sessions.
type Session struct {
	ID        string
	Doc       *render.Document
	Started   bool
	Err       error
	Gallery   *gallery.Gallery
	Result    *render.Result
	Placement layout.Placement
	Lazy      *lazyload.Coordinator
	Layout    *layout.Coordinator
	Lightbox  *lightbox.Controller
	Viewer    *lightbox.Recorder
}

// SessionOptions tune a single page load
type SessionOptions struct {
	Refresh bool
	ScrollY float64
}

// RequiredCapabilities are the browser libraries a gallery page needs
var RequiredCapabilities = []string{bootstrap.Masonry, bootstrap.PhotoSwipe, bootstrap.PhotoSwipeUI}

// NewSession creates an unstarted session over doc
func (s *Service) NewSession(doc *render.Document) *Session {
	cfg := s.config
	viewer := &lightbox.Recorder{}
	return &Session{
		ID:       uuid.NewString(),
		Doc:      doc,
		Lazy:     lazyload.NewCoordinator(cfg.Viewport.LazyMargin),
		Layout:   layout.NewCoordinator(s.masonry()),
		Lightbox: lightbox.New(viewer),
		Viewer:   viewer,
	}
}

// Start runs the pipeline over doc once the capabilities are ready. A page
// without a container, or without its libraries, yields a session that never
// started and no error. A manifest failure is recorded on the session and shown
// in the loading indicator.
func (s *Service) Start(ctx context.Context, doc *render.Document, opts SessionOptions) *Session {
	sess := s.NewSession(doc)
	log := slog.With("session", sess.ID)

	gate := &bootstrap.Gate{Registry: s.registry, Timeout: s.config.Assets.ReadyTimeout}
	started, err := gate.Run(ctx, RequiredCapabilities, doc.Container, func(ctx context.Context, container *html.Node) error {
		return s.run(ctx, sess, container, opts)
	})
	sess.Started = started
	sess.Err = err

	if err != nil {
		log.Error("Failed to load or process photo data", "kind", describeLoadError(err), "error", err)
	} else if started {
		log.Info("Gallery rendered", "photos", sess.Gallery.Len(), "promoted", sess.Gallery.Len()-sess.Lazy.Pending())
	}
	return sess
}

// Headless starts a session over the built-in shell, for API and CLI use
func (s *Service) Headless(ctx context.Context, opts SessionOptions) (*Session, error) {
	doc, err := render.ParseDocument(strings.NewReader(HeadlessShell))
	if err != nil {
		return nil, err
	}
	sess := s.Start(ctx, doc, opts)
	if sess.Err != nil {
		return sess, sess.Err
	}
	if !sess.Started {
		return sess, fmt.Errorf("gallery not started")
	}
	return sess, nil
}

func (s *Service) run(ctx context.Context, sess *Session, container *html.Node, opts SessionOptions) error {
	g, err := s.GetGallery(ctx, opts.Refresh)
	if err != nil {
		if ferr := render.RenderFailure(container, s.config.FailureMessage); ferr != nil {
			slog.Warn("Could not show failure message", "error", ferr)
		}
		return err
	}
	sess.Gallery = g

	res, err := render.NewRenderer().Render(container, g)
	if err != nil {
		return err
	}
	sess.Result = res

	// Lazy-loading and layout are independent: layout works from the reserved
	// boxes and never waits for promotions.
	if _, err := sess.Lazy.Attach(res.Root, render.ImageSelector); err != nil {
		return err
	}
	sess.Lazy.Annotate(res.Grid)
	placement, err := sess.Layout.Apply(res.Grid, render.ItemSelector)
	if err != nil {
		return err
	}
	sess.Placement = placement

	viewport := models.Rect{
		Y: opts.ScrollY,
		W: s.config.Layout.ContainerWidth,
		H: s.config.Viewport.Height,
	}
	sess.Lazy.Observe(viewport, placement.Locate)

	sess.Lightbox.Locate = placement.Locate
	sess.Lightbox.ScrollY = opts.ScrollY
	if _, err := sess.Lightbox.Install(container, render.GallerySelector, res); err != nil {
		return err
	}

	host, _ := dom.Query(sess.Doc.Root, "body")
	if host == nil {
		host = container
	}
	return lightbox.Embed(host, sess.Lightbox.Items())
}

func (s *Service) masonry() *layout.Masonry {
	return &layout.Masonry{
		ContainerWidth: s.config.Layout.ContainerWidth,
		ColumnWidth:    s.config.Layout.ColumnWidth,
		TitleHeight:    s.config.Layout.TitleHeight,
	}
}
