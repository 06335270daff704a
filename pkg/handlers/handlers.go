package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"strconv"

	"github.com/eknkc/pug"

	"photo-gallery/pkg/manifest"
	"photo-gallery/pkg/models"
	"photo-gallery/pkg/render"
	"photo-gallery/pkg/services"
)

// ShellFunc writes the host page the gallery is rendered into
type ShellFunc func(w io.Writer, data models.Index) error

// Handler serves the gallery page and its JSON API
type Handler struct {
	service *services.Service
	shell   ShellFunc
	lister  services.ObjectLister // nil lists the bucket through Cloud Storage
}

// New creates a handler rendering views/index.pug from the configured views directory
func New(svc *services.Service) *Handler {
	return NewWithShell(svc, PugShell(svc.Config().ViewsDir))
}

// NewWithShell creates a handler with a custom page shell
func NewWithShell(svc *services.Service, shell ShellFunc) *Handler {
	return &Handler{service: svc, shell: shell}
}

// PugShell compiles index.pug under viewsDir on every request
func PugShell(viewsDir string) ShellFunc {
	return func(w io.Writer, data models.Index) error {
		template, err := pug.CompileFile(filepath.Join(viewsDir, "index.pug"), pug.Options{})
		if err != nil {
			return err
		}
		return template.Execute(w, data)
	}
}

type galleryResponse struct {
	Groups  []models.Group       `json:"groups"`
	Records []models.PhotoRecord `json:"records"`
	Issues  []string             `json:"issues,omitempty"`
}

type openResponse struct {
	Session string       `json:"session"`
	Index   int          `json:"index"`
	Count   int          `json:"count"`
	Item    models.Item  `json:"item"`
	Bounds  *models.Rect `json:"bounds,omitempty"`
}

// PageHandler renders the page shell and runs a gallery session over it
func (h *Handler) PageHandler(w http.ResponseWriter, r *http.Request) {
	cfg := h.service.Config()

	var shell bytes.Buffer
	err := h.shell(&shell, models.Index{
		Title:   cfg.Title,
		Styles:  cfg.Assets.Styles,
		Scripts: []string{cfg.Assets.Masonry, cfg.Assets.PhotoSwipe, cfg.Assets.PhotoSwipeUI, "/js/gallery.js"},
	})
	if err != nil {
		slog.Error("Template error", "err", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	doc, err := render.ParseDocument(&shell)
	if err != nil {
		slog.Error("Unable to parse page shell", "err", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	opts := services.SessionOptions{Refresh: r.URL.Query().Has("refresh")}
	if v := r.URL.Query().Get("scroll"); v != "" {
		if y, err := strconv.ParseFloat(v, 64); err == nil && y >= 0 {
			opts.ScrollY = y
		}
	}

	// a failed load is already shown in the page
	sess := h.service.Start(r.Context(), doc, opts)
	slog.Debug("Generating gallery page", "session", sess.ID, "started", sess.Started)

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := doc.Render(w); err != nil {
		slog.Error("Unable to write page", "session", sess.ID, "err", err)
	}
}

// GalleryHandler returns the gallery model as JSON
func (h *Handler) GalleryHandler(w http.ResponseWriter, r *http.Request) {
	g, err := h.service.GetGallery(r.Context(), r.URL.Query().Has("refresh"))
	if err != nil {
		writeLoadError(w, err)
		return
	}

	resp := galleryResponse{Groups: g.Groups, Records: g.Records}
	for _, issue := range g.Issues {
		resp.Issues = append(resp.Issues, issue.Error())
	}
	writeJSON(w, http.StatusOK, resp)
}

// ItemsHandler returns the ordered viewer item list
func (h *Handler) ItemsHandler(w http.ResponseWriter, r *http.Request) {
	g, err := h.service.GetGallery(r.Context(), r.URL.Query().Has("refresh"))
	if err != nil {
		writeLoadError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, g.Items())
}

// OpenHandler activates the thumbnail at ?index=N in a headless session
func (h *Handler) OpenHandler(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(r.URL.Query().Get("index"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "index must be an integer"})
		return
	}

	sess, err := h.service.Headless(r.Context(), services.SessionOptions{})
	if err != nil {
		writeLoadError(w, err)
		return
	}

	act, handled, err := sess.Lightbox.ActivateIndex(index)
	if err != nil {
		writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
		return
	}
	if !handled {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "no photo at index " + strconv.Itoa(index)})
		return
	}

	resp := openResponse{Session: sess.ID, Index: act.Index, Count: act.Count, Item: act.Item}
	if opening := sess.Viewer.Last(); opening != nil {
		resp.Bounds = opening.Bounds
	}
	writeJSON(w, http.StatusOK, resp)
}

// HealthHandler reports liveness
func (h *Handler) HealthHandler(w http.ResponseWriter, _ *http.Request) {
	if _, err := w.Write([]byte("OK")); err != nil {
		slog.Error("Unable to write healthcheck", "err", err)
	}
}

func writeLoadError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	var le *manifest.LoadError
	if errors.As(err, &le) {
		status = http.StatusBadGateway
	}
	slog.Error("Failed to load or process photo data", "err", err)
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Unable to write response", "err", err)
	}
}
