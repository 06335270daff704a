package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"

	"photo-gallery/pkg/bootstrap"
	"photo-gallery/pkg/config"
	"photo-gallery/pkg/gallery"
	"photo-gallery/pkg/manifest"
	"photo-gallery/pkg/models"
)

const galleryCacheKey = "gallery"

// ManifestLoader fetches a manifest
type ManifestLoader interface {
	Load(ctx context.Context, rawURL string) (*models.Manifest, error)
}

// Service handles loading and caching galleries and starting page sessions
type Service struct {
	config       *config.Config
	loader       ManifestLoader
	galleryCache *cache.Cache
	registry     *bootstrap.Registry
	mu           sync.RWMutex
}

// NewService creates a service for cfg
func NewService(cfg *config.Config) *Service {
	return NewServiceWithLoader(cfg, manifest.NewLoader(cfg.RequestTimeout))
}

// NewServiceWithLoader creates a service using a custom manifest loader
func NewServiceWithLoader(cfg *config.Config, loader ManifestLoader) *Service {
	return &Service{
		config:       cfg,
		loader:       loader,
		galleryCache: cache.New(cfg.CacheTTL, 2*cfg.CacheTTL+time.Minute),
		registry:     bootstrap.NewRegistry(),
	}
}

// Config returns the service configuration
func (s *Service) Config() *config.Config {
	return s.config
}

// Registry returns the capability registry sessions wait on
func (s *Service) Registry() *bootstrap.Registry {
	return s.registry
}

// Assets maps capability names to their script URLs
func (s *Service) Assets() map[string]string {
	return map[string]string{
		bootstrap.Masonry:      s.config.Assets.Masonry,
		bootstrap.PhotoSwipe:   s.config.Assets.PhotoSwipe,
		bootstrap.PhotoSwipeUI: s.config.Assets.PhotoSwipeUI,
	}
}

// ResolveCapabilities probes the asset URLs, or marks them ready when probing is off
func (s *Service) ResolveCapabilities(ctx context.Context) {
	if !s.config.Assets.Probe {
		bootstrap.ProvideAll(s.registry, s.Assets())
		return
	}
	p := &bootstrap.Prober{
		Client:   &http.Client{Timeout: s.config.Assets.ReadyTimeout},
		Registry: s.registry,
		Limit:    3,
	}
	p.Probe(ctx, s.Assets())
}

// LoadManifest fetches the configured manifest, bypassing the cache
func (s *Service) LoadManifest(ctx context.Context) (*models.Manifest, error) {
	return s.loader.Load(ctx, s.config.ManifestURL)
}

// GetGallery returns the built gallery, from cache unless refresh is set
func (s *Service) GetGallery(ctx context.Context, refresh bool) (*gallery.Gallery, error) {
	if !refresh && s.config.CacheTTL > 0 {
		s.mu.RLock()
		if cached, found := s.galleryCache.Get(galleryCacheKey); found {
			s.mu.RUnlock()
			slog.Debug("Using cached gallery")
			return cached.(*gallery.Gallery), nil
		}
		s.mu.RUnlock()
	}

	slog.Info("Loading manifest", "url", s.config.ManifestURL)
	m, err := s.LoadManifest(ctx)
	if err != nil {
		return nil, err
	}

	g := gallery.Build(m, s.URLs())
	slog.Info("Built gallery", "groups", len(g.Groups), "photos", g.Len(), "malformed", len(g.Issues))

	if s.config.CacheTTL > 0 {
		s.mu.Lock()
		s.galleryCache.Set(galleryCacheKey, g, cache.DefaultExpiration)
		s.mu.Unlock()
	}
	return g, nil
}

// FlushCache drops the cached gallery
func (s *Service) FlushCache() {
	s.mu.Lock()
	s.galleryCache.Flush()
	s.mu.Unlock()
}

// URLs returns the photo and thumbnail prefixes, resolved against the manifest URL
func (s *Service) URLs() gallery.URLs {
	return gallery.URLs{
		Photos: resolvePrefix(s.config.ManifestURL, s.config.PhotosURL),
		Thumbs: resolvePrefix(s.config.ManifestURL, s.config.ThumbsURL),
	}
}

// resolvePrefix makes a relative prefix relative to an http(s) manifest
func resolvePrefix(manifestURL, prefix string) string {
	p, err := url.Parse(prefix)
	if err != nil || p.IsAbs() || strings.HasPrefix(prefix, "/") {
		return prefix
	}
	base, err := url.Parse(manifestURL)
	if err != nil || (base.Scheme != "http" && base.Scheme != "https") {
		return prefix
	}
	resolved := base.ResolveReference(p).String()
	if strings.HasSuffix(prefix, "/") && !strings.HasSuffix(resolved, "/") {
		resolved += "/"
	}
	return resolved
}

// describeLoadError turns a manifest failure into a short log-friendly kind
func describeLoadError(err error) string {
	var le *manifest.LoadError
	if errors.As(err, &le) {
		return fmt.Sprintf("%s error", le.Kind)
	}
	return "error"
}
