package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/net/html"
	"golang.org/x/sync/errgroup"
)

// Capability names of the browser libraries the page needs
const (
	Masonry      = "Masonry"
	PhotoSwipe   = "PhotoSwipe"
	PhotoSwipeUI = "PhotoSwipeUI_Default"
)

// Gate runs the pipeline only when every required capability is ready and
// the page contains a gallery container. Neither missing piece is an error.
type Gate struct {
	Registry *Registry
	Timeout  time.Duration
}

// Run waits for required, locates the container and calls onReady with it.
// It reports whether onReady ran.
func (g *Gate) Run(ctx context.Context, required []string, locate func() *html.Node, onReady func(ctx context.Context, container *html.Node) error) (bool, error) {
	waitCtx := ctx
	if g.Timeout > 0 {
		var cancel context.CancelFunc
		waitCtx, cancel = context.WithTimeout(ctx, g.Timeout)
		defer cancel()
	}

	if err := g.Registry.Await(waitCtx, required...); err != nil {
		slog.Info("Gallery not started, capabilities unavailable", "error", err)
		return false, nil
	}

	container := locate()
	if container == nil {
		slog.Debug("Gallery not started, no container on page")
		return false, nil
	}

	return true, onReady(ctx, container)
}

// Prober resolves asset capabilities by checking their script URLs respond
type Prober struct {
	Client   *http.Client
	Registry *Registry
	Limit    int
}

// Probe checks every asset concurrently, providing or failing each name
func (p *Prober) Probe(ctx context.Context, assets map[string]string) {
	var g errgroup.Group
	if p.Limit > 0 {
		g.SetLimit(p.Limit)
	}

	for name, url := range assets {
		g.Go(func() error {
			if err := p.check(ctx, url); err != nil {
				slog.Warn("Asset unavailable", "capability", name, "url", url, "error", err)
				p.Registry.Fail(name, err)
				return nil
			}
			slog.Debug("Asset ready", "capability", name, "url", url)
			p.Registry.Provide(name)
			return nil
		})
	}
	_ = g.Wait()
}

func (p *Prober) check(ctx context.Context, url string) error {
	if url == "" {
		return fmt.Errorf("no url configured")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, url, nil)
	if err != nil {
		return err
	}
	resp, err := p.Client.Do(req)
	if err != nil {
		return err
	}
	resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("bad status code: %d", resp.StatusCode)
	}
	return nil
}

// ProvideAll marks every asset ready without probing
func ProvideAll(r *Registry, assets map[string]string) {
	for name := range assets {
		r.Provide(name)
	}
}
