package services

import (
	"context"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"log/slog"
	"net/http"
	"sync"

	"github.com/schollz/progressbar/v3"
	_ "golang.org/x/image/webp"
	"golang.org/x/sync/errgroup"

	"photo-gallery/pkg/gallery"
	"photo-gallery/pkg/models"
)

const (
	// colorDifferenceThreshold is the per-channel difference (16-bit) that
	// counts two pixels as different, leaving room for compression artifacts
	colorDifferenceThreshold = 256
	blankSampleSize          = 10
)

// MeasureOptions controls dimension measuring
type MeasureOptions struct {
	Force        bool
	Concurrency  int
	ShowProgress bool
	HTTPClient   *http.Client
}

// MeasureReport summarises a measuring run
type MeasureReport struct {
	Measured int
	Failed   int
	Blank    []string
}

type measureJob struct {
	group, index int
	link         string
	needSize     bool
	needMinSize  bool
}

// Measure downloads photos and thumbnails whose size or min_size is missing or
// malformed, reads their dimensions and returns a manifest with them filled in.
// Individual failures are logged and leave the entry untouched.
func (s *Service) Measure(ctx context.Context, m *models.Manifest, opts MeasureOptions) (*models.Manifest, *MeasureReport, error) {
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: s.config.RequestTimeout}
	}
	urls := s.URLs()

	out := &models.Manifest{List: make([]models.MonthGroup, len(m.List))}
	var jobs []measureJob
	for gi, group := range m.List {
		g := group
		g.Sizes = aligned(group.Sizes, len(group.Links))
		g.MinSizes = aligned(group.MinSizes, len(group.Links))
		out.List[gi] = g

		for i, link := range group.Links {
			job := measureJob{
				group:       gi,
				index:       i,
				link:        link,
				needSize:    opts.Force || !validSize(g.Sizes[i]),
				needMinSize: opts.Force || !validSize(g.MinSizes[i]),
			}
			if job.needSize || job.needMinSize {
				jobs = append(jobs, job)
			}
		}
	}

	var bar *progressbar.ProgressBar
	if opts.ShowProgress {
		bar = progressbar.Default(int64(len(jobs)), "measuring")
	}

	report := &MeasureReport{}
	var mu sync.Mutex

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(max(1, opts.Concurrency))
	for _, job := range jobs {
		eg.Go(func() error {
			size, minSize, blank, err := measure(egCtx, client, urls, job)

			mu.Lock()
			defer mu.Unlock()
			if bar != nil {
				_ = bar.Add(1)
			}
			if err != nil {
				slog.Warn("Failed to measure photo", "link", job.link, "error", err)
				report.Failed++
				return nil
			}
			if size != "" {
				out.List[job.group].Sizes[job.index] = size
			}
			if minSize != "" {
				out.List[job.group].MinSizes[job.index] = minSize
			}
			if blank {
				report.Blank = append(report.Blank, job.link)
			}
			report.Measured++
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	slog.Info("Measured photos", "measured", report.Measured, "failed", report.Failed, "blank", len(report.Blank))
	return out, report, nil
}

func measure(ctx context.Context, client *http.Client, urls gallery.URLs, job measureJob) (size, minSize string, blank bool, err error) {
	if job.needSize {
		cfg, err := fetchImage(ctx, client, urls.Photos+job.link, func(r io.Reader) (image.Config, error) {
			cfg, _, err := image.DecodeConfig(r)
			return cfg, err
		})
		if err != nil {
			return "", "", false, fmt.Errorf("photo: %w", err)
		}
		size = gallery.FormatSize(cfg.Width, cfg.Height)
	}

	if job.needMinSize {
		var img image.Image
		cfg, err := fetchImage(ctx, client, urls.Thumbs+job.link, func(r io.Reader) (image.Config, error) {
			decoded, _, err := image.Decode(r)
			if err != nil {
				return image.Config{}, err
			}
			img = decoded
			b := decoded.Bounds()
			return image.Config{Width: b.Dx(), Height: b.Dy()}, nil
		})
		if err != nil {
			return "", "", false, fmt.Errorf("thumbnail: %w", err)
		}
		minSize = gallery.FormatSize(cfg.Width, cfg.Height)
		blank = isBlank(img)
	}

	return size, minSize, blank, nil
}

func fetchImage(ctx context.Context, client *http.Client, src string, decode func(io.Reader) (image.Config, error)) (image.Config, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src, nil)
	if err != nil {
		return image.Config{}, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return image.Config{}, fmt.Errorf("http.Get(%q): %w", src, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return image.Config{}, fmt.Errorf("bad status code: %d", resp.StatusCode)
	}
	cfg, err := decode(resp.Body)
	if err != nil {
		return image.Config{}, fmt.Errorf("decoding %s: %w", src, err)
	}
	return cfg, nil
}

// isBlank samples a grid of pixels and reports whether under 1% differ from
// the top-left pixel, which marks a broken or solid-colour thumbnail.
func isBlank(img image.Image) bool {
	if img == nil {
		return false
	}
	bounds := img.Bounds()
	stepX := max(1, bounds.Dx()/blankSampleSize)
	stepY := max(1, bounds.Dy()/blankSampleSize)

	r1, g1, b1, a1 := img.At(bounds.Min.X, bounds.Min.Y).RGBA()
	different, total := 0, 0
	for y := bounds.Min.Y; y < bounds.Max.Y; y += stepY {
		for x := bounds.Min.X; x < bounds.Max.X; x += stepX {
			total++
			r2, g2, b2, a2 := img.At(x, y).RGBA()
			if channelDiff(r1, r2) || channelDiff(g1, g2) || channelDiff(b1, b2) || channelDiff(a1, a2) {
				different++
			}
		}
	}
	return total > 0 && float64(different)/float64(total) < 0.01
}

func channelDiff(a, b uint32) bool {
	d := int(a) - int(b)
	if d < 0 {
		d = -d
	}
	return d > colorDifferenceThreshold
}

func validSize(s string) bool {
	_, _, err := gallery.ParseSize(s)
	return err == nil
}

func aligned(values []string, n int) []string {
	out := make([]string, n)
	copy(out, values)
	return out
}
