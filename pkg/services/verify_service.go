package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path"
	"strings"

	"cloud.google.com/go/storage"
	"github.com/schollz/progressbar/v3"
	"golang.org/x/sync/errgroup"
	"google.golang.org/api/iterator"

	"photo-gallery/pkg/gallery"
)

// ObjectLister lists object names under prefix in bucket
type ObjectLister func(ctx context.Context, bucket, prefix string) ([]string, error)

// MissingObject is a manifest link without a stored file
type MissingObject struct {
	Index  int
	Link   string
	Object string
}

// VerifyReport summarises a bucket check
type VerifyReport struct {
	Checked int
	Missing []MissingObject
}

// VerifyBucket checks that every photo and thumbnail named by the gallery
// exists under the photos and thumbs prefixes of bucket.
func (s *Service) VerifyBucket(ctx context.Context, g *gallery.Gallery, bucket string, list ObjectLister, showProgress bool) (*VerifyReport, error) {
	if bucket == "" {
		return nil, errors.New("no bucket configured")
	}
	if list == nil {
		list = listBucketObjects
	}

	prefixes := []string{bucketPrefix(s.config.PhotosURL), bucketPrefix(s.config.ThumbsURL)}
	found := make([]map[string]bool, len(prefixes))

	eg, egCtx := errgroup.WithContext(ctx)
	for i, prefix := range prefixes {
		eg.Go(func() error {
			names, err := list(egCtx, bucket, prefix)
			if err != nil {
				return fmt.Errorf("listing %s/%s: %w", bucket, prefix, err)
			}
			set := make(map[string]bool, len(names))
			for _, n := range names {
				set[n] = true
			}
			found[i] = set
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	var bar *progressbar.ProgressBar
	if showProgress {
		bar = progressbar.Default(int64(g.Len()), "verifying")
	}

	report := &VerifyReport{}
	for _, r := range g.Records {
		for i, prefix := range prefixes {
			object := path.Join(prefix, r.Filename)
			report.Checked++
			if !found[i][object] {
				report.Missing = append(report.Missing, MissingObject{Index: r.Index, Link: r.Filename, Object: object})
			}
		}
		if bar != nil {
			_ = bar.Add(1)
		}
	}

	slog.Info("Bucket verified", "bucket", bucket, "checked", report.Checked, "missing", len(report.Missing))
	return report, nil
}

// bucketPrefix turns a configured URL prefix into an object prefix: the path
// of an absolute URL, or the relative prefix itself.
func bucketPrefix(prefix string) string {
	if i := strings.Index(prefix, "://"); i != -1 {
		rest := prefix[i+3:]
		if j := strings.Index(rest, "/"); j != -1 {
			prefix = rest[j:]
		} else {
			prefix = ""
		}
	}
	return strings.Trim(prefix, "/")
}

func listBucketObjects(ctx context.Context, bucket, prefix string) ([]string, error) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}
	defer client.Close()

	query := &storage.Query{}
	if prefix != "" {
		query.Prefix = prefix + "/"
	}
	it := client.Bucket(bucket).Objects(ctx, query)

	var names []string
	for {
		attrs, err := it.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("error iterating objects: %w", err)
		}
		names = append(names, attrs.Name)
	}
	return names, nil
}
