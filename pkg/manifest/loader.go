// Package manifest fetches and validates the photo manifest.
package manifest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"cloud.google.com/go/storage"

	"photo-gallery/pkg/models"
)

// ObjectOpener opens an object in a storage bucket
type ObjectOpener func(ctx context.Context, bucket, object string) (io.ReadCloser, error)

// Loader fetches manifests over HTTP(S) or from gs:// objects. It never retries.
type Loader struct {
	HTTPClient *http.Client
	OpenObject ObjectOpener
	Now        func() time.Time
}

// NewLoader creates a loader with the given request timeout
func NewLoader(timeout time.Duration) *Loader {
	return &Loader{
		HTTPClient: &http.Client{Timeout: timeout},
		OpenObject: openBucketObject,
		Now:        time.Now,
	}
}

// Load fetches, decodes and validates the manifest at rawURL
func (l *Loader) Load(ctx context.Context, rawURL string) (*models.Manifest, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, newError(KindNetwork, rawURL, err)
	}

	var body []byte
	if u.Scheme == "gs" {
		body, err = l.readObject(ctx, u)
	} else {
		body, err = l.fetch(ctx, CacheBust(u, l.Now()))
	}
	if err != nil {
		return nil, err
	}

	return Decode(rawURL, body)
}

// Decode parses and validates a manifest body. Only a body that is not JSON at
// all is a parse error; JSON of the wrong shape fails validation.
func Decode(source string, body []byte) (*models.Manifest, error) {
	if !json.Valid(body) {
		var v any
		return nil, newError(KindParse, source, json.Unmarshal(body, &v))
	}

	var m models.Manifest
	if err := json.Unmarshal(body, &m); err != nil {
		return nil, newError(KindValidation, source, fmt.Errorf("photo data has the wrong shape: %w", err))
	}
	if len(m.List) == 0 {
		return nil, newError(KindValidation, source, errors.New("photo data is empty or invalid"))
	}
	return &m, nil
}

// CacheBust returns u with t=<epoch-ms> added, keeping any existing query
func CacheBust(u *url.URL, now time.Time) string {
	busted := *u
	q := busted.Query()
	q.Set("t", strconv.FormatInt(now.UnixMilli(), 10))
	busted.RawQuery = q.Encode()
	return busted.String()
}

func (l *Loader) fetch(ctx context.Context, target string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, newError(KindNetwork, target, err)
	}
	req.Header.Set("Accept", "application/json")

	slog.Debug("Fetching manifest", "url", target)
	resp, err := l.HTTPClient.Do(req)
	if err != nil {
		return nil, newError(KindNetwork, target, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, newError(KindNetwork, target, fmt.Errorf("network response was not ok: %s", resp.Status))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, newError(KindNetwork, target, err)
	}
	return body, nil
}

func (l *Loader) readObject(ctx context.Context, u *url.URL) ([]byte, error) {
	object := strings.TrimPrefix(u.Path, "/")
	slog.Debug("Reading manifest object", "bucket", u.Host, "object", object)

	reader, err := l.OpenObject(ctx, u.Host, object)
	if err != nil {
		return nil, newError(KindNetwork, u.String(), err)
	}
	defer reader.Close()

	body, err := io.ReadAll(reader)
	if err != nil {
		return nil, newError(KindNetwork, u.String(), err)
	}
	return body, nil
}

// bucketReader closes the storage client together with the object reader
type bucketReader struct {
	*storage.Reader
	client *storage.Client
}

func (r *bucketReader) Close() error {
	err := r.Reader.Close()
	if cerr := r.client.Close(); err == nil {
		err = cerr
	}
	return err
}

func openBucketObject(ctx context.Context, bucket, object string) (io.ReadCloser, error) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}

	reader, err := client.Bucket(bucket).Object(object).NewReader(ctx)
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("Object(%q).NewReader: %w", object, err)
	}
	return &bucketReader{Reader: reader, client: client}, nil
}
