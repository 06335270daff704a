package manifest

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"
)

const sample = `{"list":[{"arr":{"year":2024,"month":5,"link":["a.jpg","b.jpg"],"size":["800x600","400x400"]}}]}`

func newTestLoader() *Loader {
	l := NewLoader(5 * time.Second)
	l.Now = func() time.Time { return time.UnixMilli(1700000000123) }
	return l
}

func TestLoadAppendsCacheBuster(t *testing.T) {
	var gotQuery url.Values
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, sample)
	}))
	defer srv.Close()

	m, err := newTestLoader().Load(context.Background(), srv.URL+"/lib/album/data.json?v=2")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if gotQuery.Get("t") != "1700000000123" {
		t.Errorf("expected cache buster t=1700000000123, got %q", gotQuery.Get("t"))
	}
	if gotQuery.Get("v") != "2" {
		t.Errorf("existing query lost: %v", gotQuery)
	}
	if len(m.List) != 1 || len(m.List[0].Links) != 2 {
		t.Fatalf("unexpected manifest %+v", m)
	}
	if m.List[0].Year != 2024 || m.List[0].Sizes[1] != "400x400" {
		t.Errorf("unexpected group %+v", m.List[0])
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   error
	}{
		{name: "non-2xx is a network error", status: http.StatusNotFound, body: "missing", want: ErrNetwork},
		{name: "invalid json is a parse error", status: http.StatusOK, body: "{list:", want: ErrParse},
		{name: "empty list is a validation error", status: http.StatusOK, body: `{"list":[]}`, want: ErrValidation},
		{name: "missing list is a validation error", status: http.StatusOK, body: `{}`, want: ErrValidation},
		{name: "truncated json is a parse error", status: http.StatusOK, body: `{"list":[`, want: ErrParse},
		{name: "top-level array is a validation error", status: http.StatusOK, body: `[]`, want: ErrValidation},
		{name: "top-level string is a validation error", status: http.StatusOK, body: `"photos"`, want: ErrValidation},
		{name: "top-level number is a validation error", status: http.StatusOK, body: `42`, want: ErrValidation},
		{name: "list object is a validation error", status: http.StatusOK, body: `{"list":{}}`, want: ErrValidation},
		{name: "list string is a validation error", status: http.StatusOK, body: `{"list":"abc"}`, want: ErrValidation},
		{name: "wrong group field type is a validation error", status: http.StatusOK, body: `{"list":[{"arr":{"year":"2024","link":["a.jpg"]}}]}`, want: ErrValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				io.WriteString(w, tt.body)
			}))
			defer srv.Close()

			_, err := newTestLoader().Load(context.Background(), srv.URL+"/data.json")
			if !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
			var loadErr *LoadError
			if !errors.As(err, &loadErr) {
				t.Fatalf("expected *LoadError, got %T", err)
			}
		})
	}
}

func TestLoadTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	addr := srv.URL
	srv.Close()

	_, err := newTestLoader().Load(context.Background(), addr+"/data.json")
	if !errors.Is(err, ErrNetwork) {
		t.Fatalf("expected network error, got %v", err)
	}
}

func TestLoadBucketObject(t *testing.T) {
	l := newTestLoader()
	var gotBucket, gotObject string
	l.OpenObject = func(ctx context.Context, bucket, object string) (io.ReadCloser, error) {
		gotBucket, gotObject = bucket, object
		return io.NopCloser(strings.NewReader(sample)), nil
	}

	m, err := l.Load(context.Background(), "gs://album/lib/album/data.json")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if gotBucket != "album" || gotObject != "lib/album/data.json" {
		t.Errorf("opened %s/%s", gotBucket, gotObject)
	}
	if len(m.List) != 1 {
		t.Errorf("unexpected list length %d", len(m.List))
	}

	l.OpenObject = func(ctx context.Context, bucket, object string) (io.ReadCloser, error) {
		return nil, errors.New("storage: object doesn't exist")
	}
	if _, err := l.Load(context.Background(), "gs://album/missing.json"); !errors.Is(err, ErrNetwork) {
		t.Errorf("expected network error, got %v", err)
	}
}

func TestDecodeFlatGroups(t *testing.T) {
	m, err := Decode("inline", []byte(`{"list":[{"year":2023,"month":1,"link":["x.jpg"],"text":["hi"]}]}`))
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if m.List[0].Year != 2023 || m.List[0].Captions[0] != "hi" {
		t.Errorf("unexpected group %+v", m.List[0])
	}
}
