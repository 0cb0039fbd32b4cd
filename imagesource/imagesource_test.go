package imagesource

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"
)

func testFetcher() *HTTPFetcher {
	return &HTTPFetcher{
		Client:     &http.Client{Timeout: time.Second},
		MaxRetries: 3,
		Backoff:    time.Millisecond,
	}
}

func TestHTTPFetcherRecoversFromTransientFailures(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write([]byte("image-bytes"))
	}))
	defer srv.Close()

	data, err := testFetcher().FetchBytes(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("fetch failed: %v", err)
	}
	if !bytes.Equal(data, []byte("image-bytes")) {
		t.Errorf("data = %q, want image-bytes", data)
	}
	if got := calls.Load(); got != 3 {
		t.Errorf("server saw %d calls, want 3", got)
	}
}

func TestHTTPFetcherGivesUpAfterRetryBudget(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := testFetcher().FetchBytes(context.Background(), srv.URL)
	if err == nil {
		t.Fatal("expected an error after exhausting retries")
	}
	if got := calls.Load(); got != 3 {
		t.Errorf("server saw %d calls, want 3", got)
	}
}

func TestHTTPFetcherHonorsContextCancellation(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	f := testFetcher()
	f.Backoff = time.Minute // cancellation must win over the backoff wait
	if _, err := f.FetchBytes(ctx, srv.URL); err == nil {
		t.Fatal("expected an error for a cancelled context")
	}
}

func TestHTTPFetcherLimitsBodySize(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(bytes.Repeat([]byte("x"), 1024))
	}))
	defer srv.Close()

	f := testFetcher()
	f.MaxBytes = 16
	data, err := f.FetchBytes(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("fetch failed: %v", err)
	}
	if len(data) != 16 {
		t.Errorf("len(data) = %d, want 16", len(data))
	}
}

func TestPassthroughResolver(t *testing.T) {
	got, err := PassthroughResolver{}.ResolveURL(context.Background(), "https://example.com/a.png")
	if err != nil {
		t.Fatal(err)
	}
	if got != "https://example.com/a.png" {
		t.Errorf("got %q, want the input unchanged", got)
	}
}

func TestLoaderReadsLocalPaths(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "photo.jpg")
	if err := os.WriteFile(path, []byte("local-bytes"), 0o644); err != nil {
		t.Fatal(err)
	}

	l := &Loader{}
	data, err := l.Load(context.Background(), path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if !bytes.Equal(data, []byte("local-bytes")) {
		t.Errorf("data = %q, want local-bytes", data)
	}
}

func TestLoaderRejectsEmptySource(t *testing.T) {
	l := &Loader{}
	if _, err := l.Load(context.Background(), ""); err == nil {
		t.Error("expected an error for an empty source")
	}
}

func TestLoaderUsesResolverAndFetcher(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("remote-bytes"))
	}))
	defer srv.Close()

	l := &Loader{Resolver: PassthroughResolver{}, Fetcher: testFetcher()}
	data, err := l.Load(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if !bytes.Equal(data, []byte("remote-bytes")) {
		t.Errorf("data = %q, want remote-bytes", data)
	}
}
