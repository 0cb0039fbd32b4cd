package imagesource

import (
	"context"
	"testing"
)

func TestGCSResolverPassesThroughHTTPURLs(t *testing.T) {
	r := NewGCSResolver(nil, "photos")
	for _, url := range []string{"http://example.com/a.png", "https://example.com/b.jpg"} {
		got, err := r.ResolveURL(context.Background(), url)
		if err != nil {
			t.Fatalf("ResolveURL(%q) failed: %v", url, err)
		}
		if got != url {
			t.Errorf("ResolveURL(%q) = %q, want unchanged", url, got)
		}
	}
}

func TestGCSResolverRejectsMalformedInput(t *testing.T) {
	tests := []struct {
		name   string
		bucket string
		key    string
	}{
		{"gs uri without object", "photos", "gs://bucket-only"},
		{"gs uri with empty object", "photos", "gs://bucket/"},
		{"bare key without default bucket", "", "report-123/photo.jpg"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewGCSResolver(nil, tt.bucket)
			if _, err := r.ResolveURL(context.Background(), tt.key); err == nil {
				t.Errorf("expected an error for %q", tt.key)
			}
		})
	}
}
