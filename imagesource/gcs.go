package imagesource

import (
	"context"
	"fmt"
	"strings"
	"time"

	"cloud.google.com/go/storage"
)

// GCSResolver maps storage keys to short-lived signed URLs. It accepts
// three source shapes: fully qualified http(s) URLs (passed through),
// gs://bucket/object URIs, and bare object keys resolved against the
// configured default bucket.
type GCSResolver struct {
	client        *storage.Client
	defaultBucket string
	ttl           time.Duration
}

func NewGCSResolver(client *storage.Client, defaultBucket string) *GCSResolver {
	return &GCSResolver{
		client:        client,
		defaultBucket: defaultBucket,
		ttl:           15 * time.Minute,
	}
}

func (r *GCSResolver) ResolveURL(_ context.Context, keyOrURL string) (string, error) {
	if strings.HasPrefix(keyOrURL, "http://") || strings.HasPrefix(keyOrURL, "https://") {
		return keyOrURL, nil
	}

	bucket := r.defaultBucket
	object := keyOrURL
	if rest, ok := strings.CutPrefix(keyOrURL, "gs://"); ok {
		parts := strings.SplitN(rest, "/", 2)
		if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
			return "", fmt.Errorf("malformed gs uri %q", keyOrURL)
		}
		bucket, object = parts[0], parts[1]
	}
	if bucket == "" {
		return "", fmt.Errorf("no bucket configured for storage key %q", keyOrURL)
	}

	url, err := r.client.Bucket(bucket).SignedURL(object, &storage.SignedURLOptions{
		Method:  "GET",
		Expires: time.Now().Add(r.ttl),
		Scheme:  storage.SigningSchemeV4,
	})
	if err != nil {
		return "", fmt.Errorf("failed to sign URL for gs://%s/%s: %w", bucket, object, err)
	}
	return url, nil
}
