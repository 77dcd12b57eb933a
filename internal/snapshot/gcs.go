package snapshot

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/storage"
)

// GCS writes snapshots to a Google Cloud Storage bucket.
type GCS struct {
	client *storage.Client
	bucket string
}

// NewGCS creates a GCS-backed snapshot store.
func NewGCS(client *storage.Client, bucket string) (*GCS, error) {
	if client == nil {
		return nil, fmt.Errorf("storage client is required")
	}
	if bucket == "" {
		return nil, fmt.Errorf("bucket name is required")
	}
	return &GCS{client: client, bucket: bucket}, nil
}

// SaveSnapshot uploads the body and returns a gs:// URI.
func (g *GCS) SaveSnapshot(ctx context.Context, site, rawURL string, body []byte) (string, error) {
	objPath := objectPath(site, rawURL, time.Now())
	writer := g.client.Bucket(g.bucket).Object(objPath).NewWriter(ctx)
	writer.ContentType = "text/html; charset=utf-8"
	if _, err := writer.Write(body); err != nil {
		if closeErr := writer.Close(); closeErr != nil {
			return "", fmt.Errorf("write snapshot: %w (close writer: %v)", err, closeErr)
		}
		return "", fmt.Errorf("write snapshot: %w", err)
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("close writer: %w", err)
	}
	return fmt.Sprintf("gs://%s/%s", g.bucket, objPath), nil
}
