package archive

import (
	"context"

	"cloud.google.com/go/storage"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/tyche/pkg/utils/safe"
	"google.golang.org/api/option"
)

// GCS writes archive objects to a Cloud Storage bucket
type GCS struct {
	client *storage.Client
	bucket string
}

// NewGCS creates a Cloud Storage backed Storage
func NewGCS(ctx context.Context, bucket string, opts ...option.ClientOption) (*GCS, error) {
	if bucket == "" {
		return nil, goerr.New("GCS bucket is required")
	}

	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create GCS client", goerr.V("bucket", bucket))
	}

	return &GCS{client: client, bucket: bucket}, nil
}

// Put uploads data as a JSON object
func (g *GCS) Put(ctx context.Context, path string, data []byte) error {
	w := g.client.Bucket(g.bucket).Object(path).NewWriter(ctx)
	w.ContentType = "application/json"

	if _, err := w.Write(data); err != nil {
		safe.Close(ctx, w)
		return goerr.Wrap(err, "failed to write GCS object", goerr.V("bucket", g.bucket), goerr.V("path", path))
	}
	if err := w.Close(); err != nil {
		return goerr.Wrap(err, "failed to close GCS writer", goerr.V("bucket", g.bucket), goerr.V("path", path))
	}
	return nil
}

// Close releases the underlying client
func (g *GCS) Close() error {
	if err := g.client.Close(); err != nil {
		return goerr.Wrap(err, "failed to close GCS client")
	}
	return nil
}
