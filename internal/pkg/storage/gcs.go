package storage

import (
	"context"
	"errors"
	"fmt"
	"io"

	gcs "cloud.google.com/go/storage"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
)

// GCSOptions configures the Cloud Storage client.
type GCSOptions struct {
	// CredentialsJSON is a service account key. Empty means application
	// default credentials.
	CredentialsJSON []byte
	// Endpoint overrides the API endpoint, e.g. for an emulator.
	Endpoint string
}

// GCS implements Storage on Google Cloud Storage.
type GCS struct {
	client *gcs.Client
}

// NewGCS creates the Cloud Storage client.
func NewGCS(ctx context.Context, opts GCSOptions) (*GCS, error) {
	var clientOpts []option.ClientOption
	if len(opts.CredentialsJSON) > 0 {
		creds, err := google.CredentialsFromJSON(ctx, opts.CredentialsJSON, gcs.ScopeReadWrite)
		if err != nil {
			return nil, fmt.Errorf("storage: gcs credentials: %w", err)
		}
		clientOpts = append(clientOpts, option.WithCredentials(creds))
	}
	if opts.Endpoint != "" {
		clientOpts = append(clientOpts, option.WithEndpoint(opts.Endpoint), option.WithoutAuthentication())
	}

	client, err := gcs.NewClient(ctx, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("storage: gcs client: %w", err)
	}
	return &GCS{client: client}, nil
}

func (g *GCS) PutObject(ctx context.Context, bucket, key string, r io.Reader, opts PutOptions) (ObjectInfo, error) {
	if err := checkPut(bucket, key); err != nil {
		return ObjectInfo{}, err
	}

	w := g.client.Bucket(bucket).Object(key).NewWriter(ctx)
	w.ContentType = opts.ContentType
	w.Metadata = opts.Metadata

	n, err := io.Copy(w, r)
	if err != nil {
		return ObjectInfo{}, errors.Join(fmt.Errorf("storage: gcs write %s/%s: %w", bucket, key, err), w.Close())
	}
	if err := w.Close(); err != nil {
		return ObjectInfo{}, fmt.Errorf("storage: gcs close %s/%s: %w", bucket, key, err)
	}

	info := ObjectInfo{Bucket: bucket, Key: key, Size: n}
	if attrs := w.Attrs(); attrs != nil {
		info.ETag = attrs.Etag
	}
	return info, nil
}

func (g *GCS) Close() error { return g.client.Close() }
