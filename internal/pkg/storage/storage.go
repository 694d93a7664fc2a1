// Package storage writes objects to S3, Google Cloud Storage or MinIO behind
// one interface.
package storage

import (
	"context"
	"errors"
	"io"
)

// ErrBucketRequired is returned when an operation has no bucket.
var ErrBucketRequired = errors.New("storage: bucket is required")

// Storage stores objects.
type Storage interface {
	io.Closer
	PutObject(ctx context.Context, bucket, key string, r io.Reader, opts PutOptions) (ObjectInfo, error)
}

// PutOptions configures an upload.
type PutOptions struct {
	// Size is the content length, or -1 when unknown.
	Size        int64
	ContentType string
	Metadata    map[string]string
}

// ObjectInfo describes a stored object.
type ObjectInfo struct {
	Bucket string
	Key    string
	Size   int64
	ETag   string
}

func checkPut(bucket, key string) error {
	if bucket == "" {
		return ErrBucketRequired
	}
	if key == "" {
		return errors.New("storage: key is required")
	}
	return nil
}
