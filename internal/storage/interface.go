package storage

import (
	"context"
	"io"
)

// Object describes a stored object returned by List.
type Object struct {
	Key  string
	Size int64
}

// ObjectStorage defines the object storage operations used for background packs
type ObjectStorage interface {
	// List returns every object whose key starts with prefix
	List(ctx context.Context, prefix string) ([]Object, error)

	// Download downloads an object from storage
	Download(ctx context.Context, key string) (io.ReadCloser, error)

	// Upload uploads an object to storage
	Upload(ctx context.Context, key string, reader io.Reader, size int64, contentType string) error

	// Exists checks if an object exists
	Exists(ctx context.Context, key string) (bool, error)

	// EnsureBucket creates the bucket if it doesn't exist
	EnsureBucket(ctx context.Context) error
}
