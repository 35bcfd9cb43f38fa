// Package storage defines the gateway interface for backup object stores.
package storage

import (
	"context"
	"time"
)

// Storage defines the read-only operations the check needs from a bucket.
// Implementations are bound to a single bucket at construction time.
type Storage interface {
	// BucketExists reports whether the configured bucket exists and is
	// accessible. A missing bucket is not an error.
	BucketExists(ctx context.Context) (bool, error)

	// ListFolders returns the names of all top-level folders in the bucket,
	// without trailing slashes.
	ListFolders(ctx context.Context) ([]string, error)

	// ListObjects returns every object stored under the given folder.
	ListObjects(ctx context.Context, folder string) ([]ObjectInfo, error)
}

// ObjectInfo contains information about a stored backup object.
type ObjectInfo struct {
	Key          string
	Size         int64
	LastModified time.Time
	StorageClass string
}
