package storage

import (
	"context"
	"errors"
	"io"
)

// ErrNotFound is returned by Download for a key that does not exist.
var ErrNotFound = errors.New("object not found")

// ObjectStorage is where learning snapshots are written and read back.
type ObjectStorage interface {
	// Upload uploads an object to storage
	Upload(ctx context.Context, key string, reader io.Reader, size int64, contentType string) error

	// Download downloads an object from storage. A missing key yields ErrNotFound.
	Download(ctx context.Context, key string) (io.ReadCloser, error)
}
