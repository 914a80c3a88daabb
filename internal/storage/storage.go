package storage

import (
	"context"
	"errors"
	"io"
	"time"
)

// ErrURLNotSupported is returned by backends that cannot mint client-facing
// URLs; callers fall back to streaming through Open.
var ErrURLNotSupported = errors.New("storage backend does not support URLs")

// Store persists uploaded media files under opaque keys.
type Store interface {
	// Put writes the object; on error no partial object remains visible.
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	// Delete removes the object. Deleting a missing object is not an error.
	Delete(ctx context.Context, key string) error
	// URL returns a time-limited location the client can fetch the object from.
	URL(ctx context.Context, key string, expires time.Duration) (string, error)
	// Open returns the object contents for direct serving.
	Open(ctx context.Context, key string) (io.ReadCloser, error)
}
