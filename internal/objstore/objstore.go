// Package objstore abstracts the object store the media library lives in.
package objstore

import (
	"context"
	"errors"
	"io"
)

// ErrNotFound is returned when an object key has nothing behind it.
var ErrNotFound = errors.New("object not found")

// PutOptions carries per-object metadata set at upload time.
type PutOptions struct {
	ContentType  string
	CacheControl string
}

// Store is an object store holding song files and artwork. Keys are
// slash separated paths, see paths.go for the layout.
type Store interface {
	// Put uploads an object. size may be -1 when unknown.
	Put(ctx context.Context, key string, r io.Reader, size int64, opts PutOptions) error

	// Get opens an object for reading. Returns ErrNotFound when the key
	// does not exist.
	Get(ctx context.Context, key string) (io.ReadCloser, error)

	// Exists reports whether an object exists at key.
	Exists(ctx context.Context, key string) (bool, error)

	// Delete removes an object. Returns ErrNotFound when the key does not
	// exist; callers decide whether that matters.
	Delete(ctx context.Context, key string) error
}

// Download copies the object at key into the writer.
func Download(ctx context.Context, s Store, key string, w io.Writer) error {
	r, err := s.Get(ctx, key)
	if err != nil {
		return err
	}
	defer r.Close()

	_, err = io.Copy(w, r)
	return err
}
