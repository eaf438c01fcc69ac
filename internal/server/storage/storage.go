// Package storage abstracts the blob store holding ciphertext envelopes.
// Two backends exist: a local filesystem directory and an S3-compatible
// object store. The transfer service and sweeper only see the Backend
// interface; the variant is chosen at construction time.
package storage

import (
	"context"
	"io"
)

// Backend is a keyed blob store.
//
//   - Put stores the content of r under key and returns the written size.
//     A failed Put surfaces common.ErrStorageUnavailable; the caller must
//     not create metadata for the key afterwards.
//   - Get returns a stream of the blob or common.ErrNotFound.
//   - Delete is idempotent; deleting an absent key succeeds.
type Backend interface {
	Put(ctx context.Context, key string, r io.Reader, size int64) (int64, error)
	Get(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
}
