// Package models defines server-side data models persisted in the database.
package models

// FileObject is the metadata row for one uploaded ciphertext blob. The blob
// itself lives in object storage under StorageKey; the row is the single
// source of truth for the object's lifecycle policy and counters.
type FileObject struct {
	// ID is the short opaque token the object is addressed by. Immutable.
	ID string
	// StorageKey locates the blob in the storage backend. Never exposed
	// through any API response.
	StorageKey string
	// Size of the stored blob in bytes, informational.
	Size int64

	// UploadedAt is seconds since epoch.
	UploadedAt int64
	// ExpiresAt is seconds since epoch; nil means the object never expires
	// by time.
	ExpiresAt *int64
	// DownloadLimit caps successful downloads; nil means unlimited.
	DownloadLimit *int64
	// DownloadsDone counts committed downloads. Monotonically non-decreasing.
	DownloadsDone int64
}

// Clone returns a deep copy so repository snapshots cannot alias live rows.
func (f *FileObject) Clone() *FileObject {
	c := *f
	if f.ExpiresAt != nil {
		v := *f.ExpiresAt
		c.ExpiresAt = &v
	}
	if f.DownloadLimit != nil {
		v := *f.DownloadLimit
		c.DownloadLimit = &v
	}
	return &c
}
