// Package transfer orchestrates upload and download of ciphertext blobs,
// applying the lifecycle policy and serializing counter mutation and
// deletion per object id.
package transfer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrijs2005/guardianbox/internal/common"
	"github.com/dmitrijs2005/guardianbox/internal/logging"
	"github.com/dmitrijs2005/guardianbox/internal/server/lifecycle"
	"github.com/dmitrijs2005/guardianbox/internal/server/models"
	"github.com/dmitrijs2005/guardianbox/internal/server/repositories/files"
	"github.com/dmitrijs2005/guardianbox/internal/server/storage"
)

// idLength is the length of the public object token: a uuid v4 hex string
// truncated to 12 characters, unguessable but short enough for a URL.
const idLength = 12

// Policy holds the defaults applied when an upload does not specify its
// own expiry or download limit. A zero value means "no default".
type Policy struct {
	DefaultExpirySeconds int64
	DefaultDownloadLimit int64
}

// FileObjectView is the caller-facing projection of a metadata row. It
// never carries the storage key.
type FileObjectView struct {
	ID            string `json:"id"`
	Size          int64  `json:"size"`
	UploadedAt    int64  `json:"uploaded_at"`
	ExpiresAt     *int64 `json:"expires_at"`
	DownloadLimit *int64 `json:"download_limit"`
	DownloadsDone int64  `json:"downloads_done"`
}

// Service implements the object transfer operations. All reads that may
// mutate state (the active check plus counter increment in Download) and
// all deletions for a given id run under a per-id lock; operations on
// different ids proceed fully in parallel.
type Service struct {
	repo   files.Repository
	store  storage.Backend
	logger logging.Logger
	policy Policy
	locks  *keyedMutex

	// seams for tests
	now   func() time.Time
	newID func() string
}

// NewService constructs a Service over the given metadata repository and
// storage backend.
func NewService(repo files.Repository, store storage.Backend, logger logging.Logger, policy Policy) *Service {
	return &Service{
		repo:   repo,
		store:  store,
		logger: logger,
		policy: policy,
		locks:  newKeyedMutex(),
		now:    time.Now,
		newID:  generateID,
	}
}

func generateID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:idLength]
}

// Upload stores the blob first and creates the metadata row only after the
// store succeeds, so a failure can never leave metadata pointing at a
// missing blob. Returns the new object id.
func (s *Service) Upload(ctx context.Context, r io.Reader, size int64, expiresIn, limit *int64) (string, error) {
	id := s.newID()
	key := id + ".enc"

	written, err := s.store.Put(ctx, key, r, size)
	if err != nil {
		return "", fmt.Errorf("%w: %v", common.ErrUploadFailed, err)
	}

	now := s.now().Unix()
	obj := &models.FileObject{
		ID:         id,
		StorageKey: key,
		Size:       written,
		UploadedAt: now,
	}
	switch {
	case expiresIn != nil:
		e := now + *expiresIn
		obj.ExpiresAt = &e
	case s.policy.DefaultExpirySeconds > 0:
		e := now + s.policy.DefaultExpirySeconds
		obj.ExpiresAt = &e
	}
	switch {
	case limit != nil:
		l := *limit
		obj.DownloadLimit = &l
	case s.policy.DefaultDownloadLimit > 0:
		l := s.policy.DefaultDownloadLimit
		obj.DownloadLimit = &l
	}

	if err := s.repo.Insert(ctx, obj); err != nil {
		// roll the blob back so no unreferenced ciphertext is left behind
		if derr := s.store.Delete(ctx, key); derr != nil {
			s.logger.Warn(ctx, "orphaned blob after failed insert", "key", key, "error", derr)
		}
		return "", fmt.Errorf("%w: %v", common.ErrUploadFailed, err)
	}

	return id, nil
}

// GetMetadata returns the object's public metadata. An object that is no
// longer active is lazily deleted and reported as expired or not found.
func (s *Service) GetMetadata(ctx context.Context, id string) (*FileObjectView, error) {
	s.locks.Lock(id)
	defer s.locks.Unlock(id)

	obj, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	switch lifecycle.Evaluate(obj, s.now().Unix()) {
	case lifecycle.Expired:
		s.removeLocked(ctx, obj)
		return nil, common.ErrExpired
	case lifecycle.LimitReached:
		s.removeLocked(ctx, obj)
		return nil, common.ErrNotFound
	}

	return &FileObjectView{
		ID:            obj.ID,
		Size:          obj.Size,
		UploadedAt:    obj.UploadedAt,
		ExpiresAt:     obj.ExpiresAt,
		DownloadLimit: obj.DownloadLimit,
		DownloadsDone: obj.DownloadsDone,
	}, nil
}

// Download serves the blob if the object is active, counting the download
// before any bytes are streamed so an aborted transfer still counts
// against the limit. When the increment makes the object reach its limit
// the blob is still served for this call; the limit-reached transition
// fires on the next access. A non-active object is lazily deleted and the
// reason surfaced as ErrExpired or ErrLimitReached.
func (s *Service) Download(ctx context.Context, id string) (io.ReadCloser, int64, error) {
	s.locks.Lock(id)
	defer s.locks.Unlock(id)

	obj, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, 0, err
	}

	switch lifecycle.Evaluate(obj, s.now().Unix()) {
	case lifecycle.Expired:
		s.removeLocked(ctx, obj)
		return nil, 0, common.ErrExpired
	case lifecycle.LimitReached:
		s.removeLocked(ctx, obj)
		return nil, 0, common.ErrLimitReached
	}

	if err := s.repo.IncrementDownloads(ctx, id); err != nil {
		return nil, 0, err
	}

	// The stream is opened before the per-id lock is released so a racing
	// access that observes the now-exhausted counter cannot delete the
	// blob out from under this download. The long-running byte transfer
	// itself happens after the lock is gone.
	rc, err := s.store.Get(ctx, obj.StorageKey)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, 0, common.ErrNotFound
		}
		return nil, 0, err
	}
	return rc, obj.Size, nil
}

// DeleteIfInactive removes the object when its policy says it is no longer
// active, re-checking under the per-id lock so a racing download or a
// second sweep pass cannot delete it twice. Reports whether this call
// performed the deletion. An absent id is not an error.
func (s *Service) DeleteIfInactive(ctx context.Context, id string) (bool, error) {
	s.locks.Lock(id)
	defer s.locks.Unlock(id)

	obj, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return false, nil
		}
		return false, err
	}

	if lifecycle.Evaluate(obj, s.now().Unix()) == lifecycle.Active {
		return false, nil
	}

	if err := s.store.Delete(ctx, obj.StorageKey); err != nil {
		return false, err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return false, err
	}
	return true, nil
}

// removeLocked deletes the blob and then the metadata row. Must be called
// with the object's per-id lock held. Blob deletion comes first: a crash
// in between leaves an orphaned row a later pass can retry, never a live
// row pointing at freed storage reachable by a new upload.
func (s *Service) removeLocked(ctx context.Context, obj *models.FileObject) {
	if err := s.store.Delete(ctx, obj.StorageKey); err != nil {
		// keep the row so the sweeper retries on its next pass
		s.logger.Warn(ctx, "blob delete failed, keeping metadata for retry", "id", obj.ID, "error", err)
		return
	}
	if err := s.repo.Delete(ctx, obj.ID); err != nil {
		s.logger.Warn(ctx, "metadata delete failed", "id", obj.ID, "error", err)
	}
}
