// Package files provides the durable store of FileObject rows behind a
// small capability interface, with PostgreSQL and in-memory implementations.
package files

import (
	"context"

	"github.com/dmitrijs2005/guardianbox/internal/server/models"
)

// Repository is the object metadata store.
//
// Semantics the lifecycle logic depends on:
//   - Insert fails with common.ErrDuplicateID when the id is already present.
//   - GetByID returns common.ErrNotFound for an absent id.
//   - IncrementDownloads on an absent id is a no-op success (the row may
//     have been deleted by a racing reader or sweep).
//   - Delete is idempotent; deleting an absent id succeeds.
//   - ListAll returns a snapshot; rows created or deleted mid-scan may or
//     may not appear.
type Repository interface {
	Insert(ctx context.Context, obj *models.FileObject) error
	GetByID(ctx context.Context, id string) (*models.FileObject, error)
	IncrementDownloads(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) error
	ListAll(ctx context.Context) ([]*models.FileObject, error)
}
