// Package history keeps a local record of files sent to the server so the
// share id can be recovered after the terminal output is gone.
package history

import (
	"context"

	"github.com/dmitrijs2005/guardianbox/internal/client/models"
)

type Repository interface {
	Insert(ctx context.Context, rec *models.ShareRecord) error
	GetAll(ctx context.Context) ([]models.ShareRecord, error)
	DeleteByID(ctx context.Context, id string) error
}
