package files

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/guardianbox/internal/common"
	"github.com/dmitrijs2005/guardianbox/internal/server/models"
)

// InMemoryRepository implements Repository with a mutex-guarded map.
// Used by tests and by deployments that run without a database.
type InMemoryRepository struct {
	mu   sync.RWMutex
	rows map[string]*models.FileObject
}

// NewInMemoryRepository constructs an empty in-memory repository.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{rows: make(map[string]*models.FileObject)}
}

func (r *InMemoryRepository) Insert(ctx context.Context, obj *models.FileObject) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rows[obj.ID]; ok {
		return common.ErrDuplicateID
	}
	r.rows[obj.ID] = obj.Clone()
	return nil
}

func (r *InMemoryRepository) GetByID(ctx context.Context, id string) (*models.FileObject, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	obj, ok := r.rows[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	return obj.Clone(), nil
}

func (r *InMemoryRepository) IncrementDownloads(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if obj, ok := r.rows[id]; ok {
		obj.DownloadsDone++
	}
	// absent id: already deleted, no-op success
	return nil
}

func (r *InMemoryRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.rows, id)
	return nil
}

func (r *InMemoryRepository) ListAll(ctx context.Context) ([]*models.FileObject, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	result := make([]*models.FileObject, 0, len(r.rows))
	for _, obj := range r.rows {
		result = append(result, obj.Clone())
	}
	return result, nil
}
