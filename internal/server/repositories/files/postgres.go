package files

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/guardianbox/internal/common"
	"github.com/dmitrijs2005/guardianbox/internal/dbx"
	"github.com/dmitrijs2005/guardianbox/internal/server/models"
	"github.com/jackc/pgx/v5/pgconn"
)

// pgUniqueViolation is the PostgreSQL SQLSTATE for unique_violation.
const pgUniqueViolation = "23505"

// PostgresRepository implements Repository over a dbx.DBTX (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Insert creates the metadata row. A primary key conflict maps to
// common.ErrDuplicateID.
func (r *PostgresRepository) Insert(ctx context.Context, obj *models.FileObject) error {
	query := `
		INSERT INTO files (id, storage_key, size, uploaded_at, expires_at, download_limit, downloads_done)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := r.db.ExecContext(ctx, query,
		obj.ID, obj.StorageKey, obj.Size, obj.UploadedAt,
		nullableInt64(obj.ExpiresAt), nullableInt64(obj.DownloadLimit), obj.DownloadsDone)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return common.ErrDuplicateID
		}
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// GetByID returns the row for id or common.ErrNotFound.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.FileObject, error) {
	query := `
		SELECT id, storage_key, size, uploaded_at, expires_at, download_limit, downloads_done
		FROM files WHERE id = $1
	`
	row := r.db.QueryRowContext(ctx, query, id)
	obj, err := scanFileObject(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return obj, nil
}

// IncrementDownloads atomically adds one to downloads_done. An absent id is
// a no-op success: the row can legitimately disappear between a caller's
// read and the increment.
func (r *PostgresRepository) IncrementDownloads(ctx context.Context, id string) error {
	query := `UPDATE files SET downloads_done = downloads_done + 1 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// Delete removes the row. Idempotent; deleting an absent id succeeds.
func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM files WHERE id = $1`, id); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// ListAll returns a snapshot of all current rows, used by the cleanup sweep.
func (r *PostgresRepository) ListAll(ctx context.Context) ([]*models.FileObject, error) {
	query := `
		SELECT id, storage_key, size, uploaded_at, expires_at, download_limit, downloads_done
		FROM files
	`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.FileObject
	for rows.Next() {
		obj, err := scanFileObject(rows.Scan)
		if err != nil {
			return nil, err
		}
		result = append(result, obj)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func scanFileObject(scan func(dest ...any) error) (*models.FileObject, error) {
	var obj models.FileObject
	var expiresAt, downloadLimit sql.NullInt64
	if err := scan(&obj.ID, &obj.StorageKey, &obj.Size, &obj.UploadedAt,
		&expiresAt, &downloadLimit, &obj.DownloadsDone); err != nil {
		return nil, err
	}
	if expiresAt.Valid {
		obj.ExpiresAt = &expiresAt.Int64
	}
	if downloadLimit.Valid {
		obj.DownloadLimit = &downloadLimit.Int64
	}
	return &obj, nil
}

func nullableInt64(v *int64) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *v, Valid: true}
}
