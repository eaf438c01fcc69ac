package history

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/guardianbox/internal/client/models"
)

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Insert(ctx context.Context, rec *models.ShareRecord) error {

	query := ` INSERT INTO shares (id, filename, size, sent_at, expires_at, download_limit)
			values (?, ?, ?, ?, ?, ?)
	`
	_, err := r.db.ExecContext(ctx, query, rec.ID, rec.Filename, rec.Size, rec.SentAt,
		nullableInt64(rec.ExpiresAt), nullableInt64(rec.DownloadLimit))
	if err != nil {
		return fmt.Errorf("failed to insert share record: %w", err)
	}

	return nil
}

func (r *SQLiteRepository) GetAll(ctx context.Context) ([]models.ShareRecord, error) {

	query := ` select id, filename, size, sent_at, expires_at, download_limit from shares order by sent_at`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to select share records: %w", err)
	}

	var result []models.ShareRecord

	defer rows.Close()
	for rows.Next() {
		var item = models.ShareRecord{}
		var expiresAt, downloadLimit sql.NullInt64
		err := rows.Scan(&item.ID, &item.Filename, &item.Size, &item.SentAt, &expiresAt, &downloadLimit)
		if err != nil {
			return nil, err
		}
		if expiresAt.Valid {
			item.ExpiresAt = &expiresAt.Int64
		}
		if downloadLimit.Valid {
			item.DownloadLimit = &downloadLimit.Int64
		}
		result = append(result, item)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return result, nil
}

func (r *SQLiteRepository) DeleteByID(ctx context.Context, id string) error {

	query := `delete from shares where id=?`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("failed to delete share record: %w", err)
	}

	return nil
}

func nullableInt64(v *int64) any {
	if v == nil {
		return nil
	}
	return *v
}
