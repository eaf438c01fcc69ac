package files

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/guardianbox/internal/common"
	"github.com/dmitrijs2005/guardianbox/internal/server/models"
	"github.com/jackc/pgx/v5/pgconn"
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return NewPostgresRepository(db), mock, db
}

func int64ptr(v int64) *int64 { return &v }

func TestInsert_Success(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^\s*INSERT\s+INTO\s+files\b.*VALUES\s*\(\$1,\s*\$2,\s*\$3,\s*\$4,\s*\$5,\s*\$6,\s*\$7\)`

	mock.ExpectExec(q).
		WithArgs("abc123def456", "abc123def456.enc", int64(100), int64(1700000000),
			sql.NullInt64{Int64: 1700086400, Valid: true}, sql.NullInt64{Int64: 5, Valid: true}, int64(0)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Insert(context.Background(), &models.FileObject{
		ID:            "abc123def456",
		StorageKey:    "abc123def456.enc",
		Size:          100,
		UploadedAt:    1700000000,
		ExpiresAt:     int64ptr(1700086400),
		DownloadLimit: int64ptr(5),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestInsert_NullPolicyFields(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(`INSERT\s+INTO\s+files`).
		WithArgs("abc123def456", "abc123def456.enc", int64(1), int64(1700000000),
			sql.NullInt64{}, sql.NullInt64{}, int64(0)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Insert(context.Background(), &models.FileObject{
		ID:         "abc123def456",
		StorageKey: "abc123def456.enc",
		Size:       1,
		UploadedAt: 1700000000,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestInsert_DuplicateID(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(`INSERT\s+INTO\s+files`).
		WillReturnError(&pgconn.PgError{Code: pgUniqueViolation})

	err := repo.Insert(context.Background(), &models.FileObject{ID: "dup"})
	if !errors.Is(err, common.ErrDuplicateID) {
		t.Fatalf("want ErrDuplicateID, got %v", err)
	}
}

func TestInsert_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(`INSERT\s+INTO\s+files`).WillReturnError(errors.New("db down"))

	err := repo.Insert(context.Background(), &models.FileObject{ID: "x"})
	if err == nil || errors.Is(err, common.ErrDuplicateID) {
		t.Fatalf("expected wrapped db error, got %v", err)
	}
}

func fileColumns() []string {
	return []string{"id", "storage_key", "size", "uploaded_at", "expires_at", "download_limit", "downloads_done"}
}

func TestGetByID_Success(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	rows := sqlmock.NewRows(fileColumns()).
		AddRow("abc123def456", "abc123def456.enc", int64(100), int64(1700000000), int64(1700086400), int64(5), int64(2))

	mock.ExpectQuery(`SELECT\s+id,\s*storage_key.*FROM\s+files\s+WHERE\s+id\s*=\s*\$1`).
		WithArgs("abc123def456").
		WillReturnRows(rows)

	obj, err := repo.GetByID(context.Background(), "abc123def456")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if obj.StorageKey != "abc123def456.enc" || obj.DownloadsDone != 2 {
		t.Fatalf("unexpected row: %+v", obj)
	}
	if obj.ExpiresAt == nil || *obj.ExpiresAt != 1700086400 {
		t.Fatalf("expires_at not scanned: %+v", obj.ExpiresAt)
	}
	if obj.DownloadLimit == nil || *obj.DownloadLimit != 5 {
		t.Fatalf("download_limit not scanned: %+v", obj.DownloadLimit)
	}
}

func TestGetByID_NullPolicyFields(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	rows := sqlmock.NewRows(fileColumns()).
		AddRow("abc123def456", "k", int64(1), int64(1700000000), nil, nil, int64(0))

	mock.ExpectQuery(`SELECT\s+id,\s*storage_key.*FROM\s+files\s+WHERE\s+id\s*=\s*\$1`).
		WithArgs("abc123def456").
		WillReturnRows(rows)

	obj, err := repo.GetByID(context.Background(), "abc123def456")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if obj.ExpiresAt != nil || obj.DownloadLimit != nil {
		t.Fatalf("expected nil policy fields, got %+v", obj)
	}
}

func TestGetByID_NotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`SELECT\s+id,\s*storage_key.*FROM\s+files\s+WHERE\s+id\s*=\s*\$1`).
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows(fileColumns()))

	_, err := repo.GetByID(context.Background(), "missing")
	if !errors.Is(err, common.ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
}

func TestIncrementDownloads_AbsentIDIsNoop(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(`UPDATE\s+files\s+SET\s+downloads_done\s*=\s*downloads_done\s*\+\s*1`).
		WithArgs("gone").
		WillReturnResult(sqlmock.NewResult(0, 0))

	if err := repo.IncrementDownloads(context.Background(), "gone"); err != nil {
		t.Fatalf("expected no-op success, got %v", err)
	}
}

func TestDelete_Idempotent(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(`DELETE\s+FROM\s+files\s+WHERE\s+id\s*=\s*\$1`).
		WithArgs("gone").
		WillReturnResult(sqlmock.NewResult(0, 0))

	if err := repo.Delete(context.Background(), "gone"); err != nil {
		t.Fatalf("expected success for absent id, got %v", err)
	}
}

func TestListAll(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	rows := sqlmock.NewRows(fileColumns()).
		AddRow("a", "a.enc", int64(1), int64(1), nil, nil, int64(0)).
		AddRow("b", "b.enc", int64(2), int64(2), int64(9), int64(3), int64(1))

	mock.ExpectQuery(`SELECT\s+id,\s*storage_key.*FROM\s+files`).
		WillReturnRows(rows)

	list, err := repo.ListAll(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("want 2 rows, got %d", len(list))
	}
}
