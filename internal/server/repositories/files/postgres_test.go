package files

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/accountd/accountd/internal/common"
	"github.com/accountd/accountd/internal/server/models"
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return NewPostgresRepository(db), mock, db
}

func TestCreate_Success(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	now := time.Now()
	mock.ExpectQuery(`(?s)^\s*INSERT\s+INTO\s+files\b.*RETURNING\s+id,\s+created_at`).
		WithArgs(int64(1), "report.pdf", "users/1/2026/8/29/abc", "application/pdf", int64(1024), models.StorageLocal).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(int64(3), now))

	file, err := repo.Create(context.Background(), &models.File{
		OwnerID:  1,
		Name:     "report.pdf",
		Path:     "users/1/2026/8/29/abc",
		MimeType: "application/pdf",
		Size:     1024,
		Storage:  models.StorageLocal,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if file.ID != 3 {
		t.Fatalf("want id 3, got %d", file.ID)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestFindByID_NotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`FROM\s+files\s+WHERE\s+id\s*=\s*\$1`).
		WithArgs(int64(99)).
		WillReturnError(sql.ErrNoRows)

	_, err := repo.FindByID(context.Background(), 99)
	if !errors.Is(err, common.ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
}

func TestFindByOwner_EmptyIsNotError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`FROM\s+files\s+WHERE\s+owner_id\s*=\s*\$1`).
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "owner_id", "name", "path", "mime_type", "size", "storage", "created_at", "updated_at"}))

	result, err := repo.FindByOwner(context.Background(), 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result == nil || len(result) != 0 {
		t.Fatalf("want empty slice, got %v", result)
	}
}

func TestDelete_AbsentRowIsNotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(`DELETE\s+FROM\s+files\s+WHERE\s+id\s*=\s*\$1`).
		WithArgs(int64(99)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	if err := repo.Delete(context.Background(), 99); !errors.Is(err, common.ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
}
