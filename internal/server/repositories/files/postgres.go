package files

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/accountd/accountd/internal/common"
	"github.com/accountd/accountd/internal/dbx"
	"github.com/accountd/accountd/internal/server/models"
)

// PostgresRepository implements Repository over dbx.DBTX.
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, file *models.File) (*models.File, error) {
	query := `
		INSERT INTO files (owner_id, name, path, mime_type, size, storage)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query,
		file.OwnerID, file.Name, file.Path, file.MimeType, file.Size, file.Storage,
	).Scan(&file.ID, &file.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return file, nil
}

func (r *PostgresRepository) FindByID(ctx context.Context, id int64) (*models.File, error) {
	query := `
		SELECT id, owner_id, name, path, mime_type, size, storage, created_at, updated_at
		FROM files WHERE id = $1`

	f := &models.File{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&f.ID, &f.OwnerID, &f.Name, &f.Path, &f.MimeType, &f.Size, &f.Storage, &f.CreatedAt, &f.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return f, nil
}

func (r *PostgresRepository) FindByOwner(ctx context.Context, ownerID int64) ([]*models.File, error) {
	query := `
		SELECT id, owner_id, name, path, mime_type, size, storage, created_at, updated_at
		FROM files WHERE owner_id = $1 ORDER BY id`

	rows, err := r.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := []*models.File{}
	for rows.Next() {
		f := &models.File{}
		if err := rows.Scan(&f.ID, &f.OwnerID, &f.Name, &f.Path, &f.MimeType, &f.Size, &f.Storage, &f.CreatedAt, &f.UpdatedAt); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM files WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if affected == 0 {
		return common.ErrNotFound
	}
	return nil
}
