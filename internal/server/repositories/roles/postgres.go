package roles

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

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRole(row rowScanner) (*models.Role, error) {
	role := &models.Role{}
	err := row.Scan(&role.ID, &role.Name, &role.Description, &role.CreatedAt, &role.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return role, nil
}

func (r *PostgresRepository) Create(ctx context.Context, name string, description *string) (*models.Role, error) {
	query := `
		INSERT INTO roles (name, description)
		VALUES ($1, $2)
		RETURNING id, name, description, created_at, updated_at`
	return scanRole(r.db.QueryRowContext(ctx, query, name, description))
}

func (r *PostgresRepository) FindAll(ctx context.Context) ([]*models.Role, error) {
	query := `SELECT id, name, description, created_at, updated_at FROM roles ORDER BY id`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.Role
	for rows.Next() {
		role, err := scanRole(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, role)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

func (r *PostgresRepository) FindByID(ctx context.Context, id int64) (*models.Role, error) {
	query := `SELECT id, name, description, created_at, updated_at FROM roles WHERE id = $1`
	return scanRole(r.db.QueryRowContext(ctx, query, id))
}

func (r *PostgresRepository) FindByName(ctx context.Context, name string) (*models.Role, error) {
	query := `SELECT id, name, description, created_at, updated_at FROM roles WHERE name = $1`
	return scanRole(r.db.QueryRowContext(ctx, query, name))
}

func (r *PostgresRepository) Update(ctx context.Context, id int64, name string, description *string) (*models.Role, error) {
	query := `
		UPDATE roles SET name = $1, description = $2, updated_at = now()
		WHERE id = $3
		RETURNING id, name, description, created_at, updated_at`
	return scanRole(r.db.QueryRowContext(ctx, query, name, description, id))
}

func (r *PostgresRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM roles WHERE id = $1`, id)
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
