package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/accountd/accountd/internal/common"
	"github.com/accountd/accountd/internal/dbx"
	"github.com/accountd/accountd/internal/server/models"
)

const userColumns = `id, username, email, password_hash, is_email_confirmed, is_active,
	email_confirmation_token, email_confirmation_token_expiry,
	email_change_token, email_change_token_expiry,
	password_reset_token, password_reset_token_expiry,
	pending_email, created_at, updated_at`

// PostgresRepository implements Repository over dbx.DBTX
// (satisfied by *sql.DB or *sql.Tx).
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

func scanUser(row rowScanner) (*models.User, error) {
	u := &models.User{}
	err := row.Scan(
		&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.IsEmailConfirmed, &u.IsActive,
		&u.EmailConfirmationToken, &u.EmailConfirmationTokenExpiry,
		&u.EmailChangeToken, &u.EmailChangeTokenExpiry,
		&u.PasswordResetToken, &u.PasswordResetTokenExpiry,
		&u.PendingEmail, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return u, nil
}

// translateUniqueViolation maps a unique-constraint violation on the users
// table to a field-level validation error. The constraints are the final
// arbiter for concurrent registrations racing the uniqueness pre-check.
func translateUniqueViolation(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != "23505" {
		return fmt.Errorf("db error: %w", err)
	}
	if strings.Contains(pgErr.ConstraintName, "email") {
		return common.NewValidationError("email", "users.errors.user_already_exists")
	}
	return common.NewValidationError("username", "users.errors.username_already_exists")
}

func (r *PostgresRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	query := `
		INSERT INTO users (username, email, password_hash, is_email_confirmed, is_active)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query,
		user.Username, user.Email, user.PasswordHash, user.IsEmailConfirmed, user.IsActive,
	).Scan(&user.ID, &user.CreatedAt)
	if err != nil {
		return nil, translateUniqueViolation(err)
	}
	return user, nil
}

func (r *PostgresRepository) FindAll(ctx context.Context) ([]*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users ORDER BY id`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

func (r *PostgresRepository) FindByID(ctx context.Context, id int64) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return scanUser(r.db.QueryRowContext(ctx, query, id))
}

func (r *PostgresRepository) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE username = $1`
	return scanUser(r.db.QueryRowContext(ctx, query, username))
}

func (r *PostgresRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	return scanUser(r.db.QueryRowContext(ctx, query, email))
}

func (r *PostgresRepository) Update(ctx context.Context, user *models.User) (*models.User, error) {
	query := `
		UPDATE users SET username = $1, email = $2, is_active = $3, updated_at = now()
		WHERE id = $4
		RETURNING ` + userColumns

	updated, err := scanUser(r.db.QueryRowContext(ctx, query,
		user.Username, user.Email, user.IsActive, user.ID))
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, err
		}
		return nil, translateUniqueViolation(err)
	}
	return updated, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id int64) error {
	return r.exec(ctx, `DELETE FROM users WHERE id = $1`, id)
}

func (r *PostgresRepository) SetEmailConfirmationToken(ctx context.Context, id int64, token string, expiry time.Time) error {
	query := `
		UPDATE users SET email_confirmation_token = $1, email_confirmation_token_expiry = $2, updated_at = now()
		WHERE id = $3`
	return r.exec(ctx, query, token, expiry, id)
}

func (r *PostgresRepository) ConfirmEmail(ctx context.Context, id int64) error {
	query := `
		UPDATE users SET is_email_confirmed = TRUE,
			email_confirmation_token = NULL, email_confirmation_token_expiry = NULL,
			updated_at = now()
		WHERE id = $1`
	return r.exec(ctx, query, id)
}

func (r *PostgresRepository) SetPasswordResetToken(ctx context.Context, id int64, token string, expiry time.Time) error {
	query := `
		UPDATE users SET password_reset_token = $1, password_reset_token_expiry = $2, updated_at = now()
		WHERE id = $3`
	return r.exec(ctx, query, token, expiry, id)
}

func (r *PostgresRepository) ResetPassword(ctx context.Context, id int64, passwordHash string) error {
	query := `
		UPDATE users SET password_hash = $1,
			password_reset_token = NULL, password_reset_token_expiry = NULL,
			updated_at = now()
		WHERE id = $2`
	return r.exec(ctx, query, passwordHash, id)
}

func (r *PostgresRepository) UpdatePassword(ctx context.Context, id int64, passwordHash string) error {
	query := `UPDATE users SET password_hash = $1, updated_at = now() WHERE id = $2`
	return r.exec(ctx, query, passwordHash, id)
}

func (r *PostgresRepository) SetEmailChangeToken(ctx context.Context, id int64, token string, expiry time.Time, pendingEmail string) error {
	query := `
		UPDATE users SET email_change_token = $1, email_change_token_expiry = $2,
			pending_email = $3, updated_at = now()
		WHERE id = $4`
	return r.exec(ctx, query, token, expiry, pendingEmail, id)
}

func (r *PostgresRepository) ApplyEmailChange(ctx context.Context, id int64, newEmail string) error {
	query := `
		UPDATE users SET email = $1,
			email_change_token = NULL, email_change_token_expiry = NULL, pending_email = NULL,
			updated_at = now()
		WHERE id = $2`
	return r.exec(ctx, query, newEmail, id)
}

func (r *PostgresRepository) CreateEmailHistory(ctx context.Context, userID int64, oldEmail, newEmail string) error {
	query := `
		INSERT INTO users_email_history (user_id, old_email, new_email, email_change_at)
		VALUES ($1, $2, $3, now())`

	if _, err := r.db.ExecContext(ctx, query, userID, oldEmail, newEmail); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// exec runs a write that must touch exactly one existing row.
func (r *PostgresRepository) exec(ctx context.Context, query string, args ...any) error {
	res, err := r.db.ExecContext(ctx, query, args...)
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
