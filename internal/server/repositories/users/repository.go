// Package users declares the repository contract for user rows and their
// single-use token fields.
package users

import (
	"context"
	"time"

	"github.com/accountd/accountd/internal/server/models"
)

// Repository defines persistence operations for users. Implementations run
// against whatever dbx.DBTX they were constructed with, so the same code
// serves direct calls and calls inside a caller-owned transaction.
type Repository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	FindAll(ctx context.Context) ([]*models.User, error)
	FindByID(ctx context.Context, id int64) (*models.User, error)
	FindByUsername(ctx context.Context, username string) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	Update(ctx context.Context, user *models.User) (*models.User, error)
	Delete(ctx context.Context, id int64) error

	// SetEmailConfirmationToken stores the confirmation token pair on the
	// user row, superseding any previous one.
	SetEmailConfirmationToken(ctx context.Context, id int64, token string, expiry time.Time) error

	// ConfirmEmail sets is_email_confirmed and clears the confirmation
	// token pair.
	ConfirmEmail(ctx context.Context, id int64) error

	SetPasswordResetToken(ctx context.Context, id int64, token string, expiry time.Time) error

	// ResetPassword replaces the password hash and clears the reset token pair.
	ResetPassword(ctx context.Context, id int64, passwordHash string) error

	UpdatePassword(ctx context.Context, id int64, passwordHash string) error

	SetEmailChangeToken(ctx context.Context, id int64, token string, expiry time.Time, pendingEmail string) error

	// ApplyEmailChange sets the new email and clears the change token pair
	// and pending email.
	ApplyEmailChange(ctx context.Context, id int64, newEmail string) error

	// CreateEmailHistory appends a users_email_history row.
	CreateEmailHistory(ctx context.Context, userID int64, oldEmail, newEmail string) error
}
