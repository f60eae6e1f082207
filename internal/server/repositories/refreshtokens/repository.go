// Package refreshtokens declares the repository contract for opaque refresh
// tokens in persistent storage.
package refreshtokens

import (
	"context"
	"time"

	"github.com/accountd/accountd/internal/server/models"
)

// Repository defines operations for issuing, retrieving and revoking
// refresh tokens.
type Repository interface {
	// Create stores token for userID with an expiry of now+validity.
	Create(ctx context.Context, userID int64, token string, validity time.Duration) error

	// FindByTokenAndUserID returns the row matching both the opaque token
	// value and the user it was issued for, or common.ErrNotFound.
	FindByTokenAndUserID(ctx context.Context, token string, userID int64) (*models.RefreshToken, error)

	// DeleteByTokenAndUserID removes one token. Deleting an absent token is
	// not an error.
	DeleteByTokenAndUserID(ctx context.Context, token string, userID int64) error

	// DeleteAllForUser removes every token of the user (logout everywhere).
	DeleteAllForUser(ctx context.Context, userID int64) error

	// DeleteExpired bulk-removes rows whose expiry has passed and reports
	// how many were deleted.
	DeleteExpired(ctx context.Context) (int64, error)
}
