// Package userroles declares the repository contract for user-role links.
package userroles

import (
	"context"

	"github.com/accountd/accountd/internal/server/models"
)

// Repository defines persistence operations for the user_roles join table.
type Repository interface {
	// FindUserRoles returns the roles linked to the user. An empty slice is
	// not an error.
	FindUserRoles(ctx context.Context, userID int64) ([]*models.Role, error)

	// Assign inserts a (user, role) link.
	Assign(ctx context.Context, userID, roleID int64) (*models.UserRole, error)

	// Remove deletes a (user, role) link; common.ErrNotFound when the pair
	// does not exist.
	Remove(ctx context.Context, userID, roleID int64) error
}
