// Package roles declares the repository contract for the role catalog.
package roles

import (
	"context"

	"github.com/accountd/accountd/internal/server/models"
)

// Repository defines persistence operations for role catalog entries.
type Repository interface {
	Create(ctx context.Context, name string, description *string) (*models.Role, error)
	FindAll(ctx context.Context) ([]*models.Role, error)
	FindByID(ctx context.Context, id int64) (*models.Role, error)
	FindByName(ctx context.Context, name string) (*models.Role, error)
	Update(ctx context.Context, id int64, name string, description *string) (*models.Role, error)
	Delete(ctx context.Context, id int64) error
}
