// Package files declares the repository contract for uploaded-file metadata.
package files

import (
	"context"

	"github.com/accountd/accountd/internal/server/models"
)

// Repository defines persistence operations for file metadata rows.
type Repository interface {
	Create(ctx context.Context, file *models.File) (*models.File, error)
	FindByID(ctx context.Context, id int64) (*models.File, error)
	FindByOwner(ctx context.Context, ownerID int64) ([]*models.File, error)
	Delete(ctx context.Context, id int64) error
}
