package services

import (
	"context"
	"database/sql"
	"errors"

	"github.com/accountd/accountd/internal/common"
	"github.com/accountd/accountd/internal/dbx"
	"github.com/accountd/accountd/internal/server/models"
	"github.com/accountd/accountd/internal/server/repositories/repomanager"
)

// RolesService maintains the role catalog and resolves user-role links.
type RolesService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

// NewRolesService constructs a RolesService.
func NewRolesService(db *sql.DB, m repomanager.RepositoryManager) *RolesService {
	return &RolesService{db: db, repomanager: m}
}

func (s *RolesService) FindAll(ctx context.Context) ([]*models.Role, error) {
	return s.repomanager.Roles(s.db).FindAll(ctx)
}

func (s *RolesService) FindByID(ctx context.Context, id int64) (*models.Role, error) {
	return s.repomanager.Roles(s.db).FindByID(ctx, id)
}

// Create adds a catalog entry; a taken name is a field-level validation
// error.
func (s *RolesService) Create(ctx context.Context, name string, description *string) (*models.Role, error) {
	repo := s.repomanager.Roles(s.db)
	if _, err := repo.FindByName(ctx, name); err == nil {
		return nil, common.NewValidationError("name", "roles.errors.name_already_exists")
	} else if !errors.Is(err, common.ErrNotFound) {
		return nil, err
	}
	return repo.Create(ctx, name, description)
}

// Update renames or re-describes a catalog entry, keeping names unique.
func (s *RolesService) Update(ctx context.Context, id int64, name string, description *string) (*models.Role, error) {
	repo := s.repomanager.Roles(s.db)
	if existing, err := repo.FindByName(ctx, name); err == nil && existing.ID != id {
		return nil, common.NewValidationError("name", "roles.errors.name_already_exists")
	} else if err != nil && !errors.Is(err, common.ErrNotFound) {
		return nil, err
	}
	return repo.Update(ctx, id, name, description)
}

func (s *RolesService) Delete(ctx context.Context, id int64) error {
	return s.repomanager.Roles(s.db).Delete(ctx, id)
}

// GetUserRoles returns the roles of the user; a user with no links gets an
// empty slice, never an error.
func (s *RolesService) GetUserRoles(ctx context.Context, userID int64) ([]*models.Role, error) {
	return s.repomanager.UserRoles(s.db).FindUserRoles(ctx, userID)
}

// AssignUserRoleInTx links the default "user" role inside the caller's
// transaction. A missing catalog seed is an internal error, not a user
// mistake.
func (s *RolesService) AssignUserRoleInTx(ctx context.Context, tx dbx.DBTX, userID int64) (*models.UserRole, error) {
	role, err := s.repomanager.Roles(tx).FindByName(ctx, models.RoleUser)
	if err != nil {
		return nil, common.ErrInternal
	}
	link, err := s.repomanager.UserRoles(tx).Assign(ctx, userID, role.ID)
	if err != nil {
		return nil, common.ErrInternal
	}
	return link, nil
}

// AssignRole links an arbitrary role to a user (admin operation).
func (s *RolesService) AssignRole(ctx context.Context, userID, roleID int64) (*models.UserRole, error) {
	if _, err := s.repomanager.Roles(s.db).FindByID(ctx, roleID); err != nil {
		return nil, err
	}
	return s.repomanager.UserRoles(s.db).Assign(ctx, userID, roleID)
}

// RemoveRole unlinks a role; removing a pairing that does not exist is
// common.ErrNotFound.
func (s *RolesService) RemoveRole(ctx context.Context, userID, roleID int64) error {
	return s.repomanager.UserRoles(s.db).Remove(ctx, userID, roleID)
}

// HasRole reports membership. A user without the role is false, not an
// error.
func (s *RolesService) HasRole(ctx context.Context, userID int64, roleName string) (bool, error) {
	roles, err := s.repomanager.UserRoles(s.db).FindUserRoles(ctx, userID)
	if err != nil {
		return false, err
	}
	for _, r := range roles {
		if r.Name == roleName {
			return true, nil
		}
	}
	return false, nil
}
