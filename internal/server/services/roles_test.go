package services

import (
	"context"
	"errors"
	"testing"

	"github.com/accountd/accountd/internal/common"
	"github.com/accountd/accountd/internal/server/models"
)

func TestRolesCreate_DuplicateName(t *testing.T) {
	db, _ := newSQLMockDB(t)
	defer db.Close()

	rm := &fakeRepoManager{r: &fakeRolesRepo{
		findByNameFn: func(ctx context.Context, name string) (*models.Role, error) {
			return &models.Role{ID: 1, Name: name}, nil
		},
	}}
	s := NewRolesService(db, rm)

	_, err := s.Create(context.Background(), "moderator", nil)
	var validation *common.ValidationError
	if !errors.As(err, &validation) {
		t.Fatalf("want ValidationError, got %v", err)
	}
}

func TestRolesCreate_Success(t *testing.T) {
	db, _ := newSQLMockDB(t)
	defer db.Close()

	s := NewRolesService(db, &fakeRepoManager{r: &fakeRolesRepo{}})

	role, err := s.Create(context.Background(), "moderator", nil)
	if err != nil || role.Name != "moderator" {
		t.Fatalf("Create = (%v, %v)", role, err)
	}
}

func TestRolesUpdate_RenameToOwnNameAllowed(t *testing.T) {
	db, _ := newSQLMockDB(t)
	defer db.Close()

	rm := &fakeRepoManager{r: &fakeRolesRepo{
		findByNameFn: func(ctx context.Context, name string) (*models.Role, error) {
			return &models.Role{ID: 5, Name: name}, nil
		},
	}}
	s := NewRolesService(db, rm)

	// Updating role 5 keeping its own name must not trip the uniqueness
	// check.
	if _, err := s.Update(context.Background(), 5, "moderator", nil); err != nil {
		t.Fatalf("Update: %v", err)
	}

	// A different role holding the name blocks the rename.
	_, err := s.Update(context.Background(), 6, "moderator", nil)
	var validation *common.ValidationError
	if !errors.As(err, &validation) {
		t.Fatalf("want ValidationError, got %v", err)
	}
}

func TestAssignUserRoleInTx_MissingSeedIsInternal(t *testing.T) {
	db, _ := newSQLMockDB(t)
	defer db.Close()

	s := NewRolesService(db, &fakeRepoManager{r: &fakeRolesRepo{}, ur: &fakeUserRolesRepo{}})

	_, err := s.AssignUserRoleInTx(context.Background(), db, 1)
	if !errors.Is(err, common.ErrInternal) {
		t.Fatalf("want ErrInternal, got %v", err)
	}
}

func TestHasRole(t *testing.T) {
	db, _ := newSQLMockDB(t)
	defer db.Close()

	rm := &fakeRepoManager{ur: &fakeUserRolesRepo{
		rolesOut: []*models.Role{{ID: 1, Name: models.RoleAdmin}},
	}}
	s := NewRolesService(db, rm)

	ok, err := s.HasRole(context.Background(), 1, models.RoleAdmin)
	if err != nil || !ok {
		t.Fatalf("HasRole(admin) = (%v, %v)", ok, err)
	}

	ok, err = s.HasRole(context.Background(), 1, models.RoleUser)
	if err != nil || ok {
		t.Fatalf("absent role must be (false, nil), got (%v, %v)", ok, err)
	}
}

func TestRemoveRole_AbsentPairIsNotFound(t *testing.T) {
	db, _ := newSQLMockDB(t)
	defer db.Close()

	rm := &fakeRepoManager{ur: &fakeUserRolesRepo{removeErr: common.ErrNotFound}}
	s := NewRolesService(db, rm)

	if err := s.RemoveRole(context.Background(), 1, 2); !errors.Is(err, common.ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
}
