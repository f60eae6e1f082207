package services

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/accountd/accountd/internal/common"
	"github.com/accountd/accountd/internal/dbx"
	"github.com/accountd/accountd/internal/server/config"
	"github.com/accountd/accountd/internal/server/models"
	filesrepo "github.com/accountd/accountd/internal/server/repositories/files"
	refreshtokensrepo "github.com/accountd/accountd/internal/server/repositories/refreshtokens"
	rolesrepo "github.com/accountd/accountd/internal/server/repositories/roles"
	userrolesrepo "github.com/accountd/accountd/internal/server/repositories/userroles"
	usersrepo "github.com/accountd/accountd/internal/server/repositories/users"
)

// --- helpers ---

type errBoom struct{}

func (errBoom) Error() string { return "boom" }

func newSQLMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return db, mock
}

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.LoadDefaults()
	cfg.BcryptCost = 4 // keep hashing cheap in tests
	return cfg
}

// Fake repositories delegate to optional func fields; a nil field means
// "not found" for reads and success for writes.

type fakeUsersRepo struct {
	createFn         func(ctx context.Context, u *models.User) (*models.User, error)
	findByIDFn       func(ctx context.Context, id int64) (*models.User, error)
	findByUsernameFn func(ctx context.Context, username string) (*models.User, error)
	findByEmailFn    func(ctx context.Context, email string) (*models.User, error)

	confirmedID      int64
	resetHash        string
	updatedHash      string
	appliedEmail     string
	historyOld       string
	historyNew       string
	storedToken      string
	storedExpiry     time.Time
	storedPending    string
	setTokenErr      error
	confirmErr       error
	resetPasswordErr error
}

func (f *fakeUsersRepo) Create(ctx context.Context, u *models.User) (*models.User, error) {
	if f.createFn != nil {
		return f.createFn(ctx, u)
	}
	out := *u
	out.ID = 1
	return &out, nil
}

func (f *fakeUsersRepo) FindAll(ctx context.Context) ([]*models.User, error) { return nil, nil }

func (f *fakeUsersRepo) FindByID(ctx context.Context, id int64) (*models.User, error) {
	if f.findByIDFn != nil {
		return f.findByIDFn(ctx, id)
	}
	return nil, common.ErrNotFound
}

func (f *fakeUsersRepo) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	if f.findByUsernameFn != nil {
		return f.findByUsernameFn(ctx, username)
	}
	return nil, common.ErrNotFound
}

func (f *fakeUsersRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	if f.findByEmailFn != nil {
		return f.findByEmailFn(ctx, email)
	}
	return nil, common.ErrNotFound
}

func (f *fakeUsersRepo) Update(ctx context.Context, u *models.User) (*models.User, error) {
	return u, nil
}

func (f *fakeUsersRepo) Delete(ctx context.Context, id int64) error { return nil }

func (f *fakeUsersRepo) SetEmailConfirmationToken(ctx context.Context, id int64, token string, expiry time.Time) error {
	f.storedToken, f.storedExpiry = token, expiry
	return f.setTokenErr
}

func (f *fakeUsersRepo) ConfirmEmail(ctx context.Context, id int64) error {
	f.confirmedID = id
	return f.confirmErr
}

func (f *fakeUsersRepo) SetPasswordResetToken(ctx context.Context, id int64, token string, expiry time.Time) error {
	f.storedToken, f.storedExpiry = token, expiry
	return f.setTokenErr
}

func (f *fakeUsersRepo) ResetPassword(ctx context.Context, id int64, passwordHash string) error {
	f.resetHash = passwordHash
	return f.resetPasswordErr
}

func (f *fakeUsersRepo) UpdatePassword(ctx context.Context, id int64, passwordHash string) error {
	f.updatedHash = passwordHash
	return nil
}

func (f *fakeUsersRepo) SetEmailChangeToken(ctx context.Context, id int64, token string, expiry time.Time, pendingEmail string) error {
	f.storedToken, f.storedExpiry, f.storedPending = token, expiry, pendingEmail
	return f.setTokenErr
}

func (f *fakeUsersRepo) ApplyEmailChange(ctx context.Context, id int64, newEmail string) error {
	f.appliedEmail = newEmail
	return nil
}

func (f *fakeUsersRepo) CreateEmailHistory(ctx context.Context, userID int64, oldEmail, newEmail string) error {
	f.historyOld, f.historyNew = oldEmail, newEmail
	return nil
}

type fakeRefreshRepo struct {
	createErr   error
	created     []string
	findOut     *models.RefreshToken
	findErr     error
	deleted     []string
	deleteErr   error
	deletedAll  []int64
	expiredOut  int64
	expiredErr  error
}

func (f *fakeRefreshRepo) Create(ctx context.Context, userID int64, token string, validity time.Duration) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.created = append(f.created, token)
	return nil
}

func (f *fakeRefreshRepo) FindByTokenAndUserID(ctx context.Context, token string, userID int64) (*models.RefreshToken, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	if f.findOut == nil {
		return nil, common.ErrNotFound
	}
	return f.findOut, nil
}

func (f *fakeRefreshRepo) DeleteByTokenAndUserID(ctx context.Context, token string, userID int64) error {
	f.deleted = append(f.deleted, token)
	return f.deleteErr
}

func (f *fakeRefreshRepo) DeleteAllForUser(ctx context.Context, userID int64) error {
	f.deletedAll = append(f.deletedAll, userID)
	return nil
}

func (f *fakeRefreshRepo) DeleteExpired(ctx context.Context) (int64, error) {
	return f.expiredOut, f.expiredErr
}

type fakeRolesRepo struct {
	findByNameFn func(ctx context.Context, name string) (*models.Role, error)
	createFn     func(ctx context.Context, name string, description *string) (*models.Role, error)
	findByIDFn   func(ctx context.Context, id int64) (*models.Role, error)
}

func (f *fakeRolesRepo) Create(ctx context.Context, name string, description *string) (*models.Role, error) {
	if f.createFn != nil {
		return f.createFn(ctx, name, description)
	}
	return &models.Role{ID: 1, Name: name, Description: description}, nil
}

func (f *fakeRolesRepo) FindAll(ctx context.Context) ([]*models.Role, error) { return nil, nil }

func (f *fakeRolesRepo) FindByID(ctx context.Context, id int64) (*models.Role, error) {
	if f.findByIDFn != nil {
		return f.findByIDFn(ctx, id)
	}
	return nil, common.ErrNotFound
}

func (f *fakeRolesRepo) FindByName(ctx context.Context, name string) (*models.Role, error) {
	if f.findByNameFn != nil {
		return f.findByNameFn(ctx, name)
	}
	return nil, common.ErrNotFound
}

func (f *fakeRolesRepo) Update(ctx context.Context, id int64, name string, description *string) (*models.Role, error) {
	return &models.Role{ID: id, Name: name, Description: description}, nil
}

func (f *fakeRolesRepo) Delete(ctx context.Context, id int64) error { return nil }

type fakeUserRolesRepo struct {
	rolesOut  []*models.Role
	rolesErr  error
	assigned  []int64
	assignErr error
	removeErr error
}

func (f *fakeUserRolesRepo) FindUserRoles(ctx context.Context, userID int64) ([]*models.Role, error) {
	if f.rolesErr != nil {
		return nil, f.rolesErr
	}
	return f.rolesOut, nil
}

func (f *fakeUserRolesRepo) Assign(ctx context.Context, userID, roleID int64) (*models.UserRole, error) {
	if f.assignErr != nil {
		return nil, f.assignErr
	}
	f.assigned = append(f.assigned, roleID)
	return &models.UserRole{ID: 1, UserID: userID, RoleID: roleID}, nil
}

func (f *fakeUserRolesRepo) Remove(ctx context.Context, userID, roleID int64) error {
	return f.removeErr
}

type fakeFilesRepo struct {
	createFn   func(ctx context.Context, file *models.File) (*models.File, error)
	findByIDFn func(ctx context.Context, id int64) (*models.File, error)
	deleted    []int64
	deleteErr  error
}

func (f *fakeFilesRepo) Create(ctx context.Context, file *models.File) (*models.File, error) {
	if f.createFn != nil {
		return f.createFn(ctx, file)
	}
	out := *file
	out.ID = 1
	return &out, nil
}

func (f *fakeFilesRepo) FindByID(ctx context.Context, id int64) (*models.File, error) {
	if f.findByIDFn != nil {
		return f.findByIDFn(ctx, id)
	}
	return nil, common.ErrNotFound
}

func (f *fakeFilesRepo) FindByOwner(ctx context.Context, ownerID int64) ([]*models.File, error) {
	return nil, nil
}

func (f *fakeFilesRepo) Delete(ctx context.Context, id int64) error {
	f.deleted = append(f.deleted, id)
	return f.deleteErr
}

type fakeRepoManager struct {
	u  *fakeUsersRepo
	rt *fakeRefreshRepo
	r  *fakeRolesRepo
	ur *fakeUserRolesRepo
	f  *fakeFilesRepo
}

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error            { return nil }
func (m *fakeRepoManager) Users(db dbx.DBTX) usersrepo.Repository                  { return m.u }
func (m *fakeRepoManager) RefreshTokens(db dbx.DBTX) refreshtokensrepo.Repository  { return m.rt }
func (m *fakeRepoManager) Roles(db dbx.DBTX) rolesrepo.Repository                  { return m.r }
func (m *fakeRepoManager) UserRoles(db dbx.DBTX) userrolesrepo.Repository          { return m.ur }
func (m *fakeRepoManager) Files(db dbx.DBTX) filesrepo.Repository                  { return m.f }

// fakeEmailSender records dispatched emails and optionally fails.
type fakeEmailSender struct {
	sendErr error

	confirmations []string
	resets        []string
	changes       []string
	lastToken     string
}

func (f *fakeEmailSender) Send(ctx context.Context, to, subject, htmlBody string) error {
	return f.sendErr
}

func (f *fakeEmailSender) SendEmailConfirmation(ctx context.Context, to, username, token string) error {
	if f.sendErr != nil {
		return f.sendErr
	}
	f.confirmations = append(f.confirmations, to)
	f.lastToken = token
	return nil
}

func (f *fakeEmailSender) SendPasswordReset(ctx context.Context, to, username, token string) error {
	if f.sendErr != nil {
		return f.sendErr
	}
	f.resets = append(f.resets, to)
	f.lastToken = token
	return nil
}

func (f *fakeEmailSender) SendEmailChangeConfirmation(ctx context.Context, to, username, token string) error {
	if f.sendErr != nil {
		return f.sendErr
	}
	f.changes = append(f.changes, to)
	f.lastToken = token
	return nil
}
