// Package repomanager binds the per-table repositories to a concrete
// storage backend and runs schema migrations.
package repomanager

import (
	"context"
	"database/sql"

	"github.com/accountd/accountd/internal/dbx"
	"github.com/accountd/accountd/internal/server/repositories/files"
	"github.com/accountd/accountd/internal/server/repositories/refreshtokens"
	"github.com/accountd/accountd/internal/server/repositories/roles"
	"github.com/accountd/accountd/internal/server/repositories/userroles"
	"github.com/accountd/accountd/internal/server/repositories/users"
)

// RepositoryManager hands out repositories bound to a DBTX, so the same
// repository code runs directly against the pool or inside a transaction.
type RepositoryManager interface {
	RunMigrations(ctx context.Context, db *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	RefreshTokens(db dbx.DBTX) refreshtokens.Repository
	Roles(db dbx.DBTX) roles.Repository
	UserRoles(db dbx.DBTX) userroles.Repository
	Files(db dbx.DBTX) files.Repository
}
