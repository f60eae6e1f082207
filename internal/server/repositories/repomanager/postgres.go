package repomanager

import (
	"context"
	"database/sql"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/accountd/accountd/internal/dbx"
	"github.com/accountd/accountd/internal/server/migrations"
	"github.com/accountd/accountd/internal/server/repositories/files"
	"github.com/accountd/accountd/internal/server/repositories/refreshtokens"
	"github.com/accountd/accountd/internal/server/repositories/roles"
	"github.com/accountd/accountd/internal/server/repositories/userroles"
	"github.com/accountd/accountd/internal/server/repositories/users"
)

// PostgresRepositoryManager is the Postgres binding of RepositoryManager.
type PostgresRepositoryManager struct{}

// NewPostgresRepositoryManager returns the Postgres repository manager.
func NewPostgresRepositoryManager() *PostgresRepositoryManager {
	return &PostgresRepositoryManager{}
}

func (m *PostgresRepositoryManager) Users(db dbx.DBTX) users.Repository {
	return users.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) RefreshTokens(db dbx.DBTX) refreshtokens.Repository {
	return refreshtokens.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) Roles(db dbx.DBTX) roles.Repository {
	return roles.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) UserRoles(db dbx.DBTX) userroles.Repository {
	return userroles.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) Files(db dbx.DBTX) files.Repository {
	return files.NewPostgresRepository(db)
}

// RunMigrations applies the embedded goose migrations, including the role
// catalog seed.
func (m *PostgresRepositoryManager) RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("pgx"); err != nil {
		return err
	}
	return goose.UpContext(ctx, db, ".")
}
