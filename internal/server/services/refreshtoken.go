package services

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/accountd/accountd/internal/common"
	"github.com/accountd/accountd/internal/dbx"
	"github.com/accountd/accountd/internal/server/auth"
	"github.com/accountd/accountd/internal/server/config"
	"github.com/accountd/accountd/internal/server/repositories/repomanager"
)

// RefreshTokenService manages long-lived opaque refresh tokens and derives
// fresh access tokens from them. Tokens are not rotated on use: a refresh
// token stays valid until its own expiry or an explicit logout.
type RefreshTokenService struct {
	db              *sql.DB
	repomanager     repomanager.RepositoryManager
	accessSecret    []byte
	accessTokenTTL  time.Duration
	refreshTokenTTL time.Duration
}

// NewRefreshTokenService constructs a RefreshTokenService using repositories
// and server config.
func NewRefreshTokenService(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config) *RefreshTokenService {
	return &RefreshTokenService{
		db:              db,
		repomanager:     m,
		accessSecret:    []byte(cfg.AccessTokenSecret),
		accessTokenTTL:  cfg.AccessTokenTTL,
		refreshTokenTTL: cfg.RefreshTokenTTL,
	}
}

// Generate creates and persists a new refresh token for the user. Prior
// tokens stay valid (multi-device sessions).
func (s *RefreshTokenService) Generate(ctx context.Context, userID int64) (string, error) {
	return s.GenerateInTx(ctx, s.db, userID)
}

// GenerateInTx is Generate scoped to a caller-supplied transaction, so the
// insert rolls back atomically with user creation.
func (s *RefreshTokenService) GenerateInTx(ctx context.Context, tx dbx.DBTX, userID int64) (string, error) {
	token := uuid.NewString()
	if err := s.repomanager.RefreshTokens(tx).Create(ctx, userID, token, s.refreshTokenTTL); err != nil {
		return "", common.ErrInternal
	}
	return token, nil
}

// Refresh validates the presented token for the user and mints a new access
// token from the current user and role state. The refresh token itself is
// left in place.
func (s *RefreshTokenService) Refresh(ctx context.Context, userID int64, refreshToken string) (string, error) {
	stored, err := s.repomanager.RefreshTokens(s.db).FindByTokenAndUserID(ctx, refreshToken, userID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return "", common.NewAuthenticationError("auth.errors.invalid_refresh_token")
		}
		return "", err
	}

	if time.Now().After(stored.ExpiresAt) {
		return "", common.NewAuthenticationError("auth.errors.expired_refresh_token")
	}

	return s.GenerateAccessToken(ctx, userID)
}

// GenerateAccessToken re-derives claims from the current user row and role
// links and signs a new access token.
func (s *RefreshTokenService) GenerateAccessToken(ctx context.Context, userID int64) (string, error) {
	user, err := s.repomanager.Users(s.db).FindByID(ctx, userID)
	if err != nil {
		return "", err
	}

	roles, err := s.repomanager.UserRoles(s.db).FindUserRoles(ctx, userID)
	if err != nil {
		return "", err
	}
	roleNames := make([]string, 0, len(roles))
	for _, r := range roles {
		roleNames = append(roleNames, r.Name)
	}

	return auth.GenerateToken(user.ID, user.Username, user.Email, roleNames, s.accessSecret, s.accessTokenTTL)
}

// Invalidate revokes one refresh token. Revoking an absent token is not an
// error.
func (s *RefreshTokenService) Invalidate(ctx context.Context, userID int64, refreshToken string) error {
	return s.repomanager.RefreshTokens(s.db).DeleteByTokenAndUserID(ctx, refreshToken, userID)
}

// InvalidateAll revokes every refresh token of the user.
func (s *RefreshTokenService) InvalidateAll(ctx context.Context, userID int64) error {
	return s.repomanager.RefreshTokens(s.db).DeleteAllForUser(ctx, userID)
}

// CleanExpired bulk-deletes expired tokens. It is driven by the periodic
// background sweep, not by request traffic.
func (s *RefreshTokenService) CleanExpired(ctx context.Context) (int64, error) {
	return s.repomanager.RefreshTokens(s.db).DeleteExpired(ctx)
}
