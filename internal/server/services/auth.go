package services

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/accountd/accountd/internal/common"
	"github.com/accountd/accountd/internal/dbx"
	"github.com/accountd/accountd/internal/server/auth"
	"github.com/accountd/accountd/internal/server/config"
	"github.com/accountd/accountd/internal/server/email"
	"github.com/accountd/accountd/internal/server/models"
	"github.com/accountd/accountd/internal/server/repositories/repomanager"
)

// RegisterDTO carries the shape-validated registration input.
type RegisterDTO struct {
	Username string
	Email    string
	Password string
}

// LoginDTO carries the shape-validated login input.
type LoginDTO struct {
	Username string
	Password string
}

// AuthService orchestrates registration and login. Registration is a single
// transaction: a user must never exist without a role, and a confirmation
// token must never be stored unless the email was actually dispatched.
type AuthService struct {
	db                *sql.DB
	repomanager       repomanager.RepositoryManager
	rolesService      *RolesService
	confirmationSvc   *ConfirmationTokenService
	refreshService    *RefreshTokenService
	emailSender       email.Sender
	accessTokenSecret []byte
	accessTokenTTL    time.Duration
	bcryptCost        int
	emailTimeout      time.Duration
}

// NewAuthService constructs an AuthService with its collaborators.
func NewAuthService(
	db *sql.DB,
	m repomanager.RepositoryManager,
	rolesService *RolesService,
	confirmationSvc *ConfirmationTokenService,
	refreshService *RefreshTokenService,
	emailSender email.Sender,
	cfg *config.Config,
) *AuthService {
	return &AuthService{
		db:                db,
		repomanager:       m,
		rolesService:      rolesService,
		confirmationSvc:   confirmationSvc,
		refreshService:    refreshService,
		emailSender:       emailSender,
		accessTokenSecret: []byte(cfg.AccessTokenSecret),
		accessTokenTTL:    cfg.AccessTokenTTL,
		bcryptCost:        cfg.BcryptCost,
		emailTimeout:      cfg.EmailTimeout,
	}
}

// Register creates the user, assigns the default role, stores and dispatches
// the confirmation email and mints the token pair, all inside one
// transaction. Any failure rolls the whole registration back.
func (s *AuthService) Register(ctx context.Context, dto RegisterDTO) (*models.User, string, string, error) {
	var (
		user         *models.User
		accessToken  string
		refreshToken string
	)

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		var err error
		user, err = s.createUser(ctx, tx, dto)
		if err != nil {
			return err
		}

		if _, err := s.rolesService.AssignUserRoleInTx(ctx, tx, user.ID); err != nil {
			return err
		}

		if err := s.sendConfirmationEmail(ctx, tx, user); err != nil {
			return err
		}

		accessToken, err = s.generateToken(ctx, tx, user)
		if err != nil {
			return err
		}

		refreshToken, err = s.refreshService.GenerateInTx(ctx, tx, user.ID)
		return err
	})
	if err != nil {
		return nil, "", "", err
	}

	return user, accessToken, refreshToken, nil
}

// createUser enforces username/email uniqueness, reporting every violated
// field at once, then hashes the password and inserts the row.
func (s *AuthService) createUser(ctx context.Context, tx dbx.DBTX, dto RegisterDTO) (*models.User, error) {
	repo := s.repomanager.Users(tx)

	validation := &common.ValidationError{}
	if _, err := repo.FindByEmail(ctx, dto.Email); err == nil {
		validation.Add("email", "users.errors.user_already_exists")
	} else if !errors.Is(err, common.ErrNotFound) {
		return nil, err
	}
	if _, err := repo.FindByUsername(ctx, dto.Username); err == nil {
		validation.Add("username", "users.errors.username_already_exists")
	} else if !errors.Is(err, common.ErrNotFound) {
		return nil, err
	}
	if validation.HasErrors() {
		return nil, validation
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(dto.Password), s.bcryptCost)
	if err != nil {
		return nil, common.ErrInternal
	}

	// The unique constraints arbitrate concurrent registrations that pass
	// the pre-check; the repository surfaces a violation as the same
	// field-level validation error.
	return repo.Create(ctx, &models.User{
		Username:         dto.Username,
		Email:            dto.Email,
		PasswordHash:     string(hash),
		IsEmailConfirmed: false,
		IsActive:         true,
	})
}

// sendConfirmationEmail stores the confirmation token pair on the user row
// and dispatches the email. Dispatch is bounded by the configured timeout;
// failure or timeout aborts the registration.
func (s *AuthService) sendConfirmationEmail(ctx context.Context, tx dbx.DBTX, user *models.User) error {
	token, err := s.confirmationSvc.GenerateEmailConfirmationToken(user.ID, user.Email)
	if err != nil {
		return err
	}

	expiry := time.Now().Add(s.confirmationSvc.Validity())
	if err := s.repomanager.Users(tx).SetEmailConfirmationToken(ctx, user.ID, token, expiry); err != nil {
		return err
	}

	sendCtx, cancel := context.WithTimeout(ctx, s.emailTimeout)
	defer cancel()
	return s.emailSender.SendEmailConfirmation(sendCtx, user.Email, user.Username, token)
}

// Login verifies credentials and mints a token pair. The message keys for
// unknown user and wrong password are identical so responses do not aid
// credential guessing.
func (s *AuthService) Login(ctx context.Context, dto LoginDTO) (*models.User, string, string, error) {
	user, err := s.repomanager.Users(s.db).FindByUsername(ctx, dto.Username)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, "", "", common.NewAuthenticationError("auth.errors.invalid_credentials")
		}
		return nil, "", "", err
	}

	if !user.IsActive {
		return nil, "", "", common.NewAuthenticationError("auth.errors.account_inactive")
	}
	if !user.IsEmailConfirmed {
		return nil, "", "", common.NewAuthenticationError("auth.errors.email_not_confirmed")
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(dto.Password)) != nil {
		return nil, "", "", common.NewAuthenticationError("auth.errors.invalid_credentials")
	}

	accessToken, err := s.GenerateToken(ctx, user)
	if err != nil {
		return nil, "", "", err
	}
	refreshToken, err := s.refreshService.Generate(ctx, user.ID)
	if err != nil {
		return nil, "", "", err
	}

	return user, accessToken, refreshToken, nil
}

// GenerateToken signs an access token from the user's current role state.
func (s *AuthService) GenerateToken(ctx context.Context, user *models.User) (string, error) {
	return s.generateToken(ctx, s.db, user)
}

func (s *AuthService) generateToken(ctx context.Context, q dbx.DBTX, user *models.User) (string, error) {
	roles, err := s.repomanager.UserRoles(q).FindUserRoles(ctx, user.ID)
	if err != nil {
		return "", err
	}
	roleNames := make([]string, 0, len(roles))
	for _, r := range roles {
		roleNames = append(roleNames, r.Name)
	}
	return auth.GenerateToken(user.ID, user.Username, user.Email, roleNames, s.accessTokenSecret, s.accessTokenTTL)
}
