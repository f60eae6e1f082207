package services

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/accountd/accountd/internal/common"
	"github.com/accountd/accountd/internal/dbx"
	"github.com/accountd/accountd/internal/server/config"
	"github.com/accountd/accountd/internal/server/email"
	"github.com/accountd/accountd/internal/server/models"
	"github.com/accountd/accountd/internal/server/repositories/repomanager"
)

// UsersService covers the user CRUD surface and the email-confirmation,
// password-reset and email-change workflows. Every workflow that both
// mutates the user row and dispatches an email runs inside a transaction
// so a failed dispatch leaves no stored token behind.
type UsersService struct {
	db              *sql.DB
	repomanager     repomanager.RepositoryManager
	confirmationSvc *ConfirmationTokenService
	emailSender     email.Sender
	bcryptCost      int
	emailTimeout    time.Duration
}

// NewUsersService constructs a UsersService.
func NewUsersService(
	db *sql.DB,
	m repomanager.RepositoryManager,
	confirmationSvc *ConfirmationTokenService,
	emailSender email.Sender,
	cfg *config.Config,
) *UsersService {
	return &UsersService{
		db:              db,
		repomanager:     m,
		confirmationSvc: confirmationSvc,
		emailSender:     emailSender,
		bcryptCost:      cfg.BcryptCost,
		emailTimeout:    cfg.EmailTimeout,
	}
}

func (s *UsersService) FindAll(ctx context.Context) ([]*models.User, error) {
	return s.repomanager.Users(s.db).FindAll(ctx)
}

func (s *UsersService) FindByID(ctx context.Context, id int64) (*models.User, error) {
	return s.repomanager.Users(s.db).FindByID(ctx, id)
}

func (s *UsersService) Update(ctx context.Context, user *models.User) (*models.User, error) {
	return s.repomanager.Users(s.db).Update(ctx, user)
}

func (s *UsersService) Delete(ctx context.Context, id int64) error {
	return s.repomanager.Users(s.db).Delete(ctx, id)
}

// ConfirmEmail consumes an email-confirmation token: it validates the token
// against the stored field, flips the confirmed flag and clears the pair.
func (s *UsersService) ConfirmEmail(ctx context.Context, token string) error {
	claims, err := s.confirmationSvc.ValidateToken(token)
	if err != nil {
		return err
	}
	userID, err := claims.UserID()
	if err != nil {
		return err
	}

	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Users(tx)
		user, err := repo.FindByID(ctx, userID)
		if err != nil {
			return err
		}

		if user.IsEmailConfirmed {
			return common.NewValidationError("email", "auth.errors.email_already_confirmed")
		}

		if _, err := s.confirmationSvc.ValidateStoredToken(token,
			user.EmailConfirmationToken, user.EmailConfirmationTokenExpiry,
			KindEmailConfirmation); err != nil {
			return err
		}

		return repo.ConfirmEmail(ctx, user.ID)
	})
}

// RequestPasswordReset stores a reset token on the user row and emails it.
// The email dispatch is part of the transaction: no mail, no stored token.
func (s *UsersService) RequestPasswordReset(ctx context.Context, emailAddr string) error {
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Users(tx)
		user, err := repo.FindByEmail(ctx, emailAddr)
		if err != nil {
			return err
		}

		token, err := s.confirmationSvc.GeneratePasswordResetToken(user.ID, user.Email)
		if err != nil {
			return err
		}

		expiry := time.Now().Add(s.confirmationSvc.Validity())
		if err := repo.SetPasswordResetToken(ctx, user.ID, token, expiry); err != nil {
			return err
		}

		sendCtx, cancel := context.WithTimeout(ctx, s.emailTimeout)
		defer cancel()
		return s.emailSender.SendPasswordReset(sendCtx, user.Email, user.Username, token)
	})
}

// ResetPassword consumes a password-reset token and replaces the password
// hash. Clearing the token pair makes the token single-use.
func (s *UsersService) ResetPassword(ctx context.Context, token, newPassword string) error {
	claims, err := s.confirmationSvc.ValidateToken(token)
	if err != nil {
		return err
	}
	userID, err := claims.UserID()
	if err != nil {
		return err
	}

	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Users(tx)
		user, err := repo.FindByID(ctx, userID)
		if err != nil {
			return err
		}

		if _, err := s.confirmationSvc.ValidateStoredToken(token,
			user.PasswordResetToken, user.PasswordResetTokenExpiry,
			KindPasswordReset); err != nil {
			return err
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), s.bcryptCost)
		if err != nil {
			return common.ErrInternal
		}

		return repo.ResetPassword(ctx, user.ID, string(hash))
	})
}

// ChangePassword re-hashes after verifying the current password. A wrong
// current password is a field-level validation error, not an authentication
// failure: the caller is already authenticated.
func (s *UsersService) ChangePassword(ctx context.Context, userID int64, currentPassword, newPassword string) error {
	repo := s.repomanager.Users(s.db)
	user, err := repo.FindByID(ctx, userID)
	if err != nil {
		return err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(currentPassword)) != nil {
		return common.NewValidationError("current_password", "users.errors.invalid_current_password")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), s.bcryptCost)
	if err != nil {
		return common.ErrInternal
	}

	return repo.UpdatePassword(ctx, userID, string(hash))
}

// RequestEmailChange stores an email-change token plus the pending address
// and mails a confirmation link to the NEW address, proving its owner wants
// the change.
func (s *UsersService) RequestEmailChange(ctx context.Context, userID int64, newEmail string) error {
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Users(tx)
		user, err := repo.FindByID(ctx, userID)
		if err != nil {
			return err
		}

		if user.Email == newEmail {
			return common.NewValidationError("email", "users.errors.new_email_same_as_current")
		}
		if _, err := repo.FindByEmail(ctx, newEmail); err == nil {
			return common.NewValidationError("email", "users.errors.email_already_exists")
		} else if !errors.Is(err, common.ErrNotFound) {
			return err
		}

		token, err := s.confirmationSvc.GenerateEmailChangeToken(user.ID, user.Email, newEmail)
		if err != nil {
			return err
		}

		expiry := time.Now().Add(s.confirmationSvc.Validity())
		if err := repo.SetEmailChangeToken(ctx, user.ID, token, expiry, newEmail); err != nil {
			return err
		}

		sendCtx, cancel := context.WithTimeout(ctx, s.emailTimeout)
		defer cancel()
		return s.emailSender.SendEmailChangeConfirmation(sendCtx, newEmail, user.Username, token)
	})
}

// ConfirmEmailChange consumes an email-change token. The target address
// comes from the token's new_email claim, the signed token being the only
// place it was recorded authoritatively; the change is journaled into the
// email history table.
func (s *UsersService) ConfirmEmailChange(ctx context.Context, token string) error {
	claims, err := s.confirmationSvc.ValidateToken(token)
	if err != nil {
		return err
	}
	userID, err := claims.UserID()
	if err != nil {
		return err
	}

	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Users(tx)
		user, err := repo.FindByID(ctx, userID)
		if err != nil {
			return err
		}

		if _, err := s.confirmationSvc.ValidateStoredToken(token,
			user.EmailChangeToken, user.EmailChangeTokenExpiry,
			KindEmailChange); err != nil {
			return err
		}

		if claims.NewEmail == nil {
			return common.NewAuthorizationError("auth.errors.invalid_token")
		}
		newEmail := *claims.NewEmail

		if err := repo.ApplyEmailChange(ctx, user.ID, newEmail); err != nil {
			return err
		}
		return repo.CreateEmailHistory(ctx, user.ID, user.Email, newEmail)
	})
}
