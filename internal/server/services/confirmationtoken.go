// Package services contains server-side business logic: the authentication
// and confirmation-token lifecycle, user workflows, role resolution and
// file management.
package services

import (
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/accountd/accountd/internal/common"
	"github.com/accountd/accountd/internal/server/config"
)

// TokenKind discriminates the three confirmation-token purposes.
type TokenKind string

const (
	KindEmailConfirmation TokenKind = "email_confirmation"
	KindEmailChange       TokenKind = "email_change"
	KindPasswordReset     TokenKind = "password_reset"
)

// ConfirmationClaims is the payload of a single-use confirmation token.
// NewEmail is set only for email-change tokens; since claims are never
// persisted, the signed token itself carries the target address.
type ConfirmationClaims struct {
	jwt.RegisteredClaims
	Email     string    `json:"email"`
	TokenKind TokenKind `json:"token_kind"`
	NewEmail  *string   `json:"new_email,omitempty"`
}

// UserID returns the numeric subject.
func (c *ConfirmationClaims) UserID() (int64, error) {
	id, err := strconv.ParseInt(c.Subject, 10, 64)
	if err != nil {
		return 0, common.NewAuthenticationError("auth.errors.invalid_token")
	}
	return id, nil
}

// ConfirmationTokenService issues and validates the short-lived signed
// tokens used for email confirmation, email change and password reset. It
// owns no persistent state: the caller stores the signed token on the user
// row, and validation cross-checks against that stored value.
type ConfirmationTokenService struct {
	secret   []byte
	validity time.Duration
}

// NewConfirmationTokenService constructs the service from server config.
func NewConfirmationTokenService(cfg *config.Config) *ConfirmationTokenService {
	return &ConfirmationTokenService{
		secret:   []byte(cfg.ConfirmationTokenSecret),
		validity: cfg.ConfirmationTokenTTL,
	}
}

// Validity returns the configured token lifetime, used by callers to derive
// the stored expiry column.
func (s *ConfirmationTokenService) Validity() time.Duration {
	return s.validity
}

func (s *ConfirmationTokenService) generate(userID int64, email string, kind TokenKind, newEmail *string) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, ConfirmationClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(userID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.validity)),
			ID:        uuid.NewString(),
		},
		Email:     email,
		TokenKind: kind,
		NewEmail:  newEmail,
	})

	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", common.ErrInternal
	}
	return signed, nil
}

// GenerateEmailConfirmationToken builds a signed email-confirmation token.
// The caller persists it into the user record.
func (s *ConfirmationTokenService) GenerateEmailConfirmationToken(userID int64, email string) (string, error) {
	return s.generate(userID, email, KindEmailConfirmation, nil)
}

// GenerateEmailChangeToken builds a signed email-change token carrying the
// target address.
func (s *ConfirmationTokenService) GenerateEmailChangeToken(userID int64, currentEmail, newEmail string) (string, error) {
	return s.generate(userID, currentEmail, KindEmailChange, &newEmail)
}

// GeneratePasswordResetToken builds a signed password-reset token.
func (s *ConfirmationTokenService) GeneratePasswordResetToken(userID int64, email string) (string, error) {
	return s.generate(userID, email, KindPasswordReset, nil)
}

// ValidateToken verifies signature and expiry and returns the claims.
func (s *ConfirmationTokenService) ValidateToken(token string) (*ConfirmationClaims, error) {
	claims := &ConfirmationClaims{}

	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, common.NewAuthenticationError("auth.errors.invalid_token")
		}
		return s.secret, nil
	})
	if err != nil || !parsed.Valid {
		return nil, common.NewAuthenticationError("auth.errors.invalid_token")
	}
	return claims, nil
}

// ValidateStoredToken validates the token itself, then cross-checks it
// against the value and expiry stored on the user row. The double check
// defeats replay of a superseded token that is still cryptographically
// well-formed and unexpired.
func (s *ConfirmationTokenService) ValidateStoredToken(token string, storedToken *string, storedExpiry *time.Time, expected TokenKind) (*ConfirmationClaims, error) {
	claims, err := s.ValidateToken(token)
	if err != nil {
		return nil, err
	}

	if claims.TokenKind != expected {
		return nil, common.NewAuthorizationError("auth.errors.invalid_token_type")
	}

	if storedToken == nil || *storedToken != token {
		return nil, common.NewAuthorizationError("auth.errors.invalid_token")
	}

	if storedExpiry != nil && time.Now().After(*storedExpiry) {
		return nil, common.NewAuthorizationError("auth.errors.expired_token")
	}

	return claims, nil
}
